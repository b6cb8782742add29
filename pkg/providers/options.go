package providers

import (
	"time"

	"golang.org/x/time/rate"
)

type options struct {
	apiKey     string
	baseURL    string
	region     string
	maxTokens  int64
	maxRetries int
	limiter    *rate.Limiter
}

// Option adjusts how a provider client is built.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		maxTokens:  4096,
		maxRetries: 3,
		// Two requests per second with a small burst keeps the loop well
		// under every vendor's default quota.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithAPIKey overrides the environment-sourced credential.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at a different endpoint, such as a proxy
// or a test server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithRegion sets the AWS region for the Bedrock backend.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithMaxTokens caps the response length per call.
func WithMaxTokens(n int64) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithMaxRetries sets how many times transient API failures are retried
// by the underlying SDK client.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithRateLimiter replaces the default client-side limiter. Nil disables
// rate limiting entirely.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(o *options) { o.limiter = l }
}
