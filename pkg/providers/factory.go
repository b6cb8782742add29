package providers

import (
	"fmt"
	"strings"
)

// FromModel builds a provider from a qualified model spec such as
// "anthropic:claude-sonnet-4-5" or "openai:gpt-4o-mini". The vendor
// prefix is mandatory: a bare model name is ambiguous and rejected.
func FromModel(spec string, opts ...Option) (Provider, error) {
	vendor, model, ok := strings.Cut(spec, ":")
	if !ok || vendor == "" || model == "" {
		return nil, fmt.Errorf("model %q must be qualified as provider:model", spec)
	}

	switch vendor {
	case "anthropic":
		return NewAnthropicProvider(model, opts...), nil
	case "openai":
		return NewOpenAIProvider(model, opts...), nil
	case "bedrock":
		return NewBedrockProvider(model, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: anthropic, openai, bedrock)", vendor)
	}
}
