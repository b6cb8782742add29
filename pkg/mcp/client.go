package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// clientInfo is the identity announced during the MCP handshake.
var clientInfo = &sdk.Implementation{Name: "deeporg", Version: "1.0.0"}

// headerTransport injects static headers into every request, for remote
// servers that want an auth token or similar.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

func httpClientFor(headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return http.DefaultClient
	}
	return &http.Client{
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}
}

// connect dials the server described by cfg and completes the MCP
// initialization handshake. The caller owns the returned session and must
// Close it.
func connect(ctx context.Context, cfg ServerConfig) (*sdk.ClientSession, error) {
	client := sdk.NewClient(clientInfo, nil)

	var transport sdk.Transport
	switch cfg.Type {
	case "sse":
		transport = &sdk.SSEClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClientFor(cfg.Headers),
		}
	case "http", "streamable":
		transport = &sdk.StreamableClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClientFor(cfg.Headers),
		}
	default:
		// Forwards server errors (stderr) to the console for easy debugging
		cmd := exec.Command(cfg.Cmd, cfg.Args...)
		cmd.Env = cfg.Env
		cmd.Stderr = os.Stderr
		transport = &sdk.CommandTransport{Command: cmd}
	}

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Name, err)
	}
	return session, nil
}
