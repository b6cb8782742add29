package mcp

import (
	"context"
	"fmt"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deeporg/deeporg/pkg/config"
	"github.com/deeporg/deeporg/pkg/logger"
	"github.com/deeporg/deeporg/pkg/tools"
)

// ServerConfig defines how to reach one MCP server
type ServerConfig struct {
	Name    string
	Type    string
	URL     string
	Headers map[string]string
	Cmd     string
	Args    []string
	Env     []string
}

type Manager struct {
	registry *tools.ToolRegistry
	sessions map[string]*sdk.ClientSession
	mu       sync.RWMutex
}

func NewManager(registry *tools.ToolRegistry) *Manager {
	return &Manager{
		registry: registry,
		sessions: make(map[string]*sdk.ClientSession),
	}
}

// StartAndRegister connects to an MCP server, completes the handshake, and
// registers its tools in the ToolRegistry
func (m *Manager) StartAndRegister(ctx context.Context, cfg ServerConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// check if it exists before trying to connect
	if _, exists := m.sessions[cfg.Name]; exists {
		return fmt.Errorf("mcp server %s is already running", cfg.Name)
	}

	switch cfg.Type {
	case "sse":
		logger.InfoCF("mcp_manager", "Connecting to remote MCP server via SSE", map[string]any{"url": cfg.URL})
	case "http", "streamable":
		logger.InfoCF("mcp_manager", "Connecting to remote MCP server via HTTP", map[string]any{"url": cfg.URL})
	default:
		logger.InfoCF("mcp_manager", "Starting local MCP server", map[string]any{"cmd": cfg.Cmd})
	}

	session, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Name, err)
	}

	// Retrieve exposed tools
	toolsList, err := session.ListTools(ctx, nil)
	if err != nil {
		session.Close()
		return fmt.Errorf("failed to list tools from %s: %w", cfg.Name, err)
	}

	// Registers tools dynamically in the ToolRegistry
	for _, tDef := range toolsList.Tools {
		// We prefix the name for the LLM to avoid collisions
		llmName := fmt.Sprintf("%s_%s", cfg.Name, tDef.Name)

		adapter := NewMCPToolAdapter(session, tDef, llmName)
		m.registry.Register(adapter)

		logger.InfoCF("mcp_manager", "Registered MCP tool", map[string]any{
			"server":   cfg.Name,
			"llm_name": llmName,
			"mcp_name": tDef.Name,
		})
	}

	m.sessions[cfg.Name] = session
	return nil
}

// Shutdown ensures a clean shutdown of all MCP server connections
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, session := range m.sessions {
		logger.InfoCF("mcp_manager", "Shutting down MCP server", map[string]any{"server": name})
		if err := session.Close(); err != nil {
			logger.WarnCF("mcp_manager", "MCP server did not close cleanly", map[string]any{
				"server": name,
				"error":  err,
			})
		}
		delete(m.sessions, name)
	}
}

// InitFromConfig reads the server map from the global configuration and starts them all
func (m *Manager) InitFromConfig(ctx context.Context, cfg config.MCPConfig) {
	for name, srvCfg := range cfg.Servers {
		logger.InfoCF("mcp_manager", "Starting MCP server from config", map[string]any{"server": name})

		err := m.StartAndRegister(ctx, ServerConfig{
			Name:    name,
			Type:    srvCfg.Type,
			URL:     srvCfg.URL,
			Headers: srvCfg.Headers,
			Cmd:     srvCfg.Command,
			Args:    srvCfg.Args,
			Env:     BuildEnv(srvCfg.Env),
		})
		if err != nil {
			logger.ErrorCF("mcp_manager", "Failed to start MCP server", map[string]any{
				"server": name,
				"error":  err,
			})
			continue
		}

		logger.InfoCF("mcp_manager", "Successfully initialized MCP server", map[string]any{"server": name})
	}
}
