package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deeporg/deeporg/pkg/logger"
	"github.com/deeporg/deeporg/pkg/tools"
)

// MCPToolAdapter exposes a tool served by a remote MCP server through the
// local Tool interface.
type MCPToolAdapter struct {
	session      *sdk.ClientSession
	llmName      string
	originalName string
	description  string
	parameters   map[string]any
}

var _ tools.Tool = (*MCPToolAdapter)(nil)

// NewMCPToolAdapter wraps def, served over session, under the name llmName.
func NewMCPToolAdapter(session *sdk.ClientSession, def *sdk.Tool, llmName string) *MCPToolAdapter {
	return &MCPToolAdapter{
		session:      session,
		llmName:      llmName,
		originalName: def.Name,
		description:  def.Description,
		parameters:   schemaToMap(def.InputSchema),
	}
}

// Name returns the name the LLM sees, prefixed with the server name.
func (a *MCPToolAdapter) Name() string {
	return a.llmName
}

func (a *MCPToolAdapter) Description() string {
	return a.description
}

func (a *MCPToolAdapter) Parameters() map[string]any {
	return a.parameters
}

// Execute sends the call to the remote MCP server
func (a *MCPToolAdapter) Execute(ctx context.Context, args map[string]any) *tools.ToolResult {
	logger.DebugCF("mcp_tool", "Executing MCP tool", map[string]any{
		"llm_tool_name": a.llmName,
		"mcp_tool_name": a.originalName,
		"args":          args,
	})

	result, err := a.session.CallTool(ctx, &sdk.CallToolParams{
		Name:      a.originalName,
		Arguments: args,
	})
	if err != nil {
		return tools.ErrorResult(fmt.Sprintf("mcp call failed: %v", err)).WithError(err)
	}

	text := extractTextContent(result.Content)
	if result.IsError {
		return tools.ErrorResult(text)
	}
	return tools.NewToolResult(text)
}

func extractTextContent(blocks []sdk.Content) string {
	var text string
	for _, block := range blocks {
		if tc, ok := block.(*sdk.TextContent); ok {
			text += tc.Text + "\n"
		}
	}
	return text
}

// schemaToMap flattens the SDK schema into the generic map form the
// providers serialize. Tools without a schema get an empty object schema.
func schemaToMap(schema any) map[string]any {
	empty := map[string]any{"type": "object", "properties": map[string]any{}}
	if schema == nil {
		return empty
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return empty
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return empty
	}
	return m
}
