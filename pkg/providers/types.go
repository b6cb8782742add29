package providers

import (
	"context"

	"github.com/deeporg/deeporg/pkg/tools"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model. Arguments is
// the raw JSON argument object exactly as the model produced it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one conversation turn in provider-neutral form. Each
// provider converts the history into its own wire shape, including any
// role-alternation rules the backend enforces.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant turns that requested tools.
	ToolCalls []ToolCall

	// ToolCallID and IsError are set on tool turns.
	ToolCallID string
	IsError    bool
}

// UserMessage builds a user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant turn, echoing back any tool calls
// so the history stays replayable.
func AssistantMessage(content string, toolCalls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// ToolMessage builds a tool-result turn for one tool call.
func ToolMessage(toolCallID, content string, isError bool) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content, IsError: isError}
}

// Response is the model's reply to one Chat call. An empty ToolCalls
// slice means the model is done and Content is its final answer.
type Response struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
}

// Provider abstracts one chat backend. Ready is the preflight check run
// before a session starts; it fails fast on missing credentials instead
// of letting the first Chat call surface a confusing HTTP error.
type Provider interface {
	Name() string
	Model() string
	Ready(ctx context.Context) error
	Chat(ctx context.Context, system string, messages []Message, defs []tools.ToolDefinition) (*Response, error)
}
