package tools

import (
	"context"
	"fmt"
	"strings"
)

// Tool is a capability exposed to the model. Execute never returns a Go
// error: every failure is folded into the ToolResult so the loop can hand
// it back to the model instead of crashing the run.
type Tool interface {
	Name() string
	Description() string

	// Parameters returns a JSON Schema object describing the tool's
	// expected arguments, with "type", "properties" and "required" fields.
	Parameters() map[string]any

	Execute(ctx context.Context, args map[string]any) *ToolResult
}

// ToolResult holds the outcome of a tool execution. Every invocation
// produces exactly one result, which is then sent back to the model as a
// tool message.
type ToolResult struct {
	// ForLLM is the text sent back to the model in the tool response.
	ForLLM string

	// ForUser is optional text shown to the human. If empty, ForLLM is
	// shown instead.
	ForUser string

	// IsError marks the result as a failure the model should react to.
	IsError bool

	// Err carries the underlying error for observers; it is never sent
	// to the model.
	Err error
}

// NewToolResult creates a successful tool result with the given text.
func NewToolResult(forLLM string) *ToolResult {
	return &ToolResult{ForLLM: forLLM}
}

// NewToolResultWithUser creates a result with separate LLM and user text.
func NewToolResultWithUser(forLLM, forUser string) *ToolResult {
	return &ToolResult{ForLLM: forLLM, ForUser: forUser}
}

// ErrorResult creates an error tool result.
func ErrorResult(msg string) *ToolResult {
	return &ToolResult{ForLLM: msg, IsError: true}
}

// ErrorResultf creates a formatted error tool result.
func ErrorResultf(format string, args ...any) *ToolResult {
	return &ToolResult{ForLLM: fmt.Sprintf(format, args...), IsError: true}
}

// WithError attaches the underlying error and returns the result.
func (r *ToolResult) WithError(err error) *ToolResult {
	r.Err = err
	return r
}

// Text returns what should be shown to the user.
func (r *ToolResult) Text() string {
	if r.ForUser != "" {
		return r.ForUser
	}
	return r.ForLLM
}

// ToolDefinition is the provider-neutral shape of a tool declaration.
// Each provider converts these into its own wire format.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolRegistry manages all registered tools. Tools are stored in a slice
// to preserve registration order; lookup is O(n) but n stays small. The
// registry is not locked: registration happens once at startup and the
// loop executes one tool at a time.
type ToolRegistry struct {
	tools []Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make([]Tool, 0, 8)}
}

// Register adds a tool. Duplicate names are not checked; the first
// registered tool with a given name wins lookups.
func (r *ToolRegistry) Register(t Tool) {
	r.tools = append(r.tools, t)
}

// Get retrieves a tool by name, or nil if not found.
func (r *ToolRegistry) Get(name string) Tool {
	for _, t := range r.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Has returns true if a tool with the given name is registered.
func (r *ToolRegistry) Has(name string) bool {
	return r.Get(name) != nil
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	return len(r.tools)
}

// Execute runs a named tool. An unknown name comes back as an error
// result listing what is available, so the model can correct itself.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]any) *ToolResult {
	t := r.Get(name)
	if t == nil {
		return ErrorResultf("unknown tool: %s (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return t.Execute(ctx, args)
}

// Definitions returns the declarations for all registered tools, in
// registration order.
func (r *ToolRegistry) Definitions() []ToolDefinition {
	defs := make([]ToolDefinition, len(r.tools))
	for i, t := range r.tools {
		defs[i] = ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return defs
}

// Names returns all tool names in registration order.
func (r *ToolRegistry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}
	return names
}

// Summary returns a formatted multi-line listing of all tools.
func (r *ToolRegistry) Summary() string {
	var b strings.Builder
	for _, t := range r.tools {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", t.Name(), t.Description()))
	}
	return b.String()
}
