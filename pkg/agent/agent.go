package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deeporg/deeporg/pkg/logger"
	"github.com/deeporg/deeporg/pkg/organizer"
	"github.com/deeporg/deeporg/pkg/providers"
	"github.com/deeporg/deeporg/pkg/tools"
)

const defaultMaxToolOutput = 30000

// Agent drives the tool-calling loop between the model and the file
// operations. It implements the session's orchestrator boundary: the
// session owns state and policy, the agent owns the conversation.
type Agent struct {
	provider      providers.Provider
	extraTools    []tools.Tool
	maxToolOutput int
}

var _ organizer.Orchestrator = (*Agent)(nil)

// AgentOption adjusts agent construction.
type AgentOption func(*Agent)

// WithExtraTools registers additional tools beyond the built-in four,
// such as tools bridged in from MCP servers.
func WithExtraTools(ts ...tools.Tool) AgentOption {
	return func(a *Agent) { a.extraTools = append(a.extraTools, ts...) }
}

// WithMaxToolOutput caps how many bytes of a tool result are sent back
// to the model before truncation.
func WithMaxToolOutput(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxToolOutput = n
		}
	}
}

// New builds an agent on top of a chat provider.
func New(provider providers.Provider, opts ...AgentOption) *Agent {
	a := &Agent{
		provider:      provider,
		maxToolOutput: defaultMaxToolOutput,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ready checks the provider can be called at all.
func (a *Agent) Ready(ctx context.Context) error {
	return a.provider.Ready(ctx)
}

// Run executes one organizing conversation. The ceiling in the binding
// bounds tool calls, not model turns: a model that keeps asking for
// tools eventually trips it, and a model that stops asking ends the run
// with its final message.
func (a *Agent) Run(ctx context.Context, binding organizer.RunBinding) (string, int, error) {
	registry := tools.NewToolRegistry()
	tools.Setup(registry, binding.Ops)
	for _, t := range a.extraTools {
		registry.Register(t)
	}

	system := BuildSystemPrompt(binding.Ops, registry)
	defs := registry.Definitions()
	history := []providers.Message{providers.UserMessage(organizeInstruction)}

	logger.InfoCF("agent", "Loop starting", map[string]any{
		"model":    a.provider.Model(),
		"tools":    registry.Count(),
		"tool_cap": binding.MaxIterations,
	})

	toolCalls := 0
	for turn := 1; ; turn++ {
		select {
		case <-ctx.Done():
			return "", toolCalls, organizer.Wrap(ctx.Err(), organizer.KindCancelled, "run cancelled")
		default:
		}

		resp, err := a.provider.Chat(ctx, system, history, defs)
		if err != nil {
			if ctx.Err() != nil {
				return "", toolCalls, organizer.Wrap(ctx.Err(), organizer.KindCancelled, "run cancelled")
			}
			return "", toolCalls, organizer.Wrap(err, organizer.KindIOFailure, "model call failed: %v", err)
		}

		// No tool calls means the model is done
		if len(resp.ToolCalls) == 0 {
			logger.InfoCF("agent", "Loop complete", map[string]any{
				"turns":      turn,
				"tool_calls": toolCalls,
			})
			return resp.Content, toolCalls, nil
		}

		history = append(history, providers.AssistantMessage(resp.Content, resp.ToolCalls))

		for _, tc := range resp.ToolCalls {
			select {
			case <-ctx.Done():
				return "", toolCalls, organizer.Wrap(ctx.Err(), organizer.KindCancelled, "run cancelled")
			default:
			}

			if toolCalls >= binding.MaxIterations {
				return "", toolCalls, organizer.E(organizer.KindIterationLimit,
					"tool-call ceiling reached (%d)", binding.MaxIterations)
			}
			toolCalls++

			result := a.executeCall(ctx, registry, tc)

			output := result.ForLLM
			if len(output) > a.maxToolOutput {
				output = output[:a.maxToolOutput] + fmt.Sprintf(
					"\n\n[output truncated: %d bytes total, showing first %d bytes]",
					len(result.ForLLM), a.maxToolOutput)
			}

			if binding.Observe != nil {
				binding.Observe(outcomeFor(tc.Name, result))
			}
			history = append(history, providers.ToolMessage(tc.ID, output, result.IsError))
		}
	}
}

func (a *Agent) executeCall(ctx context.Context, registry *tools.ToolRegistry, tc providers.ToolCall) *tools.ToolResult {
	logger.DebugCF("agent", "Executing tool", map[string]any{
		"tool": tc.Name,
		"args": truncate(tc.Arguments, 200),
	})

	args, err := parseToolArgs(tc.Arguments)
	if err != nil {
		return tools.ErrorResultf("error parsing tool arguments: %v", err)
	}
	result := registry.Execute(ctx, tc.Name, args)
	if result.IsError {
		logger.WarnCF("agent", "Tool failed", map[string]any{
			"tool":  tc.Name,
			"error": truncate(result.ForLLM, 200),
		})
	}
	return result
}

func outcomeFor(tool string, result *tools.ToolResult) organizer.Outcome {
	if !result.IsError {
		return organizer.Outcome{Tool: tool, OK: true, Message: result.ForLLM}
	}
	kind := organizer.KindOf(result.Err)
	if kind == "" {
		kind = organizer.KindIOFailure
	}
	return organizer.Outcome{Tool: tool, Kind: kind, Message: result.ForLLM}
}

// parseToolArgs parses the JSON arguments string from a tool call.
// Returns an empty map (not nil) if the arguments string is empty.
func parseToolArgs(argsJSON string) (map[string]any, error) {
	if argsJSON == "" || argsJSON == "{}" {
		return make(map[string]any), nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, fmt.Errorf("invalid JSON arguments: %w (raw: %s)", err, truncate(argsJSON, 200))
	}
	if args == nil {
		args = make(map[string]any)
	}
	return args, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
