package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deeporg/deeporg/pkg/organizer"
	"github.com/deeporg/deeporg/pkg/providers"
	"github.com/deeporg/deeporg/pkg/tools"
)

type fakeProvider struct {
	responses []*providers.Response
	calls     int
	histories [][]providers.Message
	readyErr  error
	chatErr   error
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Ready(ctx context.Context) error { return f.readyErr }

func (f *fakeProvider) Chat(ctx context.Context, system string, messages []providers.Message, defs []tools.ToolDefinition) (*providers.Response, error) {
	f.histories = append(f.histories, append([]providers.Message(nil), messages...))
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	if f.calls >= len(f.responses) {
		return &providers.Response{Content: "out of script"}, nil
	}
	r := f.responses[f.calls]
	f.calls++
	return r, nil
}

func toolCallResponse(calls ...providers.ToolCall) *providers.Response {
	return &providers.Response{ToolCalls: calls, StopReason: "tool_use"}
}

func newBinding(t *testing.T, maxIterations int) (organizer.RunBinding, *[]organizer.Outcome) {
	t.Helper()
	ops, err := organizer.NewFileOps(t.TempDir(), organizer.ExclusionSet{}, 0, false)
	if err != nil {
		t.Fatalf("NewFileOps failed: %v", err)
	}
	var observed []organizer.Outcome
	return organizer.RunBinding{
		Ops:           ops,
		MaxIterations: maxIterations,
		Observe:       func(oc organizer.Outcome) { observed = append(observed, oc) },
	}, &observed
}

func TestAgentRun_ToolDispatch(t *testing.T) {
	provider := &fakeProvider{responses: []*providers.Response{
		toolCallResponse(providers.ToolCall{ID: "t1", Name: "create_folder", Arguments: `{"folder_name":"docs"}`}),
		{Content: "All organized.", StopReason: "end_turn"},
	}}
	binding, observed := newBinding(t, 10)

	msg, toolCalls, err := New(provider).Run(context.Background(), binding)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if msg != "All organized." {
		t.Errorf("Unexpected final message: %q", msg)
	}
	if toolCalls != 1 {
		t.Errorf("Expected 1 tool call, got %d", toolCalls)
	}

	// The folder really was created
	if info, err := os.Stat(filepath.Join(binding.Ops.Root(), "docs")); err != nil || !info.IsDir() {
		t.Error("Expected docs directory on disk")
	}

	// The outcome was observed and the result went back into history
	if len(*observed) != 1 || !(*observed)[0].OK || (*observed)[0].Tool != "create_folder" {
		t.Errorf("Unexpected outcomes: %+v", *observed)
	}
	second := provider.histories[1]
	last := second[len(second)-1]
	if last.Role != providers.RoleTool || last.ToolCallID != "t1" {
		t.Errorf("Expected trailing tool message, got %+v", last)
	}
	if !strings.Contains(last.Content, "Folder 'docs' created at") {
		t.Errorf("Tool message lost the result: %q", last.Content)
	}
}

func TestAgentRun_IterationCeiling(t *testing.T) {
	listCall := providers.ToolCall{ID: "t", Name: "list_files", Arguments: `{}`}
	provider := &fakeProvider{responses: []*providers.Response{
		toolCallResponse(listCall),
		toolCallResponse(listCall),
		toolCallResponse(listCall),
	}}
	binding, observed := newBinding(t, 2)

	_, toolCalls, err := New(provider).Run(context.Background(), binding)
	if organizer.KindOf(err) != organizer.KindIterationLimit {
		t.Fatalf("Expected iteration_limit_exceeded, got %v", err)
	}
	if toolCalls != 2 {
		t.Errorf("Expected exactly 2 executed calls, got %d", toolCalls)
	}
	if len(*observed) != 2 {
		t.Errorf("Expected 2 observed outcomes, got %d", len(*observed))
	}
}

func TestAgentRun_Cancelled(t *testing.T) {
	provider := &fakeProvider{responses: []*providers.Response{
		toolCallResponse(providers.ToolCall{ID: "t", Name: "list_files", Arguments: `{}`}),
	}}
	binding, _ := newBinding(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(provider).Run(ctx, binding)
	if organizer.KindOf(err) != organizer.KindCancelled {
		t.Fatalf("Expected cancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("Expected context.Canceled in the chain")
	}
}

func TestAgentRun_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{chatErr: errors.New("connection reset")}
	binding, _ := newBinding(t, 10)

	_, _, err := New(provider).Run(context.Background(), binding)
	if organizer.KindOf(err) != organizer.KindIOFailure {
		t.Fatalf("Expected io_failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "model call failed") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestAgentRun_UnknownToolAndBadArgs(t *testing.T) {
	provider := &fakeProvider{responses: []*providers.Response{
		toolCallResponse(
			providers.ToolCall{ID: "t1", Name: "rm_rf", Arguments: `{}`},
			providers.ToolCall{ID: "t2", Name: "create_folder", Arguments: `not json`},
		),
		{Content: "Gave up.", StopReason: "end_turn"},
	}}
	binding, observed := newBinding(t, 10)

	msg, toolCalls, err := New(provider).Run(context.Background(), binding)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if msg != "Gave up." || toolCalls != 2 {
		t.Errorf("Unexpected result: %q / %d", msg, toolCalls)
	}

	if len(*observed) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(*observed))
	}
	if (*observed)[0].OK || !strings.Contains((*observed)[0].Message, "unknown tool: rm_rf") {
		t.Errorf("Unexpected first outcome: %+v", (*observed)[0])
	}
	if (*observed)[1].OK || !strings.Contains((*observed)[1].Message, "error parsing tool arguments") {
		t.Errorf("Unexpected second outcome: %+v", (*observed)[1])
	}

	// Both failures went back to the model as error tool messages
	second := provider.histories[1]
	toolMsgs := 0
	for _, m := range second {
		if m.Role == providers.RoleTool && m.IsError {
			toolMsgs++
		}
	}
	if toolMsgs != 2 {
		t.Errorf("Expected 2 error tool messages, got %d", toolMsgs)
	}
}

type noisyTool struct{}

func (noisyTool) Name() string        { return "noisy" }
func (noisyTool) Description() string { return "returns a large payload" }
func (noisyTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (noisyTool) Execute(ctx context.Context, args map[string]any) *tools.ToolResult {
	return tools.NewToolResult(strings.Repeat("x", 500))
}

func TestAgentRun_OutputTruncation(t *testing.T) {
	provider := &fakeProvider{responses: []*providers.Response{
		toolCallResponse(providers.ToolCall{ID: "t1", Name: "noisy", Arguments: `{}`}),
		{Content: "done"},
	}}
	binding, _ := newBinding(t, 10)

	a := New(provider, WithExtraTools(noisyTool{}), WithMaxToolOutput(100))
	if _, _, err := a.Run(context.Background(), binding); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	second := provider.histories[1]
	last := second[len(second)-1]
	if !strings.Contains(last.Content, "[output truncated: 500 bytes total, showing first 100 bytes]") {
		t.Errorf("Expected truncation note, got %q", last.Content[len(last.Content)-80:])
	}
	if !strings.HasPrefix(last.Content, strings.Repeat("x", 100)) {
		t.Error("Expected the first 100 bytes preserved")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	ops, err := organizer.NewFileOps(t.TempDir(), organizer.ExclusionSet{}, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	registry := tools.NewToolRegistry()
	tools.Setup(registry, ops)

	prompt := BuildSystemPrompt(ops, registry)
	if !strings.HasPrefix(prompt, "You are a helpful assistant for me organizing my files.") {
		t.Error("Prompt lost its opening line")
	}
	if !strings.Contains(prompt, ops.Root()) {
		t.Error("Prompt missing target directory")
	}
	if !strings.Contains(prompt, ".env") || !strings.Contains(prompt, "node_modules") {
		t.Error("Prompt missing protected names")
	}
	if !strings.Contains(prompt, "list_files") || !strings.Contains(prompt, "move_file") {
		t.Error("Prompt missing tool summary")
	}
	if strings.Contains(prompt, "dry run") {
		t.Error("Dry-run notice should be absent for a real run")
	}

	dryOps, err := organizer.NewFileOps(t.TempDir(), organizer.ExclusionSet{}, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(BuildSystemPrompt(dryOps, registry), "dry run") {
		t.Error("Expected dry-run notice")
	}
}
