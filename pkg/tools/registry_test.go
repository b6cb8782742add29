package tools

import (
	"context"
	"strings"
	"testing"
)

type fakeTool struct {
	name   string
	result *ToolResult
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool " + f.name }
func (f *fakeTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (f *fakeTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	return f.result
}

func TestToolRegistry(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&fakeTool{name: "alpha", result: NewToolResult("A")})
	r.Register(&fakeTool{name: "beta", result: ErrorResult("B failed")})

	if r.Count() != 2 {
		t.Errorf("Expected 2 tools, got %d", r.Count())
	}
	if !r.Has("alpha") || r.Has("gamma") {
		t.Error("Has() gave wrong answers")
	}
	if tool := r.Get("beta"); tool == nil || tool.Name() != "beta" {
		t.Error("Get() did not find beta")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("Expected registration order preserved, got %v", names)
	}

	defs := r.Definitions()
	if len(defs) != 2 || defs[0].Name != "alpha" || defs[0].Description == "" {
		t.Errorf("Unexpected definitions: %+v", defs)
	}

	if !strings.Contains(r.Summary(), "alpha") {
		t.Error("Summary missing tool name")
	}
}

func TestToolRegistry_Execute(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&fakeTool{name: "alpha", result: NewToolResult("A")})

	res := r.Execute(context.Background(), "alpha", nil)
	if res.IsError || res.ForLLM != "A" {
		t.Errorf("Unexpected result: %+v", res)
	}

	res = r.Execute(context.Background(), "ghost", nil)
	if !res.IsError {
		t.Fatal("Expected error for unknown tool")
	}
	if !strings.Contains(res.ForLLM, "unknown tool: ghost") || !strings.Contains(res.ForLLM, "alpha") {
		t.Errorf("Expected unknown-tool message listing alternatives, got %q", res.ForLLM)
	}
}

func TestToolResultHelpers(t *testing.T) {
	res := NewToolResultWithUser("full detail", "short")
	if res.Text() != "short" {
		t.Errorf("Expected ForUser preferred, got %q", res.Text())
	}
	if NewToolResult("x").Text() != "x" {
		t.Error("Expected ForLLM fallback")
	}

	errRes := ErrorResultf("bad %s", "thing")
	if !errRes.IsError || errRes.ForLLM != "bad thing" {
		t.Errorf("Unexpected error result: %+v", errRes)
	}
}

func TestGetStringArg(t *testing.T) {
	args := map[string]any{
		"s": "text",
		"n": float64(42),
		"b": true,
	}
	if getStringArg(args, "s") != "text" {
		t.Error("string value lost")
	}
	if getStringArg(args, "n") != "42" {
		t.Errorf("Expected number coerced to string, got %q", getStringArg(args, "n"))
	}
	if getStringArg(args, "b") != "true" {
		t.Error("bool value not coerced")
	}
	if getStringArg(args, "missing") != "" || getStringArg(nil, "s") != "" {
		t.Error("Expected empty string for absent values")
	}
}
