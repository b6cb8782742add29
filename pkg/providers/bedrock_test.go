package providers

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	btypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

func TestToBedrockMessages_CoalescesToolResults(t *testing.T) {
	history := []Message{
		UserMessage("Organize my files."),
		AssistantMessage("Working on it.", []ToolCall{
			{ID: "t1", Name: "create_folder", Arguments: `{"folder_name":"docs"}`},
			{ID: "t2", Name: "list_files", Arguments: `{}`},
		}),
		ToolMessage("t1", "Folder 'docs' created at /tmp/x/docs", false),
		ToolMessage("t2", "cannot list '/tmp/x': permission denied", true),
	}

	msgs := toBedrockMessages(history)
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 wire messages, got %d", len(msgs))
	}
	if msgs[0].Role != btypes.ConversationRoleUser || msgs[1].Role != btypes.ConversationRoleAssistant || msgs[2].Role != btypes.ConversationRoleUser {
		t.Errorf("Roles do not alternate: %v %v %v", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}

	// The assistant turn carries text plus both tool uses
	if len(msgs[1].Content) != 3 {
		t.Fatalf("Expected 3 assistant blocks, got %d", len(msgs[1].Content))
	}
	toolUse, ok := msgs[1].Content[1].(*btypes.ContentBlockMemberToolUse)
	if !ok || aws.ToString(toolUse.Value.ToolUseId) != "t1" {
		t.Errorf("Unexpected first tool use block: %+v", msgs[1].Content[1])
	}

	// Both results folded into one user message, error status preserved
	if len(msgs[2].Content) != 2 {
		t.Fatalf("Expected 2 tool result blocks, got %d", len(msgs[2].Content))
	}
	second, ok := msgs[2].Content[1].(*btypes.ContentBlockMemberToolResult)
	if !ok {
		t.Fatalf("Expected tool result block, got %T", msgs[2].Content[1])
	}
	if second.Value.Status != btypes.ToolResultStatusError {
		t.Errorf("Expected error status, got %v", second.Value.Status)
	}
}

func TestToBedrockTools(t *testing.T) {
	cfg := toBedrockTools(testDefs())
	if cfg == nil || len(cfg.Tools) != 1 {
		t.Fatalf("Expected 1 tool spec, got %+v", cfg)
	}
	spec, ok := cfg.Tools[0].(*btypes.ToolMemberToolSpec)
	if !ok || aws.ToString(spec.Value.Name) != "create_folder" {
		t.Errorf("Unexpected tool spec: %+v", cfg.Tools[0])
	}

	if toBedrockTools(nil) != nil {
		t.Error("Expected nil config for no tools")
	}
}

func TestParseArgsObject(t *testing.T) {
	args := parseArgsObject(`{"folder_name":"docs","count":2}`)
	if args["folder_name"] != "docs" || args["count"] != float64(2) {
		t.Errorf("Unexpected parse: %v", args)
	}
	if got := parseArgsObject(""); len(got) != 0 {
		t.Errorf("Expected empty map for empty input, got %v", got)
	}
	if got := parseArgsObject("not json"); len(got) != 0 {
		t.Errorf("Expected empty map for bad input, got %v", got)
	}

	// Round trip through JSON stays an object
	raw, err := json.Marshal(parseArgsObject(`{"a":1}`))
	if err != nil || string(raw) != `{"a":1}` {
		t.Errorf("Round trip failed: %s %v", raw, err)
	}
}
