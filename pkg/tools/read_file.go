package tools

import (
	"context"

	"github.com/deeporg/deeporg/pkg/organizer"
)

type ReadFileTool struct {
	ops *organizer.FileOps
}

func NewReadFileTool(ops *organizer.FileOps) *ReadFileTool {
	return &ReadFileTool{ops: ops}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return "Read the beginning of a text file in the target directory. Long files are truncated and say so; binary files are refused"
}

func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_name": map[string]any{
				"type":        "string",
				"description": "Name of the file to read",
			},
		},
		"required": []string{"file_name"},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	name := getStringArg(args, "file_name")
	if name == "" {
		return ErrorResult("file_name is required")
	}

	content, err := t.ops.ReadFile(name, 0)
	if err != nil {
		return ErrorResult(err.Error()).WithError(err)
	}
	return NewToolResult(content)
}
