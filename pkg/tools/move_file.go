package tools

import (
	"context"

	"github.com/deeporg/deeporg/pkg/organizer"
)

type MoveFileTool struct {
	ops *organizer.FileOps
}

func NewMoveFileTool(ops *organizer.FileOps) *MoveFileTool {
	return &MoveFileTool{ops: ops}
}

func (t *MoveFileTool) Name() string {
	return "move_file"
}

func (t *MoveFileTool) Description() string {
	return "Move a file into a folder, both directly inside the target directory. The destination folder must already exist"
}

func (t *MoveFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_name": map[string]any{
				"type":        "string",
				"description": "Name of the file to move",
			},
			"dest_folder": map[string]any{
				"type":        "string",
				"description": "Name of the existing destination folder",
			},
		},
		"required": []string{"file_name", "dest_folder"},
	}
}

func (t *MoveFileTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	fileName := getStringArg(args, "file_name")
	if fileName == "" {
		return ErrorResult("file_name is required")
	}
	destFolder := getStringArg(args, "dest_folder")
	if destFolder == "" {
		return ErrorResult("dest_folder is required")
	}

	msg, err := t.ops.MoveFile(fileName, destFolder)
	if err != nil {
		return ErrorResult(err.Error()).WithError(err)
	}
	return NewToolResult(msg)
}
