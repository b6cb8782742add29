package tools

import (
	"context"

	"github.com/deeporg/deeporg/pkg/organizer"
)

type CreateFolderTool struct {
	ops *organizer.FileOps
}

func NewCreateFolderTool(ops *organizer.FileOps) *CreateFolderTool {
	return &CreateFolderTool{ops: ops}
}

func (t *CreateFolderTool) Name() string {
	return "create_folder"
}

func (t *CreateFolderTool) Description() string {
	return "Create a new folder inside the target directory. Creating a folder that already exists is reported, not treated as a failure"
}

func (t *CreateFolderTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"folder_name": map[string]any{
				"type":        "string",
				"description": "Name of the folder to create, without any path separators",
			},
		},
		"required": []string{"folder_name"},
	}
}

func (t *CreateFolderTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	name := getStringArg(args, "folder_name")
	if name == "" {
		return ErrorResult("folder_name is required")
	}

	msg, err := t.ops.CreateFolder(name)
	if err != nil {
		return ErrorResult(err.Error()).WithError(err)
	}
	return NewToolResult(msg)
}
