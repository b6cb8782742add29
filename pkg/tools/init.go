package tools

import (
	"github.com/deeporg/deeporg/pkg/organizer"
)

// Setup registers the fixed tool table for one run. The table is closed:
// every capability the model can reach goes through the same operations
// value and therefore the same path policy.
func Setup(registry *ToolRegistry, ops *organizer.FileOps) {
	registry.Register(NewListFilesTool(ops))
	registry.Register(NewCreateFolderTool(ops))
	registry.Register(NewMoveFileTool(ops))
	registry.Register(NewReadFileTool(ops))
}
