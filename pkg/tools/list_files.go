package tools

import (
	"context"
	"strings"

	"github.com/deeporg/deeporg/pkg/organizer"
)

type ListFilesTool struct {
	ops *organizer.FileOps
}

func NewListFilesTool(ops *organizer.FileOps) *ListFilesTool {
	return &ListFilesTool{ops: ops}
}

func (t *ListFilesTool) Name() string {
	return "list_files"
}

func (t *ListFilesTool) Description() string {
	return "List the files and folders directly inside the target directory"
}

func (t *ListFilesTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}
}

func (t *ListFilesTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	entries, err := t.ops.List()
	if err != nil {
		return ErrorResult(err.Error()).WithError(err)
	}
	if len(entries) == 0 {
		return NewToolResult("The directory is empty.")
	}
	return NewToolResult(formatEntries(entries))
}

func formatEntries(entries []organizer.ListingEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		if entry.Dir {
			b.WriteString("DIR:  " + entry.Name + "\n")
		} else {
			b.WriteString("FILE: " + entry.Name + "\n")
		}
	}
	return b.String()
}
