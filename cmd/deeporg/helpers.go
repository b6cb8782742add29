package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deeporg/deeporg/pkg/config"
	"github.com/deeporg/deeporg/pkg/organizer"
)

// resolveTargetDir turns the optional positional argument into an absolute
// directory, defaulting to the current working directory.
func resolveTargetDir(args []string) (string, error) {
	if len(args) == 0 {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve current directory: %w", err)
		}
		return dir, nil
	}
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", args[0], err)
	}
	return dir, nil
}

// buildExclusions merges the global exclusion lists, any per-directory
// .deeporg.yaml overrides, and extra names from flags.
func buildExclusions(cfg *config.Config, root string, extraFiles, extraFolders []string) (organizer.ExclusionSet, error) {
	overrides, err := config.LoadRootOverrides(root)
	if err != nil {
		return organizer.ExclusionSet{}, err
	}

	files := append(append([]string{}, cfg.ExcludeFiles...), overrides.ExcludeFiles...)
	files = append(files, extraFiles...)
	folders := append(append([]string{}, cfg.ExcludeFolders...), overrides.ExcludeFolders...)
	folders = append(folders, extraFolders...)

	return organizer.NewExclusionSet(files, folders), nil
}

// firstLine compresses a tool message into a single progress line.
func firstLine(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
