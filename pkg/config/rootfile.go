package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RootOverrideFile is an optional per-directory file adding exclusions
// for that directory only. The file itself is always excluded, so the
// agent can never see or move it.
const RootOverrideFile = ".deeporg.yaml"

// RootOverrides holds per-directory settings read from RootOverrideFile.
type RootOverrides struct {
	ExcludeFiles   []string `yaml:"exclude_files"`
	ExcludeFolders []string `yaml:"exclude_folders"`
}

// LoadRootOverrides reads the override file from the target directory.
// A missing file yields empty overrides; a malformed one is an error the
// caller should surface before any run starts.
func LoadRootOverrides(root string) (*RootOverrides, error) {
	data, err := os.ReadFile(filepath.Join(root, RootOverrideFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &RootOverrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", RootOverrideFile, err)
	}

	var ov RootOverrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parse %s: %w", RootOverrideFile, err)
	}
	return &ov, nil
}
