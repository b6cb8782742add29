package main

import (
	"github.com/spf13/cobra"

	"github.com/deeporg/deeporg/pkg/config"
	"github.com/deeporg/deeporg/pkg/mcp"
	"github.com/deeporg/deeporg/pkg/organizer"
)

func newMCPCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "mcp [directory]",
		Short: "Serve the organizer tools over MCP on stdin/stdout",
		Long: `mcp exposes list_files, create_folder, move_file and read_file for the
given directory as an MCP stdio server, so external agents can drive
the same confined operations the built-in agent uses. Logs go to
stderr; stdout carries the protocol.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetDir(args)
			if err != nil {
				return err
			}
			exclusions, err := buildExclusions(cfg, root, nil, nil)
			if err != nil {
				return err
			}

			ops, err := organizer.NewFileOps(root, exclusions, cfg.MaxReadBytes, dryRun)
			if err != nil {
				return err
			}

			return mcp.NewServer(ops, version).Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate folder creation and moves without touching the disk")

	return cmd
}
