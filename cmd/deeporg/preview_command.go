package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deeporg/deeporg/pkg/config"
	"github.com/deeporg/deeporg/pkg/organizer"
)

func newPreviewCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [directory]",
		Short: "List what an organizing run would see",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetDir(args)
			if err != nil {
				return err
			}
			exclusions, err := buildExclusions(cfg, root, nil, nil)
			if err != nil {
				return err
			}

			session, err := organizer.NewSession(organizer.SessionConfig{
				RootDirectory: root,
				Exclusions:    exclusions,
				MaxReadBytes:  cfg.MaxReadBytes,
				MaxIterations: cfg.MaxIterations,
				DryRun:        true,
			}, nil)
			if err != nil {
				return err
			}

			entries, err := session.Preview()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Analyzing %d items in '%s'.", len(entries), root)))
			for _, entry := range entries {
				if entry.Dir {
					fmt.Fprintf(out, "  %s %s\n", dirStyle.Render("DIR: "), entry.Name)
				} else {
					fmt.Fprintf(out, "  %s %s\n", "FILE:", entry.Name)
				}
			}
			return nil
		},
	}
}
