package main

import (
	"github.com/spf13/cobra"

	"github.com/deeporg/deeporg/pkg/config"
	"github.com/deeporg/deeporg/pkg/logger"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "deeporg",
		Short: "Agent-driven file organizer",
		Long: `deeporg points an LLM agent at a single directory and lets it tidy the
files there into category folders, through a fixed set of audited file
operations. Runs are dry by default: pass --dry-run=false to organize
for real.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configFlag
			if path == "" {
				path = config.DefaultConfigPath()
			}
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			*cfg = *loaded
			if logLevelFlag != "" {
				cfg.LogLevel = logLevelFlag
			}
			logger.SetLevel(cfg.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newPreviewCommand(cfg))
	rootCmd.AddCommand(newOrganizeCommand(cfg))
	rootCmd.AddCommand(newMCPCommand(cfg))

	return rootCmd
}
