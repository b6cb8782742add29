package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/deeporg/deeporg/pkg/agent"
	"github.com/deeporg/deeporg/pkg/config"
	"github.com/deeporg/deeporg/pkg/mcp"
	"github.com/deeporg/deeporg/pkg/organizer"
	"github.com/deeporg/deeporg/pkg/providers"
	"github.com/deeporg/deeporg/pkg/tools"
)

func newOrganizeCommand(cfg *config.Config) *cobra.Command {
	var (
		modelFlag      string
		dryRunFlag     bool
		maxReadFlag    int
		maxIterFlag    int
		excludeFiles   []string
		excludeFolders []string
	)

	cmd := &cobra.Command{
		Use:   "organize [directory]",
		Short: "Let the model sort a directory's loose files into folders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetDir(args)
			if err != nil {
				return err
			}

			// Flags beat the config file, which beats the defaults.
			dryRun := cfg.DryRun
			if cmd.Flags().Changed("dry-run") {
				dryRun = dryRunFlag
			}
			model := cfg.Model
			if modelFlag != "" {
				model = modelFlag
			}
			maxRead := cfg.MaxReadBytes
			if maxReadFlag > 0 {
				maxRead = maxReadFlag
			}
			maxIter := cfg.MaxIterations
			if maxIterFlag > 0 {
				maxIter = maxIterFlag
			}

			exclusions, err := buildExclusions(cfg, root, excludeFiles, excludeFolders)
			if err != nil {
				return err
			}

			provider, err := providers.FromModel(model)
			if err != nil {
				return err
			}

			var agentOpts []agent.AgentOption
			if cfg.MCP.Enabled && len(cfg.MCP.Servers) > 0 {
				extRegistry := tools.NewToolRegistry()
				manager := mcp.NewManager(extRegistry)
				manager.InitFromConfig(cmd.Context(), cfg.MCP)
				defer manager.Shutdown()

				var extras []tools.Tool
				for _, name := range extRegistry.Names() {
					extras = append(extras, extRegistry.Get(name))
				}
				if len(extras) > 0 {
					agentOpts = append(agentOpts, agent.WithExtraTools(extras...))
				}
			}

			session, err := organizer.NewSession(organizer.SessionConfig{
				RootDirectory: root,
				Exclusions:    exclusions,
				MaxReadBytes:  maxRead,
				MaxIterations: maxIter,
				DryRun:        dryRun,
				Model:         model,
			}, agent.New(provider, agentOpts...))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			mode := "live"
			if dryRun {
				mode = "dry run"
			}
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Organizing '%s' with %s (%s)", root, model, mode)))

			// The run executes on its own goroutine so progress lines
			// render as tool calls land, not after the run finishes.
			events := make(chan organizer.Outcome, 16)
			session.SetProgress(func(o organizer.Outcome) { events <- o })

			var result organizer.RunResult
			g, runCtx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				defer close(events)
				result = session.Organize(runCtx, dryRun)
				return nil
			})
			g.Go(func() error {
				for o := range events {
					fmt.Fprintln(out, renderOutcome(o))
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			printSummary(out, result)
			if !result.Success {
				return fmt.Errorf("run failed (%s)", result.Kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Provider-qualified model, e.g. anthropic:claude-sonnet-4-5")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", true, "Simulate folder creation and moves without touching the disk")
	cmd.Flags().IntVar(&maxReadFlag, "max-read-bytes", 0, "How many bytes of a file the model may read")
	cmd.Flags().IntVar(&maxIterFlag, "max-iterations", 0, "Tool-call ceiling for the run")
	cmd.Flags().StringSliceVar(&excludeFiles, "exclude-file", nil, "File name to hide from the run (repeatable)")
	cmd.Flags().StringSliceVar(&excludeFolders, "exclude-folder", nil, "Folder name to hide from the run (repeatable)")

	return cmd
}

func renderOutcome(o organizer.Outcome) string {
	if o.OK {
		return fmt.Sprintf("  %s %s: %s", okStyle.Render("ok "), o.Tool, firstLine(o.Message, 96))
	}
	return fmt.Sprintf("  %s %s: %s", errStyle.Render("err"), o.Tool, firstLine(o.Message, 96))
}

func printSummary(out io.Writer, result organizer.RunResult) {
	fmt.Fprintln(out)
	dur := result.Duration.Round(time.Millisecond)

	if result.Success {
		head := fmt.Sprintf("Run %s completed in %s (%d tool calls)", shortID(result.RunID), dur, result.Iterations)
		if result.DryRun {
			head += ", dry run, nothing touched"
		}
		fmt.Fprintln(out, okStyle.Render(head))
		if msg := strings.TrimSpace(result.Message); msg != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, msg)
		}
		return
	}

	fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("Run %s failed in %s (%s)", shortID(result.RunID), dur, result.Kind)))
	if result.Err != "" {
		fmt.Fprintln(out, faintStyle.Render("  "+result.Err))
	}
}
