package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/xuanyiying/rnr/internal/collector"
	"github.com/xuanyiying/rnr/internal/config"
	"github.com/xuanyiying/rnr/internal/editor"
	"github.com/xuanyiying/rnr/internal/executor"
	"github.com/xuanyiying/rnr/internal/solver"
)

func newEditorCmd(flags *sharedFlags, ranBusinessLogic *bool) *cobra.Command {
	var editorOverride string
	var allowDelete bool
	var confirm bool

	cmd := &cobra.Command{
		Use:   "editor <PATHS...>",
		Short: "Edit the collected path list in a text editor before renaming",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			*ranBusinessLogic = true

			mgr, cfg, err := loadConfigManager(flags)
			if err != nil {
				return err
			}

			sources, err := collector.Collect(cmd.Context(), args, collectorOptions(flags, cfg), collector.OSFilesystem{})
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				fmt.Fprintln(os.Stdout, "nothing to do")
				return nil
			}

			// An editor session can stay open indefinitely; watch the config
			// file so an edit made in another terminal while it's open (a
			// changed editor preference or dumpDir) takes effect for this
			// session's remaining steps instead of requiring a restart
			// (SPEC_FULL.md §4.7).
			var cfgMu sync.Mutex
			live := cfg
			mgr.Watch(func(updated *config.Config) {
				cfgMu.Lock()
				live = updated
				cfgMu.Unlock()
			}, func(err error) {
				fmt.Fprintln(os.Stderr, "rnr: config reload failed:", err)
			})
			currentConfig := func() *config.Config {
				cfgMu.Lock()
				defer cfgMu.Unlock()
				return live
			}

			var initial []string
			if allowDelete {
				initial = editor.IndexedLines(sources)
			} else {
				initial = editor.PlainLines(sources)
			}

			path, cleanup, err := editor.CreateScratchFile(initial)
			defer cleanup()
			if err != nil {
				return err
			}

			override := editorOverride
			if override == "" {
				override = currentConfig().Editor
			}
			editorCmd := editor.SelectEditor(override)
			if err := editor.Run(cmd.Context(), editorCmd, path); err != nil {
				return err
			}

			edited, err := editor.ReadScratchFile(path)
			if err != nil {
				return err
			}

			var ops []solver.Operation
			var deletes []string
			if allowDelete {
				ops, deletes, err = editor.ParseIndexed(sources, edited)
			} else {
				ops, err = editor.ParsePlain(sources, edited)
			}
			if err != nil {
				return err
			}

			if confirm {
				ok, err := editor.Confirm(ops, deletes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(os.Stdout, "aborted")
					return nil
				}
			}

			if err := runBatch(cmd.Context(), ops, flags, currentConfig(), os.Stdout); err != nil {
				return err
			}
			return runDeletes(cmd.Context(), deletes, flags)
		},
	}

	cmd.Flags().StringVar(&editorOverride, "editor", "", "editor command to spawn (overrides $VISUAL/$EDITOR)")
	cmd.Flags().BoolVar(&allowDelete, "delete", false, "use the indexed format, allowing deletions")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "show an interactive confirmation before executing")
	return cmd
}

// runDeletes removes every path the editor session marked for deletion.
// These are independent of the rename Plan — each is a leaf the user
// explicitly dropped from the scratch file — so they run through the
// executor as their own Delete-only Plan, after the renames, without a
// dump record (a dump only records renames, per spec.md §6).
func runDeletes(ctx context.Context, paths []string, flags *sharedFlags) error {
	if len(paths) == 0 {
		return nil
	}
	steps := make([]solver.Step, len(paths))
	for i, p := range paths {
		steps[i] = solver.Step{Kind: solver.StepDelete, Source: p}
	}
	result := executor.Execute(ctx, &solver.Plan{Steps: steps}, executor.Options{DryRun: flags.dryRun}, newSink(flags))
	return result.Err
}
