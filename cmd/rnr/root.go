package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/xuanyiying/rnr/internal/collector"
	"github.com/xuanyiying/rnr/internal/config"
	"github.com/xuanyiying/rnr/internal/dump"
	"github.com/xuanyiying/rnr/internal/executor"
	"github.com/xuanyiying/rnr/internal/report"
	"github.com/xuanyiying/rnr/internal/solver"
	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// sharedFlags holds the top-level flags spec.md §6 lists as shared across
// every subcommand.
type sharedFlags struct {
	force       bool
	dryRun      bool
	backup      bool
	hidden      bool
	includeDirs bool
	recursive   bool
	silent      bool
	maxDepth    int
	color       string
	dump        bool
	noDump      bool
	walkRate    float64
	configPath  string
}

func newRootCmd(ranBusinessLogic *bool) *cobra.Command {
	flags := &sharedFlags{}

	root := &cobra.Command{
		Use:           "rnr",
		Short:         "Batch rename files, directories, and symlinks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.force, "force", "f", false, "force dump write even in dry-run")
	pf.BoolVarP(&flags.dryRun, "dry-run", "n", false, "preview without modifying the filesystem")
	pf.BoolVarP(&flags.backup, "backup", "b", false, "back up each source before renaming it")
	pf.BoolVarP(&flags.hidden, "hidden", "x", false, "include dotfiles when collecting")
	pf.BoolVarP(&flags.includeDirs, "include-dirs", "D", false, "include directories as rename candidates")
	pf.BoolVarP(&flags.recursive, "recursive", "r", false, "recurse into subdirectories")
	pf.BoolVarP(&flags.silent, "silent", "s", false, "suppress per-step output")
	pf.IntVarP(&flags.maxDepth, "max-depth", "d", 0, "limit recursion depth (0 = unlimited)")
	pf.StringVar(&flags.color, "color", "auto", "colorize output: always, auto, never")
	pf.BoolVar(&flags.dump, "dump", false, "force-enable writing a dump record")
	pf.BoolVar(&flags.noDump, "no-dump", false, "disable writing a dump record")
	pf.Float64Var(&flags.walkRate, "walk-rate", 0, "throttle directory reads to n/sec (0 = unbounded)")
	pf.StringVar(&flags.configPath, "config", "", "path to the config file")

	root.AddCommand(
		newRegexCmd(flags, ranBusinessLogic),
		newFromFileCmd(flags, ranBusinessLogic),
		newToASCIICmd(flags, ranBusinessLogic),
		newEditorCmd(flags, ranBusinessLogic),
	)
	return root
}

// loadConfig merges the persisted config's defaults under explicit CLI
// flags — flags always win (SPEC_FULL.md §4.7).
func loadConfig(flags *sharedFlags) (*config.Config, error) {
	_, cfg, err := loadConfigManager(flags)
	return cfg, err
}

// loadConfigManager is loadConfig plus the Manager itself, for the editor
// subcommand's long-lived session, which also needs to Watch the config
// file for edits made while the external editor is open (SPEC_FULL.md
// §4.7).
func loadConfigManager(flags *sharedFlags) (*config.Manager, *config.Config, error) {
	mgr := config.NewManager(flags.configPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, nil, err
	}
	return mgr, cfg, nil
}

func collectorOptions(flags *sharedFlags, cfg *config.Config) collector.Options {
	opts := collector.Options{
		Recursive:   flags.recursive || cfg.Defaults.Recursive,
		MaxDepth:    flags.maxDepth,
		IncludeDirs: flags.includeDirs || cfg.Defaults.IncludeDirs,
		Hidden:      flags.hidden || cfg.Defaults.Hidden,
		Ignore:      cfg.Ignore,
	}
	if flags.walkRate > 0 {
		opts.WalkRateLimit = rate.NewLimiter(rate.Limit(flags.walkRate), 1)
	} else if cfg.WalkRatePerSecond > 0 {
		opts.WalkRateLimit = rate.NewLimiter(rate.Limit(cfg.WalkRatePerSecond), 1)
	}
	return opts
}

func solverMode(flags *sharedFlags, cfg *config.Config) solver.Mode {
	return solver.Mode{
		Backup:      flags.backup || cfg.Defaults.Backup,
		IncludeDirs: flags.includeDirs || cfg.Defaults.IncludeDirs,
		Hidden:      flags.hidden || cfg.Defaults.Hidden,
		DryRun:      flags.dryRun,
		Dump:        wantsDump(flags),
	}
}

// wantsDump resolves --dump/--no-dump/--force against spec.md §4.5's
// default: a dump is written after a successful live run, but omitted in
// dry-run unless --force asks for one anyway.
func wantsDump(flags *sharedFlags) bool {
	if flags.noDump {
		return false
	}
	if flags.dump {
		return true
	}
	if flags.dryRun {
		return flags.force
	}
	return true
}

func newSink(flags *sharedFlags) report.Sink {
	if flags.silent {
		return report.NopSink{}
	}
	color := report.ResolveColor(os.Stdout, parseColorMode(flags.color))
	return report.NewConsoleSink(os.Stdout, color)
}

func parseColorMode(s string) report.ColorMode {
	switch s {
	case "always":
		return report.ColorAlways
	case "never":
		return report.ColorNever
	default:
		return report.ColorAuto
	}
}

// runBatch takes ops already built by a subcommand (from regex/ascii
// renaming, a dump file, or the editor), solves them, and executes the
// resulting Plan, printing conflicts and the executed-step summary along
// the way. It is the one place every subcommand's pipeline converges.
func runBatch(ctx context.Context, ops []solver.Operation, flags *sharedFlags, cfg *config.Config, out io.Writer) error {
	mode := solverMode(flags, cfg)
	batch := solver.NewBatch(ops, mode)
	if len(batch.Operations) == 0 {
		fmt.Fprintln(out, "nothing to do")
		return nil
	}

	plan, conflicts := solver.Solve(batch, solver.NewOSFilesystem())
	if len(conflicts) > 0 {
		for _, c := range conflicts {
			fmt.Fprintln(os.Stderr, c.Error())
		}
		return apperrors.NewKind(apperrors.KindRenamePlanning, "%d conflict(s) found, aborting", len(conflicts))
	}

	dumpDir := cfg.DumpDir
	if dumpDir == "" {
		dumpDir = "."
	}

	result := executor.Execute(ctx, plan, executor.Options{
		DryRun:      flags.dryRun,
		Concurrency: 0,
		Dump: executor.DumpOptions{
			Enabled: mode.Dump,
			Dir:     dumpDir,
			Mode: dump.Mode{
				Backup:      mode.Backup,
				IncludeDirs: mode.IncludeDirs,
				Hidden:      mode.Hidden,
				Force:       flags.force,
			},
		},
	}, newSink(flags))

	if result.DumpPath != "" {
		fmt.Fprintln(out, "dump:", result.DumpPath)
	}
	if result.Err != nil {
		return result.Err
	}
	return nil
}

