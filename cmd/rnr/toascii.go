package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xuanyiying/rnr/internal/collector"
	"github.com/xuanyiying/rnr/internal/rename"
	"github.com/xuanyiying/rnr/internal/solver"
)

func newToASCIICmd(flags *sharedFlags, ranBusinessLogic *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "to-ascii <PATHS...>",
		Short: "Transliterate file names to ASCII",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			*ranBusinessLogic = true

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			paths, err := collector.Collect(cmd.Context(), args, collectorOptions(flags, cfg), collector.OSFilesystem{})
			if err != nil {
				return err
			}

			rule := rename.NewASCIIRule(rename.DefaultTransliterator)
			ops := make([]solver.Operation, 0, len(paths))
			for _, src := range paths {
				target, err := rule.Apply(src)
				if err != nil {
					return err
				}
				ops = append(ops, solver.Operation{Source: src, Target: target})
			}

			return runBatch(cmd.Context(), ops, flags, cfg, os.Stdout)
		},
	}
	return cmd
}
