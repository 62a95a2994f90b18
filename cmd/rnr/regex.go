package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xuanyiying/rnr/internal/collector"
	"github.com/xuanyiying/rnr/internal/rename"
	"github.com/xuanyiying/rnr/internal/solver"
	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

func newRegexCmd(flags *sharedFlags, ranBusinessLogic *bool) *cobra.Command {
	var limit int
	var transformName string

	cmd := &cobra.Command{
		Use:   "regex <EXPR> <REPL> <PATHS...>",
		Short: "Rename by regex substitution",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			*ranBusinessLogic = true

			transform, err := parseTransform(transformName)
			if err != nil {
				return err
			}
			rule, err := rename.NewRegexRule(args[0], args[1], limit, transform)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			paths, err := collector.Collect(cmd.Context(), args[2:], collectorOptions(flags, cfg), collector.OSFilesystem{})
			if err != nil {
				return err
			}

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

	cmd.Flags().IntVarP(&limit, "replace-limit", "l", 1, "number of matches to replace (0 = all)")
	cmd.Flags().StringVarP(&transformName, "transform", "t", "", "post-substitution transform: upper, lower, ascii")
	return cmd
}

func parseTransform(name string) (rename.Transform, error) {
	switch name {
	case "":
		return rename.TransformNone, nil
	case "upper":
		return rename.TransformUpper, nil
	case "lower":
		return rename.TransformLower, nil
	case "ascii":
		return rename.TransformASCII, nil
	default:
		return "", apperrors.NewKind(apperrors.KindInput, "unknown transform %q (want upper, lower, or ascii)", name)
	}
}
