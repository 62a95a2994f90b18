package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xuanyiying/rnr/internal/dump"
	"github.com/xuanyiying/rnr/internal/solver"
)

func newFromFileCmd(flags *sharedFlags, ranBusinessLogic *bool) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "from-file <DUMP>",
		Short: "Replay (or undo) a previously recorded dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			*ranBusinessLogic = true

			rec, err := dump.Read(args[0])
			if err != nil {
				return err
			}

			var recOps []dump.Operation
			if undo {
				recOps = dump.Invert(rec)
			} else {
				recOps = dump.Forward(rec)
			}

			ops := make([]solver.Operation, len(recOps))
			for i, op := range recOps {
				ops[i] = solver.Operation{Source: op.Source, Target: op.Target}
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			return runBatch(cmd.Context(), ops, flags, cfg, os.Stdout)
		},
	}

	cmd.Flags().BoolVarP(&undo, "undo", "u", false, "swap each operation's direction before replaying")
	return cmd
}
