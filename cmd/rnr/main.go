// Command rnr is a batch file/directory/symlink renamer (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the outcome to spec.md §6's exit
// codes: 0 success, 1 validation/execution failure, 2 argument parsing
// failure. Every error a subcommand's RunE returns is wrapped with a
// taxonomy kind (pkg/errors.Kind, spec.md §7), so a wrapped kind is present
// exactly when RunE actually ran; a bare cobra-level parsing error (unknown
// flag, wrong arg count), which never reaches RunE, carries none.
// ranBusinessLogic is set at the top of every RunE as a second, independent
// signal of the same fact, so a RunE path that somehow returns an
// unwrapped error still maps to exit 1, not 2.
//
// The context is cancelled on SIGINT/SIGTERM (spec.md §5: "a signal aborts
// the current step; no cleanup of completed steps is attempted").
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ranBusinessLogic := false
	cmd := newRootCmd(&ranBusinessLogic)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "rnr:", err)
		_, hasKind := apperrors.KindOf(err)
		if !hasKind && !ranBusinessLogic {
			return 2
		}
		return 1
	}
	return 0
}
