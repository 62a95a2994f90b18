package editor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// SelectEditor resolves which editor command to spawn, per spec.md
// §4.6's precedence: an explicit flag value, then VISUAL, then EDITOR,
// then vi.
func SelectEditor(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

// Run spawns editorCmd synchronously with scratchPath appended as its
// final argument, wired to the process's own Stdin/Stdout/Stderr so the
// editor behaves as if invoked directly from the shell. ctx cancellation
// (spec.md §5, interrupt) aborts the subprocess. A non-zero exit code is
// propagated as a fatal error.
func Run(ctx context.Context, editorCmd, scratchPath string) error {
	fields := strings.Fields(editorCmd)
	if len(fields) == 0 {
		return apperrors.NewKind(apperrors.KindEditor, "empty editor command")
	}
	args := append(append([]string{}, fields[1:]...), scratchPath)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return apperrors.NewKind(apperrors.KindEditor, "editor %q exited with status %d", editorCmd, exitErr.ExitCode())
		}
		return apperrors.WrapKind(apperrors.KindEditor, err, "run editor %q", editorCmd)
	}
	return nil
}
