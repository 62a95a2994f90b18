// Package editor implements spec.md §4.6: writing the collected sources
// to a scratch file, handing it to an external editor, and parsing the
// edited result back into rename/delete intent.
package editor

import (
	"os"
	"strings"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// CreateScratchFile writes lines (one per entry) to a new file in the OS
// temp directory with a deterministic prefix and an OS-assigned unique
// suffix (spec.md §4.6). The caller must invoke cleanup on every exit
// path, including failure — see spec.md §5's scoped-acquisition note.
func CreateScratchFile(lines []string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "rnr-edit-*.txt")
	if err != nil {
		return "", func() {}, apperrors.WrapKind(apperrors.KindEditor, err, "create scratch file")
	}
	path = f.Name()
	cleanup = func() { os.Remove(path) }

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return path, cleanup, apperrors.WrapKind(apperrors.KindEditor, err, "write scratch file %s", path)
	}
	if err := f.Close(); err != nil {
		return path, cleanup, apperrors.WrapKind(apperrors.KindEditor, err, "close scratch file %s", path)
	}
	return path, cleanup, nil
}

// ReadScratchFile reads back the (possibly edited) lines, dropping the
// trailing newline CreateScratchFile always writes.
func ReadScratchFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapKind(apperrors.KindEditor, err, "read scratch file %s", path)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
