package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuanyiying/rnr/internal/solver"
	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// PlainLines renders the initial scratch-file content for the plain
// format: one line per source, starting out identical to it (spec.md
// §4.6). The user edits a line in place to rewrite that source's target.
func PlainLines(sources []string) []string {
	lines := make([]string, len(sources))
	copy(lines, sources)
	return lines
}

// ParsePlain pairs the original sources with the edited lines
// positionally. Adding or removing a line is a line-count mismatch, since
// the plain format has no deletion support.
func ParsePlain(sources, edited []string) ([]solver.Operation, error) {
	if len(edited) != len(sources) {
		return nil, apperrors.NewKind(apperrors.KindEditor, "line-count mismatch: %d source(s), %d line(s) in edited file", len(sources), len(edited))
	}
	ops := make([]solver.Operation, len(sources))
	for i, src := range sources {
		ops[i] = solver.Operation{Source: src, Target: edited[i]}
	}
	return ops, nil
}

// IndexedLines renders "INDEX\tPATH" lines, 1-based to match spec.md
// §4.6's indexed format.
func IndexedLines(sources []string) []string {
	lines := make([]string, len(sources))
	for i, src := range sources {
		lines[i] = fmt.Sprintf("%d\t%s", i+1, src)
	}
	return lines
}

// ParseIndexed parses edited "INDEX\tPATH" lines against the original
// source list. A source whose index is absent from edited is marked for
// deletion; a changed path is a rename; an unchanged path is dropped
// (identity elision happens again at the solver, but there's no reason to
// carry it through as an operation). Unknown or duplicated indices, and
// lines missing the index column entirely, are errors.
func ParseIndexed(sources, edited []string) (ops []solver.Operation, deletes []string, err error) {
	seen := make(map[int]bool, len(edited))
	for _, line := range edited {
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			return nil, nil, apperrors.NewKind(apperrors.KindEditor, "malformed indexed line (missing index column): %q", line)
		}
		idxStr, path := line[:tab], line[tab+1:]
		idx, convErr := strconv.Atoi(idxStr)
		if convErr != nil {
			return nil, nil, apperrors.NewKind(apperrors.KindEditor, "malformed index %q in line %q", idxStr, line)
		}
		if idx < 1 || idx > len(sources) {
			return nil, nil, apperrors.NewKind(apperrors.KindEditor, "unknown index %d (have %d source(s))", idx, len(sources))
		}
		if seen[idx] {
			return nil, nil, apperrors.NewKind(apperrors.KindEditor, "duplicate index %d", idx)
		}
		seen[idx] = true

		src := sources[idx-1]
		if path != src {
			ops = append(ops, solver.Operation{Source: src, Target: path})
		}
	}
	for i, src := range sources {
		if !seen[i+1] {
			deletes = append(deletes, src)
		}
	}
	return ops, deletes, nil
}
