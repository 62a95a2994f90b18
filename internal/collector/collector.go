// Package collector implements SPEC_FULL.md §4.1: it expands a list of
// root arguments into a deduplicated, deterministically ordered list of
// candidate paths, honoring recursion, max-depth, hidden-file inclusion,
// directory inclusion, and config-driven ignore patterns.
package collector

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
	"github.com/xuanyiying/rnr/pkg/fileutil"
)

// Options mirrors the flags spec.md §4.1 lists as the collector's input.
type Options struct {
	Recursive   bool
	MaxDepth    int  // 0 means unlimited when Recursive is set; ignored otherwise.
	IncludeDirs bool
	Hidden      bool
	Ignore      []string // glob patterns, matched against the path relative to its walk root.
	// WalkRateLimit, if non-nil, throttles directory-read syscalls — see
	// SPEC_FULL.md §4.1's large-tree throttling note. nil means unbounded.
	WalkRateLimit *rate.Limiter
}

// StatFS is the minimal directory-reading surface the collector needs,
// letting tests substitute an in-memory tree instead of touching disk.
type StatFS interface {
	// Kind classifies path (file, directory, symlink) without following a
	// trailing symlink.
	Kind(path string) (fileutil.Kind, error)
	// ReadDir returns the immediate child names of a directory, in no
	// particular order; the collector sorts them itself.
	ReadDir(path string) ([]string, error)
}

// Collect expands roots into an ordered, deduplicated list of paths
// honoring opts. ctx cancellation is checked between directories so a
// collection over a very large or network-mounted tree can be interrupted.
func Collect(ctx context.Context, roots []string, opts Options, fs StatFS) ([]string, error) {
	var out []string
	seen := map[string]bool{}

	for _, rawRoot := range roots {
		if !utf8.ValidString(rawRoot) {
			return nil, apperrors.NewKind(apperrors.KindInput, "path-encoding error: %q is not valid UTF-8", rawRoot)
		}
		root := filepath.Clean(rawRoot)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		kind, err := fs.Kind(root)
		if err != nil {
			return nil, apperrors.WrapKind(apperrors.KindCollection, err, "stat %s", root)
		}

		if kind != fileutil.KindDirectory || !opts.Recursive {
			if shouldEmit(root, kind, opts) && !matchesIgnore(root, root, opts.Ignore) {
				addUnique(&out, seen, root)
			}
			continue
		}

		if opts.IncludeDirs && !matchesIgnore(root, root, opts.Ignore) {
			addUnique(&out, seen, root)
		}
		if err := walk(ctx, root, root, 0, opts, fs, &out, seen); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// walk recursively visits dir's children depth-first, emitting them in
// lexicographic order with directories appearing before they're descended
// into (spec.md §4.1: "directories before their children").
func walk(ctx context.Context, walkRoot, dir string, depth int, opts Options, fs StatFS, out *[]string, seen map[string]bool) error {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	if opts.WalkRateLimit != nil {
		if err := opts.WalkRateLimit.Wait(ctx); err != nil {
			return apperrors.WrapKind(apperrors.KindCollection, err, "rate limit wait for %s", dir)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	names, err := fs.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		if !utf8.ValidString(name) {
			return apperrors.NewKind(apperrors.KindInput, "path-encoding error: %q is not valid UTF-8", filepath.Join(dir, name))
		}
		if !opts.Hidden && strings.HasPrefix(name, ".") {
			continue
		}

		child := filepath.Join(dir, name)
		if matchesIgnore(walkRoot, child, opts.Ignore) {
			continue
		}

		kind, err := fs.Kind(child)
		if err != nil {
			return apperrors.WrapKind(apperrors.KindCollection, err, "stat %s", child)
		}

		if shouldEmit(child, kind, opts) {
			addUnique(out, seen, child)
		}

		if kind == fileutil.KindDirectory {
			if err := walk(ctx, walkRoot, child, depth+1, opts, fs, out, seen); err != nil {
				return err
			}
		}
		// Symlinks are never dereferenced for traversal (spec.md §4.1):
		// they're emitted as leaves above and never descended into, even
		// when they point at a directory.
	}
	return nil
}

// shouldEmit reports whether a path of the given kind belongs in the
// output: directories are elided unless IncludeDirs is set, but files and
// symlinks are always candidates.
func shouldEmit(path string, kind fileutil.Kind, opts Options) bool {
	if kind == fileutil.KindDirectory {
		return opts.IncludeDirs
	}
	return true
}

// matchesIgnore reports whether path (relative to root) matches any of the
// configured ignore glob patterns.
func matchesIgnore(root, path string, patterns []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

func addUnique(out *[]string, seen map[string]bool, path string) {
	canon := filepath.Clean(path)
	if seen[canon] {
		return
	}
	seen[canon] = true
	*out = append(*out, canon)
}
