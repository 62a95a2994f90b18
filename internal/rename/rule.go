// Package rename implements the two pure renamers spec'd for rnr: regex
// substitution with an optional post-transform, and ASCII transliteration.
// Both are pure functions from a source path to a target path; neither
// touches the filesystem.
package rename

import (
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// Transform is a post-substitution text transform applied to each replaced
// span of a regex rename, never to the literal parts of the file name.
type Transform string

const (
	TransformNone  Transform = ""
	TransformUpper Transform = "upper"
	TransformLower Transform = "lower"
	TransformASCII Transform = "ascii"
)

// Transliterator maps a single rune to its ASCII approximation. The second
// return value is false when the rune has no transliteration and should be
// dropped. DefaultTransliterator is the table this package provides; tests
// inject a small stand-in table.
type Transliterator func(r rune) (string, bool)

// Rule is the sum type `Regex{...} | Ascii` from Design Notes §9, collapsed
// into a single struct so callers don't need a type switch to invoke it.
type Rule struct {
	regex         *regexp.Regexp
	replacement   string
	limit         int
	transform     Transform
	transliterate Transliterator
}

// NewRegexRule builds a regex-substitution rule. limit == 0 means replace
// every non-overlapping match; limit == 1 (the CLI default) replaces only
// the first.
func NewRegexRule(pattern, replacement string, limit int, transform Transform) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, apperrors.WrapKind(apperrors.KindInput, err, "invalid regex %q", pattern)
	}
	return Rule{regex: re, replacement: replacement, limit: limit, transform: transform}, nil
}

// NewASCIIRule builds a transliteration rule driven by t.
func NewASCIIRule(t Transliterator) Rule {
	return Rule{transliterate: t}
}

// IsASCII reports whether r is the transliteration variant.
func (r Rule) IsASCII() bool { return r.transliterate != nil }

// Apply computes the target path for source. Only the file-name component is
// rewritten; parent directory components pass through untouched. A returned
// target equal to source is an identity operation — callers building a Batch
// are expected to elide it (spec.md §3, Operation invariants).
func (r Rule) Apply(source string) (string, error) {
	dir := filepath.Dir(source)
	name := filepath.Base(source)

	var newName string
	var err error
	if r.IsASCII() {
		newName = r.applyASCII(name)
	} else {
		newName, err = r.applyRegex(name)
		if err != nil {
			return "", err
		}
	}

	if dir == "." && !strings.Contains(source, "/") {
		return newName, nil
	}
	return filepath.Join(dir, newName), nil
}

func (r Rule) applyRegex(name string) (string, error) {
	limit := r.limit
	matches := r.regex.FindAllStringSubmatchIndex(name, -1)
	if len(matches) == 0 {
		return name, nil
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	var out strings.Builder
	prevEnd := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		out.WriteString(name[prevEnd:start])

		expanded := r.regex.ExpandString(nil, r.replacement, name, m)
		out.WriteString(applyTransform(string(expanded), r.transform))

		prevEnd = end
	}
	out.WriteString(name[prevEnd:])
	return out.String(), nil
}

func (r Rule) applyASCII(name string) string {
	var out strings.Builder
	for _, ch := range name {
		frag, ok := r.transliterate(ch)
		if !ok {
			continue
		}
		out.WriteString(strings.ReplaceAll(frag, "/", "_"))
	}
	return out.String()
}

func applyTransform(s string, t Transform) string {
	switch t {
	case TransformUpper:
		return strings.ToUpper(s)
	case TransformLower:
		return strings.ToLower(s)
	case TransformASCII:
		return asciiFold(s)
	default:
		return s
	}
}

// asciiFold strips every rune outside the ASCII range (0x80 and up), used for the
// `-t ascii` post-transform (distinct from the dedicated ascii subcommand,
// which transliterates the whole name rather than just the replaced span).
func asciiFold(s string) string {
	var out strings.Builder
	for _, r := range s {
		if r < 0x80 {
			out.WriteRune(r)
		}
	}
	return out.String()
}
