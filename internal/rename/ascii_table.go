package rename

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultTransliterator is a best-effort UTF-8→ASCII table: it decomposes
// accented letters (NFKD) and drops the combining marks, falling back to "_"
// for anything that still contains a rune above 0x7F. The CLI's to-ascii
// subcommand passes this to NewASCIIRule; callers that want a different
// table (e.g. a hand-tuned transliteration list) can pass their own
// Transliterator instead. NewASCIIRule does not substitute this table for a
// nil Transliterator.
func DefaultTransliterator(r rune) (string, bool) {
	decomposed, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		string(r),
	)
	if err != nil || decomposed == "" {
		return "_", true
	}
	for _, out := range decomposed {
		if out > 0x7F {
			return "_", true
		}
	}
	return decomposed, true
}
