package solver

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// CaseCache memoizes, per containing directory, whether that directory's
// filesystem resolves names case-insensitively. Design Notes §9 suggests
// exactly this: "a small cache keyed by containing directory" rather than
// probing the filesystem for every operation's target. The cache is scoped
// to a single Solve call — NewCaseCache is created fresh per batch so a
// stale answer never leaks across runs (filesystems can, in principle, be
// remounted between CLI invocations).
type CaseCache struct {
	c *gocache.Cache
}

// NewCaseCache builds an empty cache. TTL is generous (a single Solve call
// never runs long enough for it to matter) and exists only so the
// underlying go-cache janitor can reclaim memory if a CaseCache is reused.
func NewCaseCache() *CaseCache {
	return &CaseCache{c: gocache.New(5*time.Minute, 10*time.Minute)}
}

// Insensitive reports whether dir's filesystem is case-insensitive, probing
// the filesystem once per directory and caching the result.
func (cc *CaseCache) Insensitive(dir string) (bool, error) {
	if v, ok := cc.c.Get(dir); ok {
		return v.(bool), nil
	}
	insensitive, err := probeCaseInsensitive(dir)
	if err != nil {
		return false, err
	}
	cc.c.Set(dir, insensitive, gocache.DefaultExpiration)
	return insensitive, nil
}

// probeCaseInsensitive writes a uniquely-named probe file into dir and
// checks whether an upper-cased lookup of the same name resolves to it. The
// probe file is removed unconditionally before returning.
func probeCaseInsensitive(dir string) (bool, error) {
	name := "." + uuid.NewString() + ".rnr-case-probe"
	lower := filepath.Join(dir, name)

	if err := os.WriteFile(lower, nil, 0o600); err != nil {
		return false, apperrors.WrapKind(apperrors.KindRenamePlanning, err, "probe case sensitivity of %s", dir)
	}
	defer os.Remove(lower)

	upper := filepath.Join(dir, upperASCII(name))
	_, err := os.Lstat(upper)
	return err == nil, nil
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
