package solver

import (
	"os"

	"github.com/xuanyiying/rnr/pkg/fileutil"
)

// FS is the filesystem surface the solver needs. Solve takes an FS rather
// than calling os directly so solver_test.go can exercise the graph and
// conflict logic against a fake tree without touching disk.
type FS interface {
	Exists(path string) bool
	SameFile(a, b string) bool
	IsSymlink(path string) bool
	IsDir(path string) bool
	CaseInsensitive(dir string) (bool, error)
}

// OSFilesystem is the production FS, backed by a per-batch CaseCache.
type OSFilesystem struct {
	cache *CaseCache
}

// NewOSFilesystem builds an OSFilesystem with a fresh case-sensitivity
// cache, so each Solve call starts with no stale answers.
func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{cache: NewCaseCache()}
}

func (fs *OSFilesystem) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (fs *OSFilesystem) SameFile(a, b string) bool {
	return fileutil.SameFile(a, b)
}

func (fs *OSFilesystem) IsSymlink(path string) bool {
	return fileutil.IsSymlink(path)
}

func (fs *OSFilesystem) IsDir(path string) bool {
	kind, err := fileutil.DetectKind(path)
	return err == nil && kind == fileutil.KindDirectory
}

func (fs *OSFilesystem) CaseInsensitive(dir string) (bool, error) {
	return fs.cache.Insensitive(dir)
}
