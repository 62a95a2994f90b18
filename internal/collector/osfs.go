package collector

import (
	"os"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
	"github.com/xuanyiying/rnr/pkg/fileutil"
)

// OSFilesystem is the production StatFS, backed directly by os.
type OSFilesystem struct{}

func (OSFilesystem) Kind(path string) (fileutil.Kind, error) {
	return fileutil.DetectKind(path)
}

func (OSFilesystem) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, apperrors.WrapKind(apperrors.KindCollection, err, "read dir %s", path)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
