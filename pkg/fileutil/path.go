package fileutil

import (
	"os"
	"path/filepath"
	"strconv"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// Kind identifies what a Path addresses on disk.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// DetectKind classifies a path without following a trailing symlink.
func DetectKind(path string) (Kind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return KindFile, apperrors.WrapError(err, "stat %s", path)
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return KindSymlink, nil
	case info.IsDir():
		return KindDirectory, nil
	default:
		return KindFile, nil
	}
}

// SameFile reports whether two paths resolve to the same filesystem object,
// using Lstat so that a symlink is compared as itself, never as its target.
func SameFile(a, b string) bool {
	infoA, err := os.Lstat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Lstat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// NextBackupPath disambiguates a backup destination so an existing backup
// from a prior batch is never overwritten: base+".bk", then ".bk.1", ".bk.2", ...
func NextBackupPath(base string) string {
	candidate := base + ".bk"
	if !FileExists(candidate) && !DirExists(candidate) && !IsSymlink(candidate) {
		return candidate
	}
	for i := 1; ; i++ {
		candidate = base + ".bk." + strconv.Itoa(i)
		if !FileExists(candidate) && !DirExists(candidate) && !IsSymlink(candidate) {
			return candidate
		}
	}
}

// IsSymlink reports whether path exists and is itself a symlink.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// CopySymlink recreates a symlink at dst pointing to the same target as src,
// without ever following src itself.
func CopySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return apperrors.WrapError(err, "read link %s", src)
	}
	if err := os.Symlink(target, dst); err != nil {
		return apperrors.WrapError(err, "create link %s", dst)
	}
	return nil
}

// BackupPath copies source (file, directory, or symlink) to a disambiguated
// backup path alongside it and returns the path used.
func BackupPath(source string) (string, error) {
	kind, err := DetectKind(source)
	if err != nil {
		return "", err
	}

	dest := NextBackupPath(source)

	switch kind {
	case KindSymlink:
		if err := CopySymlink(source, dest); err != nil {
			return "", err
		}
	case KindDirectory:
		if err := copyDir(source, dest); err != nil {
			return "", err
		}
	default:
		if err := CopyFile(source, dest); err != nil {
			return "", apperrors.WrapError(err, "backup %s", source)
		}
	}
	return dest, nil
}

func copyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return apperrors.WrapError(err, "stat %s", src)
	}
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return apperrors.WrapError(err, "mkdir %s", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return apperrors.WrapError(err, "read dir %s", src)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		kind, err := DetectKind(srcPath)
		if err != nil {
			return err
		}
		switch kind {
		case KindSymlink:
			if err := CopySymlink(srcPath, dstPath); err != nil {
				return err
			}
		case KindDirectory:
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

