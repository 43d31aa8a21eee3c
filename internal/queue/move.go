package queue

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"presswork/internal/fileutil"
)

// crossDevice reports whether a rename failed because source and destination
// live on different filesystems.
func crossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}

// claimMove attempts the atomic claim rename. It reports acquired=false both
// for contention (source vanished, destination taken) and for transient
// failures; claiming never errors. When src and dst are on different
// filesystems it falls back to copy-then-delete, which reopens a narrow
// duplicate-claim window and is the documented weaker guarantee of split
// intake/in-flight mounts.
func claimMove(src, dst string) bool {
	err := os.Rename(src, dst)
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrExist) {
		return false
	}
	if crossDevice(err) {
		if copyErr := fileutil.CopyFile(src, dst); copyErr != nil {
			return false
		}
		_ = os.Remove(src)
		return true
	}
	return false
}

// moveOrCopy renames src to dst, falling back to copy-then-delete across
// filesystem boundaries.
func moveOrCopy(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !crossDevice(err) {
		return err
	}
	if copyErr := fileutil.CopyFile(src, dst); copyErr != nil {
		return copyErr
	}
	return os.Remove(src)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
