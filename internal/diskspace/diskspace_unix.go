//go:build !windows

package diskspace

import (
	"path/filepath"
	"syscall"
)

// GetAvailableSpace returns the available space in bytes for the filesystem
// containing the given path. Returns 0 if unable to determine.
func GetAvailableSpace(path string) int64 {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(filepath.Dir(path), &stat); err != nil {
		return 0
	}

	// Bavail = blocks available to non-root users
	return int64(stat.Bavail) * int64(stat.Bsize)
}
