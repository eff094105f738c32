// Package diskspace checks available disk space before a download batch is
// started, so a fileset sync fails fast instead of filling the library
// volume halfway through.
package diskspace

import "fmt"

// InsufficientSpaceError indicates that there is not enough disk space
// available for a planned batch.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	requiredMB := float64(e.RequiredBytes) / (1024 * 1024)
	availableMB := float64(e.AvailableBytes) / (1024 * 1024)
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, requiredMB, availableMB)
}

// IsInsufficientSpaceError checks if an error is an InsufficientSpaceError.
func IsInsufficientSpaceError(err error) bool {
	_, ok := err.(*InsufficientSpaceError)
	return ok
}

// CheckAvailableSpace checks whether the volume holding targetPath has room
// for requiredBytes (scaled by safetyMargin, e.g. 1.1 for a 10% buffer).
// Returns an InsufficientSpaceError when it does not.
//
// When free space cannot be determined (network mounts, virtual
// filesystems) the check is skipped and nil is returned; the operation then
// proceeds and fails naturally if space runs out.
func CheckAvailableSpace(targetPath string, requiredBytes int64, safetyMargin float64) error {
	availableBytes := GetAvailableSpace(targetPath)
	if availableBytes == 0 {
		return nil
	}

	requiredWithMargin := int64(float64(requiredBytes) * safetyMargin)
	if availableBytes < requiredWithMargin {
		return &InsufficientSpaceError{
			Path:           targetPath,
			RequiredBytes:  requiredWithMargin,
			AvailableBytes: availableBytes,
		}
	}
	return nil
}
