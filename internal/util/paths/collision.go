// Package paths provides utilities for download path handling.
package paths

import (
	"fmt"
	"path/filepath"
)

// DownloadTarget pairs a fileset file with its resolved local destination.
type DownloadTarget struct {
	UUID      string // Unique file identifier from the catalog
	Filename  string // Original filename
	URL       string // Download URL
	LocalPath string // Full local destination path
	Size      int64  // File size in bytes, 0 when unknown
}

// ResolveCollisions ensures all LocalPaths in the batch are unique. When
// multiple files share a LocalPath, each gets its UUID appended before the
// extension. Destinations must be unique before the batch reaches the
// downloader, since concurrent workers writing the same path would corrupt
// each other.
//
// Example: two files named "housing.step" become:
//   - housing_ABC123.step
//   - housing_DEF456.step
//
// Returns the modified slice (in place) and the count of files involved in
// collisions.
func ResolveCollisions(targets []DownloadTarget) ([]DownloadTarget, int) {
	if len(targets) == 0 {
		return targets, 0
	}

	pathToIndices := make(map[string][]int)
	for i, t := range targets {
		pathToIndices[t.LocalPath] = append(pathToIndices[t.LocalPath], i)
	}

	collisionCount := 0
	for path, indices := range pathToIndices {
		if len(indices) <= 1 {
			continue
		}

		collisionCount += len(indices)
		for _, idx := range indices {
			t := &targets[idx]
			ext := filepath.Ext(path)
			base := path[:len(path)-len(ext)]
			t.LocalPath = fmt.Sprintf("%s_%s%s", base, t.UUID, ext)
		}
	}

	return targets, collisionCount
}
