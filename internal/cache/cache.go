// Package cache is the directory-tree representation of catalog entities.
//
// Each directory standing for a catalog entity contains exactly one marker
// file named after the entity kind ("component" or "modification") holding
// the JSON snapshot of the last successful fetch. The tree is the sole
// persistent store: the cache replaces snapshots wholesale, it never merges
// them, and stale directories for entities no longer favorited remotely are
// left in place.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/partbench/partsync/internal/models"
	"github.com/partbench/partsync/internal/util/sanitize"
)

// Kind names a marker file and the entity type it holds.
type Kind string

const (
	// KindComponent marks a directory representing a Component.
	KindComponent Kind = "component"
	// KindModification marks a directory representing a Modification.
	KindModification Kind = "modification"
)

var (
	// ErrNotFound indicates the directory has no marker of the requested kind.
	ErrNotFound = errors.New("marker not found")
	// ErrCorrupt indicates the marker file exists but cannot be parsed.
	ErrCorrupt = errors.New("marker corrupt")
)

// ComponentDir returns the local directory for a component under root,
// following the "{name} (from {owner})" naming convention.
func ComponentDir(root string, c models.Component) string {
	return filepath.Join(root, sanitize.FileName(c.FolderName()))
}

// ModificationDir returns the local directory for a modification nested
// under its component directory.
func ModificationDir(componentDir string, m models.Modification) string {
	return filepath.Join(componentDir, sanitize.FileName(m.Name))
}

// writeMarker ensures dir exists and atomically writes the serialized
// snapshot as the marker file for kind. If a non-directory file occupies
// the directory path it is removed first: the last fetch wins over stray
// files. An existing marker is overwritten.
func writeMarker(dir string, kind Kind, entity interface{}) error {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("failed to remove non-directory at %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create entity directory: %w", err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s snapshot: %w", kind, err)
	}
	data = append(data, '\n')

	// Temp file in the same directory so the rename is atomic; a crash
	// mid-write never leaves a half-written marker behind the real name.
	tmp, err := os.CreateTemp(dir, "."+string(kind)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp marker: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write marker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close marker: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, string(kind))); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit marker: %w", err)
	}
	return nil
}

// readMarker decodes the marker file of the given kind at dir into out.
func readMarker(dir string, kind Kind, out interface{}) error {
	data, err := os.ReadFile(filepath.Join(dir, string(kind)))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: no %s marker in %s", ErrNotFound, kind, dir)
		}
		return fmt.Errorf("failed to read %s marker: %w", kind, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s marker in %s: %v", ErrCorrupt, kind, dir, err)
	}
	return nil
}

// WriteComponent persists a component snapshot into dir.
func WriteComponent(dir string, c models.Component) error {
	return writeMarker(dir, KindComponent, c)
}

// ReadComponent returns the component snapshot stored in dir.
func ReadComponent(dir string) (models.Component, error) {
	var c models.Component
	if err := readMarker(dir, KindComponent, &c); err != nil {
		return models.Component{}, err
	}
	return c, nil
}

// WriteModification persists a modification snapshot into dir.
func WriteModification(dir string, m models.Modification) error {
	return writeMarker(dir, KindModification, m)
}

// ReadModification returns the modification snapshot stored in dir.
func ReadModification(dir string) (models.Modification, error) {
	var m models.Modification
	if err := readMarker(dir, KindModification, &m); err != nil {
		return models.Modification{}, err
	}
	return m, nil
}

// DetectKind reports which marker kind is present at dir. Modification
// markers are checked first since modification directories nest inside
// component directories.
func DetectKind(dir string) (Kind, error) {
	for _, kind := range []Kind{KindModification, KindComponent} {
		if _, err := os.Stat(filepath.Join(dir, string(kind))); err == nil {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: no marker in %s", ErrNotFound, dir)
}
