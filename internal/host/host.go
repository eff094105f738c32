// Package host dispatches downloaded files to the embedding CAD
// application. The dispatcher only decides HOW a file enters the host
// document: neutral geometry formats are imported, native documents are
// merged. Everything else is left on disk for the user.
package host

import (
	"path/filepath"
	"strings"

	"github.com/partbench/partsync/internal/logging"
)

// Host is the surface a CAD application exposes to the catalog browser.
type Host interface {
	// ImportGeometry loads a neutral-format geometry file (STEP, IGES,
	// BREP, mesh) into the active document.
	ImportGeometry(path string) error
	// MergeDocument merges a native document file into the active document.
	MergeDocument(path string) error
}

// Action describes how a file would be handed to the host.
type Action int

const (
	// ActionNone leaves the file on disk untouched.
	ActionNone Action = iota
	// ActionImport feeds the file through Host.ImportGeometry.
	ActionImport
	// ActionMerge feeds the file through Host.MergeDocument.
	ActionMerge
)

// geometryExtensions are the neutral exchange formats every host can
// import. Lowercase, with leading dot.
var geometryExtensions = map[string]bool{
	".step": true,
	".stp":  true,
	".iges": true,
	".igs":  true,
	".brep": true,
	".brp":  true,
	".stl":  true,
	".obj":  true,
}

// nativeExtensions are document formats that must be merged, not imported.
var nativeExtensions = map[string]bool{
	".fcstd": true,
}

// Classify returns the dispatch action for a file path based on its
// extension. Unknown extensions map to ActionNone.
func Classify(path string) Action {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case geometryExtensions[ext]:
		return ActionImport
	case nativeExtensions[ext]:
		return ActionMerge
	default:
		return ActionNone
	}
}

// Dispatch hands one file to the host according to its extension. Files
// with no matching action are reported as skipped, not failed.
func Dispatch(h Host, path string) (Action, error) {
	action := Classify(path)
	switch action {
	case ActionImport:
		return action, h.ImportGeometry(path)
	case ActionMerge:
		return action, h.MergeDocument(path)
	default:
		return ActionNone, nil
	}
}

// LoggingHost is the default Host used when no CAD application is
// embedding the browser: it records what a real host would have done.
// Running standalone, sync still works and downloaded files stay on disk.
type LoggingHost struct {
	logger *logging.Logger
}

// NewLoggingHost creates a Host that only logs dispatch calls.
func NewLoggingHost(logger *logging.Logger) *LoggingHost {
	return &LoggingHost{logger: logger}
}

func (h *LoggingHost) ImportGeometry(path string) error {
	h.logger.Info().Str("path", path).Msg("geometry file ready for import")
	return nil
}

func (h *LoggingHost) MergeDocument(path string) error {
	h.logger.Info().Str("path", path).Msg("document file ready for merge")
	return nil
}
