// Package models defines the catalog entities exchanged with the remote
// parts catalog and persisted in local marker files.
package models

import "fmt"

// Owner identifies the remote user a component belongs to.
type Owner struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
}

// Component is a catalog part/assembly record. It is an immutable snapshot
// of remote state at fetch time; the local cache replaces snapshots, it
// never merges them.
type Component struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Owner      Owner  `json:"owner"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// FolderName returns the deterministic local folder name for the component.
// The same component always maps to the same folder, which is what makes
// re-running a favorites sync idempotent.
func (c Component) FolderName() string {
	return fmt.Sprintf("%s (from %s)", c.Name, c.Owner.Username)
}

// Modification is a named variant/revision of a Component.
type Modification struct {
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	ComponentUUID string `json:"componentUuid"`
}

// Fileset groups the files of a Modification for one target CAD program.
type Fileset struct {
	UUID             string `json:"uuid"`
	ModificationUUID string `json:"modificationUuid"`
	Program          string `json:"program"`
}

// FilesetFile is a downloadable leaf file of a Fileset. Size is reported by
// the catalog when known and is zero otherwise; it is only used for the
// pre-download disk space check.
type FilesetFile struct {
	UUID        string `json:"uuid"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"downloadUrl"`
	FilesetUUID string `json:"filesetUuid"`
	Size        int64  `json:"size,omitempty"`
}
