package host

import (
	"testing"

	"github.com/partbench/partsync/internal/logging"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Action
	}{
		{"plate.step", ActionImport},
		{"plate.STEP", ActionImport},
		{"housing.stp", ActionImport},
		{"gear.iges", ActionImport},
		{"gear.igs", ActionImport},
		{"solid.brep", ActionImport},
		{"mesh.stl", ActionImport},
		{"mesh.obj", ActionImport},
		{"assembly.FCStd", ActionMerge},
		{"notes.txt", ActionNone},
		{"preview.png", ActionNone},
		{"noextension", ActionNone},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

type recordingHost struct {
	imported []string
	merged   []string
}

func (h *recordingHost) ImportGeometry(path string) error {
	h.imported = append(h.imported, path)
	return nil
}

func (h *recordingHost) MergeDocument(path string) error {
	h.merged = append(h.merged, path)
	return nil
}

func TestDispatch(t *testing.T) {
	h := &recordingHost{}

	action, err := Dispatch(h, "bracket.step")
	if err != nil || action != ActionImport {
		t.Errorf("Dispatch step: action=%v err=%v", action, err)
	}
	action, err = Dispatch(h, "bracket.FCStd")
	if err != nil || action != ActionMerge {
		t.Errorf("Dispatch FCStd: action=%v err=%v", action, err)
	}
	action, err = Dispatch(h, "readme.md")
	if err != nil || action != ActionNone {
		t.Errorf("Dispatch unknown: action=%v err=%v", action, err)
	}

	if len(h.imported) != 1 || h.imported[0] != "bracket.step" {
		t.Errorf("imported = %v", h.imported)
	}
	if len(h.merged) != 1 || h.merged[0] != "bracket.FCStd" {
		t.Errorf("merged = %v", h.merged)
	}
}

func TestLoggingHost(t *testing.T) {
	h := NewLoggingHost(logging.NewLogger())
	if err := h.ImportGeometry("x.step"); err != nil {
		t.Errorf("ImportGeometry: %v", err)
	}
	if err := h.MergeDocument("x.FCStd"); err != nil {
		t.Errorf("MergeDocument: %v", err)
	}
}
