package sanitize

import "testing"

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Bracket", "Bracket"},
		{"spaces preserved", "Bracket (from alice)", "Bracket (from alice)"},
		{"path separators", "a/b\\c", "a_b_c"},
		{"reserved chars", `mount:plate?"v2"`, "mount_plate__v2_"},
		{"zero width space", "Brac\u200Bket", "Bracket"},
		{"whitespace collapsed", "Bracket   v2\tfinal", "Bracket v2 final"},
		{"trailing dots trimmed", "part...", "part"},
		{"empty", "", "_"},
		{"only reserved", "???", "___"},
		{"only dots", "...", "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.in); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileNameDeterministic(t *testing.T) {
	in := "Gear Box / rev:2"
	if FileName(in) != FileName(in) {
		t.Error("FileName must be deterministic")
	}
}
