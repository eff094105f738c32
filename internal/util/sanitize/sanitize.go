// Package sanitize maps catalog entity names onto safe filesystem names.
//
// Component and modification names come from remote users and can contain
// path separators, reserved characters, and invisible Unicode. The local
// library tree uses these names as directory names, so they are cleaned
// deterministically: the same entity always maps to the same folder.
package sanitize

import (
	"regexp"
	"strings"
)

// reservedChars matches characters that are invalid in file names on at
// least one supported platform (Windows is the strictest).
var reservedChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// FileName cleans a catalog-provided name for use as a file or directory
// name. Reserved characters become underscores; invisible characters are
// dropped; whitespace is collapsed and trimmed.
func FileName(name string) string {
	if name == "" {
		return "_"
	}

	name = removeInvisibleChars(name)
	name = reservedChars.ReplaceAllString(name, "_")
	name = normalizeWhitespace(name)
	name = strings.Trim(name, " .")

	if name == "" {
		return "_"
	}
	return name
}

// removeInvisibleChars removes zero-width and other invisible Unicode characters
func removeInvisibleChars(s string) string {
	invisibleChars := []string{
		"\u200B", // Zero-width space
		"\u200C", // Zero-width non-joiner
		"\u200D", // Zero-width joiner
		"\uFEFF", // Zero-width no-break space (BOM)
		"\u00AD", // Soft hyphen
		"\u2060", // Word joiner
		"\u180E", // Mongolian vowel separator
	}

	for _, char := range invisibleChars {
		s = strings.ReplaceAll(s, char, "")
	}

	return s
}

// normalizeWhitespace replaces runs of whitespace with single spaces
func normalizeWhitespace(s string) string {
	re := regexp.MustCompile(`\s+`)
	return re.ReplaceAllString(s, " ")
}
