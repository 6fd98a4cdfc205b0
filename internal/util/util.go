// Package util holds small helpers shared across the tool.
package util

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

var (
	invalidChars        = regexp.MustCompile(`[\\/<>:;"'|?!*{}#%&^+,~\s]`)
	underscoreRuns      = regexp.MustCompile(`__+`)
	leadingTrailingJunk = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
)

// SanitizeFilename normalizes a string into a safe cross-platform filename.
// Unicode is NFC-normalized first so visually identical titles map to the
// same name regardless of how the page encoded them.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = invalidChars.ReplaceAllString(name, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	return leadingTrailingJunk.ReplaceAllString(name, "")
}
