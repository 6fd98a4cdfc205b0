package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with automatic character encoding
// detection and conversion to UTF-8, so markup in any declared encoding can
// be handed to goquery safely. Detection uses meta tags, BOMs and heuristics;
// content that is already UTF-8 passes through with minimal overhead.
func NewUTF8Reader(body io.Reader) (io.Reader, error) {
	// Empty content type: detect from the markup itself.
	return charset.NewReader(body, "")
}
