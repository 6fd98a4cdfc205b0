// Package format renders extracted session content as text, markdown or JSON.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wwdcgrab/wwdcgrab/internal/models"
)

// Format is one of the supported textual representations.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts both the canonical names and the short CLI aliases.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown or json)", value)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// transcriptDocument is the JSON shape of a rendered transcript.
type transcriptDocument struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Transcript string `json:"transcript"`
}

// CodeSamplesDocument is the JSON shape of a rendered code-sample collection.
// Samples keep document order so the serialization round-trips.
type CodeSamplesDocument struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Year    int                 `json:"year"`
	Samples []models.CodeSample `json:"samples"`
}

// RenderTranscript renders the transcript of a record in the given format.
func RenderTranscript(record *models.SessionRecord, f Format) (string, error) {
	switch f {
	case FormatText:
		return record.TranscriptContent, nil
	case FormatMarkdown:
		var sb strings.Builder
		fmt.Fprintf(&sb, "# %s\n\n", record.Title)
		fmt.Fprintf(&sb, "WWDC %d - Session %s\n\n", record.Identity.Year, record.Identity.ID)
		sb.WriteString(record.TranscriptContent)
		sb.WriteString("\n")
		return sb.String(), nil
	case FormatJSON:
		return marshalIndent(transcriptDocument{
			ID:         record.Identity.ID,
			Title:      record.Title,
			Year:       record.Identity.Year,
			Transcript: record.TranscriptContent,
		})
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}

// RenderCodeSamples renders the inline code samples of a record. Every format
// carries every sample's title, timestamp (when present) and full code text.
func RenderCodeSamples(record *models.SessionRecord, f Format) (string, error) {
	switch f {
	case FormatText:
		return renderCodeSamplesText(record), nil
	case FormatMarkdown:
		return renderCodeSamplesMarkdown(record), nil
	case FormatJSON:
		return marshalIndent(CodeSamplesDocument{
			ID:      record.Identity.ID,
			Title:   record.Title,
			Year:    record.Identity.Year,
			Samples: record.CodeSamples,
		})
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}

// ParseCodeSamplesJSON parses the JSON produced by RenderCodeSamples back
// into a document with the same ordered samples.
func ParseCodeSamplesJSON(data []byte) (*CodeSamplesDocument, error) {
	var doc CodeSamplesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse code samples JSON: %w", err)
	}
	return &doc, nil
}

func renderCodeSamplesText(record *models.SessionRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Code Samples from %s\n", record.Title)
	fmt.Fprintf(&sb, "WWDC %d - Session %s\n\n", record.Identity.Year, record.Identity.ID)

	for _, sample := range record.CodeSamples {
		title := sample.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&sb, "=== %s ===\n", title)
		if sample.Timestamp != "" {
			fmt.Fprintf(&sb, "Time: %s\n", sample.Timestamp)
		}
		sb.WriteString("\n")
		sb.WriteString(sample.Code)
		sb.WriteString("\n\n")
		sb.WriteString(strings.Repeat("-", 80))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func renderCodeSamplesMarkdown(record *models.SessionRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Code Samples from %s\n\n", record.Title)
	fmt.Fprintf(&sb, "WWDC %d - Session %s\n\n", record.Identity.Year, record.Identity.ID)

	for _, sample := range record.CodeSamples {
		title := sample.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		if sample.Timestamp != "" {
			fmt.Fprintf(&sb, "Time: %s\n\n", sample.Timestamp)
		}
		sb.WriteString("```\n")
		sb.WriteString(sample.Code)
		sb.WriteString("\n```\n\n")
	}
	return sb.String()
}

func marshalIndent(value any) (string, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(data), nil
}
