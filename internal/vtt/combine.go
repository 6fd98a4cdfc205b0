// Package vtt merges the per-sequence WebVTT files of a session into a single
// deduplicated subtitle document.
package vtt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/asticode/go-astisub"

	"github.com/wwdcgrab/wwdcgrab/internal/config"
)

// Combine parses each WebVTT body, removes duplicate cues (same start time
// and text) and cues whose text is fully contained in their successor, and
// writes one combined WEBVTT document.
func Combine(bodies []string) (string, error) {
	logger := config.GetLogger()

	var cues []*astisub.Item
	for i, body := range bodies {
		parsed, err := astisub.ReadFromWebVTT(strings.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("failed to parse WebVTT input %d: %w", i+1, err)
		}
		cues = append(cues, parsed.Items...)
	}
	if len(cues) == 0 {
		return "", fmt.Errorf("no cues found in %d WebVTT inputs", len(bodies))
	}

	deduplicated := dropDuplicates(cues)
	final := dropContained(deduplicated)

	logger.Debug().
		Int("inputs", len(bodies)).
		Int("cues", len(cues)).
		Int("kept", len(final)).
		Msg("Combined WebVTT cues")

	combined := astisub.NewSubtitles()
	combined.Items = final

	var buf bytes.Buffer
	if err := combined.WriteToWebVTT(&buf); err != nil {
		return "", fmt.Errorf("failed to write combined WebVTT: %w", err)
	}
	return buf.String(), nil
}

// dropDuplicates removes cues repeating an earlier cue's start time and text.
func dropDuplicates(cues []*astisub.Item) []*astisub.Item {
	seen := make(map[string]struct{}, len(cues))
	kept := make([]*astisub.Item, 0, len(cues))
	for _, cue := range cues {
		key := cue.StartAt.String() + "_" + cueText(cue)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, cue)
	}
	return kept
}

// dropContained removes cues whose text is fully repeated inside the next
// cue at a different time range, which happens at sequence-file boundaries.
func dropContained(cues []*astisub.Item) []*astisub.Item {
	kept := make([]*astisub.Item, 0, len(cues))
	for i, cue := range cues {
		if i+1 < len(cues) {
			next := cues[i+1]
			if strings.Contains(cueText(next), cueText(cue)) &&
				cue.StartAt != next.StartAt && cue.EndAt != next.EndAt {
				continue
			}
		}
		kept = append(kept, cue)
	}
	return kept
}

func cueText(cue *astisub.Item) string {
	lines := make([]string, 0, len(cue.Lines))
	for _, line := range cue.Lines {
		lines = append(lines, line.String())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
