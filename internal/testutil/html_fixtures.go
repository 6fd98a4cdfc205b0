// Package testutil generates session-page HTML fixtures for tests,
// mirroring the loose structure of real pages across years.
package testutil

import (
	"fmt"
	"strings"
)

// VideoSourceOptions describes one <source> element of the fixture page.
type VideoSourceOptions struct {
	Quality string // "hd", "sd", or an unknown token
	Src     string
}

// CodeSampleOptions describes one code block plus its preceding context.
type CodeSampleOptions struct {
	Title     string // rendered as a jump-to-time sample link when set
	Timestamp string // e.g. "12:34", rendered in the preceding paragraph
	Code      string
}

// TrackOptions describes one <track> element. Empty Language or Src renders
// a malformed track the extractor must skip.
type TrackOptions struct {
	Language string
	Src      string
}

// SessionPageOptions drives GenerateSessionPageHTML. Zero values omit the
// corresponding markup entirely, matching pages that lack the feature.
type SessionPageOptions struct {
	Title         string
	Description   string
	VideoSources  []VideoSourceOptions
	Paragraphs    []string // transcript paragraphs inside the transcript container
	Sentences     []string // legacy flat .sentence spans instead of a container
	CodeSamples   []CodeSampleOptions
	SampleCodeURL string
	Tracks        []TrackOptions
}

// GenerateSessionPageHTML builds a session page in the shape the extractor
// expects, with every section optional.
func GenerateSessionPageHTML(opts SessionPageOptions) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Session</title></head><body>\n")

	if opts.Title != "" {
		fmt.Fprintf(&sb, "<h1>%s</h1>\n", opts.Title)
	}
	if opts.Description != "" {
		fmt.Fprintf(&sb, `<p class="description">%s</p>`+"\n", opts.Description)
	}

	if len(opts.VideoSources) > 0 || len(opts.Tracks) > 0 {
		sb.WriteString("<video>\n")
		for _, source := range opts.VideoSources {
			fmt.Fprintf(&sb, `<source src="%s" data-quality="%s" type="video/mp4">`+"\n", source.Src, source.Quality)
		}
		for _, track := range opts.Tracks {
			sb.WriteString(`<track kind="subtitles"`)
			if track.Language != "" {
				fmt.Fprintf(&sb, ` srclang="%s"`, track.Language)
			}
			if track.Src != "" {
				fmt.Fprintf(&sb, ` src="%s"`, track.Src)
			}
			sb.WriteString(">\n")
		}
		sb.WriteString("</video>\n")
	}

	if len(opts.Paragraphs) > 0 {
		sb.WriteString(`<section class="transcript">` + "\n")
		for _, paragraph := range opts.Paragraphs {
			fmt.Fprintf(&sb, "<p>%s</p>\n", paragraph)
		}
		sb.WriteString("</section>\n")
	}
	for _, sentence := range opts.Sentences {
		fmt.Fprintf(&sb, `<span class="sentence">%s</span>`+"\n", sentence)
	}

	for _, sample := range opts.CodeSamples {
		sb.WriteString("<p>")
		if sample.Timestamp != "" {
			fmt.Fprintf(&sb, "%s - ", sample.Timestamp)
		}
		if sample.Title != "" {
			fmt.Fprintf(&sb, `<a class="jump-to-time-sample" href="#">%s</a>`, sample.Title)
		}
		sb.WriteString("</p>\n")
		fmt.Fprintf(&sb, `<pre class="code-source"><code>%s</code></pre>`+"\n", sample.Code)
	}

	if opts.SampleCodeURL != "" {
		fmt.Fprintf(&sb, `<a href="%s">Download sample code</a>`+"\n", opts.SampleCodeURL)
	}

	sb.WriteString("</body></html>")
	return sb.String()
}
