package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/wwdcgrab/wwdcgrab/internal/apperrors"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
	"github.com/wwdcgrab/wwdcgrab/internal/testutil"
)

const baseURL = "https://developer.apple.com"

var identity = models.SessionIdentity{Year: 2024, ID: "10144"}

func parsePage(t *testing.T, html string) *models.SessionRecord {
	t.Helper()
	record, err := NewSessionParser(baseURL).Parse(strings.NewReader(html), identity)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	return record
}

func TestParse_TitleOnlyPage(t *testing.T) {
	html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
		Title: "Building Great Apps",
	})
	record := parsePage(t, html)

	if record.Title != "Building Great Apps" {
		t.Errorf("Title = %q, want %q", record.Title, "Building Great Apps")
	}
	if len(record.VideoAssets) != 0 {
		t.Errorf("VideoAssets = %v, want empty", record.VideoAssets)
	}
	if record.TranscriptContent != "" {
		t.Errorf("TranscriptContent = %q, want empty", record.TranscriptContent)
	}
	if len(record.CodeSamples) != 0 {
		t.Errorf("CodeSamples = %v, want empty", record.CodeSamples)
	}
	if record.SampleCodeURL != "" {
		t.Errorf("SampleCodeURL = %q, want empty", record.SampleCodeURL)
	}
	if len(record.SubtitleTracks) != 0 {
		t.Errorf("SubtitleTracks = %v, want empty", record.SubtitleTracks)
	}
}

func TestParse_NoHeadingFails(t *testing.T) {
	html := `<html><body><p>Not a session page at all.</p></body></html>`

	_, err := NewSessionParser(baseURL).Parse(strings.NewReader(html), identity)
	if err == nil {
		t.Fatal("expected error for page without heading")
	}
	if !errors.Is(err, &apperrors.ErrExtraction{}) {
		t.Errorf("error = %v, want ErrExtraction", err)
	}
	var extractionErr *apperrors.ErrExtraction
	if errors.As(err, &extractionErr) && extractionErr.Field != "title" {
		t.Errorf("Field = %q, want %q", extractionErr.Field, "title")
	}
}

func TestParse_H2FallbackTitle(t *testing.T) {
	html := `<html><body><h2>Fallback Heading</h2></body></html>`
	record := parsePage(t, html)
	if record.Title != "Fallback Heading" {
		t.Errorf("Title = %q, want %q", record.Title, "Fallback Heading")
	}
}

func TestParse_TitleWhitespaceCollapsed(t *testing.T) {
	html := "<html><body><h1>  Building \n\t Great   Apps </h1></body></html>"
	record := parsePage(t, html)
	if record.Title != "Building Great Apps" {
		t.Errorf("Title = %q, want collapsed %q", record.Title, "Building Great Apps")
	}
}

func TestParse_VideoAssets(t *testing.T) {
	html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
		Title: "Session",
		VideoSources: []testutil.VideoSourceOptions{
			{Quality: "hd", Src: "https://cdn.example.com/session_hd.mp4"},
			{Quality: "sd", Src: "https://cdn.example.com/session_sd.mp4"},
			{Quality: "8k", Src: "https://cdn.example.com/session_8k.mp4"}, // unknown, skipped
		},
	})
	record := parsePage(t, html)

	if len(record.VideoAssets) != 2 {
		t.Fatalf("got %d assets, want 2 (unknown token skipped)", len(record.VideoAssets))
	}
	if record.VideoAssets[0].Quality != models.QualityHD {
		t.Errorf("assets[0].Quality = %v, want HD", record.VideoAssets[0].Quality)
	}
	if record.VideoAssets[1].Quality != models.QualitySD {
		t.Errorf("assets[1].Quality = %v, want SD", record.VideoAssets[1].Quality)
	}
	if record.VideoAssets[0].URL != "https://cdn.example.com/session_hd.mp4" {
		t.Errorf("assets[0].URL = %q", record.VideoAssets[0].URL)
	}
}

func TestParse_TranscriptParagraphs(t *testing.T) {
	html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
		Title:      "Session",
		Paragraphs: []string{"Welcome to the   session.", "Let's write\nsome code."},
	})
	record := parsePage(t, html)

	want := "Welcome to the session.\nLet's write some code."
	if record.TranscriptContent != want {
		t.Errorf("TranscriptContent = %q, want %q", record.TranscriptContent, want)
	}
}

func TestParse_TranscriptSentenceFallback(t *testing.T) {
	html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
		Title:     "Session",
		Sentences: []string{"Hello everyone. ", "Welcome back. "},
	})
	record := parsePage(t, html)

	want := "Hello everyone.\nWelcome back."
	if record.TranscriptContent != want {
		t.Errorf("TranscriptContent = %q, want %q", record.TranscriptContent, want)
	}
}

func TestParse_CodeSamples(t *testing.T) {
	html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
		Title: "Session",
		CodeSamples: []testutil.CodeSampleOptions{
			{Title: "Set up the view", Timestamp: "2:15", Code: "let view = MyView()\n    view.show()"},
			{Code: "print(42)"}, // no title, no timestamp
			{Title: "Set up the view", Timestamp: "12:34", Code: "view.hide()"}, // duplicate title allowed
		},
	})
	record := parsePage(t, html)

	if len(record.CodeSamples) != 3 {
		t.Fatalf("got %d samples, want 3", len(record.CodeSamples))
	}

	first := record.CodeSamples[0]
	if first.Title != "Set up the view" {
		t.Errorf("samples[0].Title = %q", first.Title)
	}
	if first.Timestamp != "2:15" {
		t.Errorf("samples[0].Timestamp = %q, want %q", first.Timestamp, "2:15")
	}
	if first.Code != "let view = MyView()\n    view.show()" {
		t.Errorf("samples[0].Code = %q, indentation must be verbatim", first.Code)
	}

	second := record.CodeSamples[1]
	if second.Title != "" || second.Timestamp != "" {
		t.Errorf("samples[1] title/timestamp = %q/%q, want empty", second.Title, second.Timestamp)
	}

	third := record.CodeSamples[2]
	if third.Title != "Set up the view" || third.Timestamp != "12:34" {
		t.Errorf("samples[2] = %+v, want duplicate title with its own timestamp", third)
	}
}

func TestParse_EmptyCodeBlockSkipped(t *testing.T) {
	html := `<html><body><h1>Session</h1><pre><code>   </code></pre></body></html>`
	record := parsePage(t, html)
	if len(record.CodeSamples) != 0 {
		t.Errorf("got %d samples, want 0 for whitespace-only code", len(record.CodeSamples))
	}
}

func TestParse_SampleCodeURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "absolute",
			href: "https://developer.apple.com/downloads/sample-code/app.zip",
			want: "https://developer.apple.com/downloads/sample-code/app.zip",
		},
		{
			name: "site relative resolved against page",
			href: "/downloads/sample-code/app.zip",
			want: "https://developer.apple.com/downloads/sample-code/app.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
				Title:         "Session",
				SampleCodeURL: tt.href,
			})
			record := parsePage(t, html)
			if record.SampleCodeURL != tt.want {
				t.Errorf("SampleCodeURL = %q, want %q", record.SampleCodeURL, tt.want)
			}
		})
	}
}

func TestParse_SubtitleTracks(t *testing.T) {
	html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
		Title: "Session",
		Tracks: []testutil.TrackOptions{
			{Language: "en", Src: "https://cdn.example.com/en.vtt"},
			{Language: "ja", Src: "https://cdn.example.com/ja.vtt"},
			{Language: "ko"},                                // missing src, skipped
			{Src: "https://cdn.example.com/mystery.vtt"},    // missing language, skipped
			{Language: "en", Src: "https://cdn.example.com/en2.vtt"}, // duplicate language, first wins
		},
	})
	record := parsePage(t, html)

	if len(record.SubtitleTracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(record.SubtitleTracks))
	}
	if track := record.SubtitleTracks["en"]; track.URL != "https://cdn.example.com/en.vtt" {
		t.Errorf("en track URL = %q, first track must win", track.URL)
	}
	if _, ok := record.SubtitleTracks["ja"]; !ok {
		t.Error("ja track missing")
	}
}

func TestParse_FullPage(t *testing.T) {
	html := testutil.GenerateSessionPageHTML(testutil.SessionPageOptions{
		Title:       "Building Great Apps",
		Description: "Learn how to build great apps.",
		VideoSources: []testutil.VideoSourceOptions{
			{Quality: "hd", Src: "https://cdn.example.com/hd.mp4"},
		},
		Paragraphs:    []string{"Welcome."},
		CodeSamples:   []testutil.CodeSampleOptions{{Title: "Demo", Timestamp: "1:02", Code: "run()"}},
		SampleCodeURL: "/downloads/sample-code/great-apps.zip",
		Tracks:        []testutil.TrackOptions{{Language: "en", Src: "/subtitles/en.vtt"}},
	})
	record := parsePage(t, html)

	if record.Description != "Learn how to build great apps." {
		t.Errorf("Description = %q", record.Description)
	}
	if record.Identity != identity {
		t.Errorf("Identity = %+v, want %+v", record.Identity, identity)
	}
	if track := record.SubtitleTracks["en"]; track.URL != "https://developer.apple.com/subtitles/en.vtt" {
		t.Errorf("relative track URL not resolved: %q", track.URL)
	}
}
