package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/wwdcgrab/wwdcgrab/internal/client"
	"github.com/wwdcgrab/wwdcgrab/internal/filesystem"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
)

// testServer serves every resource kind a full session references.
type testServer struct {
	*httptest.Server
	videoHits atomic.Int32
	failVideo atomic.Bool
}

func newDownloadServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/videos/session_hd.mp4", func(w http.ResponseWriter, r *http.Request) {
		ts.videoHits.Add(1)
		if ts.failVideo.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "video bytes")
	})
	mux.HandleFunc("/downloads/sample-code/app.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="great-apps.zip"`)
		io.WriteString(w, "zip bytes")
	})
	mux.HandleFunc("/subtitles/en.vtt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "WEBVTT\n\nenglish track")
	})
	mux.HandleFunc("/subtitles/ja.vtt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "WEBVTT\n\njapanese track")
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func fullRecord(baseURL string) *models.SessionRecord {
	return &models.SessionRecord{
		Identity:          models.SessionIdentity{Year: 2024, ID: "10144"},
		Title:             "Building Great Apps",
		TranscriptContent: "Welcome to the session.",
		VideoAssets: []models.VideoAsset{
			{Quality: models.QualityHD, URL: baseURL + "/videos/session_hd.mp4"},
		},
		CodeSamples: []models.CodeSample{
			{Title: "Set up the view", Timestamp: "2:15", Code: "let view = MyView()"},
			{Code: "print(42)"},
		},
		SampleCodeURL: baseURL + "/downloads/sample-code/app.zip",
		SubtitleTracks: map[string]models.SubtitleTrack{
			"en": {Language: "en", URL: baseURL + "/subtitles/en.vtt"},
			"ja": {Language: "ja", URL: baseURL + "/subtitles/ja.vtt"},
		},
	}
}

func newTestDownloader(t *testing.T, server *testServer) *Downloader {
	t.Helper()
	filesystem.SetMemMapFs()
	t.Cleanup(filesystem.SetOsFs)
	return NewDownloader(client.NewClientWithHTTP(server.Client(), server.URL, "wwdcgrab-test"))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestDownloadAll_AllResources(t *testing.T) {
	server := newDownloadServer(t)
	d := newTestDownloader(t, server)

	result := d.DownloadAll(context.Background(), fullRecord(server.URL), "out", Options{})

	for _, kind := range models.AllResourceKinds {
		if !result.Succeeded(kind) {
			t.Errorf("kind %s: state = %v, err = %v, want succeeded", kind, result[kind].State, result[kind].Err)
		}
	}

	files := map[string]string{
		"out/Building_Great_Apps.mp4":            "video bytes",
		"out/Building_Great_Apps_transcript.txt": "Welcome to the session.",
		"out/great-apps.zip":                     "zip bytes",
		"out/code_samples/Set_up_the_view_1.txt": "let view = MyView()",
		"out/code_samples/sample_2.txt":          "print(42)",
		"out/webvtt/en.vtt":                      "WEBVTT\n\nenglish track",
		"out/webvtt/ja.vtt":                      "WEBVTT\n\njapanese track",
	}
	for path, want := range files {
		if got := readFile(t, path); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}

	// Atomic writes must not leave temporary files behind.
	entries, err := filesystem.API().ReadDir("out")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("leftover temporary file %s", entry.Name())
		}
	}
}

func TestDownloadAll_EmptyRecord(t *testing.T) {
	server := newDownloadServer(t)
	d := newTestDownloader(t, server)

	record := &models.SessionRecord{
		Identity: models.SessionIdentity{Year: 2024, ID: "10144"},
		Title:    "Building Great Apps",
	}
	result := d.DownloadAll(context.Background(), record, "out", Options{})

	for _, kind := range models.AllResourceKinds {
		if result[kind].State != models.StateNotAvailable {
			t.Errorf("kind %s: state = %v, want not available", kind, result[kind].State)
		}
	}
	if failures := result.Failures(); len(failures) != 0 {
		t.Errorf("Failures() = %v, want none", failures)
	}
}

func TestDownloadAll_FailureIsolation(t *testing.T) {
	server := newDownloadServer(t)
	server.failVideo.Store(true)
	d := newTestDownloader(t, server)

	result := d.DownloadAll(context.Background(), fullRecord(server.URL), "out", Options{})

	if result[models.KindVideo].State != models.StateFailed {
		t.Errorf("video state = %v, want failed", result[models.KindVideo].State)
	}
	if result[models.KindVideo].Err == nil {
		t.Error("failed video outcome carries no error")
	}
	for _, kind := range []models.ResourceKind{models.KindTranscript, models.KindSampleCode, models.KindCodeSamples, models.KindWebVTT} {
		if !result.Succeeded(kind) {
			t.Errorf("kind %s must succeed despite the video failure, state = %v", kind, result[kind].State)
		}
	}
	if failures := result.Failures(); len(failures) != 1 || failures[0].Kind != models.KindVideo {
		t.Errorf("Failures() = %v, want only the video", failures)
	}

	// The failed video must not leave a destination file.
	if exists, _ := filesystem.API().Exists("out/Building_Great_Apps.mp4"); exists {
		t.Error("failed video left a destination file")
	}
}

func TestDownloadAll_SkipExisting(t *testing.T) {
	server := newDownloadServer(t)
	d := newTestDownloader(t, server)
	record := fullRecord(server.URL)
	opts := Options{SkipExisting: true}

	first := d.DownloadAll(context.Background(), record, "out", opts)
	second := d.DownloadAll(context.Background(), record, "out", opts)

	for _, result := range []models.DownloadResult{first, second} {
		for _, kind := range models.AllResourceKinds {
			if !result.Succeeded(kind) {
				t.Fatalf("kind %s: state = %v, want succeeded", kind, result[kind].State)
			}
		}
	}
	if got := server.videoHits.Load(); got != 1 {
		t.Errorf("video fetched %d times, want 1 (second run skips the existing file)", got)
	}
}

func TestDownloadAll_PreferredQuality(t *testing.T) {
	server := newDownloadServer(t)
	d := newTestDownloader(t, server)

	record := fullRecord(server.URL)
	record.VideoAssets = append(record.VideoAssets, models.VideoAsset{
		Quality: models.QualitySD,
		URL:     server.URL + "/videos/session_hd.mp4",
	})

	result := d.DownloadAll(context.Background(), record, "out", Options{Quality: models.QualitySD})
	if !result.Succeeded(models.KindVideo) {
		t.Fatalf("video state = %v", result[models.KindVideo].State)
	}
	if len(result[models.KindVideo].Paths) != 1 {
		t.Fatalf("video paths = %v", result[models.KindVideo].Paths)
	}
}
