package models

import (
	"context"
	"sort"

	"github.com/wwdcgrab/wwdcgrab/internal/apperrors"
)

// EnglishLanguage is the subtitle language every session is expected to carry.
const EnglishLanguage = "en"

// SessionIdentity is the normalized (year, id, language) triple derived from a
// session URL. Language is the optional locale hint from a localized URL.
type SessionIdentity struct {
	Year     int    `json:"year"`
	ID       string `json:"id"`
	Language string `json:"language,omitempty"`
}

// VideoAsset is a downloadable video variant of a session.
type VideoAsset struct {
	Quality VideoQuality `json:"quality"`
	URL     string       `json:"url"`
}

// SubtitleTrack references one WebVTT subtitle file, keyed by language.
type SubtitleTrack struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// CodeSample is an inline code snippet shown on the session page.
// Timestamp is the session-relative marker (e.g. "12:34") and may be empty.
// Duplicates are allowed: different timestamps may share a title.
type CodeSample struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp,omitempty"`
	Code      string `json:"code"`
}

// SessionRecord is the aggregate extracted from a session page. It is built
// exactly once by the parser and never mutated afterward; operations needing
// further I/O (like FetchWebVTT) return new values instead of writing back.
//
// Optional string fields use the empty string as "absent".
type SessionRecord struct {
	Identity          SessionIdentity          `json:"identity"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description,omitempty"`
	VideoAssets       []VideoAsset             `json:"videoAssets,omitempty"`
	TranscriptContent string                   `json:"transcript,omitempty"`
	CodeSamples       []CodeSample             `json:"codeSamples,omitempty"`
	SampleCodeURL     string                   `json:"sampleCodeUrl,omitempty"`
	SubtitleTracks    map[string]SubtitleTrack `json:"subtitleTracks,omitempty"`
}

// WebVTTFetcher retrieves the raw body of a single subtitle track.
type WebVTTFetcher interface {
	FetchWebVTT(ctx context.Context, url string) (string, error)
}

// BestVideo returns the highest-quality video asset (HD preferred over SD).
// The second return is false when the session has no video at all.
func (r *SessionRecord) BestVideo() (VideoAsset, bool) {
	return r.PreferredVideo(QualityHD)
}

// PreferredVideo returns the asset matching the requested quality, falling
// back to the best available one when that quality is absent.
func (r *SessionRecord) PreferredVideo(quality VideoQuality) (VideoAsset, bool) {
	if len(r.VideoAssets) == 0 {
		return VideoAsset{}, false
	}

	best := r.VideoAssets[0]
	for _, asset := range r.VideoAssets {
		if asset.Quality == quality {
			return asset, true
		}
		if asset.Quality > best.Quality {
			best = asset
		}
	}
	return best, true
}

// ResolveSubtitleTracks applies the language selection rule: the requested
// language if available, otherwise "en", otherwise every available track in
// stable language order (the caller decides whether that is acceptable).
// It fails only when the session has no tracks at all.
func (r *SessionRecord) ResolveSubtitleTracks(language string) ([]SubtitleTrack, error) {
	if len(r.SubtitleTracks) == 0 {
		return nil, apperrors.NewNoSubtitlesError(r.Identity.ID)
	}

	if language != "" {
		if track, ok := r.SubtitleTracks[language]; ok {
			return []SubtitleTrack{track}, nil
		}
	}
	if track, ok := r.SubtitleTracks[EnglishLanguage]; ok {
		return []SubtitleTrack{track}, nil
	}

	// Neither the requested language nor English exists: surface the whole
	// set unchanged, sorted for deterministic order.
	tracks := r.AllSubtitleTracks()
	return tracks, nil
}

// AllSubtitleTracks returns every track sorted by language.
func (r *SessionRecord) AllSubtitleTracks() []SubtitleTrack {
	tracks := make([]SubtitleTrack, 0, len(r.SubtitleTracks))
	for _, track := range r.SubtitleTracks {
		tracks = append(tracks, track)
	}
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Language < tracks[j].Language
	})
	return tracks
}

// FetchWebVTT resolves the subtitle tracks for the requested language and
// fetches each one, returning the raw WebVTT bodies in track order. The
// bodies are returned, not stored: the record stays immutable.
func (r *SessionRecord) FetchWebVTT(ctx context.Context, fetcher WebVTTFetcher, language string) ([]string, error) {
	tracks, err := r.ResolveSubtitleTracks(language)
	if err != nil {
		return nil, err
	}

	bodies := make([]string, 0, len(tracks))
	for _, track := range tracks {
		body, err := fetcher.FetchWebVTT(ctx, track.URL)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}
