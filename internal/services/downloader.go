// Package services orchestrates the concurrent retrieval of every resource a
// session record references.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/wwdcgrab/wwdcgrab/internal/client"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/filesystem"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
	"github.com/wwdcgrab/wwdcgrab/internal/util"
)

const (
	codeSamplesDirName = "code_samples"
	webvttDirName      = "webvtt"
)

// Options tunes a download run.
type Options struct {
	// Quality is the preferred video quality; the best available one is used
	// when the preference is absent. Zero value falls back to HD.
	Quality models.VideoQuality

	// SkipExisting reports an already-present destination file as succeeded
	// without re-fetching it.
	SkipExisting bool
}

// Downloader retrieves every available resource of a session concurrently.
// One kind's failure never blocks or cancels the others; failures are
// captured in the result, not returned.
type Downloader struct {
	client client.Client
	fs     afero.Afero
}

// NewDownloader creates a downloader writing through the process filesystem
// backend.
func NewDownloader(c client.Client) *Downloader {
	return &Downloader{client: c, fs: filesystem.API()}
}

// DownloadAll fetches all available resource kinds concurrently into
// destRoot and reports a terminal outcome for every kind. It returns only
// after each launched kind has reached Succeeded, Failed or NotAvailable.
func (d *Downloader) DownloadAll(ctx context.Context, record *models.SessionRecord, destRoot string, opts Options) models.DownloadResult {
	logger := config.GetLogger()

	if opts.Quality == models.QualityUnknown {
		opts.Quality = models.QualityHD
	}

	result := make(models.DownloadResult, len(models.AllResourceKinds))
	if err := d.fs.MkdirAll(destRoot, 0o755); err != nil {
		// Nothing can be written at all; every kind fails the same way.
		for _, kind := range models.AllResourceKinds {
			result[kind] = models.ResourceOutcome{Kind: kind, State: models.StateFailed, Err: err}
		}
		return result
	}

	logger.Info().
		Str("title", record.Title).
		Str("destination", destRoot).
		Msg("Downloading session content")

	tasks := map[models.ResourceKind]func(context.Context) models.ResourceOutcome{
		models.KindVideo: func(ctx context.Context) models.ResourceOutcome {
			return d.downloadVideo(ctx, record, destRoot, opts)
		},
		models.KindTranscript: func(ctx context.Context) models.ResourceOutcome {
			return d.saveTranscript(record, destRoot, opts)
		},
		models.KindSampleCode: func(ctx context.Context) models.ResourceOutcome {
			return d.downloadSampleCode(ctx, record, destRoot, opts)
		},
		models.KindCodeSamples: func(ctx context.Context) models.ResourceOutcome {
			return d.saveCodeSamples(record, destRoot)
		},
		models.KindWebVTT: func(ctx context.Context) models.ResourceOutcome {
			return d.downloadSubtitles(ctx, record, destRoot)
		},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for kind, task := range tasks {
		go func(kind models.ResourceKind, task func(context.Context) models.ResourceOutcome) {
			defer wg.Done()
			outcome := task(ctx)
			if outcome.State == models.StateFailed {
				logger.Warn().Err(outcome.Err).Str("kind", string(kind)).Msg("Resource download failed")
			}
			mu.Lock()
			result[kind] = outcome
			mu.Unlock()
		}(kind, task)
	}

	wg.Wait()
	return result
}

// downloadVideo streams the preferred-quality video asset to disk.
func (d *Downloader) downloadVideo(ctx context.Context, record *models.SessionRecord, destRoot string, opts Options) models.ResourceOutcome {
	outcome := models.ResourceOutcome{Kind: models.KindVideo}

	asset, ok := record.PreferredVideo(opts.Quality)
	if !ok {
		return outcome
	}

	filename := util.SanitizeFilename(record.Title) + videoExtension(asset.URL)
	dest := filepath.Join(destRoot, filename)

	if opts.SkipExisting && d.exists(dest) {
		logger := config.GetLogger()
		logger.Info().Str("path", dest).Msg("Video already present, skipping download")
		outcome.State = models.StateSucceeded
		outcome.Paths = []string{dest}
		return outcome
	}

	payload, err := d.client.Download(ctx, asset.URL)
	if err != nil {
		return failed(outcome, fmt.Errorf("video download: %w", err))
	}
	defer payload.Close()

	if err := d.writeFileAtomic(dest, payload.Body); err != nil {
		return failed(outcome, fmt.Errorf("video write: %w", err))
	}

	outcome.State = models.StateSucceeded
	outcome.Paths = []string{dest}
	return outcome
}

// saveTranscript writes the already-extracted transcript text.
func (d *Downloader) saveTranscript(record *models.SessionRecord, destRoot string, opts Options) models.ResourceOutcome {
	outcome := models.ResourceOutcome{Kind: models.KindTranscript}

	if record.TranscriptContent == "" {
		return outcome
	}

	dest := filepath.Join(destRoot, util.SanitizeFilename(record.Title)+"_transcript.txt")
	if opts.SkipExisting && d.exists(dest) {
		outcome.State = models.StateSucceeded
		outcome.Paths = []string{dest}
		return outcome
	}

	if err := d.writeFileAtomic(dest, strings.NewReader(record.TranscriptContent)); err != nil {
		return failed(outcome, fmt.Errorf("transcript write: %w", err))
	}

	outcome.State = models.StateSucceeded
	outcome.Paths = []string{dest}
	return outcome
}

// downloadSampleCode saves the provider sample-code archive under its
// provider-given filename.
func (d *Downloader) downloadSampleCode(ctx context.Context, record *models.SessionRecord, destRoot string, opts Options) models.ResourceOutcome {
	outcome := models.ResourceOutcome{Kind: models.KindSampleCode}

	if record.SampleCodeURL == "" {
		return outcome
	}

	payload, err := d.client.Download(ctx, record.SampleCodeURL)
	if err != nil {
		return failed(outcome, fmt.Errorf("sample code download: %w", err))
	}
	defer payload.Close()

	dest := filepath.Join(destRoot, util.SanitizeFilename(payload.Filename))
	if opts.SkipExisting && d.exists(dest) {
		outcome.State = models.StateSucceeded
		outcome.Paths = []string{dest}
		return outcome
	}

	if err := d.writeFileAtomic(dest, payload.Body); err != nil {
		return failed(outcome, fmt.Errorf("sample code write: %w", err))
	}

	outcome.State = models.StateSucceeded
	outcome.Paths = []string{dest}
	return outcome
}

// saveCodeSamples writes each inline code sample as its own file under
// code_samples/. Names carry the 1-based document-order index so duplicate
// titles never collide and repeat runs produce identical names.
func (d *Downloader) saveCodeSamples(record *models.SessionRecord, destRoot string) models.ResourceOutcome {
	outcome := models.ResourceOutcome{Kind: models.KindCodeSamples}

	if len(record.CodeSamples) == 0 {
		return outcome
	}

	dir := filepath.Join(destRoot, codeSamplesDirName)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return failed(outcome, fmt.Errorf("code samples dir: %w", err))
	}

	paths := make([]string, len(record.CodeSamples))
	errs := make([]error, len(record.CodeSamples))

	var wg sync.WaitGroup
	wg.Add(len(record.CodeSamples))
	for i, sample := range record.CodeSamples {
		go func(i int, sample models.CodeSample) {
			defer wg.Done()
			title := sample.Title
			if title == "" {
				title = "sample"
			}
			dest := filepath.Join(dir, fmt.Sprintf("%s_%d.txt", util.SanitizeFilename(title), i+1))
			if err := d.writeFileAtomic(dest, strings.NewReader(sample.Code)); err != nil {
				errs[i] = fmt.Errorf("code sample %d: %w", i+1, err)
				return
			}
			paths[i] = dest
		}(i, sample)
	}
	wg.Wait()

	return collectFileOutcomes(outcome, paths, errs)
}

// downloadSubtitles fetches every available track (not just the
// fallback-resolved one) and writes one .vtt file per language.
func (d *Downloader) downloadSubtitles(ctx context.Context, record *models.SessionRecord, destRoot string) models.ResourceOutcome {
	outcome := models.ResourceOutcome{Kind: models.KindWebVTT}

	tracks := record.AllSubtitleTracks()
	if len(tracks) == 0 {
		return outcome
	}

	dir := filepath.Join(destRoot, webvttDirName)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return failed(outcome, fmt.Errorf("webvtt dir: %w", err))
	}

	paths := make([]string, len(tracks))
	errs := make([]error, len(tracks))

	var wg sync.WaitGroup
	wg.Add(len(tracks))
	for i, track := range tracks {
		go func(i int, track models.SubtitleTrack) {
			defer wg.Done()
			body, err := d.client.FetchWebVTT(ctx, track.URL)
			if err != nil {
				errs[i] = fmt.Errorf("track %s: %w", track.Language, err)
				return
			}
			dest := filepath.Join(dir, util.SanitizeFilename(track.Language)+".vtt")
			if err := d.writeFileAtomic(dest, strings.NewReader(body)); err != nil {
				errs[i] = fmt.Errorf("track %s: %w", track.Language, err)
				return
			}
			paths[i] = dest
		}(i, track)
	}
	wg.Wait()

	return collectFileOutcomes(outcome, paths, errs)
}

// collectFileOutcomes folds per-file results into the kind's terminal state:
// any file failure marks the kind failed, with the files that did land listed.
func collectFileOutcomes(outcome models.ResourceOutcome, paths []string, errs []error) models.ResourceOutcome {
	var written []string
	for _, p := range paths {
		if p != "" {
			written = append(written, p)
		}
	}
	outcome.Paths = written

	if err := errors.Join(errs...); err != nil {
		outcome.State = models.StateFailed
		outcome.Err = err
		return outcome
	}
	outcome.State = models.StateSucceeded
	return outcome
}

// writeFileAtomic streams reader into a temporary file next to dest and
// renames it into place, so a failure or cancellation never leaves a
// truncated file at the destination path.
func (d *Downloader) writeFileAtomic(dest string, reader io.Reader) error {
	dir := filepath.Dir(dest)

	tmp, err := d.fs.TempFile(dir, "."+filepath.Base(dest)+".tmp-")
	if err != nil {
		return err
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		d.fs.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		d.fs.Remove(tmp.Name())
		return err
	}

	if err := d.fs.Rename(tmp.Name(), dest); err != nil {
		d.fs.Remove(tmp.Name())
		return err
	}
	return nil
}

func (d *Downloader) exists(path string) bool {
	ok, err := d.fs.Exists(path)
	return err == nil && ok
}

func failed(outcome models.ResourceOutcome, err error) models.ResourceOutcome {
	outcome.State = models.StateFailed
	outcome.Err = err
	return outcome
}

// videoExtension picks the file extension from the asset URL path,
// defaulting to .mp4.
func videoExtension(assetURL string) string {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return ".mp4"
	}
	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}
	return ".mp4"
}
