package parser

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wwdcgrab/wwdcgrab/internal/apperrors"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
)

// whitespacePattern collapses runs of whitespace to a single space.
var whitespacePattern = regexp.MustCompile(`\s+`)

// timestampPattern matches a session-relative time marker like "12:34".
var timestampPattern = regexp.MustCompile(`\b(\d{1,3}:\d{2})\b`)

// SessionParser extracts a SessionRecord from session-page markup.
//
// The markup varies across years and is never guaranteed to be complete, so
// every field except the title is extracted independently and degrades to
// empty/absent instead of failing the whole parse.
type SessionParser struct {
	baseURL string
}

// NewSessionParser creates a parser resolving relative links against baseURL.
func NewSessionParser(baseURL string) *SessionParser {
	return &SessionParser{baseURL: baseURL}
}

// Parse builds the immutable session record from raw markup. The only fatal
// condition is a page without any heading: such a page is not a session page.
func (p *SessionParser) Parse(body io.Reader, identity models.SessionIdentity) (*models.SessionRecord, error) {
	logger := config.GetLogger()

	utf8Body, err := NewUTF8Reader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare markup for parsing: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	pageURL := p.sessionPageURL(identity)

	title, ok := p.extractTitle(doc)
	if !ok {
		logger.Error().Str("url", pageURL).Msg("Page has no heading, not a session page")
		return nil, apperrors.NewExtractionError("title", pageURL)
	}

	record := &models.SessionRecord{
		Identity:          identity,
		Title:             title,
		Description:       p.extractDescription(doc),
		VideoAssets:       p.extractVideoAssets(doc, pageURL),
		TranscriptContent: p.extractTranscript(doc),
		CodeSamples:       p.extractCodeSamples(doc),
		SampleCodeURL:     p.extractSampleCodeURL(doc, pageURL),
		SubtitleTracks:    p.extractSubtitleTracks(doc, pageURL),
	}

	logger.Info().
		Str("title", record.Title).
		Int("videos", len(record.VideoAssets)).
		Int("codeSamples", len(record.CodeSamples)).
		Int("subtitleTracks", len(record.SubtitleTracks)).
		Bool("transcript", record.TranscriptContent != "").
		Bool("sampleCode", record.SampleCodeURL != "").
		Msg("Extracted session record")

	return record, nil
}

// extractTitle finds the primary heading. h1 is preferred; h2 is accepted so
// older pages with a banner-level h1 removed still parse.
func (p *SessionParser) extractTitle(doc *goquery.Document) (string, bool) {
	for _, selector := range []string{"h1", "h2"} {
		heading := doc.Find(selector).First()
		if heading.Length() == 0 {
			continue
		}
		if title := collapseWhitespace(heading.Text()); title != "" {
			return title, true
		}
	}
	return "", false
}

func (p *SessionParser) extractDescription(doc *goquery.Document) string {
	return collapseWhitespace(doc.Find("p.description").First().Text())
}

// extractVideoAssets scans <source> elements for known quality tokens.
// Elements with unknown tokens or without a source URL are skipped.
func (p *SessionParser) extractVideoAssets(doc *goquery.Document, pageURL string) []models.VideoAsset {
	logger := config.GetLogger()
	var assets []models.VideoAsset

	doc.Find("source").Each(func(i int, sel *goquery.Selection) {
		src, exists := sel.Attr("src")
		if !exists || src == "" {
			return
		}

		token, exists := sel.Attr("data-quality")
		if !exists {
			token, _ = sel.Attr("quality")
		}
		quality := models.ParseVideoQuality(token)
		if quality == models.QualityUnknown {
			logger.Debug().Str("token", token).Str("src", src).Msg("Skipping source with unknown quality token")
			return
		}

		assets = append(assets, models.VideoAsset{
			Quality: quality,
			URL:     resolveURL(pageURL, src),
		})
	})

	return assets
}

// extractTranscript reads the transcript container, joining paragraphs with
// newlines and collapsing intra-paragraph whitespace. Older pages carry the
// transcript as a flat run of .sentence spans instead of a container with
// paragraphs; those are stitched back into sentence-per-line form.
func (p *SessionParser) extractTranscript(doc *goquery.Document) string {
	container := doc.Find("#transcript, .transcript").First()
	if container.Length() > 0 {
		paragraphs := container.Find("p")
		if paragraphs.Length() > 0 {
			var lines []string
			paragraphs.Each(func(i int, paragraph *goquery.Selection) {
				if text := collapseWhitespace(paragraph.Text()); text != "" {
					lines = append(lines, text)
				}
			})
			return strings.Join(lines, "\n")
		}
		return collapseWhitespace(container.Text())
	}

	sentences := doc.Find(".sentence")
	if sentences.Length() == 0 {
		return ""
	}

	var sb strings.Builder
	sentences.Each(func(i int, sentence *goquery.Selection) {
		sb.WriteString(sentence.Text())
	})
	text := collapseWhitespace(sb.String())
	return strings.ReplaceAll(text, ". ", ".\n")
}

// extractCodeSamples collects code-bearing nodes in document order. Title and
// timestamp come from the nearest preceding siblings and are both optional;
// the code text itself is kept verbatim, indentation included.
func (p *SessionParser) extractCodeSamples(doc *goquery.Document) []models.CodeSample {
	var samples []models.CodeSample

	doc.Find("pre").Each(func(i int, pre *goquery.Selection) {
		code := pre.Find("code").First()
		if code.Length() == 0 {
			return
		}
		codeText := strings.Trim(code.Text(), "\n")
		if strings.TrimSpace(codeText) == "" {
			return
		}

		title, timestamp := precedingContext(pre)
		samples = append(samples, models.CodeSample{
			Title:     title,
			Timestamp: timestamp,
			Code:      codeText,
		})
	})

	return samples
}

// precedingContext reads the title and timestamp of a code block from its
// nearest preceding heading or paragraph sibling. The walk stops at the
// previous code block so one sample never inherits another's context.
func precedingContext(sel *goquery.Selection) (title, timestamp string) {
	for prev := sel.Prev(); prev.Length() > 0; prev = prev.Prev() {
		switch goquery.NodeName(prev) {
		case "pre":
			return "", ""
		case "h2", "h3", "h4", "h5", "h6":
			return collapseWhitespace(prev.Text()), timestampPattern.FindString(prev.Text())
		case "p":
			if link := prev.Find("a.jump-to-time-sample").First(); link.Length() > 0 {
				title = collapseWhitespace(link.Text())
			}
			return title, timestampPattern.FindString(prev.Text())
		}
	}
	return "", ""
}

// extractSampleCodeURL finds the downloadable sample-code archive link.
func (p *SessionParser) extractSampleCodeURL(doc *goquery.Document, pageURL string) string {
	anchor := doc.Find(`a[href*="sample-code"]`).First()
	if anchor.Length() == 0 {
		return ""
	}
	href, exists := anchor.Attr("href")
	if !exists || href == "" {
		return ""
	}
	return resolveURL(pageURL, href)
}

// extractSubtitleTracks scans <track> elements. A track needs both a language
// and a source URL; malformed entries are skipped, and the first track per
// language wins.
func (p *SessionParser) extractSubtitleTracks(doc *goquery.Document, pageURL string) map[string]models.SubtitleTrack {
	logger := config.GetLogger()
	tracks := make(map[string]models.SubtitleTrack)

	doc.Find("track").Each(func(i int, sel *goquery.Selection) {
		lang, hasLang := sel.Attr("srclang")
		src, hasSrc := sel.Attr("src")
		lang = strings.ToLower(strings.TrimSpace(lang))
		if !hasLang || !hasSrc || lang == "" || src == "" {
			logger.Debug().Int("index", i).Msg("Skipping malformed subtitle track")
			return
		}
		if _, seen := tracks[lang]; seen {
			return
		}
		tracks[lang] = models.SubtitleTrack{
			Language: lang,
			URL:      resolveURL(pageURL, src),
		}
	})

	if len(tracks) == 0 {
		return nil
	}
	return tracks
}

func (p *SessionParser) sessionPageURL(identity models.SessionIdentity) string {
	return fmt.Sprintf("%s/videos/play/wwdc%d/%s/", p.baseURL, identity.Year, identity.ID)
}

// collapseWhitespace trims and normalizes consecutive whitespace to single spaces.
func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// resolveURL resolves href against the page URL, returning href unchanged
// when either side fails to parse.
func resolveURL(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
