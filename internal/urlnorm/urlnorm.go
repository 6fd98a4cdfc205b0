// Package urlnorm turns session-page URLs into normalized session identities.
package urlnorm

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/wwdcgrab/wwdcgrab/internal/apperrors"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
)

// DeveloperHost is the only host session pages live on.
const DeveloperHost = "developer.apple.com"

// localePattern matches the 2-5 character locale segment of localized URLs,
// e.g. "jp", "kr", "zh-cn".
var localePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// sessionIDPattern matches the numeric session id path segment.
var sessionIDPattern = regexp.MustCompile(`^\d+$`)

// Parse extracts the session identity from a canonical
// (/videos/play/wwdc<year>/<id>/) or localized
// (/<lang>/videos/play/wwdc<year>/<id>/) session URL.
//
// langOverride, when non-empty, always wins over the locale segment of the
// URL. Parse performs no I/O and is deterministic.
func Parse(rawURL, langOverride string) (models.SessionIdentity, error) {
	var identity models.SessionIdentity

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return identity, apperrors.NewInvalidURLError(rawURL, "not a parseable URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return identity, apperrors.NewInvalidURLError(rawURL, "scheme must be http or https")
	}
	if parsed.Host != DeveloperHost {
		return identity, apperrors.NewInvalidURLError(rawURL, "host must be "+DeveloperHost)
	}

	segments := splitPath(parsed.Path)

	// Optional locale segment before "videos".
	language := ""
	if len(segments) > 0 && localePattern.MatchString(segments[0]) {
		language = segments[0]
		segments = segments[1:]
	}

	if len(segments) != 4 || segments[0] != "videos" || segments[1] != "play" {
		return identity, apperrors.NewInvalidURLError(rawURL, "path must be /videos/play/wwdc<year>/<id>")
	}

	year, ok := parseEventYear(segments[2])
	if !ok {
		return identity, apperrors.NewInvalidURLError(rawURL, "missing wwdc<year> path segment")
	}
	if !sessionIDPattern.MatchString(segments[3]) {
		return identity, apperrors.NewInvalidURLError(rawURL, "session id must be numeric")
	}

	if langOverride != "" {
		language = langOverride
	}

	identity = models.SessionIdentity{
		Year:     year,
		ID:       segments[3],
		Language: language,
	}
	return identity, nil
}

// splitPath breaks a URL path into its non-empty segments.
func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// parseEventYear extracts the year from a "wwdc<year>" segment.
func parseEventYear(segment string) (int, bool) {
	rest, found := strings.CutPrefix(strings.ToLower(segment), "wwdc")
	if !found || len(rest) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return year, true
}
