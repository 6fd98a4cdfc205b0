package apperrors

import "fmt"

// ErrInvalidURL is returned when an input URL does not match a known
// session-page path shape. Not retryable; the caller must fix the input.
type ErrInvalidURL struct {
	URL    string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidURL) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid session URL %q: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("invalid session URL %q", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidURL) Is(target error) bool {
	_, ok := target.(*ErrInvalidURL)
	return ok
}

// NewInvalidURLError creates a new ErrInvalidURL.
func NewInvalidURLError(url, reason string) *ErrInvalidURL {
	return &ErrInvalidURL{URL: url, Reason: reason}
}

// ErrFetch is returned when the server answered with a non-success HTTP status.
type ErrFetch struct {
	Status int
	URL    string
}

// Error implements the error interface.
func (e *ErrFetch) Error() string {
	return fmt.Sprintf("fetch of %s returned status %d", e.URL, e.Status)
}

// Is allows for error checking with errors.Is().
func (e *ErrFetch) Is(target error) bool {
	_, ok := target.(*ErrFetch)
	return ok
}

// NewFetchError creates a new ErrFetch.
func NewFetchError(status int, url string) *ErrFetch {
	return &ErrFetch{Status: status, URL: url}
}

// ErrNetwork is returned on transport-level failure (timeout, DNS,
// connection reset) before any HTTP status was received.
type ErrNetwork struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network failure fetching %s: %v", e.URL, e.Err)
}

// Is allows for error checking with errors.Is().
func (e *ErrNetwork) Is(target error) bool {
	_, ok := target.(*ErrNetwork)
	return ok
}

// Unwrap exposes the underlying transport error.
func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new ErrNetwork wrapping the transport error.
func NewNetworkError(url string, err error) *ErrNetwork {
	return &ErrNetwork{URL: url, Err: err}
}

// ErrExtraction is returned when a fetched page cannot be recognized as a
// session page. Only the title is mandatory, so in practice Field is "title".
type ErrExtraction struct {
	Field string
	URL   string
}

// Error implements the error interface.
func (e *ErrExtraction) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("failed to extract %s from %s: not a session page", e.Field, e.URL)
	}
	return fmt.Sprintf("failed to extract %s: not a session page", e.Field)
}

// Is allows for error checking with errors.Is().
func (e *ErrExtraction) Is(target error) bool {
	_, ok := target.(*ErrExtraction)
	return ok
}

// NewExtractionError creates a new ErrExtraction.
func NewExtractionError(field, url string) *ErrExtraction {
	return &ErrExtraction{Field: field, URL: url}
}

// ErrNoSubtitles is returned when a session exposes no subtitle tracks at all.
type ErrNoSubtitles struct {
	SessionID string
}

// Error implements the error interface.
func (e *ErrNoSubtitles) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("session %s has no subtitle tracks", e.SessionID)
	}
	return "session has no subtitle tracks"
}

// Is allows for error checking with errors.Is().
func (e *ErrNoSubtitles) Is(target error) bool {
	_, ok := target.(*ErrNoSubtitles)
	return ok
}

// NewNoSubtitlesError creates a new ErrNoSubtitles.
func NewNoSubtitlesError(sessionID string) *ErrNoSubtitles {
	return &ErrNoSubtitles{SessionID: sessionID}
}
