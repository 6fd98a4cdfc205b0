package client

import (
	"context"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
)

// Client defines the interface for fetching session pages and their resources.
type Client interface {
	// FetchSessionPage retrieves the raw markup of a session page, trying the
	// localized page first when the identity carries a language and falling
	// back to the canonical English page on a non-success status.
	FetchSessionPage(ctx context.Context, identity models.SessionIdentity) (string, error)

	// FetchWebVTT retrieves one subtitle track body verbatim.
	FetchWebVTT(ctx context.Context, url string) (string, error)

	// Download opens a streaming body for a binary resource. The caller owns
	// the payload body and must close it.
	Download(ctx context.Context, url string) (*Payload, error)
}

// Payload is a streamed download with the provider-derived file metadata.
type Payload struct {
	Body          io.ReadCloser
	Filename      string // from Content-Disposition, or the URL path base
	ContentType   string
	ContentLength int64 // -1 when unknown
}

// Close closes the underlying body.
func (p *Payload) Close() error {
	return p.Body.Close()
}

// client implements the Client interface
type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	pageCache  *lru.LRU[string, string]
}

// NewClient creates a client from configuration: timeout, retry policy and
// page cache sizes all come from config with sane defaults.
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()

	timeout := 30 * time.Second // default
	if cfg.ClientTimeout != "" {
		if parsedTimeout, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		} else {
			timeout = parsedTimeout
		}
	}

	backoff := time.Second
	if cfg.Retry.Backoff != "" {
		if parsedBackoff, err := time.ParseDuration(cfg.Retry.Backoff); err == nil {
			backoff = parsedBackoff
		}
	}

	// Clone DefaultTransport to preserve its connection pooling and HTTP/2
	// settings, then layer decompression and retry on top.
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	transport := newDecompressTransport(baseTransport)
	transport = newRetryTransport(transport, cfg.Retry.MaxRetries, backoff)

	cacheSize := cfg.PageCache.Size
	if cacheSize <= 0 {
		cacheSize = 32
	}
	cacheTTL := 10 * time.Minute
	if cfg.PageCache.TTL != "" {
		if parsedTTL, err := time.ParseDuration(cfg.PageCache.TTL); err == nil {
			cacheTTL = parsedTTL
		}
	}

	return &client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		pageCache: lru.NewLRU[string, string](cacheSize, nil, cacheTTL),
	}
}

// NewClientWithHTTP builds a client around an existing *http.Client.
// Used by tests and by callers that manage their own transport.
func NewClientWithHTTP(httpClient *http.Client, baseURL, userAgent string) Client {
	return &client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		pageCache:  lru.NewLRU[string, string](32, nil, 10*time.Minute),
	}
}
