package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/klauspost/compress/zstd"
)

// decompressTransport advertises gzip/brotli/zstd support and transparently
// decodes the response body so callers always see plain bytes.
type decompressTransport struct {
	next http.RoundTripper
}

func newDecompressTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &decompressTransport{next: next}
}

func (t *decompressTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if clone.Header.Get("Accept-Encoding") == "" {
		clone.Header.Set("Accept-Encoding", "gzip, br, zstd")
	}

	resp, err := t.next.RoundTrip(clone)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	var decoded io.ReadCloser
	switch lastEncoding(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		decoded = gz
	case "br":
		decoded = io.NopCloser(brotli.NewReader(resp.Body))
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		decoded = zr.IOReadCloser()
	default:
		// Identity or unknown encoding, hand the body over untouched.
		return resp, nil
	}

	resp.Body = &layeredBody{decoded: decoded, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	return resp, nil
}

// lastEncoding returns the outermost coding of a Content-Encoding header,
// which is the one that must be removed first.
func lastEncoding(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}

// layeredBody closes both the decompressor and the underlying network body.
type layeredBody struct {
	decoded io.ReadCloser
	raw     io.ReadCloser
}

func (b *layeredBody) Read(p []byte) (int, error) {
	return b.decoded.Read(p)
}

func (b *layeredBody) Close() error {
	decodedErr := b.decoded.Close()
	rawErr := b.raw.Close()
	if decodedErr != nil {
		return decodedErr
	}
	return rawErr
}

// newRetryTransport wraps a round tripper with a failsafe retry policy:
// transport errors and 5xx responses are retried with exponential backoff.
// Retry lives in the transport so the fetcher itself owns no retry policy.
func newRetryTransport(next http.RoundTripper, maxRetries int, backoff time.Duration) http.RoundTripper {
	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			return err != nil || (resp != nil && resp.StatusCode >= http.StatusInternalServerError)
		}).
		WithBackoff(backoff, backoff*8).
		WithMaxRetries(maxRetries).
		Build()

	return failsafehttp.NewRoundTripper(next, policy)
}
