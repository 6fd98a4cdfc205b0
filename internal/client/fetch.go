package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/wwdcgrab/wwdcgrab/internal/apperrors"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
)

// FetchSessionPage retrieves the markup of a session page. A localized page
// that answers with a non-success status degrades to the canonical English
// page; transport failures are surfaced immediately.
func (c *client) FetchSessionPage(ctx context.Context, identity models.SessionIdentity) (string, error) {
	logger := config.GetLogger()

	pageURL := c.sessionPageURL(identity, true)
	markup, err := c.getString(ctx, pageURL)
	if err == nil {
		return markup, nil
	}

	var fetchErr *apperrors.ErrFetch
	if identity.Language != "" && errors.As(err, &fetchErr) {
		canonical := c.sessionPageURL(identity, false)
		logger.Warn().
			Int("status", fetchErr.Status).
			Str("localized", pageURL).
			Str("fallback", canonical).
			Msg("Localized page unavailable, falling back to canonical page")
		return c.getString(ctx, canonical)
	}

	return "", err
}

// FetchWebVTT retrieves one WebVTT track body verbatim.
func (c *client) FetchWebVTT(ctx context.Context, url string) (string, error) {
	return c.getString(ctx, url)
}

// Download opens a streaming GET for a binary resource.
func (c *client) Download(ctx context.Context, rawURL string) (*Payload, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Body:          resp.Body,
		Filename:      payloadFilename(resp, rawURL),
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// sessionPageURL builds the canonical or localized page URL for an identity.
func (c *client) sessionPageURL(identity models.SessionIdentity, localized bool) string {
	if localized && identity.Language != "" {
		return fmt.Sprintf("%s/%s/videos/play/wwdc%d/%s/", c.baseURL, identity.Language, identity.Year, identity.ID)
	}
	return fmt.Sprintf("%s/videos/play/wwdc%d/%s/", c.baseURL, identity.Year, identity.ID)
}

// getString performs a GET and reads the whole body, caching session pages
// and subtitle bodies for the lifetime of the process.
func (c *client) getString(ctx context.Context, url string) (string, error) {
	if cached, ok := c.pageCache.Get(url); ok {
		logger := config.GetLogger()
		logger.Debug().Str("url", url).Msg("Page cache hit")
		return cached, nil
	}

	resp, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewNetworkError(url, err)
	}

	c.pageCache.Add(url, string(body))
	return string(body), nil
}

// get issues one GET request and maps failures onto the error taxonomy:
// transport failures become ErrNetwork, non-2xx statuses become ErrFetch.
// The response body is returned open; the caller closes it.
func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewInvalidURLError(url, err.Error())
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError(url, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()
		return nil, apperrors.NewFetchError(resp.StatusCode, url)
	}

	return resp, nil
}

// payloadFilename derives the provider-given filename for a download,
// preferring Content-Disposition over the URL path base.
func payloadFilename(resp *http.Response, rawURL string) string {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return path.Base(name)
			}
		}
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		if base := path.Base(parsed.Path); base != "." && base != "/" {
			return base
		}
	}
	return "download"
}
