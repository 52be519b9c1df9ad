package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrUnsupportedLocator is returned when no Source handles a locator's scheme.
var ErrUnsupportedLocator = errors.New("media: unsupported locator")

// Source opens the byte stream behind a locator.
type Source interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// StatusError is returned for a non-2xx HTTP response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// HTTPSource fetches http and https locators.
type HTTPSource struct {
	Client *http.Client
}

// Open issues a GET and returns the response body.
func (s HTTPSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: locator}
	}
	return resp.Body, nil
}

// DataSource decodes inline data: locators.
type DataSource struct{}

// Open decodes the payload of a data: URL.
func (DataSource) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	data, err := DecodeDataURL(locator)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// DecodeDataURL returns the payload of "data:[<type>][;base64],<data>".
func DecodeDataURL(s string) ([]byte, error) {
	const scheme = "data:"
	if len(s) < len(scheme) || !strings.EqualFold(s[:len(scheme)], scheme) {
		return nil, fmt.Errorf("not a data url: %w", ErrUnsupportedLocator)
	}
	rest := s[len(scheme):]
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("data url: missing payload separator")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data url: %w", err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data url: %w", err)
	}
	return []byte(text), nil
}

// Sources routes a locator to a Source by URL scheme.
type Sources map[string]Source

// DefaultSources handles http, https and data locators.
func DefaultSources(client *http.Client) Sources {
	h := HTTPSource{Client: client}
	return Sources{
		"http":  h,
		"https": h,
		"data":  DataSource{},
	}
}

// Open dispatches on the scheme of locator.
func (s Sources) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	scheme, _, ok := strings.Cut(locator, ":")
	if !ok {
		return nil, fmt.Errorf("%q: %w", locator, ErrUnsupportedLocator)
	}
	src, ok := s[strings.ToLower(scheme)]
	if !ok {
		return nil, fmt.Errorf("scheme %q: %w", scheme, ErrUnsupportedLocator)
	}
	return src.Open(ctx, locator)
}
