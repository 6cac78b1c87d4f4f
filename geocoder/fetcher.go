// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jcodagnone/geokit/utils/httputils"
	"golang.org/x/net/html/charset"
)

// Fetcher returns the body of a successful GET request. Providers depend on
// it rather than on net/http so their parsing can be tested offline.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	// Timeout for the whole request, defaults to 10 seconds
	Timeout time.Duration

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// RequestsPerSecond throttles outbound requests when positive
	RequestsPerSecond float64

	// TraceWriter receives a dump of every request and response when set
	TraceWriter io.Writer

	// Include bodies in the trace
	TraceBody bool
}

const maxBodySize = 1 << 20

// HTTPFetcher is the Fetcher used against real provider endpoints.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the provided options.
func NewHTTPFetcher(options FetcherOptions) *HTTPFetcher {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	var rt http.RoundTripper = &httputils.LoggingRoundTripper{
		Writer:    options.TraceWriter,
		DumpBody:  options.TraceBody,
		Transport: transport,
	}

	if options.RequestsPerSecond > 0 {
		rt = httputils.NewRateLimitRoundTripper(rt, options.RequestsPerSecond)
	}

	userAgent := "geokit/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	rt = &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "*/*",
		},
		Transport: rt,
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: rt,
		},
	}
}

// Fetch implements Fetcher. Non 200 responses are classified into a
// GeocodingError and bodies are decoded to UTF-8 according to their
// declared charset.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &GeocodingError{Type: ErrorTypeTimeout, Message: "geocoding request timed out", Err: err}
		}

		return nil, &GeocodingError{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, ClassifyHTTPError(resp.StatusCode, string(body))
	}

	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeParse, Message: "decoding response charset", Err: err}
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeNetworkError, Message: fmt.Sprintf("reading response from %s", req.URL.Host), Err: err}
	}

	return body, nil
}
