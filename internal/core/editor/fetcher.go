// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/taibuivan/mediagate/internal/platform/apperr"
	"github.com/taibuivan/mediagate/internal/platform/constants"
)

// Fetcher downloads rendered images from Imgix.
type Fetcher interface {
	// Fetch returns the body and its Content-Type. The caller closes the body.
	Fetch(ctx context.Context, url string) (io.ReadCloser, string, error)
}

// HTTPFetcher is a [Fetcher] over net/http.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher using client, or [http.DefaultClient] when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// Fetch performs a GET. Transport failures and non-2xx responses are
// reported as BAD_GATEWAY.
func (fetcher *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", apperr.Internal(fmt.Errorf("imgix_request_failed: %w", err))
	}

	response, err := fetcher.client.Do(request)
	if err != nil {
		return nil, "", apperr.BadGateway(fmt.Errorf("imgix_fetch_failed: %w", err))
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		_ = response.Body.Close()
		return nil, "", apperr.BadGateway(fmt.Errorf("imgix_fetch_failed: %s returned %d", url, response.StatusCode))
	}

	return response.Body, response.Header.Get(constants.HeaderContentType), nil
}
