// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package maxsize bounds how much of a response body an HTTP client reads.
package maxsize

import (
	"io"
	"net/http"
)

// NewRoundTripper wraps inner so that at most maxSize bytes of every
// response body are readable. A nil inner means http.DefaultTransport.
func NewRoundTripper(maxSize int64, inner http.RoundTripper) http.RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &limitedTransport{
		inner: inner,
		limit: maxSize,
	}
}

type limitedTransport struct {
	inner http.RoundTripper
	limit int64
}

// RoundTrip implements http.RoundTripper
func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = &limitedBody{
		Reader: io.LimitReader(resp.Body, t.limit),
		Closer: resp.Body,
	}
	return resp, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}
