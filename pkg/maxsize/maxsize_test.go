// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package maxsize

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRoundTripper(t *testing.T) {
	body := strings.Repeat("x", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name string
		size int64
		want int
	}{{
		name: "larger than body",
		size: 1000000,
		want: len(body),
	}, {
		name: "exact",
		size: int64(len(body)),
		want: len(body),
	}, {
		name: "tiny size",
		size: 10,
		want: 10,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &http.Client{Transport: NewRoundTripper(tt.size, nil)}
			resp, err := client.Get(srv.URL)
			if err != nil {
				t.Fatalf("Get() = %v", err)
			}
			defer resp.Body.Close()

			got, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("ReadAll() = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("body length: got = %d, wanted = %d", len(got), tt.want)
			}
		})
	}
}

func TestRoundTripperError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := &http.Client{Transport: NewRoundTripper(10, http.DefaultTransport)}
	if _, err := client.Get(srv.URL); err == nil {
		t.Error("Get() against closed server: expected error, got nil")
	}
}
