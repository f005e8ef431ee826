// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ceevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/protocol"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type recordingClient struct {
	Nop
	sent   []ceevent.Event
	result protocol.Result
}

func (r *recordingClient) Send(_ context.Context, e ceevent.Event) protocol.Result {
	r.sent = append(r.sent, e)
	return r.result
}

func TestEmit(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{}

	m := Mint{
		AppID:        "12345",
		GitHubAPIURL: "https://api.github.com",
		Owner:        "octo-org",
		Repo:         "octo-repo",
		Permissions:  map[string]string{"contents": "read"},
	}
	m.SetToken("ghs_secret")
	Emit(ctx, client, m)

	if len(client.sent) != 1 {
		t.Fatalf("sent %d events, wanted 1", len(client.sent))
	}
	e := client.sent[0]
	assert.Equal(t, Type, e.Type())
	assert.Equal(t, "octo-org/octo-repo", e.Subject())

	got := Mint{}
	if err := e.DataAs(&got); err != nil {
		t.Fatalf("DataAs() = %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("payload (-want +got): %s", diff)
	}
	assert.NotContains(t, string(e.Data()), "ghs_secret")

	hash := sha256.Sum256([]byte("ghs_secret"))
	assert.Equal(t, hex.EncodeToString(hash[:]), got.TokenSHA256)
}

func TestEmitIgnoresDeliveryFailure(t *testing.T) {
	client := &recordingClient{result: errors.New("connection refused")}
	Emit(context.Background(), client, Mint{Organization: "octo-org"})
	assert.Len(t, client.sent, 1)
}

func TestSubject(t *testing.T) {
	for _, tc := range []struct {
		m    Mint
		want string
	}{
		{Mint{InstallationID: 42, Organization: "octo-org"}, "installation/42"},
		{Mint{Organization: "octo-org"}, "octo-org"},
		{Mint{Owner: "octo-org", Repo: "octo-repo"}, "octo-org/octo-repo"},
	} {
		assert.Equal(t, tc.want, tc.m.Subject())
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("")
	assert.NoError(t, err)
	assert.IsType(t, Nop{}, c)

	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	c, err = NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	Emit(context.Background(), c, Mint{AppID: "12345", Organization: "octo-org"})
	assert.True(t, strings.Contains(body, `"organization":"octo-org"`), "body: %s", body)
}
