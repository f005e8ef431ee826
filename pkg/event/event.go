// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

const (
	// Type is the CloudEvents type of a mint notification.
	Type   = "dev.app-token.mint"
	source = "https://github.com/octo-sts/app-token"
)

// Mint records one attempt to mint an installation token. It never carries
// the token itself.
type Mint struct {
	AppID          string            `json:"app_id"`
	GitHubAPIURL   string            `json:"github_api_url"`
	Owner          string            `json:"owner,omitempty"`
	Repo           string            `json:"repo,omitempty"`
	Organization   string            `json:"organization,omitempty"`
	InstallationID int64             `json:"installation_id,omitempty"`
	Permissions    map[string]string `json:"permissions,omitempty"`
	Repositories   []string          `json:"repositories,omitempty"`
	TokenSHA256    string            `json:"token_sha256,omitempty"`
	ExpiresAt      time.Time         `json:"expires_at,omitzero"`
	Error          string            `json:"error,omitempty"`
}

// SetToken records the SHA256 of tok.
func (m *Mint) SetToken(tok string) {
	hash := sha256.Sum256([]byte(tok))
	m.TokenSHA256 = hex.EncodeToString(hash[:])
}

// Subject identifies what the token was minted for.
func (m *Mint) Subject() string {
	switch {
	case m.InstallationID != 0:
		return fmt.Sprintf("installation/%d", m.InstallationID)
	case m.Organization != "":
		return m.Organization
	default:
		return fmt.Sprintf("%s/%s", m.Owner, m.Repo)
	}
}

// Emit sends m through ceclient. Delivery failures are logged and otherwise
// ignored.
func Emit(ctx context.Context, ceclient cloudevents.Client, m Mint) {
	event := cloudevents.NewEvent()
	event.SetType(Type)
	event.SetSubject(m.Subject())
	event.SetSource(source)
	if err := event.SetData(cloudevents.ApplicationJSON, m); err != nil {
		clog.FromContext(ctx).Infof("Failed to encode event payload: %v", err)
		return
	}
	if ceresult := ceclient.Send(context.WithoutCancel(ctx), event); cloudevents.IsUndelivered(ceresult) || cloudevents.IsNACK(ceresult) {
		clog.FromContext(ctx).Errorf("Failed to deliver event: %v", ceresult)
	}
}

// NewClient returns a CloudEvents HTTP client targeting ingress, or a Nop
// client when ingress is empty.
func NewClient(ingress string) (cloudevents.Client, error) {
	if ingress == "" {
		return Nop{}, nil
	}
	return cloudevents.NewClientHTTP(cloudevents.WithTarget(ingress))
}
