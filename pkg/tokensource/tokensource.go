// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0
package tokensource

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	"golang.org/x/oauth2"

	"github.com/octo-sts/app-token/pkg/apptoken"
	"github.com/octo-sts/app-token/pkg/revoke"
)

// fallbackLifetime bounds tokens whose expiry GitHub did not report.
// Installation tokens live for an hour.
const fallbackLifetime = 45 * time.Minute

// TokenSource is an oauth2.TokenSource of GitHub App installation tokens.
// Every call to Token mints a new token. Wrap it in
// oauth2.ReuseTokenSource to reuse tokens until they expire.
type TokenSource struct {
	ctx     context.Context
	cfg     apptoken.Config
	fetcher *apptoken.Fetcher
}

func NewTokenSource(ctx context.Context, cfg apptoken.Config) *TokenSource {
	return &TokenSource{
		ctx:     ctx,
		cfg:     cfg,
		fetcher: &apptoken.Fetcher{},
	}
}

// Token mints an installation token.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ctx := ts.ctx
	clog.FromContext(ctx).Debugf("minting installation token for app %s", ts.cfg.AppID)

	res, err := ts.fetcher.FetchToken(ctx, ts.cfg)
	if err != nil {
		return nil, err
	}
	expiry := res.ExpiresAt
	if expiry.IsZero() {
		expiry = time.Now().Add(fallbackLifetime)
	}
	return &oauth2.Token{
		TokenType:   "Bearer",
		AccessToken: res.Token,
		Expiry:      expiry,
	}, nil
}

// Revoke revokes a token previously returned by Token.
func (ts *TokenSource) Revoke(tok *oauth2.Token) error {
	if tok == nil {
		return fmt.Errorf("no token to revoke")
	}
	return revoke.Revoke(ts.ctx, apptoken.NormalizeURL(ts.cfg.GitHubAPIURL), tok.AccessToken)
}
