// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package ghinstall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v75/github"
)

// TokenOptions scope down an installation access token. Both fields are
// sent to GitHub as given.
type TokenOptions struct {
	// Permissions maps permission names (e.g. "contents") to access levels
	// (e.g. "read").
	Permissions map[string]string `json:"permissions,omitempty"`
	// Repositories restricts the token to the named repositories.
	Repositories []string `json:"repositories,omitempty"`
}

// Token is an installation access token and the time GitHub expires it.
type Token struct {
	Token     string
	ExpiresAt time.Time
}

// Client is a GitHub Apps API client authenticated as the App.
type Client struct {
	gh *github.Client
}

// New creates a Client that sends requests through transport to the
// GitHub API at baseURL.
func New(transport http.RoundTripper, baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid GitHub API URL %q", baseURL)
	}

	client := github.NewClient(&http.Client{
		Transport: transport,
	})
	client.BaseURL = u
	return &Client{gh: client}, nil
}

// FindRepositoryInstallation returns the ID of the App's installation on
// owner/repo.
func (c *Client) FindRepositoryInstallation(ctx context.Context, owner, repo string) (int64, error) {
	install, _, err := c.gh.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		return 0, err
	}
	clog.FromContext(ctx).Infof("found installation %d for %s/%s", install.GetID(), owner, repo)
	return install.GetID(), nil
}

// FindOrganizationInstallation returns the ID of the App's installation on
// the organization org.
func (c *Client) FindOrganizationInstallation(ctx context.Context, org string) (int64, error) {
	install, _, err := c.gh.Apps.FindOrganizationInstallation(ctx, org)
	if err != nil {
		return 0, err
	}
	clog.FromContext(ctx).Infof("found installation %d for %s", install.GetID(), org)
	return install.GetID(), nil
}

// CreateInstallationToken creates an installation access token for the
// installation id.
func (c *Client) CreateInstallationToken(ctx context.Context, id int64, opts TokenOptions) (*Token, error) {
	// go-github's InstallationPermissions drops permission names it does not
	// know about, so the body is sent as a plain map.
	req, err := c.gh.NewRequest(http.MethodPost, fmt.Sprintf("app/installations/%d/access_tokens", id), opts)
	if err != nil {
		return nil, err
	}

	tok := new(github.InstallationToken)
	if _, err := c.gh.Do(ctx, req, tok); err != nil {
		var gerr *github.ErrorResponse
		if errors.As(err, &gerr) && gerr.Response != nil && gerr.Response.StatusCode == http.StatusUnprocessableEntity {
			// GitHub answers 422 when the requested permissions or
			// repositories exceed what the installation was granted.
			clog.FromContext(ctx).Warnf("token request rejected for installation %d: %s", id, gerr.Message)
		}
		return nil, err
	}
	if tok.GetToken() == "" {
		return nil, errors.New("response did not contain a token")
	}
	clog.FromContext(ctx).Infof("created installation token for %d expiring at %s", id, tok.GetExpiresAt())
	return &Token{
		Token:     tok.GetToken(),
		ExpiresAt: tok.GetExpiresAt().Time,
	}, nil
}
