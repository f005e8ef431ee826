// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package apptoken

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/chainguard-dev/clog"
	"github.com/hashicorp/go-multierror"

	"github.com/octo-sts/app-token/pkg/ghinstall"
	"github.com/octo-sts/app-token/pkg/ghtransport"
)

// DefaultGitHubAPIURL is used when Config.GitHubAPIURL is empty.
const DefaultGitHubAPIURL = "https://api.github.com"

// Config describes a single installation token mint.
type Config struct {
	// AppID is the numeric ID of the GitHub App.
	AppID string
	// PrivateKey is the App's PEM encoded private key. It is ignored when
	// Signer is set.
	PrivateKey []byte
	// Signer signs the App JWT, e.g. with a key held in a KMS.
	Signer ghinstallation.Signer

	// GitHubAPIURL is the base URL of the GitHub REST API. A trailing slash
	// is ignored.
	GitHubAPIURL string

	Owner string
	Repo  string
	// InstallationID skips the installation lookup when set.
	InstallationID *int64
	// Organization selects the organization installation lookup instead of
	// the repository one.
	Organization string

	Permissions  map[string]string
	Repositories []string
}

// AppsClient is the part of the GitHub Apps API a mint needs.
type AppsClient interface {
	FindRepositoryInstallation(ctx context.Context, owner, repo string) (int64, error)
	FindOrganizationInstallation(ctx context.Context, org string) (int64, error)
	CreateInstallationToken(ctx context.Context, id int64, opts ghinstall.TokenOptions) (*ghinstall.Token, error)
}

// Result is a minted installation token.
type Result struct {
	Token string
	// ExpiresAt is when GitHub expires Token. It is zero when the API did
	// not report it.
	ExpiresAt time.Time
	// InstallationID is the installation the token was minted for, whether
	// it was given or looked up.
	InstallationID int64
}

// Fetcher mints installation tokens.
type Fetcher struct {
	// NewClient creates the App-authenticated client for cfg. The
	// GitHubAPIURL of cfg has already been normalized. When nil, a go-github
	// client signed with cfg's key is used.
	NewClient func(ctx context.Context, cfg Config) (AppsClient, error)
}

// Fetch mints an installation token for cfg with the default Fetcher.
func Fetch(ctx context.Context, cfg Config) (string, error) {
	return (&Fetcher{}).Fetch(ctx, cfg)
}

// FetchToken mints an installation token for cfg with the default Fetcher
// and returns it with its metadata.
func FetchToken(ctx context.Context, cfg Config) (*Result, error) {
	return (&Fetcher{}).FetchToken(ctx, cfg)
}

// Fetch authenticates as the App, resolves the installation ID when cfg
// does not carry one and returns a new installation access token.
func (f *Fetcher) Fetch(ctx context.Context, cfg Config) (string, error) {
	res, err := f.FetchToken(ctx, cfg)
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

// FetchToken is Fetch, returning the token's expiry and installation too.
func (f *Fetcher) FetchToken(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.GitHubAPIURL = NormalizeURL(cfg.GitHubAPIURL)

	newClient := f.NewClient
	if newClient == nil {
		newClient = newGitHubClient
	}
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub App client: %w", err)
	}

	id, err := resolveInstallation(ctx, client, cfg)
	if err != nil {
		return nil, err
	}

	tok, err := client.CreateInstallationToken(ctx, id, ghinstall.TokenOptions{
		Permissions:  cfg.Permissions,
		Repositories: cfg.Repositories,
	})
	if err != nil {
		return nil, &TokenCreationError{InstallationID: id, Err: err}
	}
	return &Result{
		Token:          tok.Token,
		ExpiresAt:      tok.ExpiresAt,
		InstallationID: id,
	}, nil
}

func resolveInstallation(ctx context.Context, client AppsClient, cfg Config) (int64, error) {
	if cfg.InstallationID != nil {
		return *cfg.InstallationID, nil
	}

	if cfg.Organization != "" {
		id, err := client.FindOrganizationInstallation(ctx, cfg.Organization)
		if err != nil {
			clog.FromContext(ctx).Warnf("organization installation lookup for %s failed: %v", cfg.Organization, err)
			return 0, &InstallationLookupError{Organization: cfg.Organization, Err: err}
		}
		return id, nil
	}

	id, err := client.FindRepositoryInstallation(ctx, cfg.Owner, cfg.Repo)
	if err != nil {
		clog.FromContext(ctx).Warnf("repository installation lookup for %s/%s failed: %v", cfg.Owner, cfg.Repo, err)
		return 0, &InstallationLookupError{Owner: cfg.Owner, Repo: cfg.Repo, Err: err}
	}
	return id, nil
}

func newGitHubClient(_ context.Context, cfg Config) (AppsClient, error) {
	appID, err := parseAppID(cfg.AppID)
	if err != nil {
		return nil, err
	}
	signer := cfg.Signer
	if signer == nil {
		if signer, err = ghtransport.NewRSASigner(cfg.PrivateKey); err != nil {
			return nil, err
		}
	}
	atr, err := ghtransport.New(cfg.GitHubAPIURL, appID, signer)
	if err != nil {
		return nil, err
	}
	return ghinstall.New(atr, cfg.GitHubAPIURL)
}

// NormalizeURL strips the optional trailing slash of a GitHub API URL and
// falls back to DefaultGitHubAPIURL when u is empty.
func NormalizeURL(u string) string {
	if u == "" {
		return DefaultGitHubAPIURL
	}
	return strings.TrimSuffix(u, "/")
}

func parseAppID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid app ID %q: %w", s, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid app ID %q: must be positive", s)
	}
	return id, nil
}

func (c Config) validate() error {
	var merr error
	if c.AppID == "" {
		merr = multierror.Append(merr, errors.New("app ID is required"))
	} else if _, err := parseAppID(c.AppID); err != nil {
		merr = multierror.Append(merr, err)
	}
	if c.Signer == nil && len(c.PrivateKey) == 0 {
		merr = multierror.Append(merr, errors.New("private key is required"))
	}
	if c.InstallationID == nil && c.Organization == "" && (c.Owner == "" || c.Repo == "") {
		merr = multierror.Append(merr, errors.New("owner and repo are required when neither installation ID nor organization is set"))
	}
	return merr
}
