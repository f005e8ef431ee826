// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package ghtransport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/chainguard-dev/clog"
	"github.com/golang-jwt/jwt/v4"

	"github.com/octo-sts/app-token/pkg/envconfig"
	"github.com/octo-sts/app-token/pkg/kms"
	"github.com/octo-sts/app-token/pkg/maxsize"
	"github.com/octo-sts/app-token/pkg/secrets"
)

// DefaultMaxBodySize bounds every response read from the GitHub API.
const DefaultMaxBodySize = 10 * 1024 * 1024

// New creates a transport that authenticates as the App with appID. Each
// request carries a freshly signed App JWT. baseURL is the GitHub API
// endpoint the transport talks to, without a trailing slash.
func New(baseURL string, appID int64, signer ghinstallation.Signer) (*ghinstallation.AppsTransport, error) {
	if signer == nil {
		return nil, errors.New("no signer provided")
	}
	atr, err := ghinstallation.NewAppsTransportWithOptions(
		maxsize.NewRoundTripper(DefaultMaxBodySize, http.DefaultTransport),
		appID,
		ghinstallation.WithSigner(signer),
	)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub App transport: %w", err)
	}
	atr.BaseURL = strings.TrimSuffix(baseURL, "/")
	return atr, nil
}

// NewRSASigner parses a PEM encoded RSA private key into an RS256 signer.
func NewRSASigner(privateKey []byte) (ghinstallation.Signer, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return ghinstallation.NewRSASigner(jwt.SigningMethodRS256, key), nil
}

// Signer resolves the App's signing key from whichever key source env
// configures: an inline PEM, a PEM file, a secret manager secret or a KMS
// key.
func Signer(ctx context.Context, env *envconfig.EnvConfig) (ghinstallation.Signer, error) {
	switch {
	case env.PrivateKey != "":
		return NewRSASigner([]byte(env.PrivateKey))

	case env.PrivateKeyFile != "":
		b, err := os.ReadFile(env.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading private key file: %w", err)
		}
		return NewRSASigner(b)

	case env.PrivateKeySecret != "":
		sp, err := secrets.NewSecretProvider(ctx, env.SecretProvider)
		if err != nil {
			return nil, fmt.Errorf("creating secret provider: %w", err)
		}
		b, err := sp.GetSecret(ctx, env.PrivateKeySecret)
		if err != nil {
			return nil, err
		}
		clog.FromContext(ctx).Infof("loaded private key from %s secret manager", env.SecretProvider)
		return NewRSASigner(b)

	case env.KMSKey != "":
		k, err := kms.NewKMS(ctx, env.KMSProvider, env.KMSKey)
		if err != nil {
			return nil, fmt.Errorf("creating kms client: %w", err)
		}
		return k.NewSigner()

	default:
		return nil, errors.New("no private key source configured")
	}
}
