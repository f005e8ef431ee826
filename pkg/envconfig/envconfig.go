// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package envconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
)

type EnvConfig struct {
	AppID string `envconfig:"GITHUB_APP_ID" required:"true"`

	// Exactly one of the following key sources must be set.
	PrivateKey       string `envconfig:"APP_PRIVATE_KEY" required:"false"`
	PrivateKeyFile   string `envconfig:"APP_PRIVATE_KEY_FILE" required:"false"`
	PrivateKeySecret string `envconfig:"APP_PRIVATE_KEY_SECRET" required:"false"`
	KMSKey           string `envconfig:"KMS_KEY" required:"false"`

	SecretProvider string `envconfig:"SECRET_PROVIDER" required:"false" default:"gcp"`
	KMSProvider    string `envconfig:"KMS_PROVIDER" required:"false" default:"gcp"`

	GitHubAPIURL   string   `envconfig:"GITHUB_API_URL" required:"false" default:"https://api.github.com"`
	Repository     string   `envconfig:"GITHUB_REPOSITORY" required:"false"`
	InstallationID int64    `envconfig:"INSTALLATION_ID" required:"false"`
	Organization   string   `envconfig:"ORGANIZATION" required:"false"`
	Permissions    string   `envconfig:"PERMISSIONS" required:"false"`
	Repositories   []string `envconfig:"REPOSITORIES" required:"false"`
	RequestFile    string   `envconfig:"REQUEST_FILE" required:"false"`

	EventingIngress string `envconfig:"EVENT_INGRESS_URI" required:"false"`
}

// Owner returns the owner half of Repository.
func (e *EnvConfig) Owner() string {
	owner, _, _ := strings.Cut(e.Repository, "/")
	return owner
}

// Repo returns the repository half of Repository.
func (e *EnvConfig) Repo() string {
	_, repo, _ := strings.Cut(e.Repository, "/")
	return repo
}

type RevokeConfig struct {
	GitHubAPIURL string `envconfig:"GITHUB_API_URL" required:"false" default:"https://api.github.com"`
	Token        string `envconfig:"TOKEN" required:"true"`
}

// Process loads the minting configuration from the environment.
func Process() (*EnvConfig, error) {
	cfg := new(EnvConfig)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProcessRevoke loads the revocation configuration from the environment.
func ProcessRevoke() (*RevokeConfig, error) {
	cfg := new(RevokeConfig)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (e *EnvConfig) validate() error {
	var merr error

	if strings.TrimSpace(e.AppID) == "" {
		merr = multierror.Append(merr, errors.New("GITHUB_APP_ID must not be empty"))
	}

	sources := 0
	for _, s := range []string{e.PrivateKey, e.PrivateKeyFile, e.PrivateKeySecret, e.KMSKey} {
		if s != "" {
			sources++
		}
	}
	switch sources {
	case 0:
		merr = multierror.Append(merr, errors.New("one of APP_PRIVATE_KEY, APP_PRIVATE_KEY_FILE, APP_PRIVATE_KEY_SECRET or KMS_KEY must be set"))
	case 1:
	default:
		merr = multierror.Append(merr, errors.New("only one of APP_PRIVATE_KEY, APP_PRIVATE_KEY_FILE, APP_PRIVATE_KEY_SECRET or KMS_KEY may be set"))
	}

	if e.Repository != "" {
		owner, repo, ok := strings.Cut(e.Repository, "/")
		if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			merr = multierror.Append(merr, fmt.Errorf("GITHUB_REPOSITORY must have the form owner/repo, got %q", e.Repository))
		}
	}
	if e.InstallationID < 0 {
		merr = multierror.Append(merr, fmt.Errorf("INSTALLATION_ID must be positive, got %d", e.InstallationID))
	}

	return merr
}
