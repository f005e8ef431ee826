// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package apptoken

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Request describes the installation a token is minted for and the scope
// of that token. It is read from YAML or JSON files.
type Request struct {
	// Owner of the repository whose installation is looked up.
	Owner string `json:"owner,omitempty"`
	// Repo is the name of the repository whose installation is looked up.
	Repo string `json:"repo,omitempty"`
	// InstallationID skips the installation lookup.
	InstallationID *int64 `json:"installation_id,omitempty"`
	// Organization looks up the App's organization installation instead of
	// the repository one.
	Organization string `json:"organization,omitempty"`
	// Permissions maps GitHub App permission names to access levels, for
	// example {"contents": "read", "pull_requests": "write"}.
	Permissions map[string]string `json:"permissions,omitempty"`
	// Repositories restricts the token to these repository names.
	Repositories []string `json:"repositories,omitempty"`
}

// ParseRequest strictly parses a YAML or JSON request document.
func ParseRequest(raw []byte) (*Request, error) {
	req := new(Request)
	if err := yaml.UnmarshalStrict(raw, req); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	return req, nil
}

// ParsePermissions parses a YAML or JSON mapping of permission names to
// access levels. An empty input yields a nil mapping.
func ParsePermissions(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var perms map[string]string
	if err := yaml.UnmarshalStrict([]byte(raw), &perms); err != nil {
		return nil, fmt.Errorf("parsing permissions: %w", err)
	}
	return perms, nil
}

// Apply copies the fields set in r onto cfg. When r names a target of its
// own, the installation ID and organization of cfg are dropped so that they
// cannot take precedence over it.
func (r *Request) Apply(cfg *Config) {
	if r.hasTarget() {
		cfg.InstallationID = nil
		cfg.Organization = ""
	}
	if r.Owner != "" {
		cfg.Owner = r.Owner
	}
	if r.Repo != "" {
		cfg.Repo = r.Repo
	}
	if r.InstallationID != nil {
		cfg.InstallationID = r.InstallationID
	}
	if r.Organization != "" {
		cfg.Organization = r.Organization
	}
	if r.Permissions != nil {
		cfg.Permissions = r.Permissions
	}
	if r.Repositories != nil {
		cfg.Repositories = r.Repositories
	}
}

func (r *Request) hasTarget() bool {
	return r.InstallationID != nil || r.Organization != "" || r.Owner != "" || r.Repo != ""
}
