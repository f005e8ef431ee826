// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package apptoken

import "fmt"

// InstallationLookupError is returned when the installation ID for the
// target repository or organization could not be resolved.
type InstallationLookupError struct {
	// Organization is set when the organization lookup failed, otherwise
	// Owner and Repo name the repository that was looked up.
	Organization string
	Owner        string
	Repo         string

	Err error
}

func (e *InstallationLookupError) Error() string {
	msg := "Could not get repo installation. Is the app installed on this repo?"
	if e.Organization != "" {
		msg = "Could not get organization installation. Is the app installed on this organization?"
	}
	if e.Err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *InstallationLookupError) Unwrap() error {
	return e.Err
}

// TokenCreationError is returned when GitHub refused to issue an
// installation access token.
type TokenCreationError struct {
	InstallationID int64

	Err error
}

func (e *TokenCreationError) Error() string {
	const msg = "Could not create installation access token."
	if e.Err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *TokenCreationError) Unwrap() error {
	return e.Err
}
