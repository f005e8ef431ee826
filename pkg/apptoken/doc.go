// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package apptoken exchanges a GitHub App's credentials for a short-lived
// installation access token.
//
// A mint takes at most three calls to the GitHub API: the App authenticates
// with a JWT signed by its private key, the installation ID is resolved for
// the target organization or repository when the caller did not supply one,
// and an installation access token is created, optionally scoped down by a
// permissions mapping.
//
// Use [Fetch] for the common case, or a [Fetcher] with a custom
// [AppsClient] constructor when the GitHub client must be replaced.
package apptoken
