// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ghinstall talks to the GitHub Apps API on behalf of an App. It
// resolves the installation of the App on a repository or an organization
// and creates installation access tokens.
//
// Construct a Client with [New] from an App-authenticated transport; every
// call made through it is signed with the App's JWT.
package ghinstall
