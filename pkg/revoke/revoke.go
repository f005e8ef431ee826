// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package revoke

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Revoke revokes the installation access token tok against the GitHub API
// at baseURL. The token authenticates its own revocation.
func Revoke(ctx context.Context, baseURL, tok string) error {
	if tok == "" {
		return fmt.Errorf("no token to revoke")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, strings.TrimSuffix(baseURL, "/")+"/installation/token", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		TokenType:   "Bearer",
		AccessToken: tok,
	}))
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// The token was revoked!
	return nil
}
