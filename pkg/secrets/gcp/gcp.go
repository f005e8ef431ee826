// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package gcp

import (
	"context"
	"errors"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// GetSecret returns the payload of the secret version name, e.g.
// projects/p/secrets/github-app-key/versions/latest.
func GetSecret(ctx context.Context, client *secretmanager.Client, name string) ([]byte, error) {
	if client == nil {
		return nil, errors.New("nil secret manager client")
	}
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching secret %s: %w", name, err)
	}
	if len(resp.GetPayload().GetData()) == 0 {
		return nil, fmt.Errorf("secret %s is empty", name)
	}
	return resp.GetPayload().GetData(), nil
}
