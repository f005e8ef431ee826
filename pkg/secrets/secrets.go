// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package secrets reads a GitHub App's private key out of a cloud secret
// manager.
package secrets

import (
	"context"
	"fmt"
	"strings"

	gcpSM "cloud.google.com/go/secretmanager/apiv1"
	"github.com/aws/aws-sdk-go-v2/config"
	awsSM "github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/octo-sts/app-token/pkg/secrets/aws"
	"github.com/octo-sts/app-token/pkg/secrets/gcp"
)

// Supported values of SECRET_PROVIDER.
const (
	AWS = "aws"
	GCP = "gcp"
)

// SecretProvider fetches the payload of a secret.
type SecretProvider interface {
	GetSecret(ctx context.Context, keyID string) ([]byte, error)
}

// NewSecretProvider creates the secret manager client for provider ("gcp"
// or "aws", in any case).
func NewSecretProvider(ctx context.Context, provider string) (SecretProvider, error) {
	switch strings.ToLower(provider) {
	case GCP:
		client, err := gcpSM.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating GCP secret manager client: %w", err)
		}
		return &gcpSecrets{client: client}, nil
	case AWS:
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return &awsSecrets{client: awsSM.NewFromConfig(cfg)}, nil
	}
	return nil, fmt.Errorf("unsupported secret provider %q", provider)
}

// gcpSecrets reads secret versions by resource name, e.g.
// projects/p/secrets/s/versions/latest.
type gcpSecrets struct {
	client *gcpSM.Client
}

func (s *gcpSecrets) GetSecret(ctx context.Context, name string) ([]byte, error) {
	return gcp.GetSecret(ctx, s.client, name)
}

// awsSecrets reads the current value of a secret by name or ARN.
type awsSecrets struct {
	client aws.GetSecretValueAPI
}

func (s *awsSecrets) GetSecret(ctx context.Context, keyID string) ([]byte, error) {
	return aws.GetSecret(ctx, s.client, keyID)
}
