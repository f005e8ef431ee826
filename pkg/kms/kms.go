// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package kms creates GitHub App JWT signers backed by a key held in a cloud
// KMS. The private key never leaves the KMS.
package kms

import (
	"context"
	"fmt"
	"strings"

	kmsGCP "cloud.google.com/go/kms/apiv1"
	"github.com/aws/aws-sdk-go-v2/config"
	kmsAWS "github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/bradleyfalzon/ghinstallation/v2"

	"github.com/octo-sts/app-token/pkg/kms/aws"
	"github.com/octo-sts/app-token/pkg/kms/gcp"
)

// Supported values of KMS_PROVIDER.
const (
	AWS = "aws"
	GCP = "gcp"
)

// KMS is a key in a cloud KMS that App JWTs can be signed with.
type KMS interface {
	NewSigner() (ghinstallation.Signer, error)
}

// NewKMS connects to the KMS of provider ("gcp" or "aws", in any case) and
// returns the key named key in it. For GCP, key is a crypto key version
// resource name. For AWS it is a key ID, key ARN or alias.
func NewKMS(ctx context.Context, provider, key string) (KMS, error) {
	switch strings.ToLower(provider) {
	case GCP:
		client, err := kmsGCP.NewKeyManagementClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating GCP KMS client: %w", err)
		}
		return &gcpKey{ctx: ctx, client: client, name: key}, nil
	case AWS:
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return &awsKey{ctx: ctx, client: kmsAWS.NewFromConfig(cfg), keyID: key}, nil
	}
	return nil, fmt.Errorf("unsupported kms provider %q", provider)
}

type gcpKey struct {
	ctx    context.Context
	client *kmsGCP.KeyManagementClient
	name   string
}

func (k *gcpKey) NewSigner() (ghinstallation.Signer, error) {
	return gcp.New(k.ctx, k.client, k.name)
}

type awsKey struct {
	ctx    context.Context
	client aws.SignAPI
	keyID  string
}

func (k *awsKey) NewSigner() (ghinstallation.Signer, error) {
	return aws.New(k.ctx, k.client, k.keyID)
}
