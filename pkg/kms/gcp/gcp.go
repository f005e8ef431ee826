// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package gcp signs GitHub App JWTs with an RSA key held in Google Cloud KMS.
package gcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/golang-jwt/jwt/v4"
)

// signingMethod implements jwt.SigningMethod. The "key" handed to Sign is
// the resource name of the KMS key version.
type signingMethod struct {
	ctx    context.Context
	client *kms.KeyManagementClient
}

func (s *signingMethod) Verify(string, string, interface{}) error {
	return errors.New("not implemented")
}

func (s *signingMethod) Sign(signingString string, ikey interface{}) (string, error) {
	name, ok := ikey.(string)
	if !ok {
		return "", fmt.Errorf("invalid key reference type: %T", ikey)
	}
	resp, err := s.client.AsymmetricSign(s.ctx, &kmspb.AsymmetricSignRequest{
		Name: name,
		Data: []byte(signingString),
	})
	if err != nil {
		return "", fmt.Errorf("signing with %s: %w", name, err)
	}
	return base64.RawURLEncoding.EncodeToString(resp.Signature), nil
}

func (s *signingMethod) Alg() string {
	return "RS256"
}

type signer struct {
	method *signingMethod
	key    string
}

// New returns a Signer that signs App JWTs with the KMS key version key,
// e.g. projects/p/locations/l/keyRings/r/cryptoKeys/k/cryptoKeyVersions/1.
func New(ctx context.Context, client *kms.KeyManagementClient, key string) (ghinstallation.Signer, error) {
	if client == nil {
		return nil, errors.New("nil kms client")
	}
	if key == "" {
		return nil, errors.New("kms key is required")
	}
	return &signer{
		method: &signingMethod{ctx: ctx, client: client},
		key:    key,
	}, nil
}

// Sign implements ghinstallation.Signer
func (s *signer) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(s.method, claims).SignedString(s.key)
}
