// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package aws signs GitHub App JWTs with an RSA key held in AWS KMS.
package aws

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/golang-jwt/jwt/v4"
)

// SignAPI is the part of the AWS KMS client used for signing.
type SignAPI interface {
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

type signingMethod struct {
	ctx    context.Context
	client SignAPI
}

func (s *signingMethod) Verify(string, string, interface{}) error {
	return errors.New("not implemented")
}

func (s *signingMethod) Sign(signingString string, ikey interface{}) (string, error) {
	keyID, ok := ikey.(string)
	if !ok {
		return "", fmt.Errorf("invalid key reference type: %T", ikey)
	}
	resp, err := s.client.Sign(s.ctx, &kms.SignInput{
		KeyId:            aws.String(keyID),
		Message:          []byte(signingString),
		MessageType:      types.MessageTypeRaw,
		SigningAlgorithm: types.SigningAlgorithmSpecRsassaPkcs1V15Sha256,
	})
	if err != nil {
		return "", fmt.Errorf("signing with %s: %w", keyID, err)
	}
	return base64.RawURLEncoding.EncodeToString(resp.Signature), nil
}

func (s *signingMethod) Alg() string {
	return "RS256"
}

type signer struct {
	method *signingMethod
	keyID  string
}

// New returns a Signer that signs App JWTs with the KMS key keyID (a key
// ID, key ARN or alias).
func New(ctx context.Context, client SignAPI, keyID string) (ghinstallation.Signer, error) {
	if client == nil {
		return nil, errors.New("nil kms client")
	}
	if keyID == "" {
		return nil, errors.New("kms key is required")
	}
	return &signer{
		method: &signingMethod{ctx: ctx, client: client},
		keyID:  keyID,
	}, nil
}

// Sign implements ghinstallation.Signer
func (s *signer) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(s.method, claims).SignedString(s.keyID)
}
