// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

type fakeSigner struct {
	input *kms.SignInput
	err   error
}

func (f *fakeSigner) Sign(_ context.Context, params *kms.SignInput, _ ...func(*kms.Options)) (*kms.SignOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &kms.SignOutput{Signature: []byte("fake")}, nil
}

func TestSign(t *testing.T) {
	fake := &fakeSigner{}
	signer, err := New(context.Background(), fake, "alias/github-app")
	assert.NoError(t, err)

	tok, err := signer.Sign(jwt.RegisteredClaims{Issuer: "12345"})
	assert.NoError(t, err)

	parts := strings.Split(tok, ".")
	if assert.Len(t, parts, 3) {
		assert.Equal(t, base64.RawURLEncoding.EncodeToString([]byte("fake")), parts[2])
		assert.Equal(t, parts[0]+"."+parts[1], string(fake.input.Message))
	}
	assert.Equal(t, "alias/github-app", *fake.input.KeyId)
	assert.Equal(t, types.MessageTypeRaw, fake.input.MessageType)
	assert.Equal(t, types.SigningAlgorithmSpecRsassaPkcs1V15Sha256, fake.input.SigningAlgorithm)
}

func TestSignError(t *testing.T) {
	cause := errors.New("access denied")
	signer, err := New(context.Background(), &fakeSigner{err: cause}, "alias/github-app")
	assert.NoError(t, err)

	_, err = signer.Sign(jwt.RegisteredClaims{Issuer: "12345"})
	assert.ErrorIs(t, err, cause)
}

func TestNewValidation(t *testing.T) {
	_, err := New(context.Background(), nil, "alias/github-app")
	assert.Error(t, err)

	_, err = New(context.Background(), &fakeSigner{}, "")
	assert.Error(t, err)
}

func TestSigningMethodAWS_AlgIsRS256(t *testing.T) {
	method := &signingMethod{}
	assert.Equal(t, "RS256", method.Alg())
}

func TestSigningMethodAWS_Verify_NotImplemented(t *testing.T) {
	method := &signingMethod{}
	err := method.Verify("string", "signature", "key")
	assert.ErrorContains(t, err, "not implemented")
}
