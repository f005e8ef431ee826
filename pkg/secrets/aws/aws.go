// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsSM "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// GetSecretValueAPI is the part of the Secrets Manager client used here.
type GetSecretValueAPI interface {
	GetSecretValue(ctx context.Context, params *awsSM.GetSecretValueInput, optFns ...func(*awsSM.Options)) (*awsSM.GetSecretValueOutput, error)
}

// GetSecret returns the current value of the secret keyID (a name or ARN).
func GetSecret(ctx context.Context, manager GetSecretValueAPI, keyID string) ([]byte, error) {
	if manager == nil {
		return nil, errors.New("nil secrets manager client")
	}
	resp, err := manager.GetSecretValue(ctx, &awsSM.GetSecretValueInput{SecretId: aws.String(keyID)})
	if err != nil {
		return nil, fmt.Errorf("error fetching secret %s: %w", keyID, err)
	}

	// Depending on how the secret was stored, it can be either a string or binary.
	payload := resp.SecretBinary
	if resp.SecretString != nil {
		payload = []byte(aws.ToString(resp.SecretString))
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("secret %s is empty", keyID)
	}
	return payload, nil
}
