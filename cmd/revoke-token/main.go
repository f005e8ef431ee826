// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chainguard-dev/clog"

	envConfig "github.com/octo-sts/app-token/pkg/envconfig"
	"github.com/octo-sts/app-token/pkg/revoke"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = clog.WithLogger(ctx, clog.New(slog.Default().Handler()))

	cfg, err := envConfig.ProcessRevoke()
	if err != nil {
		log.Panicf("failed to process env var: %s", err)
	}

	if err := revoke.Revoke(ctx, cfg.GitHubAPIURL, cfg.Token); err != nil {
		clog.ErrorContextf(ctx, "failed to revoke installation token: %v", err)
		os.Exit(1)
	}
	clog.InfoContextf(ctx, "revoked installation token")
}
