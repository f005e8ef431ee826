// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chainguard-dev/clog"

	"github.com/octo-sts/app-token/pkg/apptoken"
	envConfig "github.com/octo-sts/app-token/pkg/envconfig"
	"github.com/octo-sts/app-token/pkg/event"
	"github.com/octo-sts/app-token/pkg/ghtransport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = clog.WithLogger(ctx, clog.New(slog.Default().Handler()))

	env, err := envConfig.Process()
	if err != nil {
		log.Panicf("failed to process env var: %s", err)
	}

	cfg, err := configFromEnv(ctx, env)
	if err != nil {
		log.Panicf("failed to build token request: %v", err)
	}

	ceclient, err := event.NewClient(env.EventingIngress)
	if err != nil {
		log.Panicf("failed to create cloudevents client: %v", err)
	}

	res, err := apptoken.FetchToken(ctx, cfg)
	event.Emit(ctx, ceclient, mintEvent(cfg, res, err))
	if err != nil {
		clog.ErrorContextf(ctx, "failed to mint installation token: %v", err)
		os.Exit(1)
	}

	writeToken(os.Stdout, res.Token, os.Getenv("GITHUB_ACTIONS") == "true")
}

// configFromEnv assembles the mint configuration from the environment and
// the optional request file, whose fields take precedence.
func configFromEnv(ctx context.Context, env *envConfig.EnvConfig) (apptoken.Config, error) {
	signer, err := ghtransport.Signer(ctx, env)
	if err != nil {
		return apptoken.Config{}, err
	}
	perms, err := apptoken.ParsePermissions(env.Permissions)
	if err != nil {
		return apptoken.Config{}, err
	}

	cfg := apptoken.Config{
		AppID:        env.AppID,
		Signer:       signer,
		GitHubAPIURL: env.GitHubAPIURL,
		Owner:        env.Owner(),
		Repo:         env.Repo(),
		Organization: env.Organization,
		Permissions:  perms,
		Repositories: env.Repositories,
	}
	if env.InstallationID > 0 {
		id := env.InstallationID
		cfg.InstallationID = &id
	}

	if env.RequestFile != "" {
		raw, err := os.ReadFile(env.RequestFile)
		if err != nil {
			return apptoken.Config{}, fmt.Errorf("reading request file: %w", err)
		}
		req, err := apptoken.ParseRequest(raw)
		if err != nil {
			return apptoken.Config{}, err
		}
		req.Apply(&cfg)
	}
	return cfg, nil
}

// mintEvent describes the outcome of minting for cfg. The installation ID
// is the resolved one when res is set.
func mintEvent(cfg apptoken.Config, res *apptoken.Result, err error) event.Mint {
	m := event.Mint{
		AppID:        cfg.AppID,
		GitHubAPIURL: apptoken.NormalizeURL(cfg.GitHubAPIURL),
		Owner:        cfg.Owner,
		Repo:         cfg.Repo,
		Organization: cfg.Organization,
		Permissions:  cfg.Permissions,
		Repositories: cfg.Repositories,
	}
	if cfg.InstallationID != nil {
		m.InstallationID = *cfg.InstallationID
	}
	if err != nil {
		m.Error = err.Error()
		return m
	}
	if res != nil {
		m.InstallationID = res.InstallationID
		m.ExpiresAt = res.ExpiresAt
		m.SetToken(res.Token)
	}
	return m
}

// writeToken prints tok, masking it first when running in GitHub Actions.
func writeToken(w io.Writer, tok string, actions bool) {
	if actions {
		fmt.Fprintf(w, "::add-mask::%s\n", tok)
	}
	fmt.Fprintln(w, tok)
}
