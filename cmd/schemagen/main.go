// Copyright 2025 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:generate go run . -o ../../pkg/apptoken
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/octo-sts/app-token/pkg/apptoken"
)

var outputFlag = flag.String("o", "", "output directory")

func main() {
	flag.Parse()

	if *outputFlag == "" {
		log.Fatal("output path is required")
	}

	r := new(jsonschema.Reflector)
	if err := r.AddGoComments("github.com/octo-sts/app-token/pkg/apptoken", "../../pkg/apptoken"); err != nil {
		log.Fatal(err)
	}

	path := filepath.Join(*outputFlag, fmt.Sprintf("%T.json", apptoken.Request{}))
	out, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r.Reflect(&apptoken.Request{})); err != nil {
		// nolint:gocritic
		log.Fatal(err)
	}
}
