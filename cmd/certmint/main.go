// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package main is the entrypoint for the certmint binary, which is invoked
// through a privilege-escalation wrapper to mint one short-lived Kubernetes
// client certificate per run.
package main

import (
	"os"

	"github.com/certmint/certmint/cmd/certmint/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
