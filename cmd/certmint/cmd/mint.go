// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/certmint/certmint/internal/certauthority"
	"github.com/certmint/certmint/internal/identity"
	"github.com/certmint/certmint/internal/minter"
)

//nolint:gochecknoglobals // these are swapped during unit tests.
var (
	getenv = os.Getenv
	stdin  = io.Reader(os.Stdin)
	stdout = io.Writer(os.Stdout)

	newIdentityProvider = func() identity.Provider { return identity.NewResolver() }
	newMaterialProvider = func() certauthority.Provider { return certauthority.NewFileProvider() }
)

func runMint(_ *cobra.Command, _ []string) error {
	m := &minter.Minter{
		Identities: newIdentityProvider(),
		Materials:  newMaterialProvider(),
		Getenv:     getenv,
		In:         stdin,
		Out:        stdout,
	}
	return m.Run()
}
