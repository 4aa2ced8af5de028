// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package minter runs the single-pass issuance pipeline: establish the
// invoking user's identity, load the cluster CA, read the requester's public
// key from the input stream, then sign and emit a short-lived client
// certificate on the output stream. There is no state between invocations;
// each run is a separate short-lived process.
package minter

import (
	"fmt"
	"io"

	"github.com/certmint/certmint/internal/certauthority"
	"github.com/certmint/certmint/internal/constable"
	"github.com/certmint/certmint/internal/identity"
	"github.com/certmint/certmint/internal/plog"
	"github.com/certmint/certmint/internal/pubkey"
)

// ErrWrite is returned when the output stream cannot accept the certificate,
// e.g. a closed pipe. Nothing is retried; the caller sees a partial or empty
// stream plus a nonzero exit.
const ErrWrite = constable.Error("could not write certificate")

// Minter wires the pipeline's collaborators together. All fields must be set.
type Minter struct {
	Identities identity.Provider
	Materials  certauthority.Provider

	Getenv func(key string) string
	In     io.Reader
	Out    io.Writer
}

// Run performs one issuance. Either the complete signed certificate is
// written to Out, or nothing is written and an error is returned. Every
// returned error wraps one of the pipeline's constant errors, so callers can
// classify failures with errors.Is.
func (m *Minter) Run() error {
	username := m.Getenv(identity.SudoUserEnv)
	if username == "" {
		return fmt.Errorf("%w: %s is not set", identity.ErrMissingIdentity, identity.SudoUserEnv)
	}

	ident, err := m.Identities.Resolve(username)
	if err != nil {
		return err
	}
	plog.Debug("resolved invoking user", "user", ident.Username, "groups", ident.Groups)

	ca, err := m.Materials.Load()
	if err != nil {
		return err
	}

	pub, err := pubkey.ReadFrom(m.In)
	if err != nil {
		return err
	}

	certPEM, err := ca.IssueClientCertPEM(ident.Username, ident.Groups, pub)
	if err != nil {
		return err
	}

	if _, err := m.Out.Write(certPEM); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	plog.Info("issued client certificate", "user", ident.Username, "groups", ident.Groups)
	return nil
}
