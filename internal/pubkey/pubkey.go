// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pubkey decodes the requester's PEM-encoded public key from an input
// stream. The requester generates its own keypair; only the public half ever
// reaches this program.
package pubkey

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"

	"github.com/certmint/certmint/internal/constable"
)

// MaxPEMBytes bounds how much of the input stream will be buffered. A PEM
// public key is at most a few KiB; anything larger is a misbehaving caller.
const MaxPEMBytes = 64 * 1024

// ErrKeyDecode is returned on empty, oversized or malformed public key input.
const ErrKeyDecode = constable.Error("could not decode public key")

// ReadFrom reads r to end-of-stream and decodes the bytes as a PEM public key.
func ReadFrom(r io.Reader) (crypto.PublicKey, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPEMBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDecode, err)
	}
	if len(data) > MaxPEMBytes {
		return nil, fmt.Errorf("%w: input larger than %d bytes", ErrKeyDecode, MaxPEMBytes)
	}
	return Decode(data)
}

// Decode parses a single PEM-encoded public key. PKIX "PUBLIC KEY" blocks are
// the expected form (RSA, ECDSA or Ed25519); PKCS#1 "RSA PUBLIC KEY" blocks
// are accepted for callers using older OpenSSL output.
func Decode(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM data found", ErrKeyDecode)
	}

	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyDecode, err)
		}
		return pub, nil
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyDecode, err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block type %q", ErrKeyDecode, block.Type)
	}
}
