// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package certauthority signs short-lived Kubernetes client certificates with
// a cluster certificate authority loaded from disk.
package certauthority

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/certmint/certmint/internal/constable"
)

// Default locations of the cluster CA material, following the kubeadm PKI layout.
const (
	DefaultCertPath = "/etc/kubernetes/pki/ca.crt"
	DefaultKeyPath  = "/etc/kubernetes/pki/ca.key"
)

const (
	// certBackdate is the amount of time before the current time that will be
	// used to set an issued certificate's NotBefore field, so that modest clock
	// disagreement between this host and the API server does not cause a fresh
	// certificate to be rejected as not yet valid.
	certBackdate = 1 * time.Minute

	// certValidity is the lifetime of an issued certificate past the current
	// time. Issuance is transparent and cheap for the legitimate caller, so a
	// leaked certificate expires before it is worth stealing.
	certValidity = 2 * time.Minute
)

const (
	// ErrKeyLoad is returned when the CA private key is missing, malformed or encrypted.
	ErrKeyLoad = constable.Error("could not load CA private key")

	// ErrCertLoad is returned when the CA certificate is missing or malformed,
	// or does not belong to the loaded private key.
	ErrCertLoad = constable.Error("could not load CA certificate")

	// ErrExtensionMissing is returned when the CA certificate carries no Subject
	// Key Identifier extension, which is required to derive the Authority Key
	// Identifier of issued certificates.
	ErrExtensionMissing = constable.Error("CA certificate has no Subject Key Identifier extension")

	// ErrNoSuchExtension is returned when issuance is attempted with CA material
	// that is missing its Subject Key Identifier. Load already rejects such
	// material, so hitting this means the CA struct was built incorrectly.
	ErrNoSuchExtension = constable.Error("CA material has no Subject Key Identifier")

	// ErrSigning is returned when the cryptographic signing operation itself fails.
	ErrSigning = constable.Error("could not sign certificate")
)

type env struct {
	// secure random number generators for various steps (usually crypto/rand.Reader, but broken out here for tests).
	serialRNG  io.Reader
	signingRNG io.Reader

	// clock tells the current time (usually time.Now(), but broken out here for tests).
	clock func() time.Time
}

// secureEnv is the "real" environment using secure RNGs and the real system clock.
func secureEnv() env {
	return env{
		serialRNG:  rand.Reader,
		signingRNG: rand.Reader,
		clock:      time.Now,
	}
}

// CA holds the cluster signing keypair used to issue client certificates.
type CA struct {
	caCert *x509.Certificate
	signer crypto.Signer

	// env is our reference to the outside world (clock and random number generation).
	env env
}

// Provider loads CA material. The file-backed implementation is FileProvider;
// tests inject in-memory material instead.
type Provider interface {
	Load() (*CA, error)
}

// FileProvider loads the CA keypair from the local filesystem. Every
// invocation reloads from disk: each run is a separate short-lived process,
// so freshness outweighs the reload cost and no caching is wanted.
type FileProvider struct {
	CertPath string
	KeyPath  string
}

var _ Provider = (*FileProvider)(nil)

func NewFileProvider() *FileProvider {
	return &FileProvider{CertPath: DefaultCertPath, KeyPath: DefaultKeyPath}
}

func (p *FileProvider) Load() (*CA, error) {
	keyPEM, err := os.ReadFile(p.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	certPEM, err := os.ReadFile(p.CertPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertLoad, err)
	}
	return Load(certPEM, keyPEM)
}

// Load parses a certificate authority from PEM-encoded certificate and
// private key bytes. The key must be unencrypted; the certificate must be a
// CA certificate carrying a Subject Key Identifier extension and must match
// the key.
func Load(certPEM []byte, keyPEM []byte) (*CA, error) {
	signer, err := parsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%w: no CERTIFICATE PEM block found", ErrCertLoad)
	}
	caCert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertLoad, err)
	}
	if !caCert.IsCA {
		return nil, fmt.Errorf("%w: certificate is not a CA", ErrCertLoad)
	}

	certPub, ok := caCert.PublicKey.(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !certPub.Equal(signer.Public()) {
		return nil, fmt.Errorf("%w: private key does not match certificate", ErrKeyLoad)
	}

	if len(caCert.SubjectKeyId) == 0 {
		return nil, ErrExtensionMissing
	}

	return &CA{caCert: caCert, signer: signer, env: secureEnv()}, nil
}

// parsePrivateKeyPEM accepts the PKCS#1, SEC1 and PKCS#8 encodings a cluster
// CA key is found in. Encrypted keys are rejected outright: this program runs
// non-interactively and must never block on a passphrase prompt.
func parsePrivateKeyPEM(keyPEM []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM data found", ErrKeyLoad)
	}
	if block.Type == "ENCRYPTED PRIVATE KEY" || block.Headers["Proc-Type"] == "4,ENCRYPTED" {
		return nil, fmt.Errorf("%w: key is password protected", ErrKeyLoad)
	}

	var key any
	var err error
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block type %q", ErrKeyLoad, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrKeyLoad, key)
	}
	return signer, nil
}

// IssueClientCertPEM issues a client certificate for the requester's public
// key with the username and groups included in the Kube-style certificate
// subject, and returns it PEM-encoded. The certificate is valid from
// certBackdate before now until certValidity after now.
func (c *CA) IssueClientCertPEM(username string, groups []string, pub crypto.PublicKey) ([]byte, error) {
	if len(c.caCert.SubjectKeyId) == 0 {
		return nil, ErrNoSuchExtension
	}

	// Choose a random 128-bit serial number.
	serialNumber, err := randomSerial(c.env.serialRNG)
	if err != nil {
		return nil, fmt.Errorf("%w: could not generate serial number: %v", ErrSigning, err)
	}

	now := c.env.clock()
	template := &x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               pkix.Name{CommonName: username, Organization: groups},
		NotBefore:             now.Add(-certBackdate),
		NotAfter:              now.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  false,
		AuthorityKeyId:        c.caCert.SubjectKeyId,
	}

	// Sign, getting back the DER-encoded certificate bytes. The issuer name is
	// copied byte for byte from the CA certificate's subject, and Go picks a
	// SHA-256 based signature algorithm for the CA key type.
	certBytes, err := x509.CreateCertificate(c.env.signingRNG, template, c.caCert, pub, c.signer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certBytes}), nil
}

// Bundle returns the CA certificate in PEM format, for callers that need to
// hand the trust anchor to a verifier.
func (c *CA) Bundle() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.caCert.Raw})
}

// Pool returns the CA certificate as a *x509.CertPool.
func (c *CA) Pool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(c.Bundle())
	return pool
}

// randomSerial generates a random 128-bit serial number.
func randomSerial(rng io.Reader) (*big.Int, error) {
	return rand.Int(rng, new(big.Int).Lsh(big.NewInt(1), 128))
}
