// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package testutil generates in-memory PKI material for unit tests, instead
// of requiring real cluster CA files on disk.
package testutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// CreateCertAuthority generates a self-signed ECDSA CA and returns its
// certificate and private key in PEM form, plus the parsed certificate.
// The stdlib synthesizes a Subject Key Identifier for CA templates, so the
// returned certificate always carries one.
func CreateCertAuthority(t *testing.T) (certPEM []byte, keyPEM []byte, cert *x509.Certificate) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test cluster CA", Organization: []string{"certmint tests"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err = x509.ParseCertificate(der)
	require.NoError(t, err)
	require.NotEmpty(t, cert.SubjectKeyId)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, cert
}

// CreateCertAuthorityWithoutSKI generates a CA certificate that lacks a
// Subject Key Identifier extension. x509.CreateCertificate always synthesizes
// an SKI when the template has IsCA set, so the CA bit is instead injected as
// a raw BasicConstraints extension.
func CreateCertAuthorityWithoutSKI(t *testing.T) (certPEM []byte, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	// DER for BasicConstraints SEQUENCE { cA BOOLEAN TRUE }.
	basicConstraintsCATrue := []byte{0x30, 0x03, 0x01, 0x01, 0xFF}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "test cluster CA without SKI"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageCertSign,
		ExtraExtensions: []pkix.Extension{
			{
				Id:       asn1.ObjectIdentifier{2, 5, 29, 19}, // basicConstraints
				Critical: true,
				Value:    basicConstraintsCATrue,
			},
		},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	require.True(t, cert.IsCA)
	require.Empty(t, cert.SubjectKeyId)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

// CreateRequesterKey generates an ECDSA keypair standing in for the
// requester's own keypair, returning the PKIX PEM encoding of its public key.
func CreateRequesterKey(t *testing.T) (pubPEM []byte, pub crypto.PublicKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), &key.PublicKey
}

// CreateRSARequesterKey is like CreateRequesterKey but returns a PKCS#1
// "RSA PUBLIC KEY" PEM, the form produced by older OpenSSL invocations.
func CreateRSARequesterKey(t *testing.T) (pubPEM []byte, pub *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der := x509.MarshalPKCS1PublicKey(&key.PublicKey)
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: der}), &key.PublicKey
}
