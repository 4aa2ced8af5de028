// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package minter

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/certmint/certmint/internal/certauthority"
	"github.com/certmint/certmint/internal/identity"
	"github.com/certmint/certmint/internal/pubkey"
	"github.com/certmint/certmint/internal/testutil"
)

type fakeIdentities map[string]*identity.Identity

func (f fakeIdentities) Resolve(username string) (*identity.Identity, error) {
	ident, ok := f[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", identity.ErrIdentityLookup, username)
	}
	return ident, nil
}

type fakeMaterials struct {
	ca  *certauthority.CA
	err error
}

func (f fakeMaterials) Load() (*certauthority.CA, error) {
	return f.ca, f.err
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRun(t *testing.T) {
	t.Parallel()

	certPEM, keyPEM, caCert := testutil.CreateCertAuthority(t)
	ca, err := certauthority.Load(certPEM, keyPEM)
	require.NoError(t, err)

	pubPEM, _ := testutil.CreateRequesterKey(t)

	identities := fakeIdentities{
		"alice": {Username: "alice", Groups: []string{"staff", "admins"}},
	}
	env := func(vars map[string]string) func(string) string {
		return func(key string) string { return vars[key] }
	}

	tests := []struct {
		name       string
		getenv     func(string) string
		identities identity.Provider
		materials  certauthority.Provider
		in         []byte
		wantErr    error
	}{
		{
			name:       "no trusted username in the environment",
			getenv:     env(nil),
			identities: identities,
			materials:  fakeMaterials{ca: ca},
			in:         pubPEM,
			wantErr:    identity.ErrMissingIdentity,
		},
		{
			name:       "username not in the user database",
			getenv:     env(map[string]string{"SUDO_USER": "mallory"}),
			identities: identities,
			materials:  fakeMaterials{ca: ca},
			in:         pubPEM,
			wantErr:    identity.ErrIdentityLookup,
		},
		{
			name:       "CA material cannot be loaded",
			getenv:     env(map[string]string{"SUDO_USER": "alice"}),
			identities: identities,
			materials:  fakeMaterials{err: fmt.Errorf("%w: gone", certauthority.ErrKeyLoad)},
			in:         pubPEM,
			wantErr:    certauthority.ErrKeyLoad,
		},
		{
			name:       "malformed public key input",
			getenv:     env(map[string]string{"SUDO_USER": "alice"}),
			identities: identities,
			materials:  fakeMaterials{ca: ca},
			in:         []byte("truncated garbage"),
			wantErr:    pubkey.ErrKeyDecode,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			m := &Minter{
				Identities: tt.identities,
				Materials:  tt.materials,
				Getenv:     tt.getenv,
				In:         bytes.NewReader(tt.in),
				Out:        &out,
			}
			err := m.Run()
			require.ErrorIs(t, err, tt.wantErr)

			// on any failure, nothing at all may reach the output stream
			require.Zero(t, out.Len())
		})
	}

	t.Run("broken output stream", func(t *testing.T) {
		t.Parallel()

		m := &Minter{
			Identities: identities,
			Materials:  fakeMaterials{ca: ca},
			Getenv:     env(map[string]string{"SUDO_USER": "alice"}),
			In:         bytes.NewReader(pubPEM),
			Out:        failingWriter{},
		}
		require.ErrorIs(t, m.Run(), ErrWrite)
	})

	t.Run("end to end issuance", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		m := &Minter{
			Identities: identities,
			Materials:  fakeMaterials{ca: ca},
			Getenv:     env(map[string]string{"SUDO_USER": "alice"}),
			In:         bytes.NewReader(pubPEM),
			Out:        &out,
		}
		require.NoError(t, m.Run())

		block, rest := pem.Decode(out.Bytes())
		require.NotNil(t, block)
		require.Empty(t, rest)
		require.Equal(t, "CERTIFICATE", block.Type)

		issued, err := x509.ParseCertificate(block.Bytes)
		require.NoError(t, err)

		require.Equal(t, "alice", issued.Subject.CommonName)
		require.Equal(t, []string{"staff", "admins"}, issued.Subject.Organization)
		require.True(t, sets.New(issued.Subject.Organization...).Equal(sets.New("staff", "admins")))

		require.Equal(t, caCert.RawSubject, issued.RawIssuer)
		require.Equal(t, caCert.SubjectKeyId, issued.AuthorityKeyId)
		require.Equal(t, x509.KeyUsageDigitalSignature|x509.KeyUsageKeyEncipherment, issued.KeyUsage)
		require.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}, issued.ExtKeyUsage)

		require.Equal(t, 3*time.Minute, issued.NotAfter.Sub(issued.NotBefore))
		require.WithinDuration(t, time.Now().Add(2*time.Minute), issued.NotAfter, 10*time.Second)

		pool := x509.NewCertPool()
		require.True(t, pool.AppendCertsFromPEM(certPEM))
		_, err = issued.Verify(x509.VerifyOptions{
			Roots:     pool,
			KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		})
		require.NoError(t, err)
	})
}
