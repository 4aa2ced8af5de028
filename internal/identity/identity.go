// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package identity resolves the invoking operating-system user into the
// Kubernetes identity (username plus group memberships) that is encoded into
// the subject of an issued client certificate.
package identity

import (
	"fmt"
	"os/user"

	"github.com/certmint/certmint/internal/constable"
)

// SudoUserEnv is the environment variable that sudo sets to the name of the
// user who invoked privilege escalation. It is the only identity input this
// program trusts, because sudo guarantees the requester cannot choose it.
const SudoUserEnv = "SUDO_USER"

const (
	// ErrMissingIdentity is returned when no trusted invoking username is available,
	// i.e. the process was not started through the privilege-escalation wrapper.
	ErrMissingIdentity = constable.Error("no invoking username in environment")

	// ErrIdentityLookup is returned when the invoking username cannot be resolved
	// against the operating system user database.
	ErrIdentityLookup = constable.Error("could not resolve invoking user")
)

// Identity is a resolved requester: the OS username and every group it belongs
// to. The primary group comes first, then supplementary groups in OS lookup
// order. The order is preserved all the way into the certificate subject.
type Identity struct {
	Username string
	Groups   []string
}

// Provider resolves usernames into identities. Resolver is the OS-backed
// implementation; tests substitute fakes.
type Provider interface {
	Resolve(username string) (*Identity, error)
}

// Resolver resolves identities from the real OS user and group databases.
type Resolver struct {
	// lookup functions, swapped during unit tests.
	lookupUser    func(username string) (*user.User, error)
	lookupGroupID func(gid string) (*user.Group, error)
	listGroupIDs  func(u *user.User) ([]string, error)
}

var _ Provider = (*Resolver)(nil)

func NewResolver() *Resolver {
	return &Resolver{
		lookupUser:    user.Lookup,
		lookupGroupID: user.LookupGroupId,
		listGroupIDs:  (*user.User).GroupIds,
	}
}

// Resolve looks up the username's primary group by its numeric group id, then
// adds every supplementary group that lists the user as a member. A user with
// no supplementary groups yields exactly one group. Once the primary group has
// resolved, failures while scanning supplementary groups are tolerated rather
// than failing the whole identity.
func (r *Resolver) Resolve(username string) (*Identity, error) {
	u, err := r.lookupUser(username)
	if err != nil {
		return nil, fmt.Errorf("%w: user %q: %v", ErrIdentityLookup, username, err)
	}

	primary, err := r.lookupGroupID(u.Gid)
	if err != nil {
		return nil, fmt.Errorf("%w: primary group %q of user %q: %v", ErrIdentityLookup, u.Gid, username, err)
	}

	groups := []string{primary.Name}

	gids, err := r.listGroupIDs(u)
	if err != nil {
		return &Identity{Username: u.Username, Groups: groups}, nil
	}
	for _, gid := range gids {
		if gid == u.Gid {
			continue
		}
		g, err := r.lookupGroupID(gid)
		if err != nil {
			// a gid with no named group entry contributes nothing
			continue
		}
		groups = append(groups, g.Name)
	}

	return &Identity{Username: u.Username, Groups: groups}, nil
}
