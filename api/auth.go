// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"crypto/sha256"
	"errors"
	"net/http"
	"strings"

	"github.com/luxfi/geth/common"
)

const bearerPrefix = "Bearer "

var ErrUnauthenticated = errors.New("missing or unknown API token")

// Credentials maps bearer tokens to the caller identities they act as.
// Tokens are kept only as SHA-256 digests.
type Credentials struct {
	identities map[[sha256.Size]byte]common.Hash
}

// NewCredentials creates credentials from a token to identity map.
func NewCredentials(tokens map[string]common.Hash) *Credentials {
	c := &Credentials{
		identities: make(map[[sha256.Size]byte]common.Hash, len(tokens)),
	}
	for token, identity := range tokens {
		c.identities[sha256.Sum256([]byte(token))] = identity
	}
	return c
}

// Len returns the number of configured tokens.
func (c *Credentials) Len() int {
	return len(c.identities)
}

// Authenticate returns the identity of the token r carries. ok is false
// when r carries no token; a token that is not configured is an error.
func (c *Credentials) Authenticate(r *http.Request) (identity common.Hash, ok bool, err error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return common.Hash{}, false, nil
	}
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found || token == "" {
		return common.Hash{}, false, ErrUnauthenticated
	}
	identity, ok = c.identities[sha256.Sum256([]byte(token))]
	if !ok {
		return common.Hash{}, false, ErrUnauthenticated
	}
	return identity, true, nil
}

// caller authenticates a request that must act as a known identity.
func (c *Credentials) caller(r *http.Request) (common.Hash, error) {
	identity, ok, err := c.Authenticate(r)
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, ErrUnauthenticated
	}
	return identity, nil
}
