// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"errors"
	"fmt"

	"github.com/luxfi/math/set"
)

var ErrUnauthorized = errors.New("caller not authorized")

// Authorizer guards administrative entry points.
type Authorizer interface {
	Authorize(caller []byte, entryPoint string) error
}

// AllowAll admits every caller.
var AllowAll Authorizer = allowAll{}

type allowAll struct{}

func (allowAll) Authorize([]byte, string) error {
	return nil
}

// AllowList admits only the listed caller identities.
type AllowList struct {
	callers set.Set[string]
}

func NewAllowList(callers ...[]byte) *AllowList {
	s := set.NewSet[string](len(callers))
	for _, c := range callers {
		s.Add(string(c))
	}
	return &AllowList{callers: s}
}

func (a *AllowList) Authorize(caller []byte, entryPoint string) error {
	if !a.callers.Contains(string(caller)) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, entryPoint)
	}
	return nil
}
