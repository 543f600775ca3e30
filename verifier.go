// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"fmt"

	"github.com/luxfi/gateway/crypto/signature"
)

// signatureGate admits inbound messages signed by the installed relayer key.
// It never touches storage.
type signatureGate struct {
	verifier signature.Verifier
}

func (g signatureGate) admit(canonical, sig []byte) error {
	if err := g.verifier.Verify(canonical, sig); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}
