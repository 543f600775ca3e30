// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"errors"

	"github.com/luxfi/gateway/crypto/signature"
)

var (
	_ Signer = (*signer)(nil)

	ErrWrongDestinationChainID = errors.New("wrong destination chain ID")
)

// Signer signs messages on behalf of the relayer trusted by one
// destination chain.
type Signer interface {
	Sign(msg *Message) ([]byte, error)
	PublicKey() []byte
}

// NewSigner creates a relayer signer for messages bound to
// destinationChainID.
func NewSigner(sk signature.Signer, destinationChainID ChainID) Signer {
	return &signer{
		sk:                 sk,
		destinationChainID: destinationChainID,
	}
}

type signer struct {
	sk                 signature.Signer
	destinationChainID ChainID
}

func (s *signer) Sign(msg *Message) ([]byte, error) {
	if msg.DestinationChainID != s.destinationChainID {
		return nil, ErrWrongDestinationChainID
	}
	return s.sk.Sign(msg.Bytes())
}

func (s *signer) PublicKey() []byte {
	return s.sk.PublicKey()
}
