// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package signature

import (
	"bytes"
	"fmt"

	"github.com/luxfi/crypto/bls"
)

const BLSPublicKeyLen = bls.PublicKeyLen

var (
	_ Verifier = (*blsVerifier)(nil)
	_ Signer   = (*blsSigner)(nil)
)

type blsVerifier struct {
	publicKey []byte
}

func NewBLSVerifier(publicKey []byte) (Verifier, error) {
	if len(publicKey) != BLSPublicKeyLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidPublicKey, BLSPublicKeyLen, len(publicKey))
	}
	return &blsVerifier{publicKey: bytes.Clone(publicKey)}, nil
}

func (*blsVerifier) Scheme() Scheme {
	return SchemeBLS
}

func (v *blsVerifier) PublicKey() []byte {
	return bytes.Clone(v.publicKey)
}

func (v *blsVerifier) Verify(message, signature []byte) error {
	pk, err := bls.PublicKeyFromCompressedBytes(v.publicKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	sig, err := bls.SignatureFromBytes(signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !bls.Verify(pk, sig, message) {
		return ErrInvalidSignature
	}
	return nil
}

type blsSigner struct {
	sk *bls.SecretKey
	pk []byte
}

// NewBLSSigner wraps an existing secret key.
func NewBLSSigner(sk *bls.SecretKey) Signer {
	return &blsSigner{
		sk: sk,
		pk: bls.PublicKeyToCompressedBytes(bls.PublicFromSecretKey(sk)),
	}
}

func GenerateBLSSigner() (Signer, error) {
	sk, err := bls.NewSecretKey()
	if err != nil {
		return nil, err
	}
	return NewBLSSigner(sk), nil
}

func (*blsSigner) Scheme() Scheme {
	return SchemeBLS
}

func (s *blsSigner) PublicKey() []byte {
	return bytes.Clone(s.pk)
}

func (s *blsSigner) Sign(message []byte) ([]byte, error) {
	sig, err := s.sk.Sign(message)
	if err != nil {
		return nil, err
	}
	return bls.SignatureToBytes(sig), nil
}
