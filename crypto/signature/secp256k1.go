// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package signature

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	Secp256k1PublicKeyLen  = 64
	Secp256k1SignatureLen  = 64
	Secp256k1PrivateKeyLen = 32

	uncompressedPrefix = 0x04
)

var (
	_ Verifier   = (*secp256k1Verifier)(nil)
	_ Signer     = (*secp256k1Signer)(nil)
	_ Exportable = (*secp256k1Signer)(nil)
)

type secp256k1Verifier struct {
	publicKey []byte
}

// NewSecp256k1Verifier only checks the key length. The key is parsed at
// verification time so that a well-sized but off-curve key can be installed
// and simply fails every verification.
func NewSecp256k1Verifier(publicKey []byte) (Verifier, error) {
	if len(publicKey) != Secp256k1PublicKeyLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidPublicKey, Secp256k1PublicKeyLen, len(publicKey))
	}
	return &secp256k1Verifier{publicKey: bytes.Clone(publicKey)}, nil
}

func (*secp256k1Verifier) Scheme() Scheme {
	return SchemeSecp256k1
}

func (v *secp256k1Verifier) PublicKey() []byte {
	return bytes.Clone(v.publicKey)
}

func (v *secp256k1Verifier) Verify(message, signature []byte) error {
	pk, err := secp256k1.ParsePubKey(append([]byte{uncompressedPrefix}, v.publicKey...))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	sig, err := parseCompactSignature(signature)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(message)
	if !sig.Verify(digest[:], pk) {
		return ErrInvalidSignature
	}
	return nil
}

// parseCompactSignature decodes a 64-byte r || s signature.
func parseCompactSignature(signature []byte) (*ecdsa.Signature, error) {
	if len(signature) != Secp256k1SignatureLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidSignature, Secp256k1SignatureLen, len(signature))
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return nil, fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	return ecdsa.NewSignature(&r, &s), nil
}

type secp256k1Signer struct {
	sk *secp256k1.PrivateKey
}

// GenerateSecp256k1Signer creates a signer with a fresh random key.
func GenerateSecp256k1Signer() (Signer, error) {
	sk, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &secp256k1Signer{sk: sk}, nil
}

// NewSecp256k1Signer loads a 32-byte private scalar.
func NewSecp256k1Signer(privateKey []byte) (Signer, error) {
	if len(privateKey) != Secp256k1PrivateKeyLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidPrivateKey, Secp256k1PrivateKeyLen, len(privateKey))
	}
	return &secp256k1Signer{sk: secp256k1.PrivKeyFromBytes(privateKey)}, nil
}

func (*secp256k1Signer) Scheme() Scheme {
	return SchemeSecp256k1
}

// PublicKey returns the uncompressed key without its 0x04 prefix.
func (s *secp256k1Signer) PublicKey() []byte {
	return s.sk.PubKey().SerializeUncompressed()[1:]
}

func (s *secp256k1Signer) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	// compact form is recovery byte || r || s
	compact := ecdsa.SignCompact(s.sk, digest[:], false)
	return compact[1:], nil
}

func (s *secp256k1Signer) PrivateKey() []byte {
	return s.sk.Serialize()
}
