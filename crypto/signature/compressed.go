// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package signature

import (
	"bytes"
	"fmt"

	cmtsecp256k1 "github.com/cometbft/cometbft/crypto/secp256k1"
)

const Secp256k1CompressedPublicKeyLen = cmtsecp256k1.PubKeySize

var (
	_ Verifier   = (*compressedVerifier)(nil)
	_ Signer     = (*compressedSigner)(nil)
	_ Exportable = (*compressedSigner)(nil)
)

type compressedVerifier struct {
	publicKey cmtsecp256k1.PubKey
}

func NewSecp256k1CompressedVerifier(publicKey []byte) (Verifier, error) {
	if len(publicKey) != Secp256k1CompressedPublicKeyLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidPublicKey, Secp256k1CompressedPublicKeyLen, len(publicKey))
	}
	return &compressedVerifier{publicKey: cmtsecp256k1.PubKey(bytes.Clone(publicKey))}, nil
}

func (*compressedVerifier) Scheme() Scheme {
	return SchemeSecp256k1Compressed
}

func (v *compressedVerifier) PublicKey() []byte {
	return bytes.Clone(v.publicKey)
}

func (v *compressedVerifier) Verify(message, signature []byte) error {
	if !v.publicKey.VerifySignature(message, signature) {
		return ErrInvalidSignature
	}
	return nil
}

type compressedSigner struct {
	sk cmtsecp256k1.PrivKey
}

func GenerateSecp256k1CompressedSigner() (Signer, error) {
	return &compressedSigner{sk: cmtsecp256k1.GenPrivKey()}, nil
}

func NewSecp256k1CompressedSigner(privateKey []byte) (Signer, error) {
	if len(privateKey) != cmtsecp256k1.PrivKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidPrivateKey, cmtsecp256k1.PrivKeySize, len(privateKey))
	}
	return &compressedSigner{sk: cmtsecp256k1.PrivKey(bytes.Clone(privateKey))}, nil
}

func (*compressedSigner) Scheme() Scheme {
	return SchemeSecp256k1Compressed
}

func (s *compressedSigner) PublicKey() []byte {
	return s.sk.PubKey().Bytes()
}

func (s *compressedSigner) Sign(message []byte) ([]byte, error) {
	return s.sk.Sign(message)
}

func (s *compressedSigner) PrivateKey() []byte {
	return s.sk.Bytes()
}
