// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

// Package signature provides the relayer signature schemes a gateway can be
// installed with. A gateway trusts exactly one public key and checks every
// inbound message against it through a Verifier.
package signature

import "errors"

// Scheme represents a signature scheme type
type Scheme string

const (
	// SchemeSecp256k1 uses ECDSA over secp256k1 with 64-byte uncompressed
	// public keys (X || Y) and 64-byte r || s signatures over SHA-256.
	SchemeSecp256k1 Scheme = "secp256k1"

	// SchemeSecp256k1Compressed is SchemeSecp256k1 with 33-byte compressed
	// public keys.
	SchemeSecp256k1Compressed Scheme = "secp256k1-compressed"

	// SchemeBLS uses BLS signatures with 48-byte compressed public keys.
	SchemeBLS Scheme = "bls"
)

var (
	ErrUnknownScheme       = errors.New("unknown signature scheme")
	ErrInvalidPublicKey    = errors.New("invalid public key")
	ErrInvalidPrivateKey   = errors.New("invalid private key")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrKeyImportNotAllowed = errors.New("private key import not supported")
)

// Verifier checks signatures against a single installed public key.
type Verifier interface {
	// Scheme returns the signature scheme this verifier uses
	Scheme() Scheme

	// PublicKey returns the raw public key the verifier was built with
	PublicKey() []byte

	// Verify returns nil iff signature is valid for message under the
	// verifier's key. A key that cannot be parsed fails verification.
	Verify(message, signature []byte) error
}

// Signer produces signatures a Verifier of the same scheme accepts.
type Signer interface {
	// Scheme returns the signature scheme this signer uses
	Scheme() Scheme

	// PublicKey returns the raw public key matching the signing key
	PublicKey() []byte

	// Sign creates a signature for the message
	Sign(message []byte) ([]byte, error)
}

// Exportable is implemented by signers whose key can be serialized.
type Exportable interface {
	PrivateKey() []byte
}
