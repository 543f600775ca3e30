// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package signature

import (
	"errors"
	"fmt"
	"slices"
)

type (
	VerifierFactory func(publicKey []byte) (Verifier, error)
	SignerFactory   func(privateKey []byte) (Signer, error)
	GenerateFunc    func() (Signer, error)
)

type registration struct {
	publicKeyLen int
	newVerifier  VerifierFactory
	newSigner    SignerFactory
	generate     GenerateFunc
}

// Registry manages available signature schemes
type Registry struct {
	schemes   map[Scheme]registration
	preferred Scheme
}

// NewRegistry creates a new signature scheme registry
func NewRegistry(preferred Scheme) *Registry {
	return &Registry{
		schemes:   make(map[Scheme]registration),
		preferred: preferred,
	}
}

// Register adds a signature scheme to the registry. newSigner may be nil when
// the scheme cannot import serialized keys.
func (r *Registry) Register(
	scheme Scheme,
	publicKeyLen int,
	newVerifier VerifierFactory,
	newSigner SignerFactory,
	generate GenerateFunc,
) error {
	if _, ok := r.schemes[scheme]; ok {
		return fmt.Errorf("scheme %q already registered", scheme)
	}
	if newVerifier == nil || generate == nil {
		return errors.New("verifier and generator are required")
	}
	r.schemes[scheme] = registration{
		publicKeyLen: publicKeyLen,
		newVerifier:  newVerifier,
		newSigner:    newSigner,
		generate:     generate,
	}
	return nil
}

func (r *Registry) lookup(scheme Scheme) (registration, error) {
	reg, ok := r.schemes[scheme]
	if !ok {
		return registration{}, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return reg, nil
}

// PublicKeyLen returns the public key length the scheme accepts.
func (r *Registry) PublicKeyLen(scheme Scheme) (int, error) {
	reg, err := r.lookup(scheme)
	if err != nil {
		return 0, err
	}
	return reg.publicKeyLen, nil
}

// NewVerifier builds a verifier for publicKey under scheme.
func (r *Registry) NewVerifier(scheme Scheme, publicKey []byte) (Verifier, error) {
	reg, err := r.lookup(scheme)
	if err != nil {
		return nil, err
	}
	return reg.newVerifier(publicKey)
}

// NewSigner loads a serialized private key under scheme.
func (r *Registry) NewSigner(scheme Scheme, privateKey []byte) (Signer, error) {
	reg, err := r.lookup(scheme)
	if err != nil {
		return nil, err
	}
	if reg.newSigner == nil {
		return nil, fmt.Errorf("%w: %q", ErrKeyImportNotAllowed, scheme)
	}
	return reg.newSigner(privateKey)
}

// GenerateSigner creates a signer with a fresh key.
func (r *Registry) GenerateSigner(scheme Scheme) (Signer, error) {
	reg, err := r.lookup(scheme)
	if err != nil {
		return nil, err
	}
	return reg.generate()
}

// Schemes returns the registered schemes in lexical order.
func (r *Registry) Schemes() []Scheme {
	schemes := make([]Scheme, 0, len(r.schemes))
	for s := range r.schemes {
		schemes = append(schemes, s)
	}
	slices.Sort(schemes)
	return schemes
}

// PreferredScheme returns the currently preferred signature scheme
func (r *Registry) PreferredScheme() Scheme {
	return r.preferred
}

// SetPreferred changes the preferred signature scheme
func (r *Registry) SetPreferred(scheme Scheme) error {
	if _, err := r.lookup(scheme); err != nil {
		return err
	}
	r.preferred = scheme
	return nil
}

// Default holds every scheme this package implements, preferring
// SchemeSecp256k1.
var Default = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry(SchemeSecp256k1)
	_ = r.Register(
		SchemeSecp256k1,
		Secp256k1PublicKeyLen,
		NewSecp256k1Verifier,
		NewSecp256k1Signer,
		GenerateSecp256k1Signer,
	)
	_ = r.Register(
		SchemeSecp256k1Compressed,
		Secp256k1CompressedPublicKeyLen,
		NewSecp256k1CompressedVerifier,
		NewSecp256k1CompressedSigner,
		GenerateSecp256k1CompressedSigner,
	)
	_ = r.Register(
		SchemeBLS,
		BLSPublicKeyLen,
		NewBLSVerifier,
		nil,
		GenerateBLSSigner,
	)
	return r
}

// NewVerifier builds a verifier from the default registry.
func NewVerifier(scheme Scheme, publicKey []byte) (Verifier, error) {
	return Default.NewVerifier(scheme, publicKey)
}
