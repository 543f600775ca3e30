// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/luxfi/ids"
	"golang.org/x/crypto/blake2b"
)

const (
	// IdentityLen is the width of account and contract identities on hosts
	// that use 32-byte hashes. Relayers decode canonical bytes with it.
	IdentityLen = 32

	chainIDLen = 4
	nonceLen   = 8
)

var ErrInvalidMessage = errors.New("invalid message")

// ChainID identifies a chain. Only equality is meaningful.
type ChainID uint32

func (c ChainID) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

// Message is a cross-chain message. It is never stored as such: only its
// canonical bytes and their digest are persisted.
type Message struct {
	SourceChainID      ChainID
	DestinationChainID ChainID
	Sender             []byte
	Receiver           []byte
	Nonce              uint64
	Payload            []byte
}

// NewMessage creates a new message
func NewMessage(
	sourceChainID ChainID,
	destinationChainID ChainID,
	sender []byte,
	receiver []byte,
	nonce uint64,
	payload []byte,
) *Message {
	return &Message{
		SourceChainID:      sourceChainID,
		DestinationChainID: destinationChainID,
		Sender:             sender,
		Receiver:           receiver,
		Nonce:              nonce,
		Payload:            payload,
	}
}

// Bytes returns the canonical encoding:
//
//	be32(src) || be32(dst) || sender || receiver || be64(nonce) || payload
//
// Variable-width fields carry no length prefix, so two messages whose
// sender/receiver boundary differs can share an encoding. Both chains run
// the same function so the bytes always agree.
func (m *Message) Bytes() []byte {
	b := make([]byte, 0, 2*chainIDLen+len(m.Sender)+len(m.Receiver)+nonceLen+len(m.Payload))
	b = binary.BigEndian.AppendUint32(b, uint32(m.SourceChainID))
	b = binary.BigEndian.AppendUint32(b, uint32(m.DestinationChainID))
	b = append(b, m.Sender...)
	b = append(b, m.Receiver...)
	b = binary.BigEndian.AppendUint64(b, m.Nonce)
	b = append(b, m.Payload...)
	return b
}

// ID returns the BLAKE2b-256 digest of the canonical bytes
func (m *Message) ID() ids.ID {
	return MessageID(m.Bytes())
}

// Key returns the storage key of the message
func (m *Message) Key() string {
	return MessageKey(m.Bytes())
}

// Equal returns true if two messages are equal
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.SourceChainID == other.SourceChainID &&
		m.DestinationChainID == other.DestinationChainID &&
		bytes.Equal(m.Sender, other.Sender) &&
		bytes.Equal(m.Receiver, other.Receiver) &&
		m.Nonce == other.Nonce &&
		bytes.Equal(m.Payload, other.Payload)
}

// MessageID digests canonical message bytes.
func MessageID(canonical []byte) ids.ID {
	return ids.ID(blake2b.Sum256(canonical))
}

// MessageKey renders the digest of canonical message bytes as 64 lowercase
// hex characters.
func MessageKey(canonical []byte) string {
	id := MessageID(canonical)
	return hex.EncodeToString(id[:])
}

// ParseMessage decodes canonical bytes. The encoding is not self-delimiting,
// so the caller supplies the sender and receiver widths; everything after
// the nonce is payload.
func ParseMessage(b []byte, senderLen, receiverLen int) (*Message, error) {
	if senderLen < 0 || receiverLen < 0 {
		return nil, fmt.Errorf("%w: negative field width", ErrInvalidMessage)
	}
	minLen := 2*chainIDLen + senderLen + receiverLen + nonceLen
	if len(b) < minLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte header",
			ErrInvalidMessage, len(b), minLen)
	}

	m := &Message{
		SourceChainID:      ChainID(binary.BigEndian.Uint32(b)),
		DestinationChainID: ChainID(binary.BigEndian.Uint32(b[chainIDLen:])),
	}
	offset := 2 * chainIDLen
	m.Sender = bytes.Clone(b[offset : offset+senderLen])
	offset += senderLen
	m.Receiver = bytes.Clone(b[offset : offset+receiverLen])
	offset += receiverLen
	m.Nonce = binary.BigEndian.Uint64(b[offset:])
	offset += nonceLen
	m.Payload = bytes.Clone(b[offset:])
	return m, nil
}
