// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"fmt"

	"github.com/luxfi/geth/rlp"
)

const (
	CodecVersion  = 0
	MaxPacketSize = 256 * KiB
)

// CodecImpl is used for serializing/deserializing relay packets
type CodecImpl struct{}

// Codec is the default codec instance
var Codec = &CodecImpl{}

// Marshal serializes the value
func (c *CodecImpl) Marshal(version uint16, v interface{}) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

// Unmarshal deserializes the bytes
func (c *CodecImpl) Unmarshal(b []byte, v interface{}) (uint16, error) {
	err := rlp.DecodeBytes(b, v)
	return CodecVersion, err
}

// Packet is what a relayer hands to the destination gateway: the fields of
// an outbound message the destination cannot infer, plus the relayer's
// signature over the canonical bytes.
type Packet struct {
	SourceChainID ChainID
	SourceGateway []byte
	Receiver      []byte
	Nonce         uint64
	Payload       []byte
	Signature     []byte
}

// NewPacket pairs an outbound message with its signature.
func NewPacket(msg *Message, signature []byte) *Packet {
	return &Packet{
		SourceChainID: msg.SourceChainID,
		SourceGateway: msg.Sender,
		Receiver:      msg.Receiver,
		Nonce:         msg.Nonce,
		Payload:       msg.Payload,
		Signature:     signature,
	}
}

// Message rebuilds the inbound message as seen by the chain localChainID.
func (p *Packet) Message(localChainID ChainID) *Message {
	return NewMessage(p.SourceChainID, localChainID, p.SourceGateway, p.Receiver, p.Nonce, p.Payload)
}

// Bytes returns the RLP encoding of the packet
func (p *Packet) Bytes() ([]byte, error) {
	return Codec.Marshal(CodecVersion, p)
}

// ParsePacket parses a packet from bytes
func ParsePacket(b []byte) (*Packet, error) {
	if len(b) > MaxPacketSize {
		return nil, fmt.Errorf("%w: packet size %d exceeds maximum %d", ErrInvalidMessage, len(b), MaxPacketSize)
	}
	p := &Packet{}
	if _, err := Codec.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal packet: %w", err)
	}
	return p, nil
}
