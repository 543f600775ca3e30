// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageBytes(t *testing.T) {
	require := require.New(t)

	sender := bytes.Repeat([]byte{0xaa}, 32)
	receiver := make([]byte, 32)
	msg := NewMessage(3, 1, sender, receiver, 0, []byte{1})

	expected := []byte{0, 0, 0, 3, 0, 0, 0, 1}
	expected = append(expected, sender...)
	expected = append(expected, receiver...)
	expected = append(expected, 0, 0, 0, 0, 0, 0, 0, 0)
	expected = append(expected, 1)
	require.Equal(expected, msg.Bytes())

	// deterministic
	require.Equal(msg.Bytes(), NewMessage(3, 1, sender, receiver, 0, []byte{1}).Bytes())
}

func TestMessageKey(t *testing.T) {
	require := require.New(t)

	msg := NewMessage(1, 3, []byte("gw"), make([]byte, 32), 7, []byte("hello"))
	key := msg.Key()
	require.Len(key, 64)
	require.Equal(key, MessageKey(msg.Bytes()))

	raw, err := hex.DecodeString(key)
	require.NoError(err)
	id := msg.ID()
	require.Equal(id[:], raw)

	// lowercase without prefix
	require.Regexp("^[0-9a-f]{64}$", key)
}

func TestMessageKeySensitivity(t *testing.T) {
	base := NewMessage(1, 3, []byte("sender"), make([]byte, 32), 5, []byte("payload"))

	tests := []struct {
		name   string
		mutate func(m *Message)
	}{
		{
			name:   "source chain",
			mutate: func(m *Message) { m.SourceChainID = 2 },
		},
		{
			name:   "destination chain",
			mutate: func(m *Message) { m.DestinationChainID = 4 },
		},
		{
			name:   "sender",
			mutate: func(m *Message) { m.Sender = []byte("senders") },
		},
		{
			name:   "receiver",
			mutate: func(m *Message) { m.Receiver = bytes.Repeat([]byte{1}, 32) },
		},
		{
			name:   "nonce",
			mutate: func(m *Message) { m.Nonce = 6 },
		},
		{
			name:   "payload",
			mutate: func(m *Message) { m.Payload = []byte("payloaD") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := *base
			tt.mutate(&m)
			require.NotEqual(t, base.Key(), m.Key())
		})
	}
}

func TestMessageFieldBoundaryAmbiguity(t *testing.T) {
	// sender/receiver carry no length prefix
	a := NewMessage(1, 3, []byte{1, 2}, []byte{3}, 0, nil)
	b := NewMessage(1, 3, []byte{1}, []byte{2, 3}, 0, nil)
	require.Equal(t, a.Bytes(), b.Bytes())
	require.False(t, a.Equal(b))
}

func TestParseMessage(t *testing.T) {
	require := require.New(t)

	msg := NewMessage(3, 9, bytes.Repeat([]byte{7}, 32), bytes.Repeat([]byte{8}, 32), 42, []byte("data"))
	parsed, err := ParseMessage(msg.Bytes(), IdentityLen, IdentityLen)
	require.NoError(err)
	require.True(msg.Equal(parsed))
	require.Equal(msg.Key(), parsed.Key())

	empty := NewMessage(3, 9, bytes.Repeat([]byte{7}, 32), bytes.Repeat([]byte{8}, 32), 42, nil)
	parsed, err = ParseMessage(empty.Bytes(), IdentityLen, IdentityLen)
	require.NoError(err)
	require.Empty(parsed.Payload)

	_, err = ParseMessage(msg.Bytes()[:50], IdentityLen, IdentityLen)
	require.ErrorIs(err, ErrInvalidMessage)

	_, err = ParseMessage(msg.Bytes(), -1, IdentityLen)
	require.ErrorIs(err, ErrInvalidMessage)
}
