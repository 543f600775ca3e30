// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/precompile"
	"github.com/stretchr/testify/require"
)

var (
	testSender   = "0x" + strings.Repeat("aa", 32)
	testReceiver = "0x" + strings.Repeat("bb", 32)
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// field returns the value printed after "name: " in out.
func field(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, name+": "); ok {
			return v
		}
	}
	require.FailNow(t, "missing field", name)
	return ""
}

func TestSignRoundTrip(t *testing.T) {
	require := require.New(t)

	out, err := run(t, "keygen")
	require.NoError(err)
	publicKey := field(t, out, "Public key")
	privateKey := field(t, out, "Private key")

	out, err = run(t, "encode",
		"--src=1", "--dst=3",
		"--sender="+testSender,
		"--receiver="+testReceiver,
		"--nonce=7",
		"--payload=0x68656c6c6f",
	)
	require.NoError(err)
	message := field(t, out, "Message")
	key := field(t, out, "Key")
	require.Len(key, 64)

	out, err = run(t, "sign", "--message="+message, "--key="+privateKey)
	require.NoError(err)
	sig := strings.TrimSpace(out)

	out, err = run(t, "verify", "--message="+message, "--signature="+sig, "--public-key="+publicKey)
	require.NoError(err)
	require.Contains(out, "Signature valid")

	// A signature does not carry over to another message.
	out, err = run(t, "encode",
		"--src=1", "--dst=3",
		"--sender="+testSender,
		"--receiver="+testReceiver,
		"--nonce=8",
		"--payload=0x68656c6c6f",
	)
	require.NoError(err)
	_, err = run(t, "verify", "--message="+field(t, out, "Message"), "--signature="+sig, "--public-key="+publicKey)
	require.Error(err)
}

func TestDecode(t *testing.T) {
	require := require.New(t)

	out, err := run(t, "encode",
		"--src=2", "--dst=5",
		"--sender="+testSender,
		"--receiver="+testReceiver,
		"--nonce=3",
		"--payload=0x0102",
	)
	require.NoError(err)

	out, err = run(t, "decode", "--message="+field(t, out, "Message"))
	require.NoError(err)

	var decoded decodedMessage
	require.NoError(json.Unmarshal([]byte(out), &decoded))
	require.Equal(uint32(2), decoded.SourceChainID)
	require.Equal(uint32(5), decoded.DestinationChainID)
	require.Equal(testSender, decoded.Sender)
	require.Equal(testReceiver, decoded.Receiver)
	require.Equal(uint64(3), decoded.Nonce)
	require.Equal("0x0102", decoded.Payload)

	_, err = run(t, "decode", "--message=0x0102")
	require.ErrorIs(err, gateway.ErrInvalidMessage)
}

func TestToolErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "unknown scheme",
			args: []string{"keygen", "--scheme=rsa"},
		},
		{
			name: "bad sender hex",
			args: []string{"encode", "--src=1", "--dst=2", "--sender=zz"},
		},
		{
			name: "missing message",
			args: []string{"decode"},
		},
		{
			name: "bad key",
			args: []string{"sign", "--message=0x00", "--key=0x00"},
		},
		{
			name: "bad public key",
			args: []string{"verify", "--message=0x00", "--signature=0x00", "--public-key=0x00"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := run(t, test.args...)
			require.Error(t, err)
		})
	}
}

func TestEntryPoints(t *testing.T) {
	require := require.New(t)

	out, err := run(t, "entrypoints")
	require.NoError(err)

	var entryPoints []precompile.EntryPoint
	require.NoError(json.Unmarshal([]byte(out), &entryPoints))
	require.Equal(precompile.EntryPoints, entryPoints)
}
