// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeHexString(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    []byte
		expectError bool
	}{
		{
			name:     "plain",
			input:    "0102ff",
			expected: []byte{1, 2, 0xff},
		},
		{
			name:     "prefixed",
			input:    "0x0102ff",
			expected: []byte{1, 2, 0xff},
		},
		{
			name:     "upper prefix",
			input:    "0X0A",
			expected: []byte{0x0a},
		},
		{
			name:     "empty",
			input:    "",
			expected: []byte{},
		},
		{
			name:        "odd length",
			input:       "0x123",
			expectError: true,
		},
		{
			name:        "not hex",
			input:       "zz",
			expectError: true,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			b, err := DecodeHexString(test.input)
			if test.expectError {
				require.Error(err)
				return
			}
			require.NoError(err)
			require.Equal(test.expected, b)
		})
	}
}

func TestEncodeHexString(t *testing.T) {
	require.Equal(t, "0x0102", EncodeHexString([]byte{1, 2}))
	require.Equal(t, "0x", EncodeHexString(nil))
}
