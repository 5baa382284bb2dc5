package pfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeVersion(t *testing.T) {
	testCases := []struct {
		name     string
		types    [4]byte
		values   [4]uint16
		expected string
	}{
		{
			name:     "space tag stops decoding",
			types:    [4]byte{'A', ' ', 'N', 'A'},
			values:   [4]uint16{2, 0, 10, 5},
			expected: "2.",
		},
		{
			name:     "zero tag stops decoding",
			types:    [4]byte{'A', 'N', 0, 'A'},
			values:   [4]uint16{0x2, 10, 0, 1},
			expected: "2.10.",
		},
		{
			name:     "hex components render uppercase",
			types:    [4]byte{'A', 'A', 'A', 'A'},
			values:   [4]uint16{0xAB, 0xCD, 1, 0xFFFF},
			expected: "AB.CD.1.FFFF.",
		},
		{
			name:     "decimal components",
			types:    [4]byte{'N', 'N', 0, 0},
			values:   [4]uint16{1, 65535, 0, 0},
			expected: "1.65535.",
		},
		{
			name:     "empty version becomes placeholder dot",
			types:    [4]byte{0, 0, 0, 0},
			values:   [4]uint16{1, 2, 3, 4},
			expected: ".",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			version, warnings := DecodeVersion(tc.types, tc.values)
			assert.Equal(t, tc.expected, version)
			assert.Empty(t, warnings)
		})
	}
}

func TestDecodeVersionUnknownTag(t *testing.T) {
	version, warnings := DecodeVersion([4]byte{'A', 'X', 'N', 0}, [4]uint16{1, 99, 2, 0})

	// The unknown component is skipped, not fatal, and decoding continues.
	assert.Equal(t, "1.2.", version)
	assert.Len(t, warnings, 1)
	assert.Equal(t, WarnUnknownVersionTag, warnings[0].Code)
}
