package asn1x

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeLengthShortForm(t *testing.T) {
	c := newCursor([]byte{0x7F})
	l, err := decodeLength(c)
	require.NoError(t, err)
	require.True(t, l.Definite)
	require.Equal(t, 127, l.Value)
}

func TestDecodeLengthIndefinite(t *testing.T) {
	c := newCursor([]byte{0x80})
	l, err := decodeLength(c)
	require.NoError(t, err)
	require.False(t, l.Definite)
}

// Boundary: length byte 0x85 (5-byte long form) -> LengthTooLarge.
func TestDecodeLengthTooLarge(t *testing.T) {
	c := newCursor([]byte{0x85, 1, 2, 3, 4, 5})
	_, err := decodeLength(c)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindLengthTooLarge, e.Kind)
}

func TestEncodeLengthRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 127, 128, 255, 65535, 16777216} {
		enc := encodeLength(n)
		c := newCursor(enc)
		l, err := decodeLength(c)
		require.NoError(t, err)
		require.True(t, l.Definite)
		require.Equal(t, n, l.Value)
	}
}

func TestEncodeLengthMinimalBytes(t *testing.T) {
	// 128 requires exactly one length byte beyond the count byte.
	enc := encodeLength(128)
	require.Equal(t, []byte{0x81, 0x80}, enc)
}
