package asn1x

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// decode 30 03 02 01 07 -> SEQUENCE of one INTEGER = 7; re-encode
// produces the same 5 bytes.
func TestDecodeBERSequenceOfOneInteger(t *testing.T) {
	raw := []byte{0x30, 0x03, 0x02, 0x01, 0x07}
	node, err := DecodeBER(nil, raw)
	require.NoError(t, err)
	require.Equal(t, TagSequence, node.Tag.Number)
	require.True(t, node.Tag.Constructed)

	lc := node.Lazy()
	require.NotNil(t, lc)
	kids, err := lc.Children()
	require.NoError(t, err)
	require.Len(t, kids, 1)
	iv, ok := kids[0].Content.(IntegerValue)
	require.True(t, ok)
	require.Equal(t, int64(7), iv.Big.Int64())

	require.Equal(t, raw, rawBytesOf(node))
}

func TestDecodeBERTruncatedBuffer(t *testing.T) {
	_, err := DecodeBER(nil, []byte{0x30, 0x05, 0x02, 0x01})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindLengthExceedsBuffer, e.Kind)
}

// Boundary: recursion depth of 129 on a deeply nested SEQUENCE ->
// RecursionDepthExceeded with depth cap 128.
func TestRecursionDepthExceeded(t *testing.T) {
	// Build 130 nested SEQUENCEs: an empty 30 00 wrapped 129 times, so the
	// innermost one sits at depth 129.
	buf := []byte{0x30, 0x00}
	for i := 0; i < 129; i++ {
		wrapped := append([]byte{0x30}, encodeLength(len(buf))...)
		buf = append(wrapped, buf...)
	}
	ctx := NewContext()
	node, err := DecodeBER(ctx, buf)
	require.NoError(t, err) // outer decode itself doesn't recurse

	lc := node.Lazy()
	require.NotNil(t, lc)
	// Force full materialization by walking until depth is exceeded.
	var walk func(*LazyConstructed) error
	walk = func(l *LazyConstructed) error {
		kids, err := l.Children()
		if err != nil {
			return err
		}
		for _, k := range kids {
			if inner := k.Lazy(); inner != nil {
				if err := walk(inner); err != nil {
					return err
				}
			}
		}
		return nil
	}
	err = walk(lc)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindRecursionDepthExceeded, e.Kind)
}

// decode an indefinite-length constructed OCTET STRING
// 24 80 04 02 AA BB 04 02 CC DD 00 00 and request content concatenation
// -> AA BB CC DD.
func TestIndefiniteConstructedOctetStringConcatenation(t *testing.T) {
	raw := []byte{0x24, 0x80, 0x04, 0x02, 0xAA, 0xBB, 0x04, 0x02, 0xCC, 0xDD, 0x00, 0x00}
	node, err := DecodeBER(nil, raw)
	require.NoError(t, err)
	require.Equal(t, TagOctetString, node.Tag.Number)
	require.True(t, node.Tag.Constructed)

	lc := node.Lazy()
	require.NotNil(t, lc)
	concat, err := lc.ConcatenatedBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, concat)
	require.False(t, lc.cacheValid())
}

func TestBlobsOnBadDecodeRelaxation(t *testing.T) {
	ctx := NewContext()
	ctx.EnableBlobsOnBadDecode()
	// BOOLEAN with a 2-byte content is malformed (must be exactly 1).
	raw := []byte{0x01, 0x02, 0xFF, 0xFF}
	node, err := DecodeBER(ctx, raw)
	require.NoError(t, err)
	_, ok := node.Content.(MalformedValue)
	require.True(t, ok)
}

func TestBlobsOnBadDecodeDisabledFailsStrict(t *testing.T) {
	ctx := NewContext()
	raw := []byte{0x01, 0x02, 0xFF, 0xFF}
	_, err := DecodeBER(ctx, raw)
	require.Error(t, err)
}

func TestContextSpecificPrimitiveIsOpaque(t *testing.T) {
	raw := []byte{0x80, 0x02, 0xAB, 0xCD} // [0] IMPLICIT primitive
	node, err := DecodeBER(nil, raw)
	require.NoError(t, err)
	op, ok := node.Content.(OpaqueElement)
	require.True(t, ok)
	require.Equal(t, raw, op.HeaderAndContent)
}
