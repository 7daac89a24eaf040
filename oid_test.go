package asn1x

import (
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// decode OID 06 09 2A 86 48 86 F7 0D 01 01 0B ->
// "1.2.840.113549.1.1.11" (sha256WithRSAEncryption); re-encode ->
// identical bytes.
func TestDecodeOIDSha256WithRSA(t *testing.T) {
	content := []byte{0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0B}
	oid, err := decodeOID(content)
	require.NoError(t, err)
	require.Equal(t, "1.2.840.113549.1.1.11", oid.String())

	enc, err := encodeOID(oid)
	require.NoError(t, err)
	require.Equal(t, content, enc)
}

func TestOIDRoundTripArbitrary(t *testing.T) {
	oid, err := ParseOID("2.999999999999999999999999.3")
	require.NoError(t, err)
	enc, err := encodeOID(oid)
	require.NoError(t, err)
	back, err := decodeOID(enc)
	require.NoError(t, err)
	require.True(t, oid.Equal(back))
}

func TestOIDLastOctetContinuationBitIsMalformed(t *testing.T) {
	_, err := decodeOID([]byte{0x2A, 0x86})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindMalformedOID, e.Kind)
}

func TestOIDSecondArcBoundWhenFirstArcSmall(t *testing.T) {
	_, err := ParseOID("1.40")
	require.Error(t, err)
}

func TestOIDContentTooLong(t *testing.T) {
	content := make([]byte, maxOIDContentBytes+1)
	for i := range content {
		content[i] = 0x81 // continuation bit set throughout except we fix last below
	}
	content[len(content)-1] = 0x01
	_, err := decodeOID(content)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindMalformedOID, e.Kind)
}

func TestObjectIdentifierFromUUIDRoundTrip(t *testing.T) {
	u := uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	oid := ObjectIdentifierFromUUID(u)
	require.Equal(t, "2", oid.Arcs[0].String())
	require.Equal(t, "25", oid.Arcs[1].String())

	back, err := UUID(oid)
	require.NoError(t, err)
	require.Equal(t, u, back)
}

func TestUUIDRejectsNonUUIDOID(t *testing.T) {
	oid := NewObjectIdentifier(big.NewInt(1), big.NewInt(2), big.NewInt(3))
	_, err := UUID(oid)
	require.Error(t, err)
}

func TestRegistryResolveAndLoad(t *testing.T) {
	r := defaultRegistry()
	ok, err := r.LoadOIDs("rsa", map[string]string{
		"sha256WithRSAEncryption": "1.2.840.113549.1.1.11",
	})
	require.NoError(t, err)
	require.True(t, ok)

	oid, err := r.Resolve("sha256WithRSAEncryption")
	require.NoError(t, err)
	require.Equal(t, "1.2.840.113549.1.1.11", oid.String())

	name, ok := r.Name(oid)
	require.True(t, ok)
	require.Equal(t, "sha256WithRSAEncryption", name)

	_, err = r.Resolve("not-a-registered-name")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindUnknownOID, e.Kind)
}
