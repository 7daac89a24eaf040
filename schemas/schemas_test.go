package schemas

import (
	"math/big"
	"testing"

	"github.com/dcrt/asn1x"
	"github.com/stretchr/testify/require"
)

// sha256WithRSAEncryption, a real algorithm OID, with NULL parameters -
// the canonical AlgorithmIdentifier shape most CAs emit.
func TestAlgorithmIdentifierRoundTrip(t *testing.T) {
	raw := []byte{
		0x30, 0x0d, // SEQUENCE
		0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x0b, // OID 1.2.840.113549.1.1.11
		0x05, 0x00, // NULL
	}
	schema := AlgorithmIdentifier()
	node, err := asn1x.DecodeBER(nil, raw)
	require.NoError(t, err)
	mv, err := asn1x.Map(nil, node, schema, nil)
	require.NoError(t, err)

	fields := mv.Value.(map[string]*asn1x.MappedValue)
	oid, ok := fields["algorithm"].Value.(asn1x.ObjectIdentifier)
	require.True(t, ok)
	require.Equal(t, "1.2.840.113549.1.1.11", oid.String())

	out, err := asn1x.EncodeDER(nil, mv, schema)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

// RelativeDistinguishedName/Name: a one-RDN, one-AttributeTypeAndValue
// issuer-name shape, exercising SET OF + SEQUENCE OF nesting together.
func TestNameRoundTrip(t *testing.T) {
	raw := []byte{
		0x30, 0x0e, // SEQUENCE OF (Name)
		0x31, 0x0c, // SET OF (RDN)
		0x30, 0x0a, // SEQUENCE (AttributeTypeAndValue)
		0x06, 0x03, 0x55, 0x04, 0x03, // OID 2.5.4.3 (commonName)
		0x0c, 0x03, 0x66, 0x6f, 0x6f, // UTF8String "foo"
	}
	schema := Name()
	node, err := asn1x.DecodeBER(nil, raw)
	require.NoError(t, err)
	mv, err := asn1x.Map(nil, node, schema, nil)
	require.NoError(t, err)

	out, err := asn1x.EncodeDER(nil, mv, schema)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

// Extension round-trip with the DEFAULT critical=false suppressed on
// re-encode, matching how a real X.509 extension SEQUENCE omits it.
func TestExtensionDefaultCriticalSuppressed(t *testing.T) {
	raw := []byte{
		0x30, 0x0c, // SEQUENCE
		0x06, 0x03, 0x55, 0x1d, 0x13, // OID 2.5.29.19 (basicConstraints)
		0x04, 0x05, 0x30, 0x03, 0x01, 0x01, 0xFF, // OCTET STRING wrapping SEQUENCE { BOOLEAN TRUE }
	}
	schema := Extension()
	node, err := asn1x.DecodeBER(nil, raw)
	require.NoError(t, err)
	mv, err := asn1x.Map(nil, node, schema, nil)
	require.NoError(t, err)

	fields := mv.Value.(map[string]*asn1x.MappedValue)
	_, present := fields["critical"]
	require.False(t, present)

	out, err := asn1x.EncodeDER(nil, mv, schema)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

// TBSCertificate's optional EXPLICIT-[0] version is left out of the
// mapped fields when absent (its DEFAULT v1 is not injected), and the serialNumber/signature/issuer/validity/subject/SPKI
// chain maps without requiring the optional unique IDs or extensions.
func TestTBSCertificateMinimalFields(t *testing.T) {
	serial := []byte{0x02, 0x01, 0x01}
	alg := []byte{0x30, 0x03, 0x06, 0x01, 0x2A}
	name := []byte{0x30, 0x00}
	utc := append([]byte{0x17, 0x0D}, []byte("991231235959Z")...)
	validity := append([]byte{0x30, byte(2 * len(utc))}, utc...)
	validity = append(validity, utc...)
	spki := append([]byte{0x30}, asn1x.EncodeLength(len(alg)+4)...)
	spki = append(spki, alg...)
	spki = append(spki, 0x03, 0x02, 0x00, 0x00) // BIT STRING, 0 unused, empty key

	body := append([]byte{}, serial...)
	body = append(body, alg...)
	body = append(body, name...)
	body = append(body, validity...)
	body = append(body, name...)
	body = append(body, spki...)

	raw := append([]byte{0x30}, asn1x.EncodeLength(len(body))...)
	raw = append(raw, body...)

	schema := TBSCertificate()
	node, err := asn1x.DecodeBER(nil, raw)
	require.NoError(t, err)
	mv, err := asn1x.Map(nil, node, schema, nil)
	require.NoError(t, err)

	fields := mv.Value.(map[string]*asn1x.MappedValue)
	_, hasVersion := fields["version"]
	require.False(t, hasVersion)
	require.Equal(t, int64(1), fields["serialNumber"].Value.(*big.Int).Int64())

	out, err := asn1x.EncodeDER(nil, mv, schema)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}
