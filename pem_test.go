package asn1x

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func pemBlock(label string, der []byte) []byte {
	body := base64.StdEncoding.EncodeToString(der)
	out := "-----BEGIN " + label + "-----\n"
	for i := 0; i < len(body); i += 64 {
		end := i + 64
		if end > len(body) {
			end = len(body)
		}
		out += body[i:end] + "\n"
	}
	out += "-----END " + label + "-----\n"
	return []byte(out)
}

func TestExtractBERFromPEMCertificate(t *testing.T) {
	der := []byte{0x30, 0x03, 0x02, 0x01, 0x07}
	pem := pemBlock("CERTIFICATE", der)
	out, err := ExtractBER(pem)
	require.NoError(t, err)
	require.Equal(t, der, out)
}

func TestExtractBERTolerateCRLF(t *testing.T) {
	der := []byte{0x30, 0x03, 0x02, 0x01, 0x07}
	body := base64.StdEncoding.EncodeToString(der)
	raw := "-----BEGIN CERTIFICATE-----\r\n" + body + "\r\n-----END CERTIFICATE-----\r\n"
	out, err := ExtractBER([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, der, out)
}

func TestExtractBERFallsBackToRawDERWithoutArmor(t *testing.T) {
	der := []byte{0x30, 0x03, 0x02, 0x01, 0x07}
	out, err := ExtractBER(der)
	require.NoError(t, err)
	require.Equal(t, der, out)
}

func TestExtractBERFirstBlockOnly(t *testing.T) {
	first := []byte{0x30, 0x03, 0x02, 0x01, 0x01}
	second := []byte{0x30, 0x03, 0x02, 0x01, 0x02}
	raw := append(pemBlock("CERTIFICATE", first), pemBlock("CERTIFICATE", second)...)
	out, err := ExtractBER(raw)
	require.NoError(t, err)
	require.Equal(t, first, out)
}

func TestExtractBERMissingEndMarker(t *testing.T) {
	der := []byte{0x30, 0x03, 0x02, 0x01, 0x07}
	body := base64.StdEncoding.EncodeToString(der)
	raw := "-----BEGIN CERTIFICATE-----\n" + body + "\n"
	_, err := ExtractBER([]byte(raw))
	require.Error(t, err)
}
