package asn1x

import (
	"encoding/base64"
)

// ExtractBER strips any text preceding a PEM BEGIN line and following
// the matching END line, tolerates CR/LF/SPACE inside the body, returns
// only the first block's bytes when more than one PEM block is present,
// and falls back to treating the input as raw DER when no armor is
// present.
func ExtractBER(input []byte) ([]byte, error) {
	beginIdx, label, bodyStart, ok := findPEMBegin(input)
	if !ok {
		return input, nil
	}
	endMarker := []byte("-----END " + label + "-----")
	endIdx := indexOf(input[bodyStart:], endMarker)
	if endIdx < 0 {
		return nil, mkerrf(KindMappingMismatch, "", "PEM block %q missing END marker", label)
	}
	_ = beginIdx
	body := input[bodyStart : bodyStart+endIdx]
	clean := stripPEMWhitespace(body)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(clean)))
	n, err := base64.StdEncoding.Decode(out, clean)
	if err != nil {
		return nil, mkerrf(KindMappingMismatch, "", "PEM body is not valid base64: %v", err)
	}
	return out[:n], nil
}

// findPEMBegin locates the first "-----BEGIN <LABEL>-----" marker and
// returns its index, the label text, and the offset of the byte
// following it.
func findPEMBegin(input []byte) (idx int, label string, bodyStart int, ok bool) {
	const prefix = "-----BEGIN "
	const suffix = "-----"
	pi := indexOf(input, []byte(prefix))
	if pi < 0 {
		return 0, "", 0, false
	}
	rest := input[pi+len(prefix):]
	si := indexOf(rest, []byte(suffix))
	if si < 0 {
		return 0, "", 0, false
	}
	label = string(rest[:si])
	bodyStart = pi + len(prefix) + si + len(suffix)
	return pi, label, bodyStart, true
}

func indexOf(haystack, needle []byte) int {
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if string(haystack[i:i+m]) == string(needle) {
			return i
		}
	}
	return -1
}

func stripPEMWhitespace(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch c {
		case '\r', '\n', ' ', '\t':
			continue
		default:
			out = append(out, c)
		}
	}
	return out
}
