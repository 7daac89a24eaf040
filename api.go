package asn1x

// This file collects the package-level convenience wrappers. LoadOIDs
// and the toggles operate against the process-wide sharedContext()
// singleton; the codec helpers (DecodeTag, DecodeLength, EncodeLength,
// EncodeOID, DecodeOID) use no context at all. Library code that wants an isolated, explicitly-threaded Context
// should call the *Context-taking functions (DecodeBER, Map, EncodeDER,
// ...) directly instead.

// DecodeTag decodes one identifier octet (and its long-form
// continuation, if any) starting at pos and returns the new position.
func DecodeTag(buf []byte, pos int) (Tag, int, error) {
	c := newCursor(buf[pos:])
	t, err := decodeTag(c)
	return t, pos + c.pos, err
}

// DecodeLength decodes a length field starting at pos. The boolean
// return reports definiteness; it is false for an indefinite length
// marker.
func DecodeLength(buf []byte, pos int) (length int, definite bool, newPos int, err error) {
	c := newCursor(buf[pos:])
	l, err := decodeLength(c)
	if err != nil {
		return 0, false, pos, err
	}
	return l.Value, l.Definite, pos + c.pos, nil
}

// EncodeLength encodes n as a BER/DER length field.
func EncodeLength(n int) []byte { return encodeLength(n) }

// EncodeOID parses a dotted-decimal OID string and encodes it.
func EncodeOID(dotted string) ([]byte, error) {
	oid, err := ParseOID(dotted)
	if err != nil {
		return nil, err
	}
	return encodeOID(oid)
}

// DecodeOID decodes an OID's wire content and formats it dotted-decimal.
func DecodeOID(content []byte) (string, error) {
	oid, err := decodeOID(content)
	if err != nil {
		return "", err
	}
	return oid.String(), nil
}

// LoadOIDs registers table's entries against the shared registry.
func LoadOIDs(tableName string, table map[string]string) (bool, error) {
	return sharedContext().Registry().LoadOIDs(tableName, table)
}

// EnableBlobsOnBadDecodes / DisableBlobsOnBadDecodes toggle the shared
// context's strict-mode relaxation.
func EnableBlobsOnBadDecodes()  { sharedContext().EnableBlobsOnBadDecode() }
func DisableBlobsOnBadDecodes() { sharedContext().DisableBlobsOnBadDecode() }

// EnableCacheInvalidation / DisableCacheInvalidation toggle the
// ancestor-dirtying behavior on the shared context.
func EnableCacheInvalidation()  { sharedContext().EnableCacheInvalidation() }
func DisableCacheInvalidation() { sharedContext().DisableCacheInvalidation() }

// IgnoreEncodedCache / RespectEncodedCache toggle whether EncodeDER is
// allowed to short-circuit via a node's captured original bytes.
func IgnoreEncodedCache() { sharedContext().IgnoreCache() }
func RespectEncodedCache() { sharedContext().RespectCache() }

// SetRecursionDepth sets the shared context's decoder recursion cap
// (default 128).
func SetRecursionDepth(n int) { sharedContext().SetRecursionDepth(n) }

// SetTimeFormat sets the shared context's preferred Time re-encoding
// form.
func SetTimeFormat(f TimeFormat) { sharedContext().SetTimeFormat(f) }
