package asn1x

import (
	"math/big"
	"reflect"
)

// EncodeDER serializes a semantic value (the result of Map, or a
// hand-built MappedValue) against a schema, honoring the caching and
// SET-OF sort rules.
func EncodeDER(ctx *Context, mv *MappedValue, schema *Schema) ([]byte, error) {
	if ctx == nil {
		ctx = sharedContext()
	}
	if mv.Schema == nil {
		mv.Schema = schema
	}
	return encodeValue(ctx, "", mv)
}

func nodeLazy(mv *MappedValue) *LazyConstructed {
	if mv == nil || mv.Node == nil {
		return nil
	}
	return mv.Node.Lazy()
}

// encodeValue is the recursive encoder core. The cache short-circuit is
// tried first, but only for a constructed (SEQUENCE/SET/SEQUENCE OF/SET
// OF, or an EXPLICIT wrapper) value backed by a *LazyConstructed whose captured bytes were never
// invalidated and whose mapping still belongs to this exact value: the
// original bytes are then reused verbatim, which is what keeps a
// re-emitted signed body byte-identical to the original once nothing
// underneath it has changed. A primitive leaf (INTEGER, BOOLEAN, OID,
// string, ...) is always re-derived from mv.Value instead, since the
// caller may have mutated it in place after Map populated mv.Node; a
// plain Node carries no mapping pointer to tell a mutated value apart
// from an untouched one, so it cannot be trusted as a cache.
func encodeValue(ctx *Context, path string, mv *MappedValue) ([]byte, error) {
	if mv == nil {
		return nil, mkerrf(KindUnmappedValue, path, "nil value where a schema requires one")
	}
	s := mv.Schema

	if !ctx.IgnoreEncodedCache && mv.Node != nil {
		if lc := nodeLazy(mv); lc != nil {
			if lc.cacheValid() && lc.mapping == mv {
				return append(append([]byte{}, lc.wrapping...), rawBytesOf(mv.Node)...), nil
			}
		}
	}

	if s.Explicit {
		inner := shallowUnwrapped(s)
		innerMV := &MappedValue{Schema: inner, Value: mv.Value}
		body, err := encodeValue(ctx, path, innerMV)
		if err != nil {
			return nil, err
		}
		class, num := taggedOverride(s)
		return wrapTLV(Tag{Class: class, Constructed: true, Number: num}, body), nil
	}

	var (
		body []byte
		uTag Tag
		err  error
	)

	switch s.Kind {
	case SchemaChoice:
		cv, ok := mv.Value.(*ChoiceValue)
		if !ok || cv == nil {
			return nil, mkerrf(KindNoChoiceAlternative, path, "CHOICE value missing an alternative")
		}
		alt, ok := s.Children[cv.Alternative]
		if !ok {
			return nil, mkerrf(KindNoChoiceAlternative, path, "unknown CHOICE alternative %q", cv.Alternative)
		}
		inner := cv.Inner
		if inner.Schema == nil {
			inner.Schema = alt
		}
		return encodeValue(ctx, joinPath(path, cv.Alternative), inner)

	case SchemaSequence, SchemaSet:
		body, err = encodeSequenceBody(ctx, path, s, mv)
		if err != nil {
			return nil, err
		}
		num := TagSequence
		if s.Kind == SchemaSet {
			num = TagSet
		}
		uTag = Tag{Class: ClassUniversal, Constructed: true, Number: num}

	case SchemaSequenceOf, SchemaSetOf:
		body, err = encodeRepeatedBody(ctx, path, s, mv)
		if err != nil {
			return nil, err
		}
		num := TagSequence
		if s.Kind == SchemaSetOf {
			num = TagSet
		}
		uTag = Tag{Class: ClassUniversal, Constructed: true, Number: num}

	case SchemaPrimitive:
		if s.Type == TagAny {
			return encodeAny(ctx, path, mv)
		}
		constructed := false
		body, constructed, err = encodePrimitiveBody(s, mv.Value)
		if err != nil {
			return nil, withPathErr(err, path)
		}
		uTag = Tag{Class: ClassUniversal, Constructed: constructed, Number: s.Type}

	default:
		return nil, mkerrf(KindMappingMismatch, path, "unknown schema kind")
	}

	full := wrapTLV(uTag, body)
	if class, num, ok := taggedOverrideOK(s); ok {
		full = wrapTLV(Tag{Class: class, Constructed: uTag.Constructed, Number: num}, body)
	}
	return full, nil
}

func wrapTLV(tag Tag, body []byte) []byte {
	out := encodeTag(tag)
	out = append(out, encodeLength(len(body))...)
	out = append(out, body...)
	return out
}

// taggedOverride resolves a schema's tag re-classing ("cast") modifier:
// if Cast is set it wins (class defaults to context-specific unless
// Class overrides it); otherwise Constant (the usual IMPLICIT/EXPLICIT
// context-specific tag number) applies the same way.
func taggedOverride(s *Schema) (Class, int) {
	class := ClassContextSpecific
	if s.Class != nil {
		class = *s.Class
	}
	if s.Cast != nil {
		return class, *s.Cast
	}
	if s.Constant != nil {
		return class, *s.Constant
	}
	return class, 0
}

func taggedOverrideOK(s *Schema) (Class, int, bool) {
	if s.Cast == nil && s.Constant == nil {
		return 0, 0, false
	}
	c, n := taggedOverride(s)
	return c, n, true
}

// encodeSequenceBody recurses per child in schema order, omitting
// children equal to their default and failing on any missing required
// child.
func encodeSequenceBody(ctx *Context, path string, s *Schema, mv *MappedValue) ([]byte, error) {
	m, ok := mv.Value.(map[string]*MappedValue)
	if !ok {
		return nil, mkerrf(KindUnmappedValue, path, "SEQUENCE/SET value must be a field map")
	}
	var out []byte
	for _, name := range s.Order {
		child := s.Children[name]
		childPath := joinPath(path, name)
		fv, present := m[name]
		if !present || fv == nil {
			if child.Optional || child.Default != nil {
				continue
			}
			return nil, mkerrf(KindMissingRequiredField, childPath, "required field %q missing", name)
		}
		if child.Default != nil && valueEqualsDefault(fv.Value, child.Default) {
			continue
		}
		if fv.Schema == nil {
			fv.Schema = child
		}
		data, err := encodeValue(ctx, childPath, fv)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

func valueEqualsDefault(v, def any) bool {
	if bi, ok := v.(*big.Int); ok {
		if bd, ok2 := def.(*big.Int); ok2 {
			return bi.Cmp(bd) == 0
		}
		if bd, ok2 := def.(int); ok2 {
			return bi.Cmp(big.NewInt(int64(bd))) == 0
		}
	}
	return reflect.DeepEqual(v, def)
}

func encodeRepeatedBody(ctx *Context, path string, s *Schema, mv *MappedValue) ([]byte, error) {
	list, ok := mv.Value.([]*MappedValue)
	if !ok {
		return nil, mkerrf(KindUnmappedValue, path, "SEQUENCE OF/SET OF value must be a slice")
	}
	elems := make([][]byte, 0, len(list))
	for i, item := range list {
		if item.Schema == nil {
			item.Schema = s.Element
		}
		data, err := encodeValue(ctx, joinPath(path, itoa(i)), item)
		if err != nil {
			return nil, err
		}
		elems = append(elems, data)
	}
	if s.Kind == SchemaSetOf {
		sortSetOf(elems)
	}
	var out []byte
	for _, e := range elems {
		out = append(out, e...)
	}
	return out, nil
}

// sortSetOf sorts the encoded elements of a SET OF lexicographically,
// as DER requires, with trailing-zero padding for comparison only (the
// padding affects ordering, not the bytes actually emitted).
func sortSetOf(elems [][]byte) {
	n := len(elems)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && setOfLess(elems[j], elems[j-1]); j-- {
			elems[j], elems[j-1] = elems[j-1], elems[j]
		}
	}
}

func setOfLess(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var ab, bb byte
		if i < len(a) {
			ab = a[i]
		}
		if i < len(b) {
			bb = b[i]
		}
		if ab != bb {
			return ab < bb
		}
	}
	return len(a) < len(b)
}

// encodeAny dispatches a TYPE_ANY value by its runtime Go kind.
func encodeAny(ctx *Context, path string, mv *MappedValue) ([]byte, error) {
	switch v := mv.Value.(type) {
	case nil:
		return wrapTLV(Tag{Class: ClassUniversal, Number: TagNull}, nil), nil
	case bool:
		b, _, err := encodePrimitiveBody(&Schema{Type: TagBoolean}, v)
		if err != nil {
			return nil, err
		}
		return wrapTLV(Tag{Class: ClassUniversal, Number: TagBoolean}, b), nil
	case int:
		return encodeAny(ctx, path, &MappedValue{Value: big.NewInt(int64(v))})
	case *big.Int:
		b, _, err := encodePrimitiveBody(&Schema{Type: TagInteger}, v)
		if err != nil {
			return nil, err
		}
		return wrapTLV(Tag{Class: ClassUniversal, Number: TagInteger}, b), nil
	case float64, float32:
		return nil, mkerrf(KindEncodedDataUnavailable, path, "REAL encoding is out of scope")
	case string:
		return wrapTLV(Tag{Class: ClassUniversal, Number: TagUTF8String}, []byte(v)), nil
	case ASN1Time:
		useUTC := v.Kind == TagUTCTime
		switch ctx.TimeFormat {
		case TimeFormatUTCTime:
			useUTC = true
		case TimeFormatGeneralizedTime:
			useUTC = false
		}
		if useUTC {
			return wrapTLV(Tag{Class: ClassUniversal, Number: TagUTCTime}, v.EncodeUTCTime()), nil
		}
		return wrapTLV(Tag{Class: ClassUniversal, Number: TagGeneralizedTime}, v.EncodeGeneralizedTime()), nil
	case ObjectIdentifier:
		b, err := encodeOID(v)
		if err != nil {
			return nil, err
		}
		return wrapTLV(Tag{Class: ClassUniversal, Number: TagOID}, b), nil
	case []byte:
		return wrapTLV(Tag{Class: ClassUniversal, Number: TagOctetString}, v), nil
	case *Node:
		return rawBytesOf(v), nil
	case OpaqueElement:
		return v.HeaderAndContent, nil
	case MalformedValue:
		return v.HeaderAndContent, nil
	case *MappedValue:
		return encodeValue(ctx, path, v)
	default:
		return nil, mkerrf(KindEncodedDataUnavailable, path, "no TYPE_ANY encoding for %T", v)
	}
}

// encodePrimitiveBody encodes the content bytes for each universal type.
// It returns the content bytes and whether the tag is naturally
// constructed (true only for a constructed re-emission of
// BitString/OctetString, which this encoder never chooses to produce —
// it always emits the primitive, definite-length form).
func encodePrimitiveBody(s *Schema, value any) ([]byte, bool, error) {
	if len(s.Mapping) > 0 {
		return encodeMappedBody(s, value)
	}
	switch s.Type {
	case TagBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "BOOLEAN value must be bool")
		}
		if b {
			return []byte{0xFF}, false, nil
		}
		return []byte{0x00}, false, nil

	case TagInteger, TagEnumerated:
		n, ok := value.(*big.Int)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "INTEGER/ENUMERATED value must be *big.Int")
		}
		return encodeSignedBig(n), false, nil

	case TagNull:
		return nil, false, nil

	case TagOID:
		oid, ok := value.(ObjectIdentifier)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "OID value must be ObjectIdentifier")
		}
		b, err := encodeOID(oid)
		return b, false, err

	case TagBitString:
		bs, ok := value.(BitStringValue)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "BIT STRING value must be BitStringValue")
		}
		out := append([]byte{byte(bs.UnusedBits)}, bs.Bytes...)
		return out, false, nil

	case TagOctetString:
		b, ok := value.([]byte)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "OCTET STRING value must be []byte")
		}
		return b, false, nil

	case TagUTCTime:
		ts, ok := value.(ASN1Time)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "UTCTime value must be ASN1Time")
		}
		return ts.EncodeUTCTime(), false, nil

	case TagGeneralizedTime:
		ts, ok := value.(ASN1Time)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "GeneralizedTime value must be ASN1Time")
		}
		return ts.EncodeGeneralizedTime(), false, nil

	case TagUTF8String, TagPrintableString, TagT61String, TagVideotexString,
		TagIA5String, TagGraphicString, TagVisibleString, TagGeneralString,
		TagUniversalString, TagBMPString, TagNumericString:
		str, ok := value.(string)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "string-type value must be string")
		}
		return []byte(str), false, nil

	default:
		return nil, false, mkerrf(KindMappingMismatch, "", "no encoder for universal tag %d", s.Type)
	}
}

// encodeMappedBody encodes a mapped INTEGER/ENUMERATED (reverse name
// lookup) or a mapped BIT STRING (smallest set-bit-containing prefix).
func encodeMappedBody(s *Schema, value any) ([]byte, bool, error) {
	switch s.Type {
	case TagInteger, TagEnumerated:
		name, ok := value.(string)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "mapped INTEGER/ENUMERATED value must be string")
		}
		for i, n := range s.Mapping {
			if n == name {
				return encodeSignedBig(big.NewInt(int64(i))), false, nil
			}
		}
		return nil, false, mkerrf(KindUnmappedValue, "", "name %q not present in mapping table", name)

	case TagBitString:
		names, ok := value.([]string)
		if !ok {
			return nil, false, mkerrf(KindMappingMismatch, "", "mapped BIT STRING value must be []string")
		}
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n] = true
		}
		highest := -1
		for i, n := range s.Mapping {
			if set[n] {
				highest = i
			}
		}
		if highest < 0 {
			return []byte{0}, false, nil
		}
		nBytes := highest/8 + 1
		buf := make([]byte, nBytes)
		for i, n := range s.Mapping {
			if i > highest {
				break
			}
			if set[n] {
				buf[i/8] |= 1 << uint(7-i%8)
			}
		}
		unused := nBytes*8 - (highest + 1)
		return append([]byte{byte(unused)}, buf...), false, nil

	default:
		return nil, false, mkerrf(KindMappingMismatch, "", "mapping table not supported for universal tag %d", s.Type)
	}
}
