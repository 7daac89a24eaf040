package asn1x

import "math/big"

// isEOC reports whether tag/length is the end-of-contents marker that
// closes an indefinite-length constructed encoding: universal class,
// primitive, tag number 0, length 0.
func isEOC(tag Tag, length decodedLength) bool {
	return tag.Class == ClassUniversal && !tag.Constructed && tag.Number == 0 && length.Definite && length.Value == 0
}

// DecodeBER decodes a single TLV at the start of buf and returns the
// resulting node. It does not recurse into constructed bodies; those are
// captured into a *LazyConstructed that materializes children on first
// traversal.
func DecodeBER(ctx *Context, buf []byte) (*Node, error) {
	if ctx == nil {
		ctx = sharedContext()
	}
	n, _, err := decodeNode(ctx, buf, 0, 0)
	return n, err
}

// decodeChildren decodes every sibling node packed into buf, front to
// back, until the buffer is exhausted. For an indefinite-length body buf
// already ends before the closing EOC marker.
func decodeChildren(ctx *Context, buf []byte, depth int) ([]*Node, error) {
	var out []*Node
	pos := 0
	for pos < len(buf) {
		n, next, err := decodeNode(ctx, buf, pos, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		pos = next
	}
	return out, nil
}

// decodeNode decodes one TLV starting at pos within buf and returns the
// node plus the position immediately following it. buf is the root
// buffer for the top-level node and a parent's content bytes for its
// children; LazyConstructed.Children rebases those children's offsets
// onto the root buffer.
func decodeNode(ctx *Context, buf []byte, pos int, depth int) (*Node, int, error) {
	if depth > ctx.effectiveDepth() {
		return nil, 0, mkerrf(KindRecursionDepthExceeded, "", "recursion depth %d exceeds cap %d", depth, ctx.effectiveDepth())
	}

	c := newCursor(buf[pos:])
	tag, err := decodeTag(c)
	if err != nil {
		return nil, 0, err
	}
	length, err := decodeLength(c)
	if err != nil {
		return nil, 0, err
	}
	headerLen := c.pos
	header := buf[pos : pos+headerLen]
	contentStart := pos + headerLen

	var (
		content    []byte
		newPos     int
		indefinite bool
	)
	if length.Definite {
		contentEnd := contentStart + length.Value
		if contentEnd > len(buf) || contentEnd < contentStart {
			return nil, 0, mkerrf(KindLengthExceedsBuffer, "", "declared length %d at offset %d exceeds buffer", length.Value, pos)
		}
		content = buf[contentStart:contentEnd]
		newPos = contentEnd
	} else {
		if !tag.Constructed {
			return nil, 0, mkerrf(KindUnexpectedPrimitive, "", "indefinite length on a primitive tag at offset %d", pos)
		}
		end, next, err := scanIndefiniteBody(ctx, buf, contentStart, depth+1)
		if err != nil {
			return nil, 0, err
		}
		content = buf[contentStart:end]
		newPos = next
		indefinite = true
	}

	n := &Node{Start: pos, HeaderLen: headerLen, Tag: tag, Length: length, Header: header, ContentBytes: content}

	nc, err := classify(ctx, tag, content, buf, pos, header, indefinite, depth)
	if err != nil {
		if ctx.BlobsOnBadDecode {
			nc = MalformedValue{HeaderAndContent: append(append([]byte{}, header...), content...)}
		} else {
			return nil, 0, err
		}
	}
	n.Content = nc
	return n, newPos, nil
}

// scanIndefiniteBody walks nested TLVs starting at pos (already past the
// outer header) until it finds the EOC marker that closes this level,
// recursing through any nested indefinite-length bodies so their own EOC
// markers are not mistaken for the outer one. It returns the offset of
// the EOC tag (the node's content end) and the offset just past the EOC
// (the next sibling's start).
func scanIndefiniteBody(ctx *Context, buf []byte, pos int, depth int) (contentEnd int, nextPos int, err error) {
	if depth > ctx.effectiveDepth() {
		return 0, 0, mkerrf(KindRecursionDepthExceeded, "", "recursion depth %d exceeds cap %d", depth, ctx.effectiveDepth())
	}
	for pos < len(buf) {
		c := newCursor(buf[pos:])
		tag, terr := decodeTag(c)
		if terr != nil {
			return 0, 0, terr
		}
		length, lerr := decodeLength(c)
		if lerr != nil {
			return 0, 0, lerr
		}
		if isEOC(tag, length) {
			return pos, pos + c.pos, nil
		}
		headerLen := c.pos
		contentStart := pos + headerLen
		if length.Definite {
			contentEnd := contentStart + length.Value
			if contentEnd > len(buf) {
				return 0, 0, mkerrf(KindLengthExceedsBuffer, "", "declared length exceeds buffer at offset %d", pos)
			}
			pos = contentEnd
		} else {
			_, next, err := scanIndefiniteBody(ctx, buf, contentStart, depth+1)
			if err != nil {
				return 0, 0, err
			}
			pos = next
		}
	}
	return 0, 0, mkerrf(KindEOC, "", "indefinite-length body never closed with an EOC marker")
}

// classify builds the NodeContent for one decoded TLV: a non-Universal
// class yields an opaque value or, if constructed, a lazily-decoded
// container tagged with its class; Universal class dispatches to the
// per-type primitive decoders below, with the BER relaxation allowing
// BitString/OctetString/UTCTime/GeneralizedTime to be constructed.
func classify(ctx *Context, tag Tag, content, root []byte, start int, header []byte, indefinite bool, depth int) (NodeContent, error) {
	if tag.Class != ClassUniversal {
		if tag.Constructed {
			return newLazyConstructed(ctx, tag, start, header, content, root, indefinite, depth), nil
		}
		return OpaqueElement{Tag: tag, HeaderAndContent: append(append([]byte{}, header...), content...)}, nil
	}

	switch tag.Number {
	case TagSequence, TagSet:
		if !tag.Constructed {
			return nil, mkerrf(KindUnexpectedPrimitive, "", "SEQUENCE/SET must be constructed")
		}
		return newLazyConstructed(ctx, tag, start, header, content, root, indefinite, depth), nil

	case TagBoolean:
		if tag.Constructed {
			return nil, mkerrf(KindUnexpectedConstructed, "", "BOOLEAN must be primitive")
		}
		if len(content) != 1 {
			return nil, mkerrf(KindMappingMismatch, "", "BOOLEAN content must be exactly 1 byte, got %d", len(content))
		}
		return BooleanValue(content[0] != 0), nil

	case TagNull:
		if tag.Constructed {
			return nil, mkerrf(KindUnexpectedConstructed, "", "NULL must be primitive")
		}
		if len(content) != 0 {
			return nil, mkerrf(KindMappingMismatch, "", "NULL content must be empty, got %d bytes", len(content))
		}
		return NullValue{}, nil

	case TagInteger:
		if tag.Constructed {
			return nil, mkerrf(KindUnexpectedConstructed, "", "INTEGER must be primitive")
		}
		return IntegerValue{Big: decodeSignedBig(content)}, nil

	case TagEnumerated:
		if tag.Constructed {
			return nil, mkerrf(KindUnexpectedConstructed, "", "ENUMERATED must be primitive")
		}
		return EnumeratedValue{Big: decodeSignedBig(content)}, nil

	case TagOID:
		if tag.Constructed {
			return nil, mkerrf(KindUnexpectedConstructed, "", "OBJECT IDENTIFIER must be primitive")
		}
		oid, err := decodeOID(content)
		if err != nil {
			return nil, err
		}
		return OIDValue{OID: oid}, nil

	case TagBitString:
		if tag.Constructed {
			return newLazyConstructed(ctx, tag, start, header, content, root, indefinite, depth), nil
		}
		return decodeBitString(content)

	case TagOctetString:
		if tag.Constructed {
			return newLazyConstructed(ctx, tag, start, header, content, root, indefinite, depth), nil
		}
		return OctetStringValue{Bytes: content}, nil

	case TagUTCTime:
		if tag.Constructed {
			return newLazyConstructed(ctx, tag, start, header, content, root, indefinite, depth), nil
		}
		ts, err := decodeUTCTime(content)
		if err != nil {
			return nil, err
		}
		return TimeValue{ASN1Time: ts}, nil

	case TagGeneralizedTime:
		if tag.Constructed {
			return newLazyConstructed(ctx, tag, start, header, content, root, indefinite, depth), nil
		}
		ts, err := decodeGeneralizedTime(content)
		if err != nil {
			return nil, err
		}
		return TimeValue{ASN1Time: ts}, nil

	case TagReal:
		// REAL is out of scope; always captured as an opaque blob.
		return OpaqueElement{Tag: tag, HeaderAndContent: append(append([]byte{}, header...), content...)}, nil

	case TagUTF8String, TagPrintableString, TagT61String, TagVideotexString,
		TagIA5String, TagGraphicString, TagVisibleString, TagGeneralString,
		TagUniversalString, TagBMPString, TagNumericString:
		if tag.Constructed {
			return nil, mkerrf(KindUnexpectedConstructed, "", "string type %d must not be constructed", tag.Number)
		}
		return StringValue{Tag: tag.Number, Bytes: content}, nil

	default:
		return nil, mkerrf(KindNoValidTag, "", "unrecognized universal tag %d", tag.Number)
	}
}

func decodeSignedBig(content []byte) *big.Int {
	if len(content) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(content)
	if content[0]&0x80 != 0 {
		// Two's-complement negative: n - 2^(8*len(content))
		full := new(big.Int).Lsh(big.NewInt(1), uint(8*len(content)))
		n.Sub(n, full)
	}
	return n
}

// encodeSignedBig emits the minimal two's-complement signed big-endian
// encoding of n.
func encodeSignedBig(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// Negative: compute two's complement over the minimal byte length.
	// The byte count must come from the bit length of |n|-1, not of |n|
	// itself, or a magnitude exactly equal to 2^(8k-1) (-128, -32768,
	// ...) gets counted one byte too wide: |n| itself needs 8k bits to
	// represent unsigned, but the two's-complement encoding only needs k
	// bytes because the sign bit absorbs that top bit.
	absMinusOne := new(big.Int).Sub(new(big.Int).Abs(n), big1)
	nBytes := absMinusOne.BitLen()/8 + 1
	full := new(big.Int).Lsh(big.NewInt(1), uint(8*nBytes))
	twos := new(big.Int).Add(full, n)
	b := twos.Bytes()
	for len(b) < nBytes {
		b = append([]byte{0}, b...)
	}
	return b
}

func decodeBitString(content []byte) (NodeContent, error) {
	if len(content) == 0 {
		return nil, mkerrf(KindMappingMismatch, "", "BIT STRING content must carry at least the unused-bit count")
	}
	unused := int(content[0])
	if !withinBounds(unused, 0, 7) {
		return nil, mkerrf(KindMappingMismatch, "", "BIT STRING unused-bit count %d out of range 0..7", unused)
	}
	return BitStringValue{UnusedBits: unused, Bytes: append([]byte{}, content[1:]...)}, nil
}

func (c *Context) effectiveDepth() int {
	if c.RecursionDepth <= 0 {
		return 128
	}
	return c.RecursionDepth
}
