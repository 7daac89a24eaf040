package asn1x

// Node is one decoded TLV: the absolute start offset in the root buffer,
// the header length, the tag triple, the definite content length (or
// indefinite), the raw header bytes, and a Content that is one of a
// primitive Value, a *LazyConstructed, or an OpaqueElement.
type Node struct {
	Start     int
	HeaderLen int
	Tag       Tag
	Length    decodedLength
	Header    []byte
	// ContentBytes is the verbatim content region captured at decode
	// time (header excluded), regardless of which NodeContent variant
	// interpreted it. It is what makes TYPE_ANY passthrough and the
	// encoder's cache short-circuit possible without re-deriving bytes.
	ContentBytes []byte
	Content      NodeContent
}

// rawBytesOf returns the node's original header+content bytes verbatim.
func rawBytesOf(n *Node) []byte {
	out := make([]byte, 0, len(n.Header)+len(n.ContentBytes))
	out = append(out, n.Header...)
	out = append(out, n.ContentBytes...)
	return out
}

// ContentLen reports the content length for definite-length nodes; for
// indefinite nodes it reports the length actually captured while
// scanning forward to the matching end-of-contents marker.
func (n *Node) ContentLen() int {
	if n.Length.Definite {
		return n.Length.Value
	}
	return len(n.ContentBytes)
}

// End returns the offset one past the node's last byte: for a
// definite-length node, start+headerLength+contentLength lands exactly
// on the next sibling's start.
func (n *Node) End() int {
	return n.Start + n.HeaderLen + n.ContentLen()
}

// Lazy returns the node's *LazyConstructed content, or nil if the node is
// not constructed.
func (n *Node) Lazy() *LazyConstructed {
	lc, _ := n.Content.(*LazyConstructed)
	return lc
}

// lazyNodeState tracks a LazyConstructed node's position in its small
// state machine: FreshFromDecode, Mapped, Dirty, or Clean.
type lazyNodeState int

const (
	stateFresh lazyNodeState = iota
	stateMapped
	stateDirty
	stateClean
)

// LazyConstructed is a constructed value (SEQUENCE, SET, or a
// BER-relaxed constructed string/time) whose children are decoded on
// demand rather than eagerly. It carries the original encoded bytes
// verbatim, the class/tag/constructed flag, an ordered child list
// materialized lazily on first structural access, an optional
// schema-mapping pointer, an optional wrapping prefix, and an
// encoded-cache-valid flag.
type LazyConstructed struct {
	tag    Tag
	start  int
	header []byte
	raw    []byte // content bytes captured verbatim at decode time
	root   []byte // buffer the node was decoded from (a parent's content bytes for a nested node); not read after construction

	indefinite bool // true if the original encoding used indefinite length

	children     []*Node
	materialized bool

	mapping *MappedValue
	wrapping []byte

	state lazyNodeState
	depth int // recursion depth at which this node was produced

	parent *LazyConstructed
	ctx    *Context
}

func newLazyConstructed(ctx *Context, tag Tag, start int, header, raw, root []byte, indefinite bool, depth int) *LazyConstructed {
	return &LazyConstructed{
		tag:        tag,
		start:      start,
		header:     header,
		raw:        raw,
		root:       root,
		indefinite: indefinite,
		state:      stateFresh,
		depth:      depth,
		ctx:        ctx,
	}
}

func (lc *LazyConstructed) isNodeContent() {}

func (lc *LazyConstructed) Tag() Tag { return lc.tag }

// RawContent returns the verbatim content bytes captured at decode time
// (header excluded), before any lazy materialization or mutation.
func (lc *LazyConstructed) RawContent() []byte { return lc.raw }

// Children returns the node's child list, decoding it from the captured
// raw bytes on first access. Subsequent calls return the cached slice.
func (lc *LazyConstructed) Children() ([]*Node, error) {
	if lc.materialized {
		return lc.children, nil
	}
	kids, err := decodeChildren(lc.ctx, lc.raw, lc.depth+1)
	if err != nil {
		return nil, err
	}
	lc.children = kids
	lc.materialized = true
	// Children were decoded from lc.raw; rebase their offsets onto the
	// root buffer.
	base := lc.start + len(lc.header)
	for _, k := range kids {
		k.Start += base
		if child := k.Lazy(); child != nil {
			child.parent = lc
			child.start += base
		}
	}
	return kids, nil
}

// ConcatenatedBytes handles the BER relaxation permitting a constructed
// encoding of BitString/OctetString/UTCTime/GeneralizedTime: the content
// of every child primitive of the same family is concatenated in order,
// recursing through nested constructed wrappers. A BIT STRING segment
// contributes its data octets only, without its unused-bit count. This is the single
// concatenation path every call site shares, so the behavior stays
// uniform regardless of how deeply the fragments are nested.
func (lc *LazyConstructed) ConcatenatedBytes() ([]byte, error) {
	kids, err := lc.Children()
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, k := range kids {
		switch v := k.Content.(type) {
		case OctetStringValue:
			out = append(out, v.Bytes...)
		case StringValue:
			out = append(out, v.Bytes...)
		case BitStringValue:
			out = append(out, v.Bytes...)
		case *LazyConstructed:
			inner, err := v.ConcatenatedBytes()
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		case MalformedValue:
			out = append(out, v.HeaderAndContent...)
		}
	}
	return out, nil
}

// linkMapping installs the schema-mapping pointer. It does not invalidate
// the encoded cache: the bytes are unchanged, only described differently.
func (lc *LazyConstructed) linkMapping(m *MappedValue) {
	lc.mapping = m
	if lc.state == stateFresh {
		lc.state = stateMapped
	}
}

func (lc *LazyConstructed) Mapping() *MappedValue { return lc.mapping }

// replaceTag rewrites the universal tag the way the schema interpreter
// does for IMPLICIT tagging. Like linkMapping, this describes the same
// bytes differently and must not invalidate the cache by itself.
func (lc *LazyConstructed) replaceTag(t Tag) {
	lc.tag = t
}

// setWrapping installs the extra byte prefix emitted before the node's
// own bytes — used when an OCTET STRING wraps an inner structured value
// whose natural encoding omits that wrapper.
func (lc *LazyConstructed) setWrapping(prefix []byte) {
	lc.wrapping = prefix
}

func (lc *LazyConstructed) Wrapping() []byte { return lc.wrapping }

// cacheValid reports whether re-emitting the node is guaranteed to
// reproduce the captured bytes exactly: the node must have a definite-
// length original encoding and must not have been structurally mutated.
// Whether the caller ignores the cache outright is checked by
// encodeValue, not here.
func (lc *LazyConstructed) cacheValid() bool {
	if lc.indefinite {
		return false
	}
	return lc.state == stateFresh || lc.state == stateMapped || lc.state == stateClean
}

// markDirty transitions this node to Dirty and, unless cache invalidation
// is currently suppressed on ctx, propagates the invalidation up the
// parent chain.
func (lc *LazyConstructed) markDirty(ctx *Context) {
	lc.state = stateDirty
	if ctx != nil && !ctx.InvalidateCache {
		return
	}
	for p := lc.parent; p != nil; p = p.parent {
		p.state = stateDirty
	}
}

// SetChild replaces the child at index i and marks the node (and its
// ancestors) dirty.
func (lc *LazyConstructed) SetChild(ctx *Context, i int, n *Node) error {
	kids, err := lc.Children()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(kids) {
		return mkerrf(KindMappingMismatch, "", "child index %d out of range", i)
	}
	lc.children[i] = n
	if child := n.Lazy(); child != nil {
		child.parent = lc
	}
	lc.markDirty(ctx)
	return nil
}

// AppendChild appends n to the child list and marks the node dirty.
func (lc *LazyConstructed) AppendChild(ctx *Context, n *Node) {
	// Materialize the decoded children first so n lands after them.
	_, _ = lc.Children()
	lc.materialized = true
	lc.children = append(lc.children, n)
	if child := n.Lazy(); child != nil {
		child.parent = lc
	}
	lc.markDirty(ctx)
}

// RemoveChild deletes the child at index i, compacts the remaining
// indices down by one, and marks the node dirty.
func (lc *LazyConstructed) RemoveChild(ctx *Context, i int) error {
	kids, err := lc.Children()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(kids) {
		return mkerrf(KindMappingMismatch, "", "child index %d out of range", i)
	}
	lc.children = append(lc.children[:i], lc.children[i+1:]...)
	lc.markDirty(ctx)
	return nil
}
