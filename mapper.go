package asn1x

// Map walks a decoded node against a declarative schema, resolving
// CHOICE, IMPLICIT/EXPLICIT tag overrides, DEFAULT, OPTIONAL, and
// named-bit/enumerated mappings, and returns the semantic tree the DER
// encoder consumes.
func Map(ctx *Context, node *Node, schema *Schema, rules MapRules) (*MappedValue, error) {
	if ctx == nil {
		ctx = sharedContext()
	}
	return mapNode(ctx, "", node, schema, rules)
}

func mapNode(ctx *Context, path string, node *Node, schema *Schema, rules MapRules) (*MappedValue, error) {
	// EXPLICIT expects a constructed wrapper; descend into its sole
	// inner value.
	if schema.Explicit {
		lc := node.Lazy()
		if lc == nil {
			return nil, mkerrf(KindMappingMismatch, path, "EXPLICIT tagging expects a constructed wrapper")
		}
		kids, err := lc.Children()
		if err != nil {
			return nil, withPathErr(err, path)
		}
		if len(kids) == 0 {
			return nil, mkerrf(KindMappingMismatch, path, "EXPLICIT wrapper carries no inner value")
		}
		inner := shallowUnwrapped(schema)
		mv, err := mapNode(ctx, path, kids[0], inner, rules)
		if err != nil {
			return nil, err
		}
		mv.Schema = schema
		mv.Node = node
		lc.linkMapping(mv)
		return mv, nil
	}

	// CHOICE: the first alternative whose constant (or type, when
	// constant is unset) matches wins; ties resolve first-declared-wins.
	if schema.Kind == SchemaChoice {
		for _, name := range schema.Order {
			alt := schema.Children[name]
			if altMatches(node, alt) {
				inner, err := mapNode(ctx, joinPath(path, name), node, alt, rules)
				if err != nil {
					return nil, err
				}
				return &MappedValue{Schema: schema, Node: node, Value: &ChoiceValue{Alternative: name, Inner: inner}}, nil
			}
		}
		return nil, mkerrf(KindNoChoiceAlternative, path, "no CHOICE alternative matched tag %s", node.Tag.String())
	}

	// IMPLICIT reinterpretation of primitive-byte content.
	effectiveNode := node
	if schema.Implicit {
		rn, err := reinterpretImplicit(ctx, node, schema)
		if err != nil {
			return nil, withPathErr(err, path)
		}
		effectiveNode = rn
	}

	switch schema.Kind {
	case SchemaPrimitive:
		return mapPrimitive(ctx, path, effectiveNode, schema, rules)
	case SchemaSequence, SchemaSet:
		return mapSequence(ctx, path, effectiveNode, schema, rules)
	case SchemaSequenceOf, SchemaSetOf:
		return mapRepeated(ctx, path, effectiveNode, schema, rules)
	default:
		return nil, mkerrf(KindMappingMismatch, path, "unknown schema kind")
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func withPathErr(err error, path string) error {
	if e, ok := err.(*Error); ok {
		return withPath(e, path)
	}
	return err
}

// shallowUnwrapped returns a copy of schema with the EXPLICIT flag and
// outer tagging modifiers cleared, used to map the inner value once the
// wrapper has been consumed.
func shallowUnwrapped(schema *Schema) *Schema {
	cp := *schema
	cp.Explicit = false
	cp.Constant = nil
	cp.Class = nil
	cp.Cast = nil
	return &cp
}

// altMatches implements CHOICE alternative matching: a Constant present
// means context-specific (or schema.Class) tag-number matching;
// otherwise fall back to type matching.
func altMatches(node *Node, alt *Schema) bool {
	if alt.Constant != nil {
		class := ClassContextSpecific
		if alt.Class != nil {
			class = *alt.Class
		}
		return node.Tag.Class == class && node.Tag.Number == *alt.Constant
	}
	return typeMatches(node, alt)
}

// typeMatches is the schema/node type-compatibility check, tolerating
// mismatches between two different string types (tags 18..30) as a
// pass-through.
func typeMatches(node *Node, s *Schema) bool {
	switch s.Kind {
	case SchemaSequence, SchemaSequenceOf:
		return node.Tag.IsUniversal() && node.Tag.Constructed && node.Tag.Number == TagSequence
	case SchemaSet, SchemaSetOf:
		return node.Tag.IsUniversal() && node.Tag.Constructed && node.Tag.Number == TagSet
	case SchemaChoice:
		for _, name := range s.Order {
			if altMatches(node, s.Children[name]) {
				return true
			}
		}
		return false
	default: // SchemaPrimitive
		if s.Type == TagAny {
			return true
		}
		if !node.Tag.IsUniversal() {
			return false
		}
		if isStringFamily(node.Tag.Number) && isStringFamily(s.Type) {
			return true
		}
		return node.Tag.Number == s.Type
	}
}

func isStringFamily(tag int) bool { return tag >= 18 && tag <= 30 }

// reinterpretImplicit handles IMPLICIT tagging: when the decoded content
// is still a primitive-byte slice wearing a non-universal tag,
// synthesize a tag header for the schema's declared type and re-decode,
// or, for constructed content, simply relabel the existing
// LazyConstructed with the universal tag so structural mapping proceeds
// unchanged.
func reinterpretImplicit(ctx *Context, node *Node, schema *Schema) (*Node, error) {
	if node.Tag.IsUniversal() {
		return node, nil
	}
	switch c := node.Content.(type) {
	case OpaqueElement:
		universalTag := Tag{Class: ClassUniversal, Constructed: false, Number: schema.Type}
		nc, err := classify(ctx, universalTag, node.ContentBytes, nil, node.Start, node.Header, false, 0)
		if err != nil {
			return nil, err
		}
		out := &Node{Start: node.Start, HeaderLen: node.HeaderLen, Tag: universalTag, Length: node.Length, Header: node.Header, ContentBytes: node.ContentBytes, Content: nc}
		return out, nil
	case *LazyConstructed:
		universalNumber := TagSequence
		if schema.Kind == SchemaSet || schema.Kind == SchemaSetOf {
			universalNumber = TagSet
		}
		c.replaceTag(Tag{Class: ClassUniversal, Constructed: true, Number: universalNumber})
		out := &Node{Start: node.Start, HeaderLen: node.HeaderLen, Tag: c.tag, Length: node.Length, Header: node.Header, ContentBytes: node.ContentBytes, Content: c}
		return out, nil
	default:
		return node, nil
	}
}

func mapPrimitive(ctx *Context, path string, node *Node, schema *Schema, rules MapRules) (*MappedValue, error) {
	if schema.Type == TagAny {
		return mapAny(ctx, path, node, schema, rules)
	}
	if !typeMatches(node, schema) {
		return nil, mkerrf(KindMappingMismatch, path, "schema expects universal tag %d, decoded tag is %s", schema.Type, node.Tag.String())
	}

	if len(schema.Mapping) > 0 {
		return mapNamed(path, node, schema)
	}

	val, err := primitiveGoValue(node)
	if err != nil {
		return nil, withPathErr(err, path)
	}
	return &MappedValue{Schema: schema, Node: node, Value: val}, nil
}

// mapAny maps a TYPE_ANY schema position: with a Constant present,
// TYPE_ANY cannot invent a type without the original bytes, so it is
// kept as an opaque node reference; a SEQUENCE, SET or constructed
// tagged value is likewise kept as its node; otherwise the decoded value
// passes through as-is.
func mapAny(ctx *Context, path string, node *Node, schema *Schema, rules MapRules) (*MappedValue, error) {
	if schema.Constant != nil {
		return &MappedValue{Schema: schema, Node: node, Value: node}, nil
	}
	if node.Lazy() != nil && (!node.Tag.IsUniversal() || node.Tag.Number == TagSequence || node.Tag.Number == TagSet) {
		return &MappedValue{Schema: schema, Node: node, Value: node}, nil
	}
	val, err := nodeValueAsGo(node)
	if err != nil {
		return nil, withPathErr(err, path)
	}
	mv := &MappedValue{Schema: schema, Node: node, Value: val}
	if rule, ok := rules[path]; ok {
		sub, err := rule(ctx, nil)
		if err == nil && sub != nil {
			content, cerr := anyContentBytes(node)
			if cerr == nil {
				inner, merr := DecodeBER(ctx, content)
				if merr == nil {
					if nested, nerr := mapNode(ctx, path, inner, sub, rules); nerr == nil {
						mv.Value = nested
					}
				}
			}
		}
	}
	return mv, nil
}

// anyContentBytes extracts the bytes a MapRule would re-decode: the raw
// content of an OCTET STRING (concatenated, if constructed) wrapping a
// nested encoding.
func anyContentBytes(node *Node) ([]byte, error) {
	switch v := node.Content.(type) {
	case OctetStringValue:
		return v.Bytes, nil
	case *LazyConstructed:
		return v.ConcatenatedBytes()
	default:
		return node.ContentBytes, nil
	}
}

func mapNamed(path string, node *Node, schema *Schema) (*MappedValue, error) {
	switch v := node.Content.(type) {
	case IntegerValue:
		idx := int(v.Big.Int64())
		if idx < 0 || idx >= len(schema.Mapping) {
			return nil, mkerrf(KindMappingMismatch, path, "enumerated index %d out of range of mapping table", idx)
		}
		return &MappedValue{Schema: schema, Node: node, Value: schema.Mapping[idx]}, nil
	case EnumeratedValue:
		idx := int(v.Big.Int64())
		if idx < 0 || idx >= len(schema.Mapping) {
			return nil, mkerrf(KindMappingMismatch, path, "enumerated index %d out of range of mapping table", idx)
		}
		return &MappedValue{Schema: schema, Node: node, Value: schema.Mapping[idx]}, nil
	case BitStringValue:
		names := namedBits(v, schema.Mapping)
		return &MappedValue{Schema: schema, Node: node, Value: names}, nil
	default:
		return nil, mkerrf(KindMappingMismatch, path, "mapping table only applies to INTEGER/ENUMERATED/BIT STRING")
	}
}

// namedBits resolves a BIT STRING's named-bit mapping: bit 0 is the most
// significant bit of the first content octet; trailing zero bits beyond
// the declared unused-bit count are simply not present in the byte
// range, so absent trailing zeros are logically absent names.
func namedBits(v BitStringValue, mapping []string) []string {
	totalBits := len(v.Bytes)*8 - v.UnusedBits
	var names []string
	for i := 0; i < totalBits && i < len(mapping); i++ {
		byteIdx := i / 8
		bitIdx := 7 - (i % 8)
		if v.Bytes[byteIdx]&(1<<uint(bitIdx)) != 0 {
			names = append(names, mapping[i])
		}
	}
	return names
}

func mapSequence(ctx *Context, path string, node *Node, schema *Schema, rules MapRules) (*MappedValue, error) {
	lc := node.Lazy()
	if lc == nil {
		return nil, mkerrf(KindMappingMismatch, path, "SEQUENCE/SET schema expects a constructed node")
	}
	kids, err := lc.Children()
	if err != nil {
		return nil, withPathErr(err, path)
	}

	out := make(map[string]*MappedValue, len(schema.Order))
	idx := 0
	for _, name := range schema.Order {
		child := schema.Children[name]
		childPath := joinPath(path, name)
		if idx < len(kids) && candidateMatches(kids[idx], child) {
			mv, err := mapNode(ctx, childPath, kids[idx], child, rules)
			if err != nil {
				return nil, err
			}
			out[name] = mv
			idx++
			continue
		}
		if child.Optional || child.Default != nil {
			continue
		}
		return nil, mkerrf(KindMissingRequiredField, childPath, "required field %q absent", name)
	}

	mv := &MappedValue{Schema: schema, Node: node, Value: out}
	lc.linkMapping(mv)
	return mv, nil
}

// candidateMatches is the ordered-consumption predicate for SEQUENCE/SET
// mapping: a schema child either matches the next decoded child
// (advancing both cursors) or, if optional/default, is skipped.
func candidateMatches(node *Node, schema *Schema) bool {
	if schema.Constant != nil {
		class := ClassContextSpecific
		if schema.Class != nil {
			class = *schema.Class
		}
		return node.Tag.Class == class && node.Tag.Number == *schema.Constant
	}
	return typeMatches(node, schema)
}

func mapRepeated(ctx *Context, path string, node *Node, schema *Schema, rules MapRules) (*MappedValue, error) {
	lc := node.Lazy()
	if lc == nil {
		return nil, mkerrf(KindMappingMismatch, path, "SEQUENCE OF/SET OF schema expects a constructed node")
	}
	kids, err := lc.Children()
	if err != nil {
		return nil, withPathErr(err, path)
	}
	if schema.Min > 0 && len(kids) < schema.Min {
		return nil, mkerrf(KindMappingMismatch, path, "expected at least %d elements, got %d", schema.Min, len(kids))
	}
	if schema.Max > 0 && len(kids) > schema.Max {
		return nil, mkerrf(KindMappingMismatch, path, "expected at most %d elements, got %d", schema.Max, len(kids))
	}
	list := make([]*MappedValue, 0, len(kids))
	for i, k := range kids {
		mv, err := mapNode(ctx, joinPath(path, itoa(i)), k, schema.Element, rules)
		if err != nil {
			return nil, err
		}
		list = append(list, mv)
	}
	mv := &MappedValue{Schema: schema, Node: node, Value: list}
	lc.linkMapping(mv)
	return mv, nil
}

// primitiveGoValue converts a decoded node's Content into the Go-level
// value a non-mapped schema primitive yields.
func primitiveGoValue(node *Node) (any, error) {
	switch v := node.Content.(type) {
	case BooleanValue:
		return bool(v), nil
	case IntegerValue:
		return v.Big, nil
	case EnumeratedValue:
		return v.Big, nil
	case NullValue:
		return nil, nil
	case OIDValue:
		return v.OID, nil
	case StringValue:
		return string(v.Bytes), nil
	case OctetStringValue:
		return v.Bytes, nil
	case BitStringValue:
		return v, nil
	case TimeValue:
		return v.ASN1Time, nil
	case *LazyConstructed:
		// BER relaxation: constructed BitString/OctetString/Time.
		concat, err := v.ConcatenatedBytes()
		if err != nil {
			return nil, err
		}
		switch node.Tag.Number {
		case TagBitString:
			// concat holds data octets only; the unused-bit count is the
			// final segment's.
			unused := 0
			if kids, kerr := v.Children(); kerr == nil && len(kids) > 0 {
				if last, ok := kids[len(kids)-1].Content.(BitStringValue); ok {
					unused = last.UnusedBits
				}
			}
			return BitStringValue{UnusedBits: unused, Bytes: concat}, nil
		case TagOctetString:
			return concat, nil
		case TagUTCTime:
			ts, err := decodeUTCTime(concat)
			return ts, err
		case TagGeneralizedTime:
			ts, err := decodeGeneralizedTime(concat)
			return ts, err
		default:
			return concat, nil
		}
	case OpaqueElement:
		return v, nil
	case MalformedValue:
		return v, nil
	default:
		return nil, mkerrf(KindMappingMismatch, "", "no Go value conversion for node content")
	}
}

// nodeValueAsGo is the TYPE_ANY pass-through conversion.
func nodeValueAsGo(node *Node) (any, error) {
	return primitiveGoValue(node)
}
