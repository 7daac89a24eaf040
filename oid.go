package asn1x

import (
	"math/big"
	"strings"
)

// maxOIDContentBytes is a conservative bound against pathologically
// long OIDs, matching mainstream JVM implementations.
const maxOIDContentBytes = 4096

var (
	big0   = big.NewInt(0)
	big2   = big.NewInt(2)
	big40  = big.NewInt(40)
	big80  = big.NewInt(80)
	big128 = big.NewInt(128)
	big39  = big.NewInt(39)
	big1   = big.NewInt(1)
)

// ObjectIdentifier is a sequence of arbitrary-precision arcs: arcs are
// arbitrary-precision integers so they can accommodate UUID-derived
// OIDs under arc 2.25.
type ObjectIdentifier struct {
	Arcs []*big.Int
}

func NewObjectIdentifier(arcs ...*big.Int) ObjectIdentifier {
	return ObjectIdentifier{Arcs: arcs}
}

// ParseOID parses a dotted-decimal string into an ObjectIdentifier. It
// does not consult the name registry; see Registry.Resolve for names.
func ParseOID(dotted string) (ObjectIdentifier, error) {
	parts := strings.Split(dotted, ".")
	if len(parts) < 2 {
		return ObjectIdentifier{}, mkerrf(KindMalformedOID, "", "OID %q needs at least two arcs", dotted)
	}
	arcs := make([]*big.Int, 0, len(parts))
	for _, p := range parts {
		n, ok := new(big.Int).SetString(p, 10)
		if !ok {
			return ObjectIdentifier{}, mkerrf(KindMalformedOID, "", "arc %q is not a non-negative integer", p)
		}
		if n.Sign() < 0 {
			return ObjectIdentifier{}, mkerrf(KindMalformedOID, "", "arc %q is negative", p)
		}
		arcs = append(arcs, n)
	}
	if err := validateArcConstraints(arcs); err != nil {
		return ObjectIdentifier{}, err
	}
	return ObjectIdentifier{Arcs: arcs}, nil
}

func validateArcConstraints(arcs []*big.Int) error {
	first := arcs[0]
	if first.Cmp(big2) > 0 || first.Sign() < 0 {
		return mkerrf(KindMalformedOID, "", "first arc must be 0, 1, or 2")
	}
	if first.Cmp(big2) < 0 && arcs[1].Cmp(big39) > 0 {
		return mkerrf(KindMalformedOID, "", "second arc must be <= 39 when first arc is 0 or 1")
	}
	return nil
}

func (o ObjectIdentifier) String() string {
	parts := make([]string, len(o.Arcs))
	for i, a := range o.Arcs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ".")
}

func (o ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	if len(o.Arcs) != len(other.Arcs) {
		return false
	}
	for i := range o.Arcs {
		if o.Arcs[i].Cmp(other.Arcs[i]) != 0 {
			return false
		}
	}
	return true
}

// decodeOID decodes a base-128 VLQ-encoded OID content region.
func decodeOID(content []byte) (ObjectIdentifier, error) {
	if len(content) == 0 {
		return ObjectIdentifier{}, mkerrf(KindMalformedOID, "", "empty OID content")
	}
	if len(content) > maxOIDContentBytes {
		return ObjectIdentifier{}, mkerrf(KindMalformedOID, "", "OID content of %d bytes exceeds %d-byte maximum", len(content), maxOIDContentBytes)
	}
	if content[len(content)-1]&0x80 != 0 {
		return ObjectIdentifier{}, mkerrf(KindMalformedOID, "", "last octet has continuation bit set")
	}

	var arcs []*big.Int
	first := true
	cur := new(big.Int)
	for _, b := range content {
		cur.Lsh(cur, 7)
		cur.Or(cur, big.NewInt(int64(b&0x7F)))
		if b&0x80 != 0 {
			continue
		}
		if first {
			first = false
			f, s := splitFirstArc(cur)
			arcs = append(arcs, f, s)
		} else {
			arcs = append(arcs, new(big.Int).Set(cur))
		}
		cur = new(big.Int)
	}
	return ObjectIdentifier{Arcs: arcs}, nil
}

// splitFirstArc applies the merge convention: value <= 79 -> first =
// value/40 in {0,1}, second = value%40; otherwise first = 2, second =
// value-80.
func splitFirstArc(value *big.Int) (*big.Int, *big.Int) {
	if value.Cmp(big.NewInt(79)) <= 0 {
		f := new(big.Int).Div(value, big40)
		s := new(big.Int).Mod(value, big40)
		return f, s
	}
	s := new(big.Int).Sub(value, big80)
	return new(big.Int).Set(big2), s
}

// encodeOID encodes an ObjectIdentifier into its base-128 VLQ wire form.
func encodeOID(o ObjectIdentifier) ([]byte, error) {
	if len(o.Arcs) < 2 {
		return nil, mkerrf(KindMalformedOID, "", "OID needs at least two arcs")
	}
	if err := validateArcConstraints(o.Arcs); err != nil {
		return nil, err
	}
	merged := new(big.Int).Mul(o.Arcs[0], big40)
	merged.Add(merged, o.Arcs[1])

	var out []byte
	out = append(out, encodeVLQBig(merged)...)
	for _, a := range o.Arcs[2:] {
		out = append(out, encodeVLQBig(a)...)
	}
	return out, nil
}

// encodeVLQBig emits n as a minimal base-128 big-endian sequence with the
// continuation bit set on every octet but the last. A zero arc emits a
// single zero byte.
func encodeVLQBig(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	v := new(big.Int).Set(n)
	var septets []byte
	mask := big.NewInt(0x7F)
	for v.Sign() > 0 {
		part := new(big.Int).And(v, mask)
		septets = append(septets, byte(part.Uint64()))
		v.Rsh(v, 7)
	}
	out := make([]byte, len(septets))
	for i, s := range septets {
		o := len(septets) - 1 - i
		if o != len(septets)-1 {
			s |= 0x80
		}
		out[o] = s
	}
	return out
}
