package asn1x

import (
	"math/big"

	"github.com/google/uuid"
)

// uuidArc is the well-known "2.25" arc ITU-T X.667 reserves for
// UUID-derived OIDs: the UUID's 128 bits, read as an unsigned big-endian
// integer, become the third and final arc.
var uuidArc = big.NewInt(25)

// ObjectIdentifierFromUUID builds the OID "2.25.<uuid-as-decimal>" from
// a github.com/google/uuid value, the well-known arc reserved by ITU-T
// X.667 for UUID-derived OIDs.
func ObjectIdentifierFromUUID(u uuid.UUID) ObjectIdentifier {
	bytes := u[:]
	n := new(big.Int).SetBytes(bytes)
	return ObjectIdentifier{Arcs: []*big.Int{big2, new(big.Int).Set(uuidArc), n}}
}

// UUID recovers the github.com/google/uuid value from an OID built by
// ObjectIdentifierFromUUID, failing if the OID is not of the form
// "2.25.<128-bit integer>".
func UUID(o ObjectIdentifier) (uuid.UUID, error) {
	if len(o.Arcs) != 3 || o.Arcs[0].Cmp(big2) != 0 || o.Arcs[1].Cmp(uuidArc) != 0 {
		return uuid.UUID{}, mkerrf(KindMalformedOID, "", "OID %s is not a 2.25 UUID arc", o.String())
	}
	b := o.Arcs[2].Bytes()
	if len(b) > 16 {
		return uuid.UUID{}, mkerrf(KindMalformedOID, "", "UUID arc overflows 128 bits")
	}
	var buf [16]byte
	copy(buf[16-len(b):], b)
	return uuid.UUID(buf), nil
}
