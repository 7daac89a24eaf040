// Package schemas supplies ready-made declarative asn1x.Schema trees for
// the X.509/PKCS container family: Certificate, CertificationRequest
// (PKCS#10), CertificateList (a CRL), PFX (PKCS#12), and
// SignedPublicKeyAndChallenge (SPKAC). These exercise the map/encode
// phases end to end; the thin orchestration that would wrap them
// (parsing a PEM file into a typed Certificate object, verifying its
// signature, ...) is out of scope here.
package schemas

import "github.com/dcrt/asn1x"

// AlgorithmIdentifier ::= SEQUENCE { algorithm OBJECT IDENTIFIER,
//
//	parameters ANY DEFINED BY algorithm OPTIONAL }
func AlgorithmIdentifier() *asn1x.Schema {
	return asn1x.Sequence().
		Field("algorithm", asn1x.Primitive(asn1x.TagOID)).
		Field("parameters", asn1x.Any().WithOptional())
}

// AttributeTypeAndValue ::= SEQUENCE { type OBJECT IDENTIFIER, value ANY }
func AttributeTypeAndValue() *asn1x.Schema {
	return asn1x.Sequence().
		Field("type", asn1x.Primitive(asn1x.TagOID)).
		Field("value", asn1x.Any())
}

// RelativeDistinguishedName ::= SET OF AttributeTypeAndValue
func RelativeDistinguishedName() *asn1x.Schema {
	return asn1x.SetOf(AttributeTypeAndValue())
}

// Name ::= SEQUENCE OF RelativeDistinguishedName (the RDNSequence form;
// hard-coded attribute-type OID tables are out of scope, so this models
// the structural shape only).
func Name() *asn1x.Schema {
	return asn1x.SequenceOf(RelativeDistinguishedName())
}

// Time ::= CHOICE { utcTime UTCTime, generalTime GeneralizedTime }
func Time() *asn1x.Schema {
	return asn1x.Choice().
		Field("utcTime", asn1x.Primitive(asn1x.TagUTCTime)).
		Field("generalTime", asn1x.Primitive(asn1x.TagGeneralizedTime))
}

// Validity ::= SEQUENCE { notBefore Time, notAfter Time }
func Validity() *asn1x.Schema {
	return asn1x.Sequence().
		Field("notBefore", Time()).
		Field("notAfter", Time())
}

// SubjectPublicKeyInfo ::= SEQUENCE { algorithm AlgorithmIdentifier,
//
//	subjectPublicKey BIT STRING }
func SubjectPublicKeyInfo() *asn1x.Schema {
	return asn1x.Sequence().
		Field("algorithm", AlgorithmIdentifier()).
		Field("subjectPublicKey", asn1x.Primitive(asn1x.TagBitString))
}

// Extension ::= SEQUENCE { extnID OBJECT IDENTIFIER,
//
//	critical BOOLEAN DEFAULT FALSE,
//	extnValue OCTET STRING }
//
// extnValue maps as a plain OCTET STRING ([]byte): Map does not decode
// its inner encoding, since MapRules are consulted only at ANY positions.
func Extension() *asn1x.Schema {
	return asn1x.Sequence().
		Field("extnID", asn1x.Primitive(asn1x.TagOID)).
		Field("critical", asn1x.Primitive(asn1x.TagBoolean).WithDefault(false)).
		Field("extnValue", asn1x.Primitive(asn1x.TagOctetString))
}

// Extensions ::= SEQUENCE OF Extension
func Extensions() *asn1x.Schema {
	return asn1x.SequenceOf(Extension())
}

// TBSCertificate is the to-be-signed body of an X.509 Certificate — its
// exact bytes must be preserved for signature validation, which is
// exactly what the Lazy Constructed node's encoded cache guarantees as
// long as nothing under it mutates.
func TBSCertificate() *asn1x.Schema {
	return asn1x.Sequence().
		Field("version", asn1x.Primitive(asn1x.TagInteger).WithExplicit().WithConstant(0).WithDefault(0).WithOptional()).
		Field("serialNumber", asn1x.Primitive(asn1x.TagInteger)).
		Field("signature", AlgorithmIdentifier()).
		Field("issuer", Name()).
		Field("validity", Validity()).
		Field("subject", Name()).
		Field("subjectPublicKeyInfo", SubjectPublicKeyInfo()).
		Field("issuerUniqueID", asn1x.Primitive(asn1x.TagBitString).WithImplicit().WithConstant(1).WithOptional()).
		Field("subjectUniqueID", asn1x.Primitive(asn1x.TagBitString).WithImplicit().WithConstant(2).WithOptional()).
		Field("extensions", Extensions().WithExplicit().WithConstant(3).WithOptional())
}

// Certificate ::= SEQUENCE { tbsCertificate TBSCertificate,
//
//	signatureAlgorithm AlgorithmIdentifier,
//	signatureValue BIT STRING }
func Certificate() *asn1x.Schema {
	return asn1x.Sequence().
		Field("tbsCertificate", TBSCertificate()).
		Field("signatureAlgorithm", AlgorithmIdentifier()).
		Field("signatureValue", asn1x.Primitive(asn1x.TagBitString))
}

// Attribute ::= SEQUENCE { type OBJECT IDENTIFIER, values SET OF ANY }
func Attribute() *asn1x.Schema {
	return asn1x.Sequence().
		Field("type", asn1x.Primitive(asn1x.TagOID)).
		Field("values", asn1x.SetOf(asn1x.Any()))
}

// CertificationRequestInfo is the PKCS#10 CSR's signed body.
func CertificationRequestInfo() *asn1x.Schema {
	return asn1x.Sequence().
		Field("version", asn1x.Primitive(asn1x.TagInteger)).
		Field("subject", Name()).
		Field("subjectPKInfo", SubjectPublicKeyInfo()).
		Field("attributes", asn1x.SetOf(Attribute()).WithImplicit().WithConstant(0))
}

// CertificationRequest ::= SEQUENCE { certificationRequestInfo
//
//	CertificationRequestInfo,
//	signatureAlgorithm AlgorithmIdentifier,
//	signature BIT STRING }
func CertificationRequest() *asn1x.Schema {
	return asn1x.Sequence().
		Field("certificationRequestInfo", CertificationRequestInfo()).
		Field("signatureAlgorithm", AlgorithmIdentifier()).
		Field("signature", asn1x.Primitive(asn1x.TagBitString))
}

// RevokedCertificate ::= SEQUENCE { userCertificate INTEGER,
//
//	revocationDate Time,
//	crlEntryExtensions Extensions OPTIONAL }
func RevokedCertificate() *asn1x.Schema {
	return asn1x.Sequence().
		Field("userCertificate", asn1x.Primitive(asn1x.TagInteger)).
		Field("revocationDate", Time()).
		Field("crlEntryExtensions", Extensions().WithOptional())
}

// TBSCertList is the to-be-signed body of an X.509 CRL.
func TBSCertList() *asn1x.Schema {
	return asn1x.Sequence().
		Field("version", asn1x.Primitive(asn1x.TagInteger).WithOptional()).
		Field("signature", AlgorithmIdentifier()).
		Field("issuer", Name()).
		Field("thisUpdate", Time()).
		Field("nextUpdate", Time().WithOptional()).
		Field("revokedCertificates", asn1x.SequenceOf(RevokedCertificate()).WithOptional()).
		Field("crlExtensions", Extensions().WithExplicit().WithConstant(0).WithOptional())
}

// CertificateList ::= SEQUENCE { tbsCertList TBSCertList,
//
//	signatureAlgorithm AlgorithmIdentifier,
//	signatureValue BIT STRING }
func CertificateList() *asn1x.Schema {
	return asn1x.Sequence().
		Field("tbsCertList", TBSCertList()).
		Field("signatureAlgorithm", AlgorithmIdentifier()).
		Field("signatureValue", asn1x.Primitive(asn1x.TagBitString))
}

// ContentInfo ::= SEQUENCE { contentType OBJECT IDENTIFIER,
//
//	content [0] EXPLICIT ANY OPTIONAL }
//
// This is the generic PKCS#7 envelope PFX's authSafe field uses. A
// structured content such as SignedData maps to its decoded *Node. For
// an OCTET STRING content, a MapRules entry keyed by the field's dotted
// path can supply the schema its content bytes are decoded against; the
// rule is not given the contentType sibling.
func ContentInfo() *asn1x.Schema {
	return asn1x.Sequence().
		Field("contentType", asn1x.Primitive(asn1x.TagOID)).
		Field("content", asn1x.Any().WithExplicit().WithConstant(0).WithOptional())
}

// IssuerAndSerialNumber ::= SEQUENCE { issuer Name, serialNumber INTEGER }
func IssuerAndSerialNumber() *asn1x.Schema {
	return asn1x.Sequence().
		Field("issuer", Name()).
		Field("serialNumber", asn1x.Primitive(asn1x.TagInteger))
}

// SignerInfo is one PKCS#7 SignerInfo entry.
func SignerInfo() *asn1x.Schema {
	return asn1x.Sequence().
		Field("version", asn1x.Primitive(asn1x.TagInteger)).
		Field("issuerAndSerialNumber", IssuerAndSerialNumber()).
		Field("digestAlgorithm", AlgorithmIdentifier()).
		Field("authenticatedAttributes", asn1x.SetOf(Attribute()).WithImplicit().WithConstant(0).WithOptional()).
		Field("digestEncryptionAlgorithm", AlgorithmIdentifier()).
		Field("encryptedDigest", asn1x.Primitive(asn1x.TagOctetString)).
		Field("unauthenticatedAttributes", asn1x.SetOf(Attribute()).WithImplicit().WithConstant(1).WithOptional())
}

// SignedData is the PKCS#7 SignedData content that PFX's authSafe (and,
// in the broader PKCS#7 ecosystem, S/MIME) wraps. Signature verification
// itself is out of scope; this schema only exercises the structural
// map/encode round-trip.
func SignedData() *asn1x.Schema {
	return asn1x.Sequence().
		Field("version", asn1x.Primitive(asn1x.TagInteger)).
		Field("digestAlgorithms", asn1x.SetOf(AlgorithmIdentifier())).
		Field("contentInfo", ContentInfo()).
		Field("certificates", asn1x.SetOf(asn1x.Any()).WithImplicit().WithConstant(0).WithOptional()).
		Field("crls", asn1x.SetOf(asn1x.Any()).WithImplicit().WithConstant(1).WithOptional()).
		Field("signerInfos", asn1x.SetOf(SignerInfo()))
}

// DigestInfo ::= SEQUENCE { digestAlgorithm AlgorithmIdentifier, digest OCTET STRING }
func DigestInfo() *asn1x.Schema {
	return asn1x.Sequence().
		Field("digestAlgorithm", AlgorithmIdentifier()).
		Field("digest", asn1x.Primitive(asn1x.TagOctetString))
}

// MacData ::= SEQUENCE { mac DigestInfo, macSalt OCTET STRING,
//
//	iterations INTEGER DEFAULT 1 }
func MacData() *asn1x.Schema {
	return asn1x.Sequence().
		Field("mac", DigestInfo()).
		Field("macSalt", asn1x.Primitive(asn1x.TagOctetString)).
		Field("iterations", asn1x.Primitive(asn1x.TagInteger).WithDefault(1))
}

// PFX ::= SEQUENCE { version INTEGER, authSafe ContentInfo,
//
//	macData MacData OPTIONAL }
//
// The password-based MAC/encryption machinery MacData secures is out
// of scope here; this schema covers only the structural PKCS#12
// envelope.
func PFX() *asn1x.Schema {
	return asn1x.Sequence().
		Field("version", asn1x.Primitive(asn1x.TagInteger)).
		Field("authSafe", ContentInfo()).
		Field("macData", MacData().WithOptional())
}

// PublicKeyAndChallenge ::= SEQUENCE { spki SubjectPublicKeyInfo,
//
//	challenge IA5String }
func PublicKeyAndChallenge() *asn1x.Schema {
	return asn1x.Sequence().
		Field("spki", SubjectPublicKeyInfo()).
		Field("challenge", asn1x.Primitive(asn1x.TagIA5String))
}

// SignedPublicKeyAndChallenge ::= SEQUENCE { publicKeyAndChallenge
//
//	PublicKeyAndChallenge,
//	signatureAlgorithm AlgorithmIdentifier,
//	signature BIT STRING }
func SignedPublicKeyAndChallenge() *asn1x.Schema {
	return asn1x.Sequence().
		Field("publicKeyAndChallenge", PublicKeyAndChallenge()).
		Field("signatureAlgorithm", AlgorithmIdentifier()).
		Field("signature", asn1x.Primitive(asn1x.TagBitString))
}
