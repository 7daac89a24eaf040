package asn1x

/*
common.go contains the standard-library aliases used throughout this
package. Centralizing them here (rather than scattering raw strconv
calls) matches the way the rest of this family of ASN.1 packages keeps a
single low-level vocabulary.
*/

import (
	"strconv"
)

var (
	itoa func(int) string           = strconv.Itoa
	atoi func(string) (int, error) = strconv.Atoi
)
