package asn1x

import (
	"fmt"
	"sync"
)

// Kind enumerates the stable error categories produced by this package.
// Callers should compare against these with errors.Is rather than string
// matching; the textual message is for humans only.
type Kind int

const (
	_ Kind = iota
	KindTruncated
	KindMalformedTag
	KindLengthTooLarge
	KindLengthExceedsBuffer
	KindRecursionDepthExceeded
	KindUnexpectedConstructed
	KindUnexpectedPrimitive
	KindMalformedOID
	KindNoValidTag
	KindEOC
	KindMappingMismatch
	KindNoChoiceAlternative
	KindMissingRequiredField
	KindUnmappedValue
	KindUnknownOID
	KindEncodedDataUnavailable
)

var kindNames = map[Kind]string{
	KindTruncated:              "Truncated",
	KindMalformedTag:           "MalformedTag",
	KindLengthTooLarge:         "LengthTooLarge",
	KindLengthExceedsBuffer:    "LengthExceedsBuffer",
	KindRecursionDepthExceeded: "RecursionDepthExceeded",
	KindUnexpectedConstructed:  "UnexpectedConstructed",
	KindUnexpectedPrimitive:    "UnexpectedPrimitive",
	KindMalformedOID:           "MalformedOID",
	KindNoValidTag:             "NoValidTag",
	KindEOC:                    "EOC",
	KindMappingMismatch:        "MappingMismatch",
	KindNoChoiceAlternative:    "NoChoiceAlternative",
	KindMissingRequiredField:   "MissingRequiredField",
	KindUnmappedValue:          "UnmappedValue",
	KindUnknownOID:             "UnknownOID",
	KindEncodedDataUnavailable: "EncodedDataUnavailable",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is the concrete error type returned by every decode/map/encode
// path in this package. Path is a dotted breadcrumb (schema field names)
// populated by the mapper and encoder; it is empty for codec-level errors
// that have no schema context yet.
type Error struct {
	Kind Kind
	Path string
	Msg  string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("asn1x: %s at %s: %s", e.Kind, e.Path, e.Msg)
	}
	return fmt.Sprintf("asn1x: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var errCache sync.Map // string -> *Error, keyed by "kind|path|msg"

// mkerrf builds (and caches) an *Error, caching formatted sentinel
// strings so repeated failures on hot decode paths share one
// allocation.
func mkerrf(kind Kind, path string, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	key := kind.String() + "|" + path + "|" + msg
	if v, ok := errCache.Load(key); ok {
		return v.(*Error)
	}
	e := &Error{Kind: kind, Path: path, Msg: msg}
	actual, _ := errCache.LoadOrStore(key, e)
	return actual.(*Error)
}

func withPath(e *Error, path string) *Error {
	if e == nil || e.Path != "" || path == "" {
		return e
	}
	return &Error{Kind: e.Kind, Path: path, Msg: e.Msg}
}
