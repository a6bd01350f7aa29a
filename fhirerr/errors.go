// Package fhirerr defines the flat error taxonomy shared by every component of
// the binary storage engine: the type registry, the JSON translator, the binary
// reader and the page store all return errors of this single shape so callers
// can classify failures with errors.Is without knowing which subsystem raised
// them.
package fhirerr

import "fmt"

// Kind classifies a failure independent of which component raised it.
type Kind int

const (
	// KindUnknownKey means a JSON field name is not present in the registry.
	KindUnknownKey Kind = iota
	// KindUnknownTypeID means an on-disk type id is not present in the registry.
	KindUnknownTypeID
	// KindUnknownResource means a resource name/id is not recognized.
	KindUnknownResource
	// KindUnexpectedToken means a syntax error or a tag mismatch was found.
	KindUnexpectedToken
	// KindExpectedMismatch means the declared expected type rejects the observed
	// JSON token.
	KindExpectedMismatch
	// KindIDTooLong means a FHIR id value exceeds 64 bytes.
	KindIDTooLong
	// KindUnitTooLong means a unit payload would be 65536 bytes or larger.
	KindUnitTooLong
	// KindBufferOverflow means a record would exceed its page capacity.
	KindBufferOverflow
	// KindTimestampParse means a date/dateTime string could not be parsed.
	KindTimestampParse
	// KindEndOfInput means the JSON input ended in the middle of a construct.
	KindEndOfInput
)

var kindText = map[Kind]string{
	KindUnknownKey:       "unknown key",
	KindUnknownTypeID:    "unknown type id",
	KindUnknownResource:  "unknown resource",
	KindUnexpectedToken:  "unexpected token",
	KindExpectedMismatch: "expected type mismatch",
	KindIDTooLong:        "id value exceeds 64 bytes",
	KindUnitTooLong:      "unit payload exceeds 65535 bytes",
	KindBufferOverflow:   "record exceeds page capacity",
	KindTimestampParse:   "timestamp could not be parsed",
	KindEndOfInput:       "unexpected end of input",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return "unknown error kind"
}

// Error is the concrete error value returned by every component. Detail carries
// a short, component-supplied payload (the bad key, the offending byte, ...).
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, fhirerr.New(fhirerr.KindUnknownKey, "")) or compare
// against the sentinel Kind values directly via errors.Is(err, fhirerr.KindX)
// is not supported (Kind is not an error) — use Is via a sentinel Error, e.g.
// errors.Is(err, fhirerr.Sentinel(fhirerr.KindUnknownKey)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error with the given kind and detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf builds an *Error with a formatted detail message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Sentinel returns a bare *Error of the given kind suitable for errors.Is
// comparisons, e.g. errors.Is(err, fhirerr.Sentinel(fhirerr.KindUnknownKey)).
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}
