// Package reader implements the inverse of the translator: given a
// record's binary body, it walks the same key/value unit structure the
// translator produced and re-emits a JSON object.
//
// Traversal mirrors encode exactly — a composite's embedded type tag is
// read back as the parent for subschema selection, a composite list's
// single type id stands in for every element's missing tag, and a
// primitive list's elements are read until the declared length is
// exhausted (no end-of-list sentinel, matching the translator).
package reader

import (
	"math"
	"strconv"
	"strings"

	"fhirbin/fhirerr"
	"fhirbin/fhirtime"
	"fhirbin/registry"
)

// Decode reads one record body (as produced by translator.Encode — a
// 2-byte total length followed by the record's key/value pairs) and
// returns it re-emitted as a JSON object.
func Decode(src []byte) ([]byte, error) {
	if len(src) < 2 {
		return nil, fhirerr.Newf(fhirerr.KindEndOfInput, "record shorter than its own length prefix")
	}
	declared := int(src[0])<<8 | int(src[1])
	if declared != len(src)-2 {
		return nil, fhirerr.Newf(fhirerr.KindUnexpectedToken, "declared record length %d does not match remaining %d bytes", declared, len(src)-2)
	}
	r := &reader{src: src, pos: 2}
	var out strings.Builder
	if err := r.readPairs(&out, 0, len(src)); err != nil {
		return nil, err
	}
	if r.pos != len(src) {
		return nil, fhirerr.Newf(fhirerr.KindUnexpectedToken, "%d trailing bytes after record body", len(src)-r.pos)
	}
	return []byte(out.String()), nil
}

type reader struct {
	src []byte
	pos int
}

func (r *reader) readU16() (uint16, error) {
	if r.pos+2 > len(r.src) {
		return 0, fhirerr.Newf(fhirerr.KindEndOfInput, "truncated 2-byte field at offset %d", r.pos)
	}
	v := uint16(r.src[r.pos])<<8 | uint16(r.src[r.pos+1])
	r.pos += 2
	return v, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if r.pos+n > len(r.src) {
		return nil, fhirerr.Newf(fhirerr.KindEndOfInput, "need %d bytes at offset %d, only %d remain", n, r.pos, len(r.src)-r.pos)
	}
	b := r.src[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// readPairs decodes key/value pairs as a JSON object, stopping once the
// cursor reaches end. parent is the enclosing composite's type id (0 at
// the record's top level, the list's type id inside a composite-list
// element), used to resolve each
// key's expected type exactly the way the translator did.
func (r *reader) readPairs(out *strings.Builder, parent registry.ID, end int) error {
	out.WriteByte('{')
	first := true
	for r.pos < end {
		keyLen, err := r.readU16()
		if err != nil {
			return err
		}
		if keyLen != 2 {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "key unit length %d, want 2", keyLen)
		}
		rawKey, err := r.readU16()
		if err != nil {
			return err
		}
		keyID := registry.ID(rawKey)
		if !keyID.IsKey() {
			return fhirerr.Newf(fhirerr.KindUnknownTypeID, "id %d is not a key", rawKey)
		}
		name := registry.KeyName(keyID)
		if name == "" {
			return fhirerr.Newf(fhirerr.KindUnknownKey, "key id %d", rawKey)
		}
		expected, ok := registry.ExpectedFor(parent, keyID)
		if !ok {
			return fhirerr.Newf(fhirerr.KindUnknownKey, "key id %d has no expected type under parent %d", rawKey, parent)
		}

		if !first {
			out.WriteByte(',')
		}
		first = false
		writeJSONString(out, name)
		out.WriteByte(':')

		if err := r.readValue(out, expected, keyID); err != nil {
			return err
		}
	}
	out.WriteByte('}')
	return nil
}

// readValue decodes one value unit whose declared wire type is expected,
// appending its JSON rendering to out. field is the key id that produced
// expected, needed to resolve a MULTIPLETYPES value's concrete type.
//
// Unlike a primitive or list value — where the 2-byte id directly follows
// the length field — a single composite value's payload opens with its own
// nested 4-byte tag (len=2, id=composite type), so what comes right after
// the length field differs by expected's class rather than being a
// uniform (len, id, payload) shape. expected (already known from the key
// that introduced this value) decides which shape to read, rather than
// guessing from the bytes.
func (r *reader) readValue(out *strings.Builder, expected registry.ID, field registry.ID) error {
	valLen, err := r.readU16()
	if err != nil {
		return err
	}
	valEnd := r.pos + int(valLen)
	if valEnd > len(r.src) {
		return fhirerr.Newf(fhirerr.KindUnexpectedToken, "value length %d overruns record at offset %d", valLen, r.pos)
	}

	switch {
	case expected.IsGeneralPurpose():
		tagLen, err := r.readU16()
		if err != nil {
			return err
		}
		if tagLen != 2 {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "composite tag length %d, want 2", tagLen)
		}
		rawTyp, err := r.readU16()
		if err != nil {
			return err
		}
		typ := registry.ID(rawTyp)
		if typ != expected {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "key %d: composite tag %d does not match expected %d", field, rawTyp, expected)
		}
		if err := r.readPairs(out, typ, valEnd); err != nil {
			return err
		}

	case expected.IsGPList():
		rawTyp, err := r.readU16()
		if err != nil {
			return err
		}
		typ := registry.ID(rawTyp)
		if typ != expected {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "key %d: composite-list tag %d does not match expected %d", field, rawTyp, expected)
		}
		if err := r.decodeCompositeList(out, typ, valEnd); err != nil {
			return err
		}

	case expected.IsPrimitiveList():
		if err := r.decodePrimitiveList(out, valEnd); err != nil {
			return err
		}

	case expected.IsPrimitive() || expected == registry.MULTIPLETYPES:
		rawTyp, err := r.readU16()
		if err != nil {
			return err
		}
		typ := registry.ID(rawTyp)
		if !typ.IsPrimitive() {
			return fhirerr.Newf(fhirerr.KindUnknownTypeID, "%d", rawTyp)
		}
		if err := r.decodePrimitive(out, typ, valEnd); err != nil {
			return err
		}

	default:
		return fhirerr.Newf(fhirerr.KindExpectedMismatch, "key %d: unrecognized expected type %d", field, expected)
	}

	if r.pos != valEnd {
		return fhirerr.Newf(fhirerr.KindUnexpectedToken, "value for key %d did not consume its declared extent", field)
	}
	return nil
}

// decodePrimitive reads and renders a scalar payload occupying [r.pos, end).
func (r *reader) decodePrimitive(out *strings.Builder, typ registry.ID, end int) error {
	payload, err := r.readBytes(end - r.pos)
	if err != nil {
		return err
	}
	return writePrimitiveJSON(out, typ, payload)
}

// decodePrimitiveList reads the list's type id followed by (len, payload)
// elements until end is reached — there is no end-of-list sentinel to
// watch for.
func (r *reader) decodePrimitiveList(out *strings.Builder, end int) error {
	rawTyp, err := r.readU16()
	if err != nil {
		return err
	}
	elemType := registry.ID(rawTyp)
	if elemType == registry.LSTRING {
		elemType = registry.STRING
	}
	out.WriteByte('[')
	first := true
	for r.pos < end {
		elemLen, err := r.readU16()
		if err != nil {
			return err
		}
		payload, err := r.readBytes(int(elemLen))
		if err != nil {
			return err
		}
		if !first {
			out.WriteByte(',')
		}
		first = false
		if err := writePrimitiveJSON(out, elemType, payload); err != nil {
			return err
		}
	}
	out.WriteByte(']')
	return nil
}

// decodeCompositeList decodes each element of a composite list as a bare
// (reserved-length) object whose fields resolve against listTyp — the
// list's own type id (already consumed by the caller) stands in for every
// element's missing per-element tag.
func (r *reader) decodeCompositeList(out *strings.Builder, listTyp registry.ID, end int) error {
	out.WriteByte('[')
	first := true
	for r.pos < end {
		elemLen, err := r.readU16()
		if err != nil {
			return err
		}
		elemEnd := r.pos + int(elemLen)
		if elemEnd > end {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "composite-list element overruns list extent")
		}
		if !first {
			out.WriteByte(',')
		}
		first = false
		if err := r.readPairs(out, listTyp, elemEnd); err != nil {
			return err
		}
	}
	out.WriteByte(']')
	return nil
}

// writePrimitiveJSON renders payload (the raw on-disk bytes for typ) as the
// JSON literal it originated from.
func writePrimitiveJSON(out *strings.Builder, typ registry.ID, payload []byte) error {
	switch typ {
	case registry.BOOLEAN:
		if len(payload) != 1 {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "boolean payload length %d, want 1", len(payload))
		}
		if payload[0] != 0 {
			out.WriteString("true")
		} else {
			out.WriteString("false")
		}

	case registry.STRING, registry.CODE, registry.URI, registry.URL, registry.BASE64BINARY, registry.IDTYPE:
		writeJSONString(out, string(payload))

	case registry.DATETIME, registry.DATE:
		ms, err := fhirtime.TimestampFromBytes(payload)
		if err != nil {
			return err
		}
		writeJSONString(out, fhirtime.Format(ms))

	case registry.POSITIVEINT, registry.INTEGER:
		if len(payload) != 4 {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "integer payload length %d, want 4", len(payload))
		}
		n := int32(uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3]))
		out.WriteString(strconv.FormatInt(int64(n), 10))

	case registry.INTEGER64:
		if len(payload) != 8 {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "integer64 payload length %d, want 8", len(payload))
		}
		var u uint64
		for _, b := range payload {
			u = u<<8 | uint64(b)
		}
		out.WriteString(strconv.FormatInt(int64(u), 10))

	case registry.DECIMAL:
		if len(payload) != 8 {
			return fhirerr.Newf(fhirerr.KindUnexpectedToken, "decimal payload length %d, want 8", len(payload))
		}
		var bits uint64
		for _, b := range payload {
			bits = bits<<8 | uint64(b)
		}
		out.WriteString(strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64))

	default:
		return fhirerr.Newf(fhirerr.KindUnknownTypeID, "%d has no primitive decoding", typ)
	}
	return nil
}

// writeJSONString appends s to out as a properly escaped, double-quoted
// JSON string literal (full RFC 8259 output encoding).
func writeJSONString(out *strings.Builder, s string) {
	out.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			out.WriteString(`\"`)
		case '\\':
			out.WriteString(`\\`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		default:
			if r < 0x20 {
				out.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				for i := len(hex); i < 4; i++ {
					out.WriteByte('0')
				}
				out.WriteString(hex)
			} else {
				out.WriteRune(r)
			}
		}
	}
	out.WriteByte('"')
}
