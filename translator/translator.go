// Package translator implements the single-pass JSON-to-binary encoder: it
// walks a FHIR resource's JSON text once, left to right, and emits the
// engine's compact unit-based wire format directly into a record.Writer,
// back-patching every nested length as each object/array closes.
//
// The algorithm is grounded on the reference translator's token loop
// (parser/json.rs's Translator::parse / set_key): a key's expected wire
// type gates how its value is read, a length stack records where each
// nested length placeholder lives, and a key stack records which
// expectation is in force so a nested key can resolve against the right
// sub-schema.
package translator

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"fhirbin/fhirerr"
	"fhirbin/fhirtime"
	"fhirbin/record"
	"fhirbin/registry"
)

const maxIDLen = 64

// Encode translates a single JSON resource document into the wire format's
// record body (a 2-byte total length followed by key/value unit pairs),
// writing into a buffer of the given capacity starting at offset (room for
// a caller-managed page header).
func Encode(src []byte, capacity, offset int) ([]byte, error) {
	p := &parser{
		src:     src,
		w:       record.NewWriter(capacity, offset),
		lengths: &record.LengthStack{},
		keys:    &record.KeyStack{},
	}
	p.skipSpace()
	if err := p.parseRecord(); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fhirerr.Newf(fhirerr.KindUnexpectedToken, "trailing data after top-level object at byte %d", p.pos)
	}
	return p.w.Slice(offset), nil
}

type parser struct {
	src     []byte
	pos     int
	w       *record.Writer
	lengths *record.LengthStack
	keys    *record.KeyStack
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) expect(b byte) error {
	if p.peek() != b {
		return fhirerr.Newf(fhirerr.KindUnexpectedToken, "expected %q at byte %d, found %q", b, p.pos, p.peek())
	}
	p.pos++
	return nil
}

// parseRecord encodes the top-level JSON object as the record body: a
// reserved 2-byte length followed by key/value pairs, with no leading type
// tag (the record itself is not a value; nothing expects it).
func (p *parser) parseRecord() error {
	if err := p.expect('{'); err != nil {
		return err
	}
	off, err := p.w.Reserve(2)
	if err != nil {
		return err
	}
	p.lengths.Push(off)
	if err := p.parsePairs('}'); err != nil {
		return err
	}
	recOff, length := p.lengths.Pop()
	return p.w.PatchU16(recOff, uint16(length))
}

// parsePairs reads zero or more "key": value pairs up to and including the
// closing delimiter close. Every caller passes '}': the record itself, a
// composite value and each composite-list element are all JSON objects.
func (p *parser) parsePairs(close byte) error {
	p.skipSpace()
	first := true
	for {
		p.skipSpace()
		if p.peek() == close {
			p.pos++
			return nil
		}
		if !first {
			if err := p.expect(','); err != nil {
				return err
			}
			p.skipSpace()
		}
		first = false
		if err := p.parseField(); err != nil {
			return err
		}
	}
}

// parseField reads one "key": value pair: resolves key's expected wire
// type against whatever composite is currently open, writes the 4-byte key
// unit, pushes the expectation, encodes the value, and pops the
// expectation again.
func (p *parser) parseField() error {
	name, err := p.parseJSONString()
	if err != nil {
		return err
	}
	p.skipSpace()
	if err := p.expect(':'); err != nil {
		return err
	}
	p.skipSpace()

	keyID, ok := registry.KeyID(name)
	if !ok {
		return fhirerr.Newf(fhirerr.KindUnknownKey, "%q", name)
	}
	parent := p.keys.TopExpected()
	expected, ok := registry.ExpectedFor(parent, keyID)
	if !ok {
		return fhirerr.Newf(fhirerr.KindUnknownKey, "%q has no expected type under its enclosing composite", name)
	}

	if err := p.writeU16Raw(2); err != nil {
		return err
	}
	if err := p.writeU16Raw(uint16(keyID)); err != nil {
		return err
	}
	p.lengths.Add(4)

	p.keys.Push(keyID, expected)
	if err := p.parseValue(expected, keyID); err != nil {
		return err
	}
	p.keys.Pop()
	return nil
}

// writeU16Raw writes v without touching the length stack; callers add the
// right byte count themselves once a whole unit is known.
func (p *parser) writeU16Raw(v uint16) error {
	return p.w.WriteU16(v)
}

// parseValue dispatches on expected's class to encode the JSON value at
// the cursor. field is the key id that produced expected, used only to
// resolve a MULTIPLETYPES field once the JSON token's shape is known.
func (p *parser) parseValue(expected registry.ID, field registry.ID) error {
	switch {
	case expected == registry.MULTIPLETYPES:
		return p.parseMultiple(field)
	case expected.IsPrimitive():
		return p.parsePrimitive(expected)
	case expected.IsPrimitiveList():
		return p.parsePrimitiveList(expected)
	case expected.IsGeneralPurpose():
		return p.parseComposite(expected)
	case expected.IsGPList():
		return p.parseCompositeList(expected)
	default:
		return fhirerr.Newf(fhirerr.KindExpectedMismatch, "key %d has unrecognized expected type %d", field, expected)
	}
}

// parseComposite encodes a single composite object value: a reserved
// length, a 4-byte self-describing tag (len=2, id=typ) that lets the
// reader recover the composite's type without a separate outer id field,
// then its key/value pairs.
func (p *parser) parseComposite(typ registry.ID) error {
	if err := p.expect('{'); err != nil {
		return err
	}
	off, err := p.w.Reserve(2)
	if err != nil {
		return err
	}
	p.lengths.Add(2)
	p.lengths.Push(off)

	if err := p.writeU16Raw(2); err != nil {
		return err
	}
	if err := p.writeU16Raw(uint16(typ)); err != nil {
		return err
	}
	p.lengths.Add(4)

	if err := p.parsePairs('}'); err != nil {
		return err
	}
	o, length := p.lengths.Pop()
	return p.w.PatchU16(o, uint16(length))
}

// parseCompositeList encodes a list of composite objects: a reserved
// length, the list's own type id written once (its elements carry no
// per-element tag, since the list id already says what type they are),
// then each element as a bare key/value-pair object.
func (p *parser) parseCompositeList(typ registry.ID) error {
	if err := p.expect('['); err != nil {
		return err
	}
	off, err := p.w.Reserve(2)
	if err != nil {
		return err
	}
	p.lengths.Add(2)
	p.lengths.Push(off)

	if err := p.writeU16Raw(uint16(typ)); err != nil {
		return err
	}
	p.lengths.Add(2)

	p.skipSpace()
	first := true
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			break
		}
		if !first {
			if err := p.expect(','); err != nil {
				return err
			}
			p.skipSpace()
		}
		first = false
		if err := p.parseCompositeListElement(); err != nil {
			return err
		}
	}

	o, length := p.lengths.Pop()
	return p.w.PatchU16(o, uint16(length))
}

// parseCompositeListElement encodes one element of a composite list: a
// reserved length followed directly by key/value pairs, with no tag (the
// enclosing list's own type id already declares every element's type).
func (p *parser) parseCompositeListElement() error {
	if err := p.expect('{'); err != nil {
		return err
	}
	off, err := p.w.Reserve(2)
	if err != nil {
		return err
	}
	p.lengths.Add(2)
	p.lengths.Push(off)

	if err := p.parsePairs('}'); err != nil {
		return err
	}
	o, length := p.lengths.Pop()
	return p.w.PatchU16(o, uint16(length))
}

// parsePrimitiveList encodes a list of scalar values: a reserved length,
// the list's own type id (e.g. LSTRING) written once, then each element as
// a bare (len, payload) pair. No end-of-list sentinel is emitted — every worked example
// in the original implementation (and in this engine's own test vectors)
// shows a primitive list's declared length accounting for exactly its
// element type id plus its elements, nothing more.
func (p *parser) parsePrimitiveList(listTyp registry.ID) error {
	elemTyp := primitiveListElement(listTyp)
	if err := p.expect('['); err != nil {
		return err
	}
	off, err := p.w.Reserve(2)
	if err != nil {
		return err
	}
	p.lengths.Add(2)
	p.lengths.Push(off)

	if err := p.writeU16Raw(uint16(listTyp)); err != nil {
		return err
	}
	p.lengths.Add(2)

	p.skipSpace()
	first := true
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			break
		}
		if !first {
			if err := p.expect(','); err != nil {
				return err
			}
			p.skipSpace()
		}
		first = false
		payload, err := p.encodePrimitivePayload(elemTyp)
		if err != nil {
			return err
		}
		if len(payload) >= 65536-2 {
			return fhirerr.Newf(fhirerr.KindUnitTooLong, "list element of %d bytes", len(payload))
		}
		if err := p.writeU16Raw(uint16(len(payload))); err != nil {
			return err
		}
		if err := p.w.WriteBytes(payload); err != nil {
			return err
		}
		p.lengths.Add(2 + len(payload))
	}

	o, length := p.lengths.Pop()
	return p.w.PatchU16(o, uint16(length))
}

// primitiveListElement maps a list type id to the scalar type its elements
// carry. The registry only defines LSTRING today (every primitive-list
// field in the schema — given, line — holds strings).
func primitiveListElement(listTyp registry.ID) registry.ID {
	if listTyp == registry.LSTRING {
		return registry.STRING
	}
	return listTyp
}

// parseMultiple resolves a deceased[x]/multipleBirth[x] field's concrete
// wire type from the JSON token's own shape, then encodes it as a normal
// primitive.
func (p *parser) parseMultiple(field registry.ID) error {
	class, err := p.classifyToken()
	if err != nil {
		return err
	}
	typ, ok := registry.MultipleFor(field, class)
	if !ok {
		return fhirerr.Newf(fhirerr.KindExpectedMismatch, "key %d: no resolution for token class %d", field, class)
	}
	return p.parsePrimitive(typ)
}

func (p *parser) classifyToken() (registry.TypeClass, error) {
	switch p.peek() {
	case '"':
		return registry.ClassString, nil
	case 't', 'f':
		return registry.ClassBoolean, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return registry.ClassNumeric, nil
	default:
		return 0, fhirerr.Newf(fhirerr.KindUnexpectedToken, "unrecognized value token %q at byte %d", p.peek(), p.pos)
	}
}

// parsePrimitive encodes a single scalar value unit: len, type id, payload.
func (p *parser) parsePrimitive(typ registry.ID) error {
	payload, err := p.encodePrimitivePayload(typ)
	if err != nil {
		return err
	}
	if len(payload) >= 65536-2 {
		return fhirerr.Newf(fhirerr.KindUnitTooLong, "%d bytes", len(payload))
	}
	if err := p.writeU16Raw(uint16(2 + len(payload))); err != nil {
		return err
	}
	if err := p.writeU16Raw(uint16(typ)); err != nil {
		return err
	}
	if err := p.w.WriteBytes(payload); err != nil {
		return err
	}
	p.lengths.Add(2 + 2 + len(payload))
	return nil
}

// encodePrimitivePayload reads the JSON token at the cursor and returns the
// on-disk payload bytes for typ, without writing anything.
func (p *parser) encodePrimitivePayload(typ registry.ID) ([]byte, error) {
	switch typ {
	case registry.BOOLEAN:
		b, err := p.parseJSONBool()
		if err != nil {
			return nil, err
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case registry.STRING, registry.CODE, registry.URI, registry.URL, registry.BASE64BINARY:
		s, err := p.parseJSONString()
		if err != nil {
			return nil, err
		}
		return []byte(s), nil

	case registry.IDTYPE:
		s, err := p.parseJSONString()
		if err != nil {
			return nil, err
		}
		if len(s) > maxIDLen {
			return nil, fhirerr.Newf(fhirerr.KindIDTooLong, "%d bytes", len(s))
		}
		return []byte(s), nil

	case registry.DATETIME, registry.DATE:
		s, err := p.parseJSONString()
		if err != nil {
			return nil, err
		}
		ms, err := fhirtime.Parse(s)
		if err != nil {
			return nil, err
		}
		b := fhirtime.TimestampBytes(ms)
		return b[:], nil

	case registry.POSITIVEINT, registry.INTEGER:
		n, err := p.parseJSONInt()
		if err != nil {
			return nil, err
		}
		return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}, nil

	case registry.INTEGER64:
		n, err := p.parseJSONInt64()
		if err != nil {
			return nil, err
		}
		u := uint64(n)
		b := make([]byte, 8)
		for i := 7; i >= 0; i-- {
			b[i] = byte(u)
			u >>= 8
		}
		return b, nil

	case registry.DECIMAL:
		s, err := p.parseJSONNumberLiteral()
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fhirerr.Newf(fhirerr.KindUnexpectedToken, "%q is not a valid decimal", s)
		}
		bits := math.Float64bits(f)
		b := make([]byte, 8)
		for i := 7; i >= 0; i-- {
			b[i] = byte(bits)
			bits >>= 8
		}
		return b, nil

	default:
		return nil, fhirerr.Newf(fhirerr.KindExpectedMismatch, "type %d has no primitive encoding", typ)
	}
}

func (p *parser) parseJSONBool() (bool, error) {
	switch {
	case strings.HasPrefix(string(p.src[p.pos:]), "true"):
		p.pos += 4
		return true, nil
	case strings.HasPrefix(string(p.src[p.pos:]), "false"):
		p.pos += 5
		return false, nil
	default:
		return false, fhirerr.Newf(fhirerr.KindUnexpectedToken, "expected boolean literal at byte %d", p.pos)
	}
}

func (p *parser) parseJSONNumberLiteral() (string, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", fhirerr.Newf(fhirerr.KindUnexpectedToken, "expected number at byte %d", p.pos)
	}
	return string(p.src[start:p.pos]), nil
}

func (p *parser) parseJSONInt() (int32, error) {
	s, err := p.parseJSONNumberLiteral()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fhirerr.Newf(fhirerr.KindUnexpectedToken, "%q is not a valid 32-bit integer", s)
	}
	return int32(n), nil
}

func (p *parser) parseJSONInt64() (int64, error) {
	s, err := p.parseJSONNumberLiteral()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fhirerr.Newf(fhirerr.KindUnexpectedToken, "%q is not a valid 64-bit integer", s)
	}
	return n, nil
}

// parseJSONString reads a double-quoted JSON string at the cursor and
// returns its decoded value. Unlike the reference translator (which
// tolerates only the \" escape), this decodes the full RFC 8259 escape set,
// including \uXXXX and surrogate pairs.
func (p *parser) parseJSONString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", fhirerr.Newf(fhirerr.KindEndOfInput, "unterminated string")
		}
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", fhirerr.Newf(fhirerr.KindEndOfInput, "unterminated escape")
			}
			esc := p.src[p.pos]
			switch esc {
			case '"':
				b.WriteByte('"')
				p.pos++
			case '\\':
				b.WriteByte('\\')
				p.pos++
			case '/':
				b.WriteByte('/')
				p.pos++
			case 'b':
				b.WriteByte('\b')
				p.pos++
			case 'f':
				b.WriteByte('\f')
				p.pos++
			case 'n':
				b.WriteByte('\n')
				p.pos++
			case 'r':
				b.WriteByte('\r')
				p.pos++
			case 't':
				b.WriteByte('\t')
				p.pos++
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", fhirerr.Newf(fhirerr.KindUnexpectedToken, "unknown escape %q at byte %d", esc, p.pos)
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

// parseUnicodeEscape reads a \uXXXX escape (cursor positioned on the 'u')
// and handles UTF-16 surrogate pairs.
func (p *parser) parseUnicodeEscape() (rune, error) {
	p.pos++ // eat 'u'
	r1, err := p.hex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(rune(r1)) {
		if p.pos+1 < len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
			p.pos += 2
			r2, err := p.hex4()
			if err != nil {
				return 0, err
			}
			dec := utf16.DecodeRune(rune(r1), rune(r2))
			if dec != utf8.RuneError {
				return dec, nil
			}
		}
		return utf8.RuneError, nil
	}
	return rune(r1), nil
}

func (p *parser) hex4() (uint16, error) {
	if p.pos+4 > len(p.src) {
		return 0, fhirerr.Newf(fhirerr.KindEndOfInput, "incomplete unicode escape")
	}
	s := string(p.src[p.pos : p.pos+4])
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fhirerr.Newf(fhirerr.KindUnexpectedToken, "invalid unicode escape %q: %v", s, err)
	}
	p.pos += 4
	return uint16(n), nil
}
