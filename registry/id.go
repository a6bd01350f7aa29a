// Package registry is the type system for the binary storage engine: it maps
// FHIR JSON field names to wire identifiers, classifies those identifiers
// (primitive, primitive-list, composite, composite-list, key), and resolves
// what a given key expects its value's wire type to be — including the two
// polymorphic "multiple types" fields (deceased[x], multipleBirth[x]).
//
// The numeric ranges below are load-bearing: every byte on disk is tagged
// with one of these ids, and the ranges themselves (not a discriminated
// union) are what a reader uses to decide how to walk a unit's payload.
package registry

import "strings"

// ID identifies the wire type of a unit's payload.
type ID uint16

// Range boundaries. An ID's numeric value alone determines its class.
const (
	endOfList       ID = 21
	generalPurpose  ID = 512
	multipleTypes   ID = 2047
	generalPurposeL ID = 2048
	keyIDStart      ID = 4096
)

// Primitive payload types (1-20).
const (
	STRING ID = iota + 1
	BOOLEAN
	CODE
	IDTYPE
	URI
	DATETIME
	POSITIVEINT
	DATE
	INTEGER
	INTEGER64
	DECIMAL
	BASE64BINARY
	URL
)

// ENDOFLIST and LSTRING occupy the 21-511 band; only these two are defined.
const (
	ENDOFLIST ID = endOfList
	LSTRING   ID = 22
)

// MULTIPLETYPES is the sentinel value for a polymorphic field.
const MULTIPLETYPES ID = multipleTypes

// Composite payload types (512-524).
const (
	NARRATIVE ID = iota + 512
	HUMANNAME
	IDENTIFIER
	CODEABLECONCEPT
	PERIOD
	REFERENCE
	CODING
	CONTACTPOINT
	ADDRESS
	ATTACHMENT
	BACKBONECONTACT
	BACKBONECOMMUNICATION
	BACKBONELINK
)

// Composite-list payload types (2048-2058).
const (
	LHUMANNAME ID = iota + 2048
	LIDENTIFIER
	LCODING
	LCONTACTPOINT
	LADDRESS
	LATTACHMENT
	LBACKBONECONTACT
	LCODEABLECONCEPT
	LBACKBONECOMMUNICATION
	LBACKBONELINK
	LREFERENCE
)

// Key ids (4096+), in FHIR field declaration order.
const (
	ResourceType ID = iota + 4096
	Active
	Text
	Status
	Div
	Name
	Use
	Given
	Family
	Id
	Type
	System
	Value
	Period
	Start
	End
	Assigner
	Reference
	Display
	Version
	Code
	UserSelected
	Coding
	Identifier
	Telecom
	Rank
	Gender
	BirthDate
	Deceased
	MultipleBirth
	Address
	Line
	City
	District
	State
	PostalCode
	Country
	MaritalStatus
	Attachment
	Photo
	ContentType
	Language
	Data
	Url
	Size
	Hash
	Title
	Creation
	Height
	Width
	Frames
	Duration
	Pages
	Contact
	Relationship
	Organization
	Communication
	Preferred
	GeneralPractitioner
	ManagingOrganization
	Link
	Other
)

// IsPrimitive reports whether id is one of the scalar payload types.
func (id ID) IsPrimitive() bool { return id < endOfList }

// IsPrimitiveList reports whether id names a list-of-primitive value, e.g.
// LSTRING for "given"/"line".
func (id ID) IsPrimitiveList() bool { return id > endOfList && id < generalPurpose }

// IsGeneralPurpose reports whether id is a single composite (object) value.
func (id ID) IsGeneralPurpose() bool { return id >= generalPurpose && id < multipleTypes }

// IsGPList reports whether id is a composite-list value.
func (id ID) IsGPList() bool { return id >= generalPurposeL && id < keyIDStart }

// IsMultiple reports whether id is the MULTIPLETYPES sentinel.
func (id ID) IsMultiple() bool { return id == multipleTypes }

// IsKey reports whether id names a record key rather than a value type.
func (id ID) IsKey() bool { return id >= keyIDStart }

// Valid reports whether id is a recognized id in any of the above classes.
func Valid(id ID) bool {
	_, ok := ids[id]
	return ok
}

// ids enumerates every defined id, used to validate a wire id on decode.
var ids = func() map[ID]struct{} {
	m := make(map[ID]struct{})
	for id := STRING; id <= URL; id++ {
		m[id] = struct{}{}
	}
	m[ENDOFLIST] = struct{}{}
	m[LSTRING] = struct{}{}
	m[MULTIPLETYPES] = struct{}{}
	for id := NARRATIVE; id <= BACKBONELINK; id++ {
		m[id] = struct{}{}
	}
	for id := LHUMANNAME; id <= LREFERENCE; id++ {
		m[id] = struct{}{}
	}
	for id := ResourceType; id <= Other; id++ {
		m[id] = struct{}{}
	}
	return m
}()

// keyNames gives the canonical, correctly-cased JSON field name for every key
// id, used by the reader when re-emitting JSON.
var keyNames = map[ID]string{
	ResourceType: "resourceType", Active: "active", Text: "text", Status: "status",
	Div: "div", Name: "name", Use: "use", Given: "given", Family: "family",
	Id: "id", Type: "type", System: "system", Value: "value", Period: "period",
	Start: "start", End: "end", Assigner: "assigner", Reference: "reference",
	Display: "display", Version: "version", Code: "code", UserSelected: "userSelected",
	Coding: "coding", Identifier: "identifier", Telecom: "telecom", Rank: "rank",
	Gender: "gender", BirthDate: "birthDate", Deceased: "deceased",
	MultipleBirth: "multipleBirth", Address: "address", Line: "line", City: "city",
	District: "district", State: "state", PostalCode: "postalCode", Country: "country",
	MaritalStatus: "maritalStatus", Attachment: "attachment", Photo: "photo",
	ContentType: "contentType", Language: "language", Data: "data", Url: "url",
	Size: "size", Hash: "hash", Title: "title", Creation: "creation", Height: "height",
	Width: "width", Frames: "frames", Duration: "duration", Pages: "pages",
	Contact: "contact", Relationship: "relationship", Organization: "organization",
	Communication: "communication", Preferred: "preferred",
	GeneralPractitioner: "generalPractitioner", ManagingOrganization: "managingOrganization",
	Link: "link", Other: "other",
}

// KeyName returns the canonical JSON field name for a key id, or "" if id is
// not a key.
func KeyName(id ID) string {
	return keyNames[id]
}

// keyIDs is the case-insensitive field-name lookup table. Field names are
// lower-cased before lookup, matching FHIR's effectively case-sensitive but
// here relaxed match.
//
// "langauge" is not a typo introduced in this port: it is how the reference
// implementation's key table actually spells the lookup for the Language id,
// so the literal string "language" never resolves and is rejected as an
// unknown key. Preserved rather than silently corrected, the same way the
// store's top_page increment-before-write quirk is preserved — see DESIGN.md.
var keyIDs = map[string]ID{
	"id": Id, "resourcetype": ResourceType, "active": Active, "text": Text,
	"status": Status, "div": Div, "name": Name, "use": Use, "family": Family,
	"given": Given, "type": Type, "system": System, "value": Value,
	"period": Period, "start": Start, "end": End, "assigner": Assigner,
	"reference": Reference, "display": Display, "version": Version, "code": Code,
	"userselected": UserSelected, "coding": Coding, "identifier": Identifier,
	"telecom": Telecom, "rank": Rank, "gender": Gender, "birthdate": BirthDate,
	"deceased": Deceased, "multiplebirth": MultipleBirth, "address": Address,
	"line": Line, "city": City, "district": District, "state": State,
	"postalcode": PostalCode, "country": Country, "maritalstatus": MaritalStatus,
	"attachment": Attachment, "photo": Photo, "contenttype": ContentType,
	"langauge": Language, "data": Data, "url": Url, "size": Size, "hash": Hash,
	"title": Title, "creation": Creation, "height": Height, "width": Width,
	"frames": Frames, "duration": Duration, "pages": Pages, "contact": Contact,
	"relationship": Relationship, "organization": Organization,
	"communication": Communication, "preferred": Preferred,
	"generalpractitioner": GeneralPractitioner,
	"managingorganization": ManagingOrganization, "link": Link, "other": Other,
}

// KeyID resolves a JSON field name to its key id. The comparison is
// case-insensitive. ok is false for any field name the registry does not
// recognize.
func KeyID(field string) (id ID, ok bool) {
	id, ok = keyIDs[strings.ToLower(field)]
	return id, ok
}
