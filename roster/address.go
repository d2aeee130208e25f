package roster

import "strings"

// =============================================================================
// ADDRESSING - Deterministic (kind, key tuple) -> storage address
// =============================================================================

// RecordKind tags the record type stored at an address.
type RecordKind string

const (
	KindOffering      RecordKind = "offering"
	KindSession       RecordKind = "session"
	KindEnrollment    RecordKind = "enrollment"
	KindWaitlist      RecordKind = "waitlist"
	KindAttendance    RecordKind = "attendance"
	KindAccessRequest RecordKind = "request"
)

// Address identifies exactly one record. Two records with the same kind and
// key tuple share an address, so a store that creates only when the address
// is free guarantees at most one record per key.
type Address struct {
	Kind RecordKind
	Keys []string
}

func (a Address) String() string {
	var b strings.Builder
	b.WriteString(string(a.Kind))
	for _, k := range a.Keys {
		b.WriteByte('/')
		b.WriteString(k)
	}
	return b.String()
}

func OfferingAddress(id OfferingID) Address {
	return Address{Kind: KindOffering, Keys: []string{string(id)}}
}

func SessionAddress(id SessionID) Address {
	return Address{Kind: KindSession, Keys: []string{string(id)}}
}

func EnrollmentAddress(offering OfferingID, participant Identity) Address {
	return Address{Kind: KindEnrollment, Keys: []string{string(offering), string(participant)}}
}

func WaitlistAddress(offering OfferingID, participant Identity) Address {
	return Address{Kind: KindWaitlist, Keys: []string{string(offering), string(participant)}}
}

func AttendanceAddress(session SessionID, participant Identity) Address {
	return Address{Kind: KindAttendance, Keys: []string{string(session), string(participant)}}
}

func AccessRequestAddress(user Identity) Address {
	return Address{Kind: KindAccessRequest, Keys: []string{string(user)}}
}

func (o Offering) Address() Address      { return OfferingAddress(o.ID) }
func (s Session) Address() Address       { return SessionAddress(s.ID) }
func (e Enrollment) Address() Address    { return EnrollmentAddress(e.OfferingID, e.Participant) }
func (w WaitlistEntry) Address() Address { return WaitlistAddress(w.OfferingID, w.Participant) }
func (a Attendance) Address() Address    { return AttendanceAddress(a.SessionID, a.Participant) }
func (r AccessRequest) Address() Address { return AccessRequestAddress(r.User) }

// =============================================================================
// RECORD LAYOUT - Statically known serialized footprint per kind
// =============================================================================

// Every record serializes to a discriminator tag followed by its fields.
// Strings carry a 4-byte length prefix and are bounded by the caps in
// types.go, so each kind's footprint is fixed and reserved at creation.
const (
	discriminatorSize = 8
	lengthPrefixSize  = 4
	timestampSize     = 8
	enumSize          = 1
	counterSize       = 1
	uuidSize          = 16
	identitySize      = lengthPrefixSize + MaxIdentityLength
)

func boundedString(max int) int { return lengthPrefixSize + max }

var footprints = map[RecordKind]int{
	KindOffering: discriminatorSize +
		uuidSize + // id
		identitySize + // organizer
		boundedString(MaxTitleLength) +
		boundedString(MaxDescriptionLength) +
		enumSize + // mode
		4*counterSize + // max, waitlist capacity, current students, current waitlisted
		enumSize + // status
		2*timestampSize,
	KindSession: discriminatorSize +
		uuidSize + // id
		uuidSize + // offering
		identitySize + // organizer
		boundedString(MaxTitleLength) +
		boundedString(MaxDescriptionLength) +
		4*timestampSize, // start, end, created, updated
	KindEnrollment: discriminatorSize +
		uuidSize + identitySize +
		enumSize + // status
		counterSize + // position
		2*timestampSize,
	KindWaitlist: discriminatorSize +
		uuidSize + identitySize +
		counterSize + // position
		enumSize + // status
		3*timestampSize, // timestamp, created, updated
	KindAttendance: discriminatorSize +
		uuidSize + identitySize +
		enumSize + // status
		3*timestampSize, // check-in, created, updated
	KindAccessRequest: discriminatorSize +
		identitySize +
		enumSize + // role
		boundedString(MaxNameLength) +
		boundedString(MaxEmailLength) +
		boundedString(MaxMessageLength) +
		enumSize + // status
		2*timestampSize,
}

// Footprint returns the serialized size in bytes reserved for a record kind.
// Unknown kinds report zero.
func Footprint(kind RecordKind) int {
	return footprints[kind]
}
