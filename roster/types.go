/*
Package roster provides the formation enrollment engine.

PURPOSE:
  Manages seat capacity and waitlist promotion for training offerings
  ("formations"), plus attendance check-in gated by enrollment. The engine
  owns the counters, position assignment, the two-phase promotion protocol,
  and the invariants that move a participant between "not enrolled",
  "waitlisted" and "enrolled".

KEY CONCEPTS IN THIS FILE (types.go):
  - Offering: the ledger record holding capacity counters and status
  - Enrollment: one record per (offering, participant) once enrolled
  - WaitlistEntry: one record per (offering, participant) while queued
  - Attendance: one record per (session, participant) check-in
  - Session: scheduling metadata consumed read-only by attendance
  - AccessRequest: a user's request to join as student or trainer

DESIGN PRINCIPLES:
  1. Counters are uint8 and only move through checked arithmetic
  2. Records are never deleted; terminal states are recorded via status
  3. Uniqueness per key tuple is enforced by the store (see address.go)
  4. Every operation is one atomic store transaction (see service.go)

SEE ALSO:
  - offering.go: Capacity predicates and checked counter updates
  - waitlist.go: Waitlist state machine
  - service.go: Operation surface
  - store.go: Persistence interfaces
*/
package roster

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OfferingID string
type SessionID string

// Identity is an organizer, participant or admin key. Identities are opaque to
// the engine; callers are trusted to pass an authenticated value.
type Identity string

// =============================================================================
// ENUMS
// =============================================================================

type DeliveryMode string

const (
	ModeOnline   DeliveryMode = "online"
	ModeInPerson DeliveryMode = "in_person"
	ModeHybrid   DeliveryMode = "hybrid"
)

func (m DeliveryMode) Valid() bool {
	switch m {
	case ModeOnline, ModeInPerson, ModeHybrid:
		return true
	}
	return false
}

type OfferingStatus string

const (
	OfferingActive    OfferingStatus = "active"
	OfferingFull      OfferingStatus = "full"
	OfferingCancelled OfferingStatus = "cancelled"
	OfferingCompleted OfferingStatus = "completed"
)

type EnrollmentStatus string

const (
	EnrollmentEnrolled   EnrollmentStatus = "enrolled"
	EnrollmentWaitlisted EnrollmentStatus = "waitlisted"
	EnrollmentDropped    EnrollmentStatus = "dropped"
)

type WaitlistStatus string

const (
	WaitlistWaiting          WaitlistStatus = "waiting"
	WaitlistPendingPromotion WaitlistStatus = "pending_promotion"
	WaitlistPromoted         WaitlistStatus = "promoted"
	WaitlistDeclined         WaitlistStatus = "declined"
	WaitlistExpired          WaitlistStatus = "expired"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

type Role string

const (
	RoleStudent Role = "student"
	RoleTrainer Role = "trainer"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTrainer
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// =============================================================================
// RECORDS
// =============================================================================

// Offering is a scheduled training program with a finite seat capacity.
//
// INVARIANTS:
//   - 0 <= CurrentStudents <= MaxStudents
//   - 0 <= CurrentWaitlisted <= WaitlistCapacity
//
// Counters are mutated only by enrollment and waitlist transitions.
type Offering struct {
	ID                OfferingID
	Organizer         Identity
	Title             string
	Description       string
	Mode              DeliveryMode
	MaxStudents       uint8
	WaitlistCapacity  uint8
	CurrentStudents   uint8
	CurrentWaitlisted uint8
	Status            OfferingStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Enrollment records a seat held by a participant. Position is the zero-based
// slot index taken at creation and is never renumbered.
type Enrollment struct {
	OfferingID  OfferingID
	Participant Identity
	Status      EnrollmentStatus
	Position    uint8
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WaitlistEntry records a participant queued for a full offering.
// Timestamp is the entry time, overwritten with the offer time when a
// promotion is offered.
type WaitlistEntry struct {
	OfferingID  OfferingID
	Participant Identity
	Position    uint8
	Status      WaitlistStatus
	Timestamp   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Session struct {
	ID          SessionID
	OfferingID  OfferingID
	Organizer   Identity
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s Session) Duration() time.Duration { return s.EndTime.Sub(s.StartTime) }

type Attendance struct {
	SessionID   SessionID
	Participant Identity
	Status      AttendanceStatus
	CheckInTime time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AccessRequest struct {
	User      Identity
	Role      Role
	Name      string
	Email     string
	Message   string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// LIMITS
// =============================================================================

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxNameLength        = 100
	MaxEmailLength       = 100
	MaxMessageLength     = 200
	MaxIdentityLength    = 64

	MaxOfferingCapacity = 100
	MaxWaitlistCapacity = 50

	MinSessionDuration = 30 * time.Minute
	MaxSessionDuration = 8 * time.Hour

	DefaultOfferTimeout = 24 * time.Hour
)
