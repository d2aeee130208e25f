/*
store.go - Persistence interface for roster records

PURPOSE:
  Defines the interface between the engine and storage. The engine assumes
  nothing about the backend beyond two guarantees:

  1. CREATE-IF-ABSENT: every Create* call fails with a DuplicateKeyError when
     a record already exists at the record's Address. This is what makes
     double enrollment, double waitlisting and double check-in impossible.
  2. ATOMIC TRANSACTIONS: WithTx applies every write made by fn, or none.

NO DELETES:
  Records are never removed. Terminal states are recorded via status.

IMPLEMENTATIONS:
  - roster/store/memory.go: In-memory, snapshot + rollback
  - store/sqlite/sqlite.go: SQLite with primary keys on the key tuple

SEE ALSO:
  - address.go: Address derivation
  - service.go: Every operation runs inside WithTx
*/
package roster

import "context"

// Store persists roster records. Get* return a NotFoundError when the
// addressed record is missing.
type Store interface {
	CreateOffering(ctx context.Context, o Offering) error
	UpdateOffering(ctx context.Context, o Offering) error
	GetOffering(ctx context.Context, id OfferingID) (Offering, error)
	ListOfferings(ctx context.Context) ([]Offering, error)

	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id SessionID) (Session, error)
	ListSessions(ctx context.Context, offering OfferingID) ([]Session, error)

	CreateEnrollment(ctx context.Context, e Enrollment) error
	UpdateEnrollment(ctx context.Context, e Enrollment) error
	GetEnrollment(ctx context.Context, offering OfferingID, participant Identity) (Enrollment, error)
	ListEnrollments(ctx context.Context, offering OfferingID) ([]Enrollment, error)

	CreateWaitlistEntry(ctx context.Context, w WaitlistEntry) error
	UpdateWaitlistEntry(ctx context.Context, w WaitlistEntry) error
	GetWaitlistEntry(ctx context.Context, offering OfferingID, participant Identity) (WaitlistEntry, error)
	// ListWaitlist returns entries ordered by position, then creation time.
	ListWaitlist(ctx context.Context, offering OfferingID) ([]WaitlistEntry, error)

	CreateAttendance(ctx context.Context, a Attendance) error
	GetAttendance(ctx context.Context, session SessionID, participant Identity) (Attendance, error)
	ListAttendance(ctx context.Context, session SessionID) ([]Attendance, error)

	CreateAccessRequest(ctx context.Context, r AccessRequest) error
	UpdateAccessRequest(ctx context.Context, r AccessRequest) error
	GetAccessRequest(ctx context.Context, user Identity) (AccessRequest, error)
	// ListAccessRequests filters by status; the empty status returns all.
	ListAccessRequests(ctx context.Context, status RequestStatus) ([]AccessRequest, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, every write is rolled back.
	// If fn returns nil, every write is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
