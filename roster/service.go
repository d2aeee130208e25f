/*
service.go - Enrollment, waitlist and attendance operations

PURPOSE:
  The operation surface of the engine. Each operation:
  1. Reads the offering (and the entry/enrollment where relevant)
  2. Validates every precondition
  3. Applies all of its writes in one store transaction, or none

  A failed precondition aborts the whole operation. Nothing is partially
  written and no intermediate state is observable.

CONCURRENCY:
  The service holds no locks. Mutual exclusion comes from the store: writes
  are serialized per transaction and creation at an occupied address fails.
  Two participants racing for the last seat both run EnrollDirect; exactly
  one observes a free seat, the other re-reads the updated offering and
  fails with ErrFormationFull.

POST-COMMIT EFFECTS:
  Sequencer, Notifier and Observer are informed only after a successful
  commit. Their failures are logged and never undo a committed transition.

OPERATIONS:
  Offering:    CreateOffering, SetOfferingStatus
  Sessions:    CreateSession
  Enrollment:  EnrollDirect, WithdrawEnrollment
  Waitlist:    JoinWaitlist, OfferPromotion, FinalizePromotion,
               DeclinePromotion, DropFromWaitlist, ReorganizeWaitlist,
               CompactWaitlist, ExpireOffer
  Attendance:  RecordAttendance
  Access:      RequestAccess, ReviewAccessRequest

SEE ALSO:
  - offering.go, waitlist.go: Predicates and transitions
  - reads.go: Read-only queries
*/
package roster

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service runs roster operations against a transactional store.
type Service struct {
	Store TxStore

	// Optional collaborators. Nil values are skipped.
	Sequencer Sequencer
	Notifier  Notifier
	Observer  Observer

	Logger zerolog.Logger

	// OfferTimeout bounds how long a promotion offer stays open before
	// ExpireOffer may close it.
	OfferTimeout time.Duration

	// Admin reviews access requests.
	Admin Identity

	Now   func() time.Time
	NewID func() string
}

// NewService creates a service with a UTC wall clock, UUID identifiers and
// the default offer timeout.
func NewService(store TxStore) *Service {
	return &Service{
		Store:        store,
		Logger:       zerolog.Nop(),
		OfferTimeout: DefaultOfferTimeout,
		Now:          func() time.Time { return time.Now().UTC() },
		NewID:        uuid.NewString,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func (s *Service) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

func (s *Service) observer() Observer {
	if s.Observer == nil {
		return nopObserver{}
	}
	return s.Observer
}

// effects collects what a transaction did so it can be announced after commit.
type effects struct {
	events   []Event
	created  []RecordKind
	offering *Offering
	counter  CounterKind
}

func (fx *effects) emit(ev Event)          { fx.events = append(fx.events, ev) }
func (fx *effects) create(kind RecordKind) { fx.created = append(fx.created, kind) }
func (fx *effects) touched(o Offering)     { fx.offering = &o }
func (fx *effects) bump(kind CounterKind)  { fx.counter = kind }

func (s *Service) run(ctx context.Context, op string, fn func(tx Store, fx *effects) error) error {
	start := time.Now()
	fx := &effects{}
	err := s.Store.WithTx(ctx, func(tx Store) error {
		return fn(tx, fx)
	})
	s.observer().OperationCompleted(op, err, time.Since(start))

	if err != nil {
		if IsInvariantViolation(err) {
			s.Logger.Error().Err(err).Str("op", op).Msg("counter invariant violated")
		} else {
			s.Logger.Debug().Err(err).Str("op", op).Str("code", string(CodeOf(err))).Msg("operation rejected")
		}
		return err
	}

	s.afterCommit(ctx, op, fx)
	return nil
}

func (s *Service) afterCommit(ctx context.Context, op string, fx *effects) {
	obs := s.observer()
	for _, kind := range fx.created {
		obs.RecordCreated(kind)
	}
	if fx.offering != nil {
		obs.OfferingChanged(*fx.offering)
	}

	if fx.counter != "" && s.Sequencer != nil {
		seq, err := s.Sequencer.Next(ctx, fx.counter)
		if err != nil {
			s.Logger.Warn().Err(err).Str("counter", string(fx.counter)).Msg("sequencer update failed")
		} else {
			s.Logger.Debug().Str("counter", string(fx.counter)).Uint64("seq", seq).Msg("sequencer bumped")
		}
	}

	for _, ev := range fx.events {
		if s.Notifier == nil {
			break
		}
		if err := s.Notifier.Notify(ctx, ev); err != nil {
			s.Logger.Warn().Err(err).Str("event", string(ev.Type)).Str("participant", string(ev.Participant)).Msg("notification failed")
		}
	}

	s.Logger.Debug().Str("op", op).Int("events", len(fx.events)).Msg("operation committed")
}

// =============================================================================
// OFFERING LEDGER
// =============================================================================

// CreateOffering creates an active offering with zeroed counters.
func (s *Service) CreateOffering(ctx context.Context, organizer Identity, in NewOfferingInput) (Offering, error) {
	if err := checkIdentity(organizer); err != nil {
		return Offering{}, err
	}
	if err := in.Validate(); err != nil {
		return Offering{}, err
	}

	now := s.now()
	o := Offering{
		ID:               OfferingID(s.newID()),
		Organizer:        organizer,
		Title:            in.Title,
		Description:      in.Description,
		Mode:             in.Mode,
		MaxStudents:      uint8(in.MaxStudents),
		WaitlistCapacity: uint8(in.WaitlistCapacity),
		Status:           OfferingActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.run(ctx, "create_offering", func(tx Store, fx *effects) error {
		if err := tx.CreateOffering(ctx, o); err != nil {
			return err
		}
		fx.create(KindOffering)
		fx.touched(o)
		fx.bump(CounterOfferings)
		return nil
	})
	if err != nil {
		return Offering{}, err
	}
	return o, nil
}

// SetOfferingStatus lets the organizer close or reopen an offering.
// Cancelled and completed are terminal.
func (s *Service) SetOfferingStatus(ctx context.Context, caller Identity, id OfferingID, status OfferingStatus) (Offering, error) {
	var out Offering
	err := s.run(ctx, "set_offering_status", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		if !o.IsOrganizer(caller) {
			return ErrUnauthorizedAccess
		}
		if !o.CanTransitionTo(status) {
			return ErrInvalidOfferingStatus
		}
		o.Status = status
		o.UpdatedAt = s.now()
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}
		fx.touched(o)
		out = o
		return nil
	})
	return out, err
}

// =============================================================================
// SESSION CATALOG
// =============================================================================

type NewSessionInput struct {
	OfferingID  OfferingID
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

// CreateSession schedules a session. Duration must lie within
// [MinSessionDuration, MaxSessionDuration] and only the organizer may create.
func (s *Service) CreateSession(ctx context.Context, caller Identity, in NewSessionInput) (Session, error) {
	var out Session
	err := s.run(ctx, "create_session", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, in.OfferingID)
		if err != nil {
			return err
		}
		if err := checkLength("title", in.Title, MaxTitleLength); err != nil {
			return err
		}
		if err := checkLength("description", in.Description, MaxDescriptionLength); err != nil {
			return err
		}
		d := in.EndTime.Sub(in.StartTime)
		if d < MinSessionDuration || d > MaxSessionDuration {
			return ErrInvalidSessionTime
		}
		if !o.IsOrganizer(caller) {
			return ErrUnauthorizedAccess
		}

		now := s.now()
		sess := Session{
			ID:          SessionID(s.newID()),
			OfferingID:  o.ID,
			Organizer:   caller,
			Title:       in.Title,
			Description: in.Description,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateSession(ctx, sess); err != nil {
			return err
		}
		fx.create(KindSession)
		fx.bump(CounterSessions)
		out = sess
		return nil
	})
	return out, err
}

// =============================================================================
// ENROLLMENT & WAITLIST
// =============================================================================

// EnrollDirect takes a free seat. The enrollment position is the seat count
// before the increment. A second attempt by the same participant fails at
// record creation with ErrDuplicateKey.
func (s *Service) EnrollDirect(ctx context.Context, participant Identity, id OfferingID) (Enrollment, error) {
	if err := checkIdentity(participant); err != nil {
		return Enrollment{}, err
	}
	var out Enrollment
	err := s.run(ctx, "enroll_direct", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		if !o.CanEnroll() {
			return ErrFormationFull
		}

		now := s.now()
		e := Enrollment{
			OfferingID:  o.ID,
			Participant: participant,
			Status:      EnrollmentEnrolled,
			Position:    o.CurrentStudents,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateEnrollment(ctx, e); err != nil {
			return err
		}
		if err := o.incStudents(); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}

		fx.create(KindEnrollment)
		fx.touched(o)
		fx.emit(Event{Type: EventEnrolled, OfferingID: o.ID, Participant: participant, Position: e.Position, At: now})
		out = e
		return nil
	})
	return out, err
}

// WithdrawEnrollment releases the participant's seat. The enrollment record
// stays as dropped, so the same participant cannot enroll again directly.
// They may queue again; finalizing a later promotion reactivates the record.
func (s *Service) WithdrawEnrollment(ctx context.Context, caller Identity, id OfferingID, participant Identity) (Enrollment, error) {
	var out Enrollment
	err := s.run(ctx, "withdraw_enrollment", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		e, err := tx.GetEnrollment(ctx, id, participant)
		if IsNotFound(err) {
			return ErrNotEnrolled
		}
		if err != nil {
			return err
		}
		if e.Participant != caller {
			return ErrUnauthorizedAccess
		}
		if e.Status != EnrollmentEnrolled {
			return ErrNotEnrolled
		}

		now := s.now()
		if err := o.decStudents(); err != nil {
			return err
		}
		o.UpdatedAt = now
		e.Status = EnrollmentDropped
		e.UpdatedAt = now
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}
		if err := tx.UpdateEnrollment(ctx, e); err != nil {
			return err
		}

		fx.touched(o)
		fx.emit(Event{Type: EventWithdrawn, OfferingID: o.ID, Participant: participant, Position: e.Position, At: now})
		out = e
		return nil
	})
	return out, err
}

// JoinWaitlist queues a participant on a full offering. The entry position is
// the waitlist count before the increment.
func (s *Service) JoinWaitlist(ctx context.Context, participant Identity, id OfferingID) (WaitlistEntry, error) {
	if err := checkIdentity(participant); err != nil {
		return WaitlistEntry{}, err
	}
	var out WaitlistEntry
	err := s.run(ctx, "join_waitlist", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		if !o.CanJoinWaitlist() {
			return ErrWaitlistFull
		}

		now := s.now()
		w := WaitlistEntry{
			OfferingID:  o.ID,
			Participant: participant,
			Position:    o.CurrentWaitlisted,
			Status:      WaitlistWaiting,
			Timestamp:   now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateWaitlistEntry(ctx, w); err != nil {
			return err
		}
		if err := o.incWaitlisted(); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}

		fx.create(KindWaitlist)
		fx.touched(o)
		fx.emit(Event{Type: EventWaitlistJoined, OfferingID: o.ID, Participant: participant, Position: w.Position, At: now})
		out = w
		return nil
	})
	return out, err
}

// OfferPromotion is phase one of promotion: it marks the entry promoted and
// stamps the offer time. No counters move. The organizer or the queued
// participant may make the offer.
func (s *Service) OfferPromotion(ctx context.Context, caller Identity, id OfferingID, participant Identity) (WaitlistEntry, error) {
	var out WaitlistEntry
	err := s.run(ctx, "offer_promotion", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		w, err := tx.GetWaitlistEntry(ctx, id, participant)
		if err != nil {
			return err
		}
		if !o.IsOrganizer(caller) && w.Participant != caller {
			return ErrUnauthorizedAccess
		}
		if !o.CanEnroll() {
			return ErrFormationFull
		}
		if !w.IsPromotable() {
			return ErrInvalidWaitlistStatus
		}

		now := s.now()
		w.offer(now)
		if err := tx.UpdateWaitlistEntry(ctx, w); err != nil {
			return err
		}

		fx.emit(Event{Type: EventPromotionOffered, OfferingID: id, Participant: participant, Position: w.Position, At: now})
		out = w
		return nil
	})
	return out, err
}

// FinalizePromotion is phase two: the promoted participant takes the free
// seat. Both counters move in the same transaction. The entry stays promoted;
// the enrolled record is what marks the offer as answered.
func (s *Service) FinalizePromotion(ctx context.Context, participant Identity, id OfferingID) (Enrollment, error) {
	var out Enrollment
	err := s.run(ctx, "finalize_promotion", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		w, err := tx.GetWaitlistEntry(ctx, id, participant)
		if err != nil {
			return err
		}
		if w.Status != WaitlistPromoted {
			return ErrInvalidWaitlistStatus
		}
		prior, found, err := enrollmentOf(ctx, tx, id, participant)
		if err != nil {
			return err
		}
		if found && prior.Status == EnrollmentEnrolled {
			return ErrInvalidWaitlistStatus
		}
		if !o.CanEnroll() {
			return ErrFormationFull
		}

		now := s.now()
		e := Enrollment{
			OfferingID:  o.ID,
			Participant: participant,
			Status:      EnrollmentEnrolled,
			Position:    o.CurrentStudents,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if found {
			// A participant who withdrew and queued again gets their record back.
			e.CreatedAt = prior.CreatedAt
			if err := tx.UpdateEnrollment(ctx, e); err != nil {
				return err
			}
		} else {
			if err := tx.CreateEnrollment(ctx, e); err != nil {
				return err
			}
			fx.create(KindEnrollment)
		}
		if err := o.incStudents(); err != nil {
			return err
		}
		if err := o.decWaitlisted(); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}
		w.UpdatedAt = now
		if err := tx.UpdateWaitlistEntry(ctx, w); err != nil {
			return err
		}

		fx.touched(o)
		fx.emit(Event{Type: EventPromotionAccepted, OfferingID: o.ID, Participant: participant, Position: e.Position, At: now})
		out = e
		return nil
	})
	return out, err
}

// DeclinePromotion turns down an outstanding offer. The waitlist counter
// keeps the declined participant's slot.
func (s *Service) DeclinePromotion(ctx context.Context, participant Identity, id OfferingID) (WaitlistEntry, error) {
	var out WaitlistEntry
	err := s.run(ctx, "decline_promotion", func(tx Store, fx *effects) error {
		w, err := tx.GetWaitlistEntry(ctx, id, participant)
		if err != nil {
			return err
		}
		if w.Status != WaitlistPromoted {
			return ErrInvalidWaitlistStatus
		}
		if err := refuseSeated(ctx, tx, id, participant); err != nil {
			return err
		}

		now := s.now()
		w.decline(now)
		if err := tx.UpdateWaitlistEntry(ctx, w); err != nil {
			return err
		}

		fx.emit(Event{Type: EventPromotionDeclined, OfferingID: id, Participant: participant, Position: w.Position, At: now})
		out = w
		return nil
	})
	return out, err
}

// DropFromWaitlist lets a participant leave the queue from waiting or
// promoted, releasing their waitlist slot.
func (s *Service) DropFromWaitlist(ctx context.Context, caller Identity, id OfferingID, participant Identity) (WaitlistEntry, error) {
	var out WaitlistEntry
	err := s.run(ctx, "drop_from_waitlist", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		w, err := tx.GetWaitlistEntry(ctx, id, participant)
		if err != nil {
			return err
		}
		if w.Participant != caller {
			return ErrUnauthorizedAccess
		}
		if !w.IsDroppable() {
			return ErrInvalidWaitlistStatus
		}
		if err := refuseSeated(ctx, tx, id, participant); err != nil {
			return err
		}

		now := s.now()
		if err := o.decWaitlisted(); err != nil {
			return err
		}
		o.UpdatedAt = now
		w.expire(now)
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}
		if err := tx.UpdateWaitlistEntry(ctx, w); err != nil {
			return err
		}

		fx.touched(o)
		fx.emit(Event{Type: EventWaitlistDropped, OfferingID: id, Participant: participant, Position: w.Position, At: now})
		out = w
		return nil
	})
	return out, err
}

// ReorganizeWaitlist refreshes the offering's update marker. It does not
// renumber positions; CompactWaitlist does that explicitly.
func (s *Service) ReorganizeWaitlist(ctx context.Context, caller Identity, id OfferingID) (Offering, error) {
	var out Offering
	err := s.run(ctx, "reorganize_waitlist", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		if !o.IsOrganizer(caller) {
			return ErrUnauthorizedAccess
		}
		o.UpdatedAt = s.now()
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

// CompactWaitlist renumbers queued entries (waiting, pending promotion,
// promoted) densely from zero, keeping their relative order. Declined and
// expired entries keep their positions, as do promoted entries whose
// participant already holds a seat. Counters are not touched. Returns
// the entries whose position changed.
func (s *Service) CompactWaitlist(ctx context.Context, caller Identity, id OfferingID) ([]WaitlistEntry, error) {
	var out []WaitlistEntry
	err := s.run(ctx, "compact_waitlist", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		if !o.IsOrganizer(caller) {
			return ErrUnauthorizedAccess
		}
		entries, err := tx.ListWaitlist(ctx, id)
		if err != nil {
			return err
		}

		enrollments, err := tx.ListEnrollments(ctx, id)
		if err != nil {
			return err
		}
		seated := make(map[Identity]bool, len(enrollments))
		for _, e := range enrollments {
			if e.Status == EnrollmentEnrolled {
				seated[e.Participant] = true
			}
		}

		now := s.now()
		changed := compact(entries, seated, now)
		for _, w := range changed {
			if err := tx.UpdateWaitlistEntry(ctx, w); err != nil {
				return err
			}
			fx.emit(Event{Type: EventWaitlistCompacted, OfferingID: id, Participant: w.Participant, Position: w.Position, At: now})
		}
		o.UpdatedAt = now
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}
		out = changed
		return nil
	})
	return out, err
}

// enrollmentOf returns the participant's enrollment record, if one exists.
func enrollmentOf(ctx context.Context, tx Store, id OfferingID, participant Identity) (Enrollment, bool, error) {
	e, err := tx.GetEnrollment(ctx, id, participant)
	if IsNotFound(err) {
		return Enrollment{}, false, nil
	}
	if err != nil {
		return Enrollment{}, false, err
	}
	return e, true, nil
}

// refuseSeated rejects waitlist transitions for a participant who already
// holds a seat. A finalized promotion leaves its entry promoted, and its
// waitlist slot was released when the seat was taken.
func refuseSeated(ctx context.Context, tx Store, id OfferingID, participant Identity) error {
	e, found, err := enrollmentOf(ctx, tx, id, participant)
	if err != nil {
		return err
	}
	if found && e.Status == EnrollmentEnrolled {
		return ErrInvalidWaitlistStatus
	}
	return nil
}

// ExpireOffer closes a lapsed promotion offer on behalf of the system. The
// entry must satisfy IsExpired and must not have been finalized.
func (s *Service) ExpireOffer(ctx context.Context, id OfferingID, participant Identity) (WaitlistEntry, error) {
	var out WaitlistEntry
	err := s.run(ctx, "expire_offer", func(tx Store, fx *effects) error {
		o, err := tx.GetOffering(ctx, id)
		if err != nil {
			return err
		}
		w, err := tx.GetWaitlistEntry(ctx, id, participant)
		if err != nil {
			return err
		}

		now := s.now()
		if !w.IsExpired(now, s.OfferTimeout) {
			return ErrOfferNotExpired
		}
		if err := refuseSeated(ctx, tx, id, participant); err != nil {
			return err
		}

		if err := o.decWaitlisted(); err != nil {
			return err
		}
		o.UpdatedAt = now
		w.expire(now)
		if err := tx.UpdateOffering(ctx, o); err != nil {
			return err
		}
		if err := tx.UpdateWaitlistEntry(ctx, w); err != nil {
			return err
		}

		fx.touched(o)
		fx.emit(Event{Type: EventOfferExpired, OfferingID: id, Participant: participant, Position: w.Position, At: now})
		out = w
		return nil
	})
	return out, err
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// RecordAttendanceInput names the session being checked into and the
// enrollment vouching for the caller.
type RecordAttendanceInput struct {
	SessionID   SessionID
	OfferingID  OfferingID
	Participant Identity
	Status      AttendanceStatus
}

// RecordAttendance checks the caller into a session. The enrollment must
// exist, must not be dropped, and must belong to the caller. The session's
// offering is not compared with the enrollment's offering. A second check-in
// for the same session fails with ErrDuplicateKey.
func (s *Service) RecordAttendance(ctx context.Context, caller Identity, in RecordAttendanceInput) (Attendance, error) {
	if !in.Status.Valid() {
		return Attendance{}, ErrInvalidAttendance
	}
	var out Attendance
	err := s.run(ctx, "record_attendance", func(tx Store, fx *effects) error {
		sess, err := tx.GetSession(ctx, in.SessionID)
		if err != nil {
			return err
		}
		e, err := tx.GetEnrollment(ctx, in.OfferingID, in.Participant)
		if IsNotFound(err) {
			return ErrNotEnrolled
		}
		if err != nil {
			return err
		}
		if e.Participant != caller || e.Status == EnrollmentDropped {
			return ErrNotEnrolled
		}

		now := s.now()
		a := Attendance{
			SessionID:   sess.ID,
			Participant: caller,
			Status:      in.Status,
			CheckInTime: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateAttendance(ctx, a); err != nil {
			return err
		}

		fx.create(KindAttendance)
		fx.bump(CounterAttendance)
		fx.emit(Event{Type: EventAttendance, OfferingID: e.OfferingID, SessionID: sess.ID, Participant: caller, At: now})
		out = a
		return nil
	})
	return out, err
}

// =============================================================================
// ACCESS REQUESTS
// =============================================================================

type AccessRequestInput struct {
	Role    Role
	Name    string
	Email   string
	Message string
}

// RequestAccess files a pending request. One request per user.
func (s *Service) RequestAccess(ctx context.Context, user Identity, in AccessRequestInput) (AccessRequest, error) {
	if err := checkIdentity(user); err != nil {
		return AccessRequest{}, err
	}
	if !in.Role.Valid() {
		return AccessRequest{}, ErrInvalidRole
	}
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"name", in.Name, MaxNameLength},
		{"email", in.Email, MaxEmailLength},
		{"message", in.Message, MaxMessageLength},
	} {
		if err := checkLength(f.name, f.value, f.max); err != nil {
			return AccessRequest{}, err
		}
	}

	now := s.now()
	r := AccessRequest{
		User:      user,
		Role:      in.Role,
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		Status:    RequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.run(ctx, "request_access", func(tx Store, fx *effects) error {
		if err := tx.CreateAccessRequest(ctx, r); err != nil {
			return err
		}
		fx.create(KindAccessRequest)
		fx.bump(CounterRequests)
		return nil
	})
	if err != nil {
		return AccessRequest{}, err
	}
	return r, nil
}

// IsAdmin reports whether caller is the configured admin. With no admin
// configured nobody is.
func (s *Service) IsAdmin(caller Identity) bool {
	return s.Admin != "" && caller == s.Admin
}

// ReviewAccessRequest approves or rejects a pending request. Only the
// configured admin may review.
func (s *Service) ReviewAccessRequest(ctx context.Context, caller Identity, user Identity, approve bool) (AccessRequest, error) {
	if !s.IsAdmin(caller) {
		return AccessRequest{}, ErrUnauthorizedAccess
	}
	var out AccessRequest
	err := s.run(ctx, "review_access_request", func(tx Store, fx *effects) error {
		r, err := tx.GetAccessRequest(ctx, user)
		if err != nil {
			return err
		}
		if r.Status != RequestPending {
			return ErrInvalidRequestStatus
		}
		r.Status = RequestRejected
		if approve {
			r.Status = RequestApproved
		}
		r.UpdatedAt = s.now()
		if err := tx.UpdateAccessRequest(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}
