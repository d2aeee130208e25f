package roster

import (
	"context"
	"time"
)

// =============================================================================
// EXTERNAL COLLABORATORS - Notified after commit, never consulted
// =============================================================================

// CounterKind names a program-wide sequence counter.
type CounterKind string

const (
	CounterOfferings  CounterKind = "offering"
	CounterSessions   CounterKind = "session"
	CounterAttendance CounterKind = "attendance"
	CounterRequests   CounterKind = "request"
)

var CounterKinds = []CounterKind{CounterOfferings, CounterSessions, CounterAttendance, CounterRequests}

// Sequencer is the program-wide bookkeeping counter service. The engine bumps
// it after a record is committed; its value never influences a transition.
type Sequencer interface {
	Next(ctx context.Context, kind CounterKind) (uint64, error)
	Current(ctx context.Context, kind CounterKind) (uint64, error)
}

// EventType identifies a committed waitlist or enrollment transition.
type EventType string

const (
	EventEnrolled          EventType = "enrolled"
	EventWithdrawn         EventType = "enrollment_withdrawn"
	EventWaitlistJoined    EventType = "waitlist_joined"
	EventPromotionOffered  EventType = "promotion_offered"
	EventPromotionAccepted EventType = "promotion_accepted"
	EventPromotionDeclined EventType = "promotion_declined"
	EventWaitlistDropped   EventType = "waitlist_dropped"
	EventOfferExpired      EventType = "offer_expired"
	EventWaitlistCompacted EventType = "waitlist_compacted"
	EventAttendance        EventType = "attendance_recorded"
)

type Event struct {
	Type        EventType
	OfferingID  OfferingID
	SessionID   SessionID
	Participant Identity
	Position    uint8
	At          time.Time
}

// Notifier fans committed events out to participants.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Observer receives operation outcomes for metrics.
type Observer interface {
	OperationCompleted(op string, err error, elapsed time.Duration)
	OfferingChanged(o Offering)
	RecordCreated(kind RecordKind)
}

type nopObserver struct{}

func (nopObserver) OperationCompleted(string, error, time.Duration) {}
func (nopObserver) OfferingChanged(Offering)                        {}
func (nopObserver) RecordCreated(RecordKind)                        {}
