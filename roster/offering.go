/*
offering.go - Offering ledger: capacity predicates and checked counters

PURPOSE:
  The Offering record owns the seat and waitlist counters. Everything that
  moves a counter goes through the checked helpers here so the invariants
  below can only be broken by a logic defect, which then surfaces as
  ErrOverflow/ErrUnderflow instead of silently wrapping.

INVARIANTS:
  0 <= CurrentStudents   <= MaxStudents       (MaxStudents <= 100)
  0 <= CurrentWaitlisted <= WaitlistCapacity  (WaitlistCapacity <= 50)

WAITLIST POLICY:
  Joining the waitlist is only possible once every seat is taken. A
  participant must be turned away from direct enrollment before queueing;
  they cannot simply choose to queue.

SEE ALSO:
  - waitlist.go: Entry-level transitions
  - service.go: Operations that combine both
*/
package roster

import (
	"math"

	"github.com/shopspring/decimal"
)

// NewOfferingInput carries the organizer-supplied fields of a new offering.
type NewOfferingInput struct {
	Title            string
	Description      string
	Mode             DeliveryMode
	MaxStudents      int
	WaitlistCapacity int
}

// Validate checks field bounds in the order the ledger reports them:
// title, description, seat capacity, waitlist capacity, mode.
func (in NewOfferingInput) Validate() error {
	if err := checkLength("title", in.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := checkLength("description", in.Description, MaxDescriptionLength); err != nil {
		return err
	}
	if in.MaxStudents < 0 || in.WaitlistCapacity < 0 {
		return ErrInvalidCapacity
	}
	if in.MaxStudents > MaxOfferingCapacity {
		return ErrCapacityExceeded
	}
	if in.WaitlistCapacity > MaxWaitlistCapacity {
		return ErrWaitlistTooLarge
	}
	if !in.Mode.Valid() {
		return ErrInvalidMode
	}
	return nil
}

// =============================================================================
// PREDICATES
// =============================================================================

// CanEnroll reports whether a seat is free on an active offering.
func (o Offering) CanEnroll() bool {
	return o.CurrentStudents < o.MaxStudents && o.Status == OfferingActive
}

// CanJoinWaitlist reports whether the offering is full, active, and still has
// room in its queue.
func (o Offering) CanJoinWaitlist() bool {
	return o.CurrentWaitlisted < o.WaitlistCapacity &&
		o.Status == OfferingActive &&
		o.CurrentStudents >= o.MaxStudents
}

func (o Offering) IsOrganizer(id Identity) bool {
	return o.Organizer == id
}

// Utilization is the fraction of seats taken, rounded to four places.
// An offering with no seats reports zero.
func (o Offering) Utilization() decimal.Decimal {
	if o.MaxStudents == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(o.CurrentStudents)).
		Div(decimal.NewFromInt(int64(o.MaxStudents))).
		Round(4)
}

// =============================================================================
// CHECKED COUNTERS
// =============================================================================

func (o *Offering) incStudents() error {
	v, ok := checkedAdd(o.CurrentStudents)
	if !ok {
		return &CounterError{OfferingID: o.ID, Counter: "current_students", Value: o.CurrentStudents, Overflow: true}
	}
	o.CurrentStudents = v
	return nil
}

func (o *Offering) decStudents() error {
	v, ok := checkedSub(o.CurrentStudents)
	if !ok {
		return &CounterError{OfferingID: o.ID, Counter: "current_students", Value: o.CurrentStudents}
	}
	o.CurrentStudents = v
	return nil
}

func (o *Offering) incWaitlisted() error {
	v, ok := checkedAdd(o.CurrentWaitlisted)
	if !ok {
		return &CounterError{OfferingID: o.ID, Counter: "current_waitlisted", Value: o.CurrentWaitlisted, Overflow: true}
	}
	o.CurrentWaitlisted = v
	return nil
}

func (o *Offering) decWaitlisted() error {
	v, ok := checkedSub(o.CurrentWaitlisted)
	if !ok {
		return &CounterError{OfferingID: o.ID, Counter: "current_waitlisted", Value: o.CurrentWaitlisted}
	}
	o.CurrentWaitlisted = v
	return nil
}

func checkedAdd(v uint8) (uint8, bool) {
	if v == math.MaxUint8 {
		return v, false
	}
	return v + 1, true
}

func checkedSub(v uint8) (uint8, bool) {
	if v == 0 {
		return v, false
	}
	return v - 1, true
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

var offeringTransitions = map[OfferingStatus][]OfferingStatus{
	OfferingActive: {OfferingFull, OfferingCancelled, OfferingCompleted},
	OfferingFull:   {OfferingActive, OfferingCancelled, OfferingCompleted},
}

// CanTransitionTo reports whether the organizer may move the offering to next.
// Cancelled and completed are terminal.
func (o Offering) CanTransitionTo(next OfferingStatus) bool {
	for _, s := range offeringTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// =============================================================================
// FIELD VALIDATION
// =============================================================================

func checkLength(field, value string, max int) error {
	if len(value) > max {
		return &FieldTooLongError{Field: field, Length: len(value), Max: max}
	}
	return nil
}

func checkIdentity(id Identity) error {
	if id == "" {
		return ErrInvalidIdentity
	}
	return checkLength("identity", string(id), MaxIdentityLength)
}
