/*
waitlist.go - Waitlist entry state machine

PURPOSE:
  Per participant and offering, enrollment and waitlist form one automaton
  spread across two tables:

    Unenrolled ──enroll──────────────────────────────▶ Enrolled
        │
        └──join──▶ Waiting ──offer──▶ Promoted ──finalize──▶ Enrolled
                      │                  │  │
                      │                  │  └──decline──▶ Declined
                      └──drop──▶ Expired ◀──drop / expire─┘

PROMOTION IS TWO-PHASE:
  Offer marks intent and moves no counters. Finalize creates the enrollment
  and moves both counters. A seat must be free at both steps.

COUNTER ASYMMETRY:
  Declining does not release the waitlist counter slot; dropping does.
  Finalizing leaves the entry in status Promoted.

SEE ALSO:
  - offering.go: Counter helpers
  - service.go: Operations wrapping these transitions in a store transaction
*/
package roster

import (
	"sort"
	"time"
)

// IsPromotable reports whether an offer can be made for this entry.
func (w WaitlistEntry) IsPromotable() bool {
	return w.Status == WaitlistWaiting
}

// IsDroppable reports whether the participant may leave the queue.
func (w WaitlistEntry) IsDroppable() bool {
	return w.Status == WaitlistWaiting || w.Status == WaitlistPromoted
}

// AwaitingAnswer reports whether an offer is outstanding on this entry.
func (w WaitlistEntry) AwaitingAnswer() bool {
	return w.Status == WaitlistPendingPromotion || w.Status == WaitlistPromoted
}

// IsExpired is a pure time comparison: an outstanding offer older than
// timeout has lapsed. The engine never acts on it by itself.
func (w WaitlistEntry) IsExpired(now time.Time, timeout time.Duration) bool {
	return w.AwaitingAnswer() && now.After(w.Timestamp.Add(timeout))
}

func (w *WaitlistEntry) offer(now time.Time) {
	w.Status = WaitlistPromoted
	w.Timestamp = now
	w.UpdatedAt = now
}

func (w *WaitlistEntry) decline(now time.Time) {
	w.Status = WaitlistDeclined
	w.UpdatedAt = now
}

func (w *WaitlistEntry) expire(now time.Time) {
	w.Status = WaitlistExpired
	w.UpdatedAt = now
}

// inQueue reports whether the entry still takes part in queue ordering.
func (w WaitlistEntry) inQueue() bool {
	switch w.Status {
	case WaitlistWaiting, WaitlistPendingPromotion, WaitlistPromoted:
		return true
	}
	return false
}

// SortByPosition orders entries first come, first served: by position, then
// creation time, then participant for a stable total order.
func SortByPosition(entries []WaitlistEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Participant < b.Participant
	})
}

// compact renumbers queued entries densely from zero in queue order and
// returns only the entries whose position changed. Declined and expired
// entries keep their position, as do entries of seated participants.
func compact(entries []WaitlistEntry, seated map[Identity]bool, now time.Time) []WaitlistEntry {
	queued := make([]WaitlistEntry, 0, len(entries))
	for _, e := range entries {
		if e.inQueue() && !seated[e.Participant] {
			queued = append(queued, e)
		}
	}
	SortByPosition(queued)

	var changed []WaitlistEntry
	for i, e := range queued {
		pos := uint8(i)
		if e.Position == pos {
			continue
		}
		e.Position = pos
		e.UpdatedAt = now
		changed = append(changed, e)
	}
	return changed
}
