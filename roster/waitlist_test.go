package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func entry(p Identity, pos uint8, status WaitlistStatus, created time.Time) WaitlistEntry {
	return WaitlistEntry{
		OfferingID:  "off-1",
		Participant: p,
		Position:    pos,
		Status:      status,
		Timestamp:   created,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// =============================================================================
// STATUS PREDICATE TESTS
// =============================================================================

func TestWaitlistEntry_Predicates(t *testing.T) {
	tests := []struct {
		status     WaitlistStatus
		promotable bool
		droppable  bool
		awaiting   bool
	}{
		{WaitlistWaiting, true, true, false},
		{WaitlistPendingPromotion, false, false, true},
		{WaitlistPromoted, false, true, true},
		{WaitlistDeclined, false, false, false},
		{WaitlistExpired, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			w := entry("p", 0, tt.status, t0)
			assert.Equal(t, tt.promotable, w.IsPromotable())
			assert.Equal(t, tt.droppable, w.IsDroppable())
			assert.Equal(t, tt.awaiting, w.AwaitingAnswer())
		})
	}
}

func TestWaitlistEntry_IsExpired(t *testing.T) {
	// GIVEN: An offer made at t0 with a one hour timeout
	// WHEN: Checking at, just after, and long after the deadline
	// THEN: Only strictly later times report expiry

	w := entry("p", 0, WaitlistWaiting, t0)
	w.offer(t0)

	assert.False(t, w.IsExpired(t0.Add(time.Hour), time.Hour), "deadline itself is not past")
	assert.True(t, w.IsExpired(t0.Add(time.Hour+time.Second), time.Hour))

	w.Status = WaitlistPendingPromotion
	assert.True(t, w.IsExpired(t0.Add(2*time.Hour), time.Hour))

	w.Status = WaitlistWaiting
	assert.False(t, w.IsExpired(t0.Add(48*time.Hour), time.Hour), "no outstanding offer")
}

func TestWaitlistEntry_Offer_StampsTimestamp(t *testing.T) {
	w := entry("p", 3, WaitlistWaiting, t0)
	later := t0.Add(10 * time.Minute)

	w.offer(later)

	assert.Equal(t, WaitlistPromoted, w.Status)
	assert.Equal(t, later, w.Timestamp)
	assert.Equal(t, t0, w.CreatedAt)
	assert.Equal(t, uint8(3), w.Position)
}

// =============================================================================
// ORDERING & COMPACTION TESTS
// =============================================================================

func TestSortByPosition_TiesBrokenByCreationThenParticipant(t *testing.T) {
	entries := []WaitlistEntry{
		entry("carol", 1, WaitlistWaiting, t0),
		entry("bob", 0, WaitlistWaiting, t0.Add(time.Minute)),
		entry("alice", 0, WaitlistWaiting, t0.Add(time.Minute)),
		entry("dave", 0, WaitlistWaiting, t0),
	}

	SortByPosition(entries)

	var got []Identity
	for _, e := range entries {
		got = append(got, e.Participant)
	}
	assert.Equal(t, []Identity{"dave", "alice", "bob", "carol"}, got)
}

func TestCompact_RenumbersQueuedEntriesDensely(t *testing.T) {
	// GIVEN: Positions 0..4 where 1 dropped and 3 declined
	// WHEN: Compacting
	// THEN: Queued entries become 0,1,2 in order; terminal entries untouched

	entries := []WaitlistEntry{
		entry("a", 0, WaitlistWaiting, t0),
		entry("b", 1, WaitlistExpired, t0),
		entry("c", 2, WaitlistPromoted, t0),
		entry("d", 3, WaitlistDeclined, t0),
		entry("e", 4, WaitlistWaiting, t0),
	}
	now := t0.Add(time.Hour)

	changed := compact(entries, nil, now)

	require.Len(t, changed, 2)
	assert.Equal(t, Identity("c"), changed[0].Participant)
	assert.Equal(t, uint8(1), changed[0].Position)
	assert.Equal(t, Identity("e"), changed[1].Participant)
	assert.Equal(t, uint8(2), changed[1].Position)
	for _, c := range changed {
		assert.Equal(t, now, c.UpdatedAt)
	}

	assert.Equal(t, uint8(1), entries[1].Position, "input slice is not modified")
}

func TestCompact_AlreadyDense(t *testing.T) {
	entries := []WaitlistEntry{
		entry("a", 0, WaitlistWaiting, t0),
		entry("b", 1, WaitlistWaiting, t0),
	}
	assert.Empty(t, compact(entries, nil, t0))
}

func TestCompact_SkipsSeatedParticipants(t *testing.T) {
	// GIVEN: b was promoted and has since taken a seat
	// WHEN: Compacting
	// THEN: b keeps its position and c moves up past it

	entries := []WaitlistEntry{
		entry("a", 0, WaitlistExpired, t0),
		entry("b", 1, WaitlistPromoted, t0),
		entry("c", 2, WaitlistWaiting, t0),
	}

	changed := compact(entries, map[Identity]bool{"b": true}, t0)

	require.Len(t, changed, 1)
	assert.Equal(t, Identity("c"), changed[0].Participant)
	assert.Equal(t, uint8(0), changed[0].Position)
}
