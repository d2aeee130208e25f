package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/formation-engine/roster"
	"github.com/warp/formation-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var drivers = []string{sqlite.DriverCGO, sqlite.DriverPure}

func newTestStore(t *testing.T, driver string) *sqlite.Store {
	store, err := sqlite.Open(driver, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var march10 = time.Date(2025, time.March, 10, 9, 30, 0, 123456789, time.UTC)

func testOffering(id roster.OfferingID) roster.Offering {
	return roster.Offering{
		ID:               id,
		Organizer:        "trainer-1",
		Title:            "SQL for analysts",
		Description:      "Joins and windows",
		Mode:             roster.ModeInPerson,
		MaxStudents:      2,
		WaitlistCapacity: 1,
		Status:           roster.OfferingActive,
		CreatedAt:        march10,
		UpdatedAt:        march10,
	}
}

func forEachDriver(t *testing.T, fn func(t *testing.T, store *sqlite.Store)) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, newTestStore(t, driver))
		})
	}
}

// =============================================================================
// ROUND-TRIP TESTS
// =============================================================================

func TestStore_Offering_RoundTrip(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		o := testOffering("off-1")

		require.NoError(t, store.CreateOffering(ctx, o))

		got, err := store.GetOffering(ctx, "off-1")
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
		assert.Equal(t, o.Mode, got.Mode)
		assert.Equal(t, o.MaxStudents, got.MaxStudents)
		assert.True(t, o.CreatedAt.Equal(got.CreatedAt), "nanosecond precision preserved")

		o.CurrentStudents = 2
		o.Status = roster.OfferingFull
		require.NoError(t, store.UpdateOffering(ctx, o))
		got, err = store.GetOffering(ctx, "off-1")
		require.NoError(t, err)
		assert.Equal(t, uint8(2), got.CurrentStudents)
		assert.Equal(t, roster.OfferingFull, got.Status)
	})
}

func TestStore_MissingRecords_NotFound(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()

		_, err := store.GetOffering(ctx, "nope")
		var nf *roster.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, roster.OfferingAddress("nope"), nf.Address)

		_, err = store.GetWaitlistEntry(ctx, "nope", "alice")
		assert.ErrorIs(t, err, roster.ErrNotFound)

		err = store.UpdateOffering(ctx, testOffering("ghost"))
		assert.ErrorIs(t, err, roster.ErrNotFound)
	})
}

// =============================================================================
// UNIQUENESS TESTS
// =============================================================================

func TestStore_CreateIfAbsent(t *testing.T) {
	// GIVEN: An enrollment, waitlist entry and attendance record exist
	// WHEN: Creating each again at the same key
	// THEN: Each fails with DuplicateKeyError carrying the address

	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		require.NoError(t, store.CreateOffering(ctx, testOffering("off-1")))
		require.NoError(t, store.CreateSession(ctx, roster.Session{
			ID: "sess-1", OfferingID: "off-1", Organizer: "trainer-1",
			StartTime: march10, EndTime: march10.Add(time.Hour), CreatedAt: march10, UpdatedAt: march10,
		}))

		e := roster.Enrollment{OfferingID: "off-1", Participant: "alice", Status: roster.EnrollmentEnrolled, CreatedAt: march10, UpdatedAt: march10}
		w := roster.WaitlistEntry{OfferingID: "off-1", Participant: "alice", Status: roster.WaitlistWaiting, Timestamp: march10, CreatedAt: march10, UpdatedAt: march10}
		a := roster.Attendance{SessionID: "sess-1", Participant: "alice", Status: roster.AttendancePresent, CheckInTime: march10, CreatedAt: march10, UpdatedAt: march10}

		require.NoError(t, store.CreateEnrollment(ctx, e))
		require.NoError(t, store.CreateWaitlistEntry(ctx, w))
		require.NoError(t, store.CreateAttendance(ctx, a))

		var dup *roster.DuplicateKeyError

		require.ErrorAs(t, store.CreateEnrollment(ctx, e), &dup)
		assert.Equal(t, e.Address(), dup.Address)
		require.ErrorAs(t, store.CreateWaitlistEntry(ctx, w), &dup)
		assert.Equal(t, w.Address(), dup.Address)
		require.ErrorAs(t, store.CreateAttendance(ctx, a), &dup)
		assert.Equal(t, a.Address(), dup.Address)
		assert.ErrorIs(t, store.CreateOffering(ctx, testOffering("off-1")), roster.ErrDuplicateKey)
	})
}

func TestStore_CounterCheckConstraint(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		o := testOffering("off-1")
		require.NoError(t, store.CreateOffering(ctx, o))

		o.CurrentStudents = o.MaxStudents + 1
		err := store.UpdateOffering(ctx, o)

		assert.Error(t, err)
		assert.False(t, errors.Is(err, roster.ErrDuplicateKey))
	})
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction that creates an enrollment and bumps the counter
	// WHEN: The function returns an error after both writes
	// THEN: Neither write is visible

	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		require.NoError(t, store.CreateOffering(ctx, testOffering("off-1")))

		boom := errors.New("boom")
		err := store.WithTx(ctx, func(tx roster.Store) error {
			o, err := tx.GetOffering(ctx, "off-1")
			require.NoError(t, err)
			o.CurrentStudents++
			require.NoError(t, tx.UpdateOffering(ctx, o))
			require.NoError(t, tx.CreateEnrollment(ctx, roster.Enrollment{
				OfferingID: "off-1", Participant: "alice", Status: roster.EnrollmentEnrolled,
				CreatedAt: march10, UpdatedAt: march10,
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		o, err := store.GetOffering(ctx, "off-1")
		require.NoError(t, err)
		assert.Equal(t, uint8(0), o.CurrentStudents)
		_, err = store.GetEnrollment(ctx, "off-1", "alice")
		assert.ErrorIs(t, err, roster.ErrNotFound)
	})
}

func TestStore_ServiceScenario(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		svc := roster.NewService(store)

		o, err := svc.CreateOffering(ctx, "trainer-1", roster.NewOfferingInput{
			Title: "Rust", Mode: roster.ModeOnline, MaxStudents: 1, WaitlistCapacity: 1,
		})
		require.NoError(t, err)

		_, err = svc.EnrollDirect(ctx, "alice", o.ID)
		require.NoError(t, err)
		_, err = svc.EnrollDirect(ctx, "bob", o.ID)
		assert.ErrorIs(t, err, roster.ErrFormationFull)
		_, err = svc.JoinWaitlist(ctx, "bob", o.ID)
		require.NoError(t, err)
		_, err = svc.JoinWaitlist(ctx, "carol", o.ID)
		assert.ErrorIs(t, err, roster.ErrWaitlistFull)
		_, err = svc.EnrollDirect(ctx, "alice", o.ID)
		assert.ErrorIs(t, err, roster.ErrFormationFull)

		got, err := svc.GetOffering(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, uint8(1), got.CurrentStudents)
		assert.Equal(t, uint8(1), got.CurrentWaitlisted)
	})
}

func TestStore_RequeuedParticipantFinalizes(t *testing.T) {
	// GIVEN: alice withdrew and queued again behind bob
	// WHEN: bob withdraws and alice accepts an offer
	// THEN: Her dropped row is reactivated rather than colliding on the key

	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		svc := roster.NewService(store)

		o, err := svc.CreateOffering(ctx, "trainer-1", roster.NewOfferingInput{
			Title: "Rust", Mode: roster.ModeOnline, MaxStudents: 1, WaitlistCapacity: 1,
		})
		require.NoError(t, err)

		_, err = svc.EnrollDirect(ctx, "alice", o.ID)
		require.NoError(t, err)
		_, err = svc.WithdrawEnrollment(ctx, "alice", o.ID, "alice")
		require.NoError(t, err)
		_, err = svc.EnrollDirect(ctx, "bob", o.ID)
		require.NoError(t, err)
		_, err = svc.JoinWaitlist(ctx, "alice", o.ID)
		require.NoError(t, err)
		_, err = svc.WithdrawEnrollment(ctx, "bob", o.ID, "bob")
		require.NoError(t, err)
		_, err = svc.OfferPromotion(ctx, "trainer-1", o.ID, "alice")
		require.NoError(t, err)

		_, err = svc.FinalizePromotion(ctx, "alice", o.ID)
		require.NoError(t, err)

		e, err := store.GetEnrollment(ctx, o.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, roster.EnrollmentEnrolled, e.Status)
		got, err := svc.GetOffering(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, uint8(1), got.CurrentStudents)
		assert.Equal(t, uint8(0), got.CurrentWaitlisted)
	})
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestStore_ListWaitlist_QueueOrder(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		require.NoError(t, store.CreateOffering(ctx, testOffering("off-1")))
		for i, p := range []roster.Identity{"carol", "alice", "bob"} {
			require.NoError(t, store.CreateWaitlistEntry(ctx, roster.WaitlistEntry{
				OfferingID: "off-1", Participant: p, Position: uint8(2 - i), Status: roster.WaitlistWaiting,
				Timestamp: march10, CreatedAt: march10, UpdatedAt: march10,
			}))
		}

		entries, err := store.ListWaitlist(ctx, "off-1")
		require.NoError(t, err)

		require.Len(t, entries, 3)
		assert.Equal(t, roster.Identity("bob"), entries[0].Participant)
		assert.Equal(t, roster.Identity("alice"), entries[1].Participant)
		assert.Equal(t, roster.Identity("carol"), entries[2].Participant)
	})
}

func TestStore_ListAccessRequests_StatusFilter(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *sqlite.Store) {
		ctx := context.Background()
		for _, r := range []roster.AccessRequest{
			{User: "alice", Role: roster.RoleStudent, Status: roster.RequestPending, CreatedAt: march10, UpdatedAt: march10},
			{User: "bob", Role: roster.RoleTrainer, Status: roster.RequestApproved, CreatedAt: march10, UpdatedAt: march10},
		} {
			require.NoError(t, store.CreateAccessRequest(ctx, r))
		}

		all, err := store.ListAccessRequests(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		pending, err := store.ListAccessRequests(ctx, roster.RequestPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, roster.Identity("alice"), pending[0].User)
	})
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t, sqlite.DriverCGO)
	ctx := context.Background()
	require.NoError(t, store.CreateOffering(ctx, testOffering("off-1")))

	require.NoError(t, store.Reset(ctx))

	all, err := store.ListOfferings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := sqlite.Open("postgres", ":memory:")
	assert.Error(t, err)
}
