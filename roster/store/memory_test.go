package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/formation-engine/roster"
	"github.com/warp/formation-engine/roster/store"
)

var now = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func offering(id roster.OfferingID) roster.Offering {
	return roster.Offering{ID: id, Organizer: "trainer-1", MaxStudents: 3, Status: roster.OfferingActive, CreatedAt: now, UpdatedAt: now}
}

func TestTxMemory_RollbackRestoresEveryTable(t *testing.T) {
	// GIVEN: An offering exists
	// WHEN: A transaction updates it, creates an enrollment, then fails
	// THEN: The offering is unchanged and the enrollment is gone

	m := store.NewTxMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateOffering(ctx, offering("off-1")))

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(tx roster.Store) error {
		o, err := tx.GetOffering(ctx, "off-1")
		require.NoError(t, err)
		o.CurrentStudents = 1
		require.NoError(t, tx.UpdateOffering(ctx, o))
		require.NoError(t, tx.CreateEnrollment(ctx, roster.Enrollment{OfferingID: "off-1", Participant: "alice"}))

		visible, err := tx.GetEnrollment(ctx, "off-1", "alice")
		require.NoError(t, err, "writes are visible inside the transaction")
		assert.Equal(t, roster.Identity("alice"), visible.Participant)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	o, err := m.GetOffering(ctx, "off-1")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), o.CurrentStudents)
	_, err = m.GetEnrollment(ctx, "off-1", "alice")
	assert.ErrorIs(t, err, roster.ErrNotFound)
}

func TestTxMemory_CommitPersists(t *testing.T) {
	m := store.NewTxMemory()
	ctx := context.Background()

	err := m.WithTx(ctx, func(tx roster.Store) error {
		return tx.CreateOffering(ctx, offering("off-1"))
	})
	require.NoError(t, err)

	all, err := m.ListOfferings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemory_CreateIfAbsent(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	e := roster.Enrollment{OfferingID: "off-1", Participant: "alice"}
	require.NoError(t, m.CreateEnrollment(ctx, e))

	err := m.CreateEnrollment(ctx, e)

	var dup *roster.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "enrollment/off-1/alice", dup.Address.String())

	// The same key tuple in a different table is a different address.
	assert.NoError(t, m.CreateWaitlistEntry(ctx, roster.WaitlistEntry{OfferingID: "off-1", Participant: "alice"}))
}

func TestMemory_UpdateMissing_NotFound(t *testing.T) {
	m := store.NewMemory()

	err := m.UpdateWaitlistEntry(context.Background(), roster.WaitlistEntry{OfferingID: "off-1", Participant: "bob"})

	assert.ErrorIs(t, err, roster.ErrNotFound)
}

func TestMemory_Lists(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateOffering(ctx, offering("off-2")))
	require.NoError(t, m.CreateOffering(ctx, offering("off-1")))
	for i, p := range []roster.Identity{"carol", "bob", "alice"} {
		require.NoError(t, m.CreateWaitlistEntry(ctx, roster.WaitlistEntry{
			OfferingID: "off-1", Participant: p, Position: uint8(i), CreatedAt: now,
		}))
	}
	require.NoError(t, m.CreateWaitlistEntry(ctx, roster.WaitlistEntry{OfferingID: "off-2", Participant: "dave"}))

	offerings, err := m.ListOfferings(ctx)
	require.NoError(t, err)
	require.Len(t, offerings, 2)
	assert.Equal(t, roster.OfferingID("off-1"), offerings[0].ID, "ties on creation time break by id")

	entries, err := m.ListWaitlist(ctx, "off-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, roster.Identity("carol"), entries[0].Participant)
	assert.Equal(t, roster.Identity("alice"), entries[2].Participant)

	none, err := m.ListAttendance(ctx, "sess-x")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
