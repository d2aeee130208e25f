package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/formation-engine/roster"
)

func TestTimeParser_KeepsFirstError(t *testing.T) {
	var tp timeParser
	ts := time.Date(2025, time.March, 10, 9, 0, 0, 5, time.UTC)

	assert.True(t, ts.Equal(tp.parse(formatTime(ts))))
	assert.NoError(t, tp.err)

	assert.True(t, tp.parse("not-a-time").IsZero())
	assert.True(t, tp.parse(formatTime(ts)).IsZero(), "later columns are skipped after a failure")
	assert.ErrorContains(t, tp.err, "not-a-time")
}

func TestStore_CorruptTimestamp_ReportsError(t *testing.T) {
	// GIVEN: An offering row whose created_at text was damaged outside the store
	// WHEN: Reading it back
	// THEN: The read fails instead of returning a zero time

	for _, driver := range []string{DriverCGO, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			store, err := Open(driver, ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })

			now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
			require.NoError(t, store.CreateOffering(ctx, roster.Offering{
				ID:               "off-1",
				Organizer:        "trainer-1",
				Title:            "Go basics",
				Mode:             roster.ModeOnline,
				MaxStudents:      1,
				WaitlistCapacity: 1,
				Status:           roster.OfferingActive,
				CreatedAt:        now,
				UpdatedAt:        now,
			}))
			_, err = store.db.ExecContext(ctx, `UPDATE offerings SET created_at = 'garbage' WHERE id = ?`, "off-1")
			require.NoError(t, err)

			_, err = store.GetOffering(ctx, "off-1")
			require.Error(t, err)
			assert.False(t, roster.IsNotFound(err))

			_, err = store.ListOfferings(ctx)
			assert.Error(t, err)
		})
	}
}
