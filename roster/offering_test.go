package roster

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() NewOfferingInput {
	return NewOfferingInput{
		Title:            "Go for backend engineers",
		Description:      "Three days of idiomatic Go",
		Mode:             ModeHybrid,
		MaxStudents:      20,
		WaitlistCapacity: 5,
	}
}

// =============================================================================
// INPUT VALIDATION TESTS
// =============================================================================

func TestNewOfferingInput_Validate_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *NewOfferingInput)
		want   error
	}{
		{"valid", func(*NewOfferingInput) {}, nil},
		{"title at limit", func(in *NewOfferingInput) { in.Title = strings.Repeat("t", MaxTitleLength) }, nil},
		{"title too long", func(in *NewOfferingInput) { in.Title = strings.Repeat("t", MaxTitleLength+1) }, ErrFieldTooLong},
		{"description too long", func(in *NewOfferingInput) { in.Description = strings.Repeat("d", MaxDescriptionLength+1) }, ErrFieldTooLong},
		{"capacity at limit", func(in *NewOfferingInput) { in.MaxStudents = MaxOfferingCapacity }, nil},
		{"capacity exceeded", func(in *NewOfferingInput) { in.MaxStudents = MaxOfferingCapacity + 1 }, ErrCapacityExceeded},
		{"waitlist at limit", func(in *NewOfferingInput) { in.WaitlistCapacity = MaxWaitlistCapacity }, nil},
		{"waitlist too large", func(in *NewOfferingInput) { in.WaitlistCapacity = MaxWaitlistCapacity + 1 }, ErrWaitlistTooLarge},
		{"negative capacity", func(in *NewOfferingInput) { in.MaxStudents = -1 }, ErrInvalidCapacity},
		{"zero capacity allowed", func(in *NewOfferingInput) { in.MaxStudents = 0; in.WaitlistCapacity = 0 }, nil},
		{"unknown mode", func(in *NewOfferingInput) { in.Mode = "carrier_pigeon" }, ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewOfferingInput_Validate_TitleReportedBeforeCapacity(t *testing.T) {
	// GIVEN: Both the title and the capacity are out of bounds
	// WHEN: Validating
	// THEN: The title error wins and names the field

	in := validInput()
	in.Title = strings.Repeat("t", MaxTitleLength+1)
	in.MaxStudents = 500

	err := in.Validate()

	var fieldErr *FieldTooLongError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "title", fieldErr.Field)
	assert.Equal(t, MaxTitleLength+1, fieldErr.Length)
	assert.Equal(t, MaxTitleLength, fieldErr.Max)
}

// =============================================================================
// PREDICATE TESTS
// =============================================================================

func TestOffering_CanEnroll(t *testing.T) {
	o := Offering{MaxStudents: 2, CurrentStudents: 1, Status: OfferingActive}
	assert.True(t, o.CanEnroll())

	o.CurrentStudents = 2
	assert.False(t, o.CanEnroll(), "no seat left")

	o.CurrentStudents = 0
	o.Status = OfferingCancelled
	assert.False(t, o.CanEnroll(), "inactive offering")

	o.Status = OfferingFull
	assert.False(t, o.CanEnroll(), "full status closes enrollment even with free seats")
}

func TestOffering_CanJoinWaitlist_OnlyWhenSeatsExhausted(t *testing.T) {
	// GIVEN: An active offering with room in the queue
	// WHEN: Seats remain
	// THEN: Joining the waitlist is refused until every seat is taken

	o := Offering{MaxStudents: 2, WaitlistCapacity: 1, CurrentStudents: 1, Status: OfferingActive}
	assert.False(t, o.CanJoinWaitlist())

	o.CurrentStudents = 2
	assert.True(t, o.CanJoinWaitlist())

	o.CurrentWaitlisted = 1
	assert.False(t, o.CanJoinWaitlist(), "queue full")
}

func TestOffering_CanJoinWaitlist_ZeroSeats(t *testing.T) {
	o := Offering{MaxStudents: 0, WaitlistCapacity: 3, Status: OfferingActive}
	assert.False(t, o.CanEnroll())
	assert.True(t, o.CanJoinWaitlist())
}

func TestOffering_Utilization(t *testing.T) {
	o := Offering{MaxStudents: 3, CurrentStudents: 1}
	assert.True(t, decimal.RequireFromString("0.3333").Equal(o.Utilization()), "got %s", o.Utilization())

	o.CurrentStudents = 3
	assert.True(t, decimal.NewFromInt(1).Equal(o.Utilization()))

	assert.True(t, decimal.Zero.Equal(Offering{}.Utilization()))
}

// =============================================================================
// CHECKED COUNTER TESTS
// =============================================================================

func TestOffering_CheckedCounters(t *testing.T) {
	o := Offering{ID: "off-1"}

	require.NoError(t, o.incStudents())
	require.NoError(t, o.incWaitlisted())
	assert.Equal(t, uint8(1), o.CurrentStudents)
	assert.Equal(t, uint8(1), o.CurrentWaitlisted)

	require.NoError(t, o.decWaitlisted())
	err := o.decWaitlisted()
	assert.ErrorIs(t, err, ErrUnderflow)
	assert.Equal(t, uint8(0), o.CurrentWaitlisted, "failed decrement leaves the counter untouched")

	var counterErr *CounterError
	require.ErrorAs(t, err, &counterErr)
	assert.Equal(t, "current_waitlisted", counterErr.Counter)
	assert.Equal(t, OfferingID("off-1"), counterErr.OfferingID)
}

func TestOffering_CheckedCounters_Overflow(t *testing.T) {
	o := Offering{CurrentStudents: math.MaxUint8}

	err := o.incStudents()

	assert.ErrorIs(t, err, ErrOverflow)
	assert.True(t, IsInvariantViolation(err))
	assert.Equal(t, uint8(math.MaxUint8), o.CurrentStudents)
}

// =============================================================================
// STATUS TRANSITION TESTS
// =============================================================================

func TestOffering_CanTransitionTo(t *testing.T) {
	active := Offering{Status: OfferingActive}
	assert.True(t, active.CanTransitionTo(OfferingFull))
	assert.True(t, active.CanTransitionTo(OfferingCancelled))
	assert.True(t, active.CanTransitionTo(OfferingCompleted))
	assert.False(t, active.CanTransitionTo(OfferingActive))

	full := Offering{Status: OfferingFull}
	assert.True(t, full.CanTransitionTo(OfferingActive))

	for _, terminal := range []OfferingStatus{OfferingCancelled, OfferingCompleted} {
		o := Offering{Status: terminal}
		assert.False(t, o.CanTransitionTo(OfferingActive), "%s is terminal", terminal)
	}
}

func TestCheckIdentity(t *testing.T) {
	assert.ErrorIs(t, checkIdentity(""), ErrInvalidIdentity)
	assert.NoError(t, checkIdentity(Identity(strings.Repeat("k", MaxIdentityLength))))
	assert.ErrorIs(t, checkIdentity(Identity(strings.Repeat("k", MaxIdentityLength+1))), ErrFieldTooLong)
}
