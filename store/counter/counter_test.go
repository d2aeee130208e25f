package counter

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/formation-engine/roster"
)

func TestRedis_Next(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	seq := NewRedis(db)
	ctx := context.Background()

	mock.ExpectIncr("program:count:offering").SetVal(1)
	mock.ExpectIncr("program:count:offering").SetVal(2)

	first, err := seq.Next(ctx, roster.CounterOfferings)
	require.NoError(t, err)
	second, err := seq.Next(ctx, roster.CounterOfferings)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Current(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	seq := NewRedis(db)
	ctx := context.Background()

	mock.ExpectGet("program:count:session").RedisNil()
	mock.ExpectGet("program:count:attendance").SetVal("42")

	n, err := seq.Current(ctx, roster.CounterSessions)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n, "missing key reads as zero")

	n, err = seq.Current(ctx, roster.CounterAttendance)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	seq := NewRedis(db)
	ctx := context.Background()

	mock.ExpectIncr("program:count:request").SetErr(errors.New("connection refused"))
	mock.ExpectGet("program:count:request").SetVal("not-a-number")

	_, err := seq.Next(ctx, roster.CounterRequests)
	assert.ErrorContains(t, err, "connection refused")

	_, err = seq.Current(ctx, roster.CounterRequests)
	assert.Error(t, err)
}

func TestMemory_Sequencer(t *testing.T) {
	seq := NewMemory()
	ctx := context.Background()

	n, err := seq.Current(ctx, roster.CounterSessions)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	for i := 0; i < 3; i++ {
		_, err := seq.Next(ctx, roster.CounterSessions)
		require.NoError(t, err)
	}

	n, err = seq.Current(ctx, roster.CounterSessions)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}
