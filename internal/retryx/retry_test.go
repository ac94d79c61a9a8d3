package retryx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = Policy{MaxRetries: 10, Backoff: time.Millisecond}

func TestDo_SucceedsFirstTime(t *testing.T) {
	calls := 0
	retried := 0

	err := Do(context.Background(), fastPolicy, func(ctx context.Context) error {
		calls++
		return nil
	}, func(uint64, uint64, error) { retried++ })

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, retried)
}

func TestDo_RecoversAfterTransientErrors(t *testing.T) {
	calls := 0

	err := Do(context.Background(), fastPolicy, func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("database is locked")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestDo_ExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	var left []uint64

	err := Do(context.Background(), fastPolicy, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("attempt %d", calls)
	}, func(attempt, retriesLeft uint64, err error) {
		left = append(left, retriesLeft)
	})

	require.Error(t, err)
	assert.Equal(t, 11, calls)
	assert.Equal(t, "attempt 11", err.Error())
	assert.Len(t, left, 10)
	assert.Equal(t, uint64(9), left[0])
	assert.Equal(t, uint64(0), left[len(left)-1])
}

func TestDo_LastErrorKeepsIdentity(t *testing.T) {
	sentinel := errors.New("busy")

	err := Do(context.Background(), Policy{MaxRetries: 2, Backoff: time.Millisecond}, func(ctx context.Context) error {
		return sentinel
	}, nil)

	assert.ErrorIs(t, err, sentinel)
}

func TestDo_ZeroRetriesRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, func(ctx context.Context) error {
		calls++
		return errors.New("nope")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, Policy{MaxRetries: 10, Backoff: time.Hour}, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("locked")
	}, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Attempts(t *testing.T) {
	assert.Equal(t, uint64(11), DefaultDeletePolicy.Attempts())
	assert.Equal(t, 500*time.Millisecond, DefaultDeletePolicy.Backoff)
}
