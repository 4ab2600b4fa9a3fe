package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(3, 10*time.Second, 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow())
		b.RecordFailure()
	}

	require.Equal(t, CircuitStateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker(1, 5*time.Second, 1)
	b.clock = func() time.Time { return current }

	require.NoError(t, b.Allow())
	b.RecordFailure()
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	current = current.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	b.RecordSuccess()
	require.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker(1, 5*time.Second, 1)
	b.clock = func() time.Time { return current }

	require.NoError(t, b.Allow())
	b.RecordFailure()

	current = current.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	b.RecordFailure()

	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_ProbeBudgetLimitsHalfOpen(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker(1, 5*time.Second, 2)
	b.clock = func() time.Time { return current }

	require.NoError(t, b.Allow())
	b.RecordFailure()

	current = current.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	require.NoError(t, b.Allow())
	// Third probe exceeds the budget while the first two are in flight.
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	b.RecordSuccess()
	b.RecordSuccess()
	require.Equal(t, CircuitStateClosed, b.State())
}

func TestSingleFlight_SharesResult(t *testing.T) {
	var g SingleFlight
	calls := 0

	value, err, _ := g.Do("key", func() (any, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, value)
	require.Equal(t, 1, calls)
}

func TestSingleFlight_ConcurrentCallersDeduplicate(t *testing.T) {
	var g SingleFlight
	var calls int
	started := make(chan struct{})
	release := make(chan struct{})

	leaderDone := make(chan struct{})
	go func() {
		defer close(leaderDone)
		_, _, _ = g.Do("roster", func() (any, error) {
			calls++
			close(started)
			<-release
			return "snapshot", nil
		})
	}()

	<-started

	var wg sync.WaitGroup
	shared := make([]bool, 4)
	for i := range shared {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err, wasShared := g.Do("roster", func() (any, error) {
				calls++
				return nil, nil
			})
			require.NoError(t, err)
			require.Equal(t, "snapshot", value)
			shared[i] = wasShared
		}(i)
	}

	// Give the followers time to join the in-flight call before the leader
	// is released.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	<-leaderDone

	require.Equal(t, 1, calls)
	for _, wasShared := range shared {
		require.True(t, wasShared)
	}
}
