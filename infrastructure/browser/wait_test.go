package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"quote_automation/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visibleAfter(d time.Duration) func() (bool, error) {
	start := time.Now()
	return func() (bool, error) {
		return time.Since(start) >= d, nil
	}
}

func TestPollUntil_VisibleBeforeTimeout(t *testing.T) {
	const timeout = 300 * time.Millisecond
	const epsilon = 100 * time.Millisecond

	err := pollUntil(context.Background(), timeout, 10*time.Millisecond, visibleAfter(timeout-epsilon))
	require.NoError(t, err)
}

func TestPollUntil_VisibleAfterTimeout(t *testing.T) {
	const timeout = 200 * time.Millisecond
	const epsilon = 150 * time.Millisecond

	start := time.Now()
	err := pollUntil(context.Background(), timeout, 10*time.Millisecond, visibleAfter(timeout+epsilon))
	require.ErrorIs(t, err, entities.ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
	assert.Less(t, time.Since(start), timeout+epsilon)
}

func TestPollUntil_ImmediateConditionChecksOnce(t *testing.T) {
	calls := 0
	err := pollUntil(context.Background(), 0, time.Hour, func() (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPollUntil_ConditionError(t *testing.T) {
	boom := errors.New("detached")
	err := pollUntil(context.Background(), time.Second, 10*time.Millisecond, func() (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPollUntil_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := pollUntil(ctx, time.Minute, 10*time.Millisecond, func() (bool, error) { return false, nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutError(t *testing.T) {
	err := timeoutError(entities.CSS("#x"), time.Second, entities.ErrTimeout)
	var te *entities.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "#x", te.Selector)
	assert.ErrorIs(t, err, entities.ErrTimeout)
}

func TestSleepCtx(t *testing.T) {
	require.NoError(t, sleepCtx(context.Background(), 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}
