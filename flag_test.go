package i2cpair

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	now     time.Time
	onSleep func(n int)
	mu      sync.Mutex
	sleeps  int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps++
	n := c.sleeps
	hook := c.onSleep
	c.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return nil
}

func (c *fakeClock) Sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sleeps
}

func TestCompletionFlag_ZeroValueUnset(t *testing.T) {
	t.Parallel()
	var f CompletionFlag
	assert.False(t, f.IsSet())
	f.Set()
	assert.True(t, f.IsSet())
	f.Set()
	assert.True(t, f.IsSet(), "Set is idempotent")
}

func TestWaiter_AlreadySetReturnsWithoutSleeping(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	w := &Waiter{cfg: DefaultWaitConfig(), clock: clk}

	var f CompletionFlag
	f.Set()

	assert.True(t, w.Wait(context.Background(), &f))
	assert.Zero(t, clk.Sleeps(), "a set flag must not cost a poll interval")
}

func TestWaiter_NeverSetTimesOutWithinOnePollInterval(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	w := &Waiter{cfg: DefaultWaitConfig(), clock: clk}
	start := clk.Now()

	var f CompletionFlag
	ok := w.Wait(context.Background(), &f)

	elapsed := clk.Now().Sub(start)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 5000*time.Millisecond)
	assert.Less(t, elapsed, 5100*time.Millisecond)
	assert.Equal(t, 50, clk.Sleeps())
	assert.False(t, f.IsSet(), "Wait must not touch the flag")
}

func TestWaiter_FlagSetMidWait(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	var f CompletionFlag
	clk.onSleep = func(n int) {
		if n == 3 {
			f.Set()
		}
	}
	w := &Waiter{cfg: DefaultWaitConfig(), clock: clk}

	assert.True(t, w.Wait(context.Background(), &f))
	assert.Equal(t, 3, clk.Sleeps())
}

func TestWaiter_FlagSetOnDeadlinePollCounts(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	var f CompletionFlag
	clk.onSleep = func(n int) {
		if n == 50 {
			f.Set()
		}
	}
	w := &Waiter{cfg: DefaultWaitConfig(), clock: clk}

	assert.True(t, w.Wait(context.Background(), &f))
}

func TestWaiter_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var f CompletionFlag
	start := time.Now()
	ok := NewWaiter(DefaultWaitConfig()).Wait(ctx, &f)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitFlag_RealClock(t *testing.T) {
	t.Parallel()

	t.Run("already set", func(t *testing.T) {
		t.Parallel()
		var f CompletionFlag
		f.Set()
		start := time.Now()
		require.True(t, WaitFlag(&f, DefaultWaitConfig()))
		assert.Less(t, time.Since(start), DefaultPollInterval)
	})

	t.Run("times out", func(t *testing.T) {
		t.Parallel()
		cfg := WaitConfig{Timeout: 50 * time.Millisecond, PollInterval: 10 * time.Millisecond}
		var f CompletionFlag
		start := time.Now()
		require.False(t, WaitFlag(&f, cfg))
		assert.GreaterOrEqual(t, time.Since(start), cfg.Timeout)
	})

	t.Run("set from another goroutine", func(t *testing.T) {
		t.Parallel()
		cfg := WaitConfig{Timeout: 5 * time.Second, PollInterval: 5 * time.Millisecond}
		var f CompletionFlag
		go func() {
			time.Sleep(20 * time.Millisecond)
			f.Set()
		}()
		assert.True(t, WaitFlag(&f, cfg))
	})
}
