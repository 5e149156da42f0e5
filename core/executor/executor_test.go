package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// concurrencyProbe records the highest number of simultaneous callers.
type concurrencyProbe struct {
	current atomic.Int64
	peak    atomic.Int64
}

func (p *concurrencyProbe) enter() {
	n := p.current.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			return
		}
	}
}

func (p *concurrencyProbe) leave() {
	p.current.Add(-1)
}

func TestNew_ClampsLimit(t *testing.T) {
	e := New("test", 0, nil)
	assert.Equal(t, 1, e.Limit())
	assert.Equal(t, "test", e.Name())
}

func TestExecute_ReleasesSlotOnFailureAndPanic(t *testing.T) {
	e := New("test", 1, zap.NewNop())
	ctx := context.Background()

	err := e.Execute(ctx, func(ctx context.Context) error {
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	err = e.Execute(ctx, func(ctx context.Context) error {
		panic("kaboom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")

	// The single slot must be free again.
	done := make(chan struct{})
	go func() {
		_ = e.Execute(ctx, func(ctx context.Context) error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("slot was not released")
	}
}

func TestExecute_CancelledWhileWaiting(t *testing.T) {
	e := New("test", 1, zap.NewNop())
	hold := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = e.Execute(context.Background(), func(ctx context.Context) error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Execute(ctx, func(ctx context.Context) error {
		t.Fatal("op must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	close(hold)
}

func TestMap_BoundsConcurrencyAndKeepsOrder(t *testing.T) {
	e := New("test", 3, zap.NewNop())
	probe := &concurrencyProbe{}

	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	var mu sync.Mutex
	var progressCalls []int
	results, err := Map(context.Background(), e, items, func(ctx context.Context, n int) (int, error) {
		probe.enter()
		defer probe.leave()
		time.Sleep(5 * time.Millisecond)
		return n * n, nil
	}, func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 20, total)
		progressCalls = append(progressCalls, completed)
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, probe.peak.Load(), int64(3))
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
	assert.Len(t, progressCalls, 20)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, progressCalls)
}

func TestMap_PropagatesFirstError(t *testing.T) {
	e := New("test", 2, zap.NewNop())
	_, err := Map(context.Background(), e, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("item 2 failed")
		}
		return n, nil
	}, nil)
	assert.EqualError(t, err, "item 2 failed")
}

func TestMapSafe_ConvertsFailuresToMissingResults(t *testing.T) {
	e := New("test", 2, zap.NewNop())
	outcomes := MapSafe(context.Background(), e, []string{"a", "b", "c"}, func(ctx context.Context, s string) (string, error) {
		switch s {
		case "b":
			return "", errors.New("b failed")
		case "c":
			panic("c exploded")
		}
		return s + "!", nil
	}, nil)

	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].OK())
	assert.Equal(t, "a!", outcomes[0].Value)
	assert.False(t, outcomes[1].OK())
	assert.Empty(t, outcomes[1].Value)
	assert.False(t, outcomes[2].OK())
	assert.Contains(t, outcomes[2].Err.Error(), "c exploded")
}

func TestMapSafe_Cancellation(t *testing.T) {
	e := New("test", 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	var ran atomic.Int64
	outcomes := MapSafe(ctx, e, []int{1, 2, 3, 4}, func(ctx context.Context, n int) (int, error) {
		ran.Add(1)
		cancel()
		<-ctx.Done()
		return 0, ctx.Err()
	}, nil)

	assert.Equal(t, int64(1), ran.Load())
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}
