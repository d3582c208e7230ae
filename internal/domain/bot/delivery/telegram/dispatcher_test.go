package telegram

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_BoundsConcurrency(t *testing.T) {
	d := NewDispatcher(3, zerolog.Nop())

	var inflight, peak, done atomic.Int32
	for i := 0; i < 20; i++ {
		d.Go(func(context.Context) {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			done.Add(1)
		})
	}

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, int32(20), done.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestDispatcher_SlowHandlerDoesNotBlockOthers(t *testing.T) {
	d := NewDispatcher(2, zerolog.Nop())

	release := make(chan struct{})
	d.Go(func(context.Context) { <-release })

	fast := make(chan struct{})
	d.Go(func(context.Context) { close(fast) })

	select {
	case <-fast:
	case <-time.After(time.Second):
		t.Fatal("fast handler was blocked by the slow one")
	}

	close(release)
	require.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())

	d.Go(func(context.Context) { panic("boom") })

	var ran atomic.Bool
	d.Go(func(context.Context) { ran.Store(true) })

	require.NoError(t, d.Stop(context.Background()))
	assert.True(t, ran.Load())
}

func TestDispatcher_HandlerContextOutlivesStop(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())

	started := make(chan struct{})
	var ctxErr atomic.Value
	d.Go(func(ctx context.Context) {
		close(started)
		time.Sleep(20 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			ctxErr.Store(err)
		}
	})

	<-started
	require.NoError(t, d.Stop(context.Background()))
	assert.Nil(t, ctxErr.Load())
}

func TestDispatcher_DropsAfterStop(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	require.NoError(t, d.Stop(context.Background()))

	var ran atomic.Bool
	d.Go(func(context.Context) { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestDispatcher_StopTimesOut(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())

	release := make(chan struct{})
	defer close(release)
	d.Go(func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)
}
