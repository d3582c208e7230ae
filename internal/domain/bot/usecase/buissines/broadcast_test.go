package buissines

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	boterrors "github.com/Conte777/linkbot/internal/domain/bot/errors"
)

func newBroadcaster(registry *mockRegistry, cfg config.BroadcastConfig) *Broadcaster {
	return NewBroadcaster(&config.AdminConfig{UserID: adminID}, &cfg, registry, nil, zerolog.Nop())
}

func begin(t *testing.T, b *Broadcaster) {
	t.Helper()
	_, err := b.Begin(adminID, adminID)
	require.NoError(t, err)
}

func TestBroadcaster_Transitions(t *testing.T) {
	b := newBroadcaster(newMockRegistry(), config.BroadcastConfig{Workers: 2})
	b.SetMessenger(&mockMessenger{})

	assert.Equal(t, entities.BroadcastIdle, b.State(adminID))

	_, err := b.Begin(userID, adminID)
	assert.ErrorIs(t, err, boterrors.ErrNotAdministrator)
	assert.Equal(t, entities.BroadcastIdle, b.State(adminID))

	_, err = b.Begin(adminID, adminID)
	require.NoError(t, err)
	assert.Equal(t, entities.BroadcastAwaitingMessage, b.State(adminID))

	_, err = b.Cancel(userID, adminID)
	assert.ErrorIs(t, err, boterrors.ErrNotAdministrator)
	assert.True(t, b.Awaiting(adminID))

	_, err = b.Deliver(context.Background(), adminID, "hello")
	require.NoError(t, err)
	assert.Equal(t, entities.BroadcastIdle, b.State(adminID))
}

func TestBroadcaster_NoAdminConfigured(t *testing.T) {
	b := NewBroadcaster(&config.AdminConfig{}, &config.BroadcastConfig{}, newMockRegistry(), nil, zerolog.Nop())

	assert.False(t, b.IsAdmin(0))
	_, err := b.Begin(0, 0)
	assert.ErrorIs(t, err, boterrors.ErrNotAdministrator)
}

func TestBroadcaster_DeliverCountsFailures(t *testing.T) {
	b := newBroadcaster(newMockRegistry(1, 2, 3), config.BroadcastConfig{Workers: 3})
	b.SetMessenger(&mockMessenger{SendFunc: func(msg *entities.OutgoingMessage) error {
		if msg.ChatID == 2 {
			return errors.New("Forbidden: user is deactivated")
		}
		return nil
	}})

	_, err := b.Begin(adminID, adminID)
	require.NoError(t, err)

	report, err := b.Deliver(context.Background(), adminID, "news")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	assert.False(t, b.Awaiting(adminID))
}

func TestBroadcaster_DeliverBoundsConcurrency(t *testing.T) {
	ids := make([]int64, 40)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	b := newBroadcaster(newMockRegistry(ids...), config.BroadcastConfig{Workers: 4})

	var inflight, peak atomic.Int32
	b.SetMessenger(&mockMessenger{SendFunc: func(*entities.OutgoingMessage) error {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inflight.Add(-1)
		return nil
	}})
	begin(t, b)

	report, err := b.Deliver(context.Background(), adminID, "hi")
	require.NoError(t, err)

	assert.Equal(t, 40, report.Sent)
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestBroadcaster_DeliverIsThrottled(t *testing.T) {
	b := newBroadcaster(newMockRegistry(1, 2, 3, 4, 5, 6), config.BroadcastConfig{Workers: 1, Rate: 50})
	b.SetMessenger(&mockMessenger{})
	begin(t, b)

	started := time.Now()
	report, err := b.Deliver(context.Background(), adminID, "hi")
	require.NoError(t, err)

	assert.Equal(t, 6, report.Sent)
	// burst of 1 then 5 more at 50/s
	assert.GreaterOrEqual(t, time.Since(started), 90*time.Millisecond)
}

func TestBroadcaster_DeliverOutlivesCallerDeadline(t *testing.T) {
	ids := make([]int64, 30)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	b := newBroadcaster(newMockRegistry(ids...), config.BroadcastConfig{Workers: 2, Rate: 100})

	var attempts atomic.Int32
	b.SetMessenger(&mockMessenger{SendFunc: func(*entities.OutgoingMessage) error {
		attempts.Add(1)
		return nil
	}})
	begin(t, b)

	// 30 recipients at 100/s need about 280ms
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	report, err := b.Deliver(ctx, adminID, "hi")
	require.NoError(t, err)

	assert.Equal(t, 30, report.Total)
	assert.Equal(t, report.Total, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, int32(30), attempts.Load())
}

func TestBroadcaster_StopSkipsRemainingRecipients(t *testing.T) {
	b := newBroadcaster(newMockRegistry(1, 2, 3), config.BroadcastConfig{Workers: 1, Rate: 0.001})

	var attempts atomic.Int32
	b.SetMessenger(&mockMessenger{SendFunc: func(*entities.OutgoingMessage) error {
		attempts.Add(1)
		return nil
	}})
	begin(t, b)
	b.Stop()

	report, err := b.Deliver(context.Background(), adminID, "hi")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, int32(0), attempts.Load())
}

func TestBroadcaster_DeliverRequiresAwaitingSession(t *testing.T) {
	b := newBroadcaster(newMockRegistry(1), config.BroadcastConfig{Workers: 1})
	b.SetMessenger(&mockMessenger{})

	_, err := b.Deliver(context.Background(), adminID, "hi")
	assert.ErrorIs(t, err, boterrors.ErrNotAwaiting)
}

func TestBroadcaster_SessionConsumedOnce(t *testing.T) {
	b := newBroadcaster(newMockRegistry(1), config.BroadcastConfig{Workers: 1})
	b.SetMessenger(&mockMessenger{})
	begin(t, b)

	const callers = 8
	var delivered, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Deliver(context.Background(), adminID, "hi")
			if errors.Is(err, boterrors.ErrNotAwaiting) {
				rejected.Add(1)
				return
			}
			if err == nil {
				delivered.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), delivered.Load())
	assert.Equal(t, int32(callers-1), rejected.Load())
}

func TestBroadcaster_EmptyRegistry(t *testing.T) {
	b := newBroadcaster(newMockRegistry(), config.BroadcastConfig{Workers: 2})
	b.SetMessenger(&mockMessenger{})
	begin(t, b)

	report, err := b.Deliver(context.Background(), adminID, "hi")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Sent)
}

func TestBroadcaster_EmptyTextKeepsSession(t *testing.T) {
	b := newBroadcaster(newMockRegistry(1), config.BroadcastConfig{Workers: 1})
	b.SetMessenger(&mockMessenger{})

	_, err := b.Begin(adminID, adminID)
	require.NoError(t, err)

	_, err = b.Deliver(context.Background(), adminID, "   ")
	assert.ErrorIs(t, err, boterrors.ErrEmptyBroadcast)
	assert.True(t, b.Awaiting(adminID))
}
