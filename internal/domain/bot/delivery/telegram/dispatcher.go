package telegram

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// updateTimeout bounds the handling of a single update
const updateTimeout = 2 * time.Minute

// Dispatcher runs update handlers on their own goroutines, at most `workers`
// at a time, so a slow resolution never stalls other chats
type Dispatcher struct {
	sem     chan struct{}
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  zerolog.Logger
}

// NewDispatcher creates a dispatcher with the given concurrency bound
func NewDispatcher(workers int, logger zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		sem:    make(chan struct{}, workers),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Wrap returns a handler that hands the update to the dispatcher and returns
// once a worker slot is taken
func (d *Dispatcher) Wrap(handler tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(_ context.Context, bot *tgbot.Bot, update *models.Update) {
		d.Go(func(ctx context.Context) {
			handler(ctx, bot, update)
		})
	}
}

// Go runs fn on a worker goroutine, blocking while all workers are busy.
// After Stop, fn is dropped.
func (d *Dispatcher) Go(fn func(ctx context.Context)) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	select {
	case <-d.ctx.Done():
		d.wg.Done()
		return
	case d.sem <- struct{}{}:
	}

	go func() {
		defer d.wg.Done()
		defer func() { <-d.sem }()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("Update handler panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), updateTimeout)
		defer cancel()

		fn(ctx)
	}()
}

// Stop stops accepting updates and waits for in-flight handlers
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.logger.Warn().Msg("Timed out waiting for in-flight updates")
		return ctx.Err()
	}
}
