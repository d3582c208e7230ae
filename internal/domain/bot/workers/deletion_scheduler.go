// Package workers contains background workers for the bot domain
package workers

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
)

// deleteTimeout bounds a single deletion call
const deleteTimeout = 30 * time.Second

// MessageDeleter deletes a sent message
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// DeletionScheduler fires one deletion per scheduled message once its delay
// has elapsed. Implements deps.DeletionScheduler.
type DeletionScheduler struct {
	mu      sync.Mutex
	queue   deletionQueue
	byKey   map[deletionKey]*deletionItem
	deleter MessageDeleter

	store   deps.DeletionStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time

	wake     chan struct{}
	started  atomic.Bool
	inflight sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewDeletionScheduler creates a scheduler. store may be nil, in which case
// pending deletions live in memory only and are lost on restart.
func NewDeletionScheduler(store deps.DeletionStore, m *metrics.Metrics, logger zerolog.Logger) *DeletionScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &DeletionScheduler{
		byKey:   make(map[deletionKey]*deletionItem),
		store:   store,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// SetDeleter sets the messenger after construction
// This is called by fx.Invoke to resolve cyclic dependency
func (s *DeletionScheduler) SetDeleter(d MessageDeleter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleter = d
}

// Schedule queues a deletion of messageID in chatID at now+delay
func (s *DeletionScheduler) Schedule(ctx context.Context, chatID int64, messageID int, delay time.Duration) {
	fireAt := s.now().Add(delay)

	// saved before it is queued, so fire never removes a row ahead of its insert
	if s.store != nil {
		pending := &entities.PendingDeletion{ChatID: chatID, MessageID: messageID, FireAt: fireAt.UTC()}
		if err := s.store.Save(ctx, pending); err != nil {
			s.logger.Warn().Err(err).
				Int64("chat_id", chatID).
				Int("message_id", messageID).
				Msg("Failed to persist pending deletion, keeping it in memory only")
		}
	}

	s.push(deletionKey{chatID: chatID, messageID: messageID}, fireAt)

	s.logger.Debug().
		Int64("chat_id", chatID).
		Int("message_id", messageID).
		Time("fire_at", fireAt).
		Msg("Deletion scheduled")
}

// Pending returns the number of deletions not yet fired
func (s *DeletionScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Start restores persisted deletions and starts the timer loop
func (s *DeletionScheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	s.restore()

	s.logger.Info().Int("pending", s.Pending()).Msg("Starting deletion scheduler...")

	go s.run()
}

// Stop stops the timer loop and waits for in-flight deletions.
// Unfired deletions stay persisted for the next start.
func (s *DeletionScheduler) Stop() error {
	s.logger.Info().Msg("Stopping deletion scheduler...")
	s.cancel()
	if !s.started.Load() {
		return nil
	}
	<-s.done
	s.inflight.Wait()
	s.logger.Info().Int("abandoned", s.Pending()).Msg("Deletion scheduler stopped")
	return nil
}

func (s *DeletionScheduler) restore() {
	if s.store == nil {
		return
	}

	items, err := s.store.List(s.ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to restore pending deletions")
		return
	}

	for _, it := range items {
		s.push(deletionKey{chatID: it.ChatID, messageID: it.MessageID}, it.FireAt)
	}
}

// push adds a deletion, or moves an existing one for the same message
func (s *DeletionScheduler) push(key deletionKey, fireAt time.Time) {
	s.mu.Lock()
	if existing, ok := s.byKey[key]; ok {
		existing.fireAt = fireAt
		heap.Fix(&s.queue, existing.index)
	} else {
		item := &deletionItem{key: key, fireAt: fireAt}
		heap.Push(&s.queue, item)
		s.byKey[key] = item
	}
	pending := s.queue.Len()
	s.mu.Unlock()

	s.metrics.SetPendingDeletions(pending)

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *DeletionScheduler) run() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		due, next := s.popDue()
		for _, item := range due {
			s.inflight.Add(1)
			go s.fire(item)
		}

		wait := time.Hour
		if !next.IsZero() {
			wait = next.Sub(s.now())
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// popDue removes every item whose time has come and returns the next fire time
func (s *DeletionScheduler) popDue() ([]*deletionItem, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var due []*deletionItem
	for s.queue.Len() > 0 && !s.queue[0].fireAt.After(now) {
		item := heap.Pop(&s.queue).(*deletionItem)
		delete(s.byKey, item.key)
		due = append(due, item)
	}

	if len(due) > 0 {
		s.metrics.SetPendingDeletions(s.queue.Len())
	}

	if s.queue.Len() == 0 {
		return due, time.Time{}
	}
	return due, s.queue[0].fireAt
}

// fire makes exactly one deletion attempt; failures are logged, never retried
func (s *DeletionScheduler) fire(item *deletionItem) {
	defer s.inflight.Done()

	s.mu.Lock()
	deleter := s.deleter
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	log := s.logger.With().
		Int64("chat_id", item.key.chatID).
		Int("message_id", item.key.messageID).
		Logger()

	ok := false
	switch {
	case deleter == nil:
		log.Error().Msg("Message deleter is not set, dropping deletion")
	default:
		if err := deleter.DeleteMessage(ctx, item.key.chatID, item.key.messageID); err != nil {
			log.Warn().Err(err).Msg("Scheduled deletion failed")
		} else {
			ok = true
			log.Debug().Msg("Scheduled deletion fired")
		}
	}
	s.metrics.Deletion(ok)

	if s.store != nil {
		if err := s.store.Delete(ctx, item.key.chatID, item.key.messageID); err != nil {
			log.Warn().Err(err).Msg("Failed to remove fired deletion from store")
		}
	}
}
