package buissines

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/consts"
	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	boterrors "github.com/Conte777/linkbot/internal/domain/bot/errors"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
)

// Broadcaster is the administrator broadcast state machine.
// Sessions are keyed by chat id; a missing entry is Idle.
type Broadcaster struct {
	mu       sync.Mutex
	sessions map[int64]entities.BroadcastState

	adminID   int64
	workers   int
	limiter   *rate.Limiter
	registry  deps.UserRegistry
	messenger deps.Messenger
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time

	// ctx outlives single updates and ends at shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// sendTimeout bounds a single broadcast send
const sendTimeout = 30 * time.Second

// NewBroadcaster creates a broadcast state machine for the configured administrator
func NewBroadcaster(
	admin *config.AdminConfig,
	cfg *config.BroadcastConfig,
	registry deps.UserRegistry,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Broadcaster {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Broadcaster{
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[int64]entities.BroadcastState),
		adminID:  admin.UserID,
		workers:  workers,
		limiter:  rate.NewLimiter(limit, workers),
		registry: registry,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// SetMessenger sets the messaging gateway after construction
func (b *Broadcaster) SetMessenger(m deps.Messenger) {
	b.messenger = m
}

// Stop aborts running fan-outs; recipients not yet reached are reported
// as skipped
func (b *Broadcaster) Stop() {
	b.cancel()
}

// IsAdmin reports whether userID is the configured administrator.
// With no administrator configured nobody is.
func (b *Broadcaster) IsAdmin(userID int64) bool {
	return b.adminID != 0 && userID == b.adminID
}

// State returns the session state of chatID
func (b *Broadcaster) State(chatID int64) entities.BroadcastState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

// Awaiting reports whether chatID's next message is the broadcast body
func (b *Broadcaster) Awaiting(chatID int64) bool {
	return b.State(chatID) == entities.BroadcastAwaitingMessage
}

// Begin moves the issuer's session to AwaitingMessage and returns the prompt.
// Re-entry restarts the wait.
func (b *Broadcaster) Begin(issuerID, chatID int64) (string, error) {
	if !b.IsAdmin(issuerID) {
		return "", boterrors.ErrNotAdministrator
	}

	b.mu.Lock()
	b.sessions[chatID] = entities.BroadcastAwaitingMessage
	b.mu.Unlock()

	b.logger.Info().Int64("chat_id", chatID).Msg("Broadcast session awaiting message")

	return consts.MsgBroadcastPrompt, nil
}

// Cancel returns the issuer's session to Idle
func (b *Broadcaster) Cancel(issuerID, chatID int64) (string, error) {
	if !b.IsAdmin(issuerID) {
		return "", boterrors.ErrNotAdministrator
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessions[chatID] != entities.BroadcastAwaitingMessage {
		return consts.MsgNothingToCancel, nil
	}
	delete(b.sessions, chatID)

	b.logger.Info().Int64("chat_id", chatID).Msg("Broadcast session cancelled")

	return consts.MsgBroadcastCancel, nil
}

// Deliver consumes the awaiting session of chatID and sends text to every
// registered user. Empty text leaves the session awaiting.
// The fan-out is bounded by Stop, not by ctx, so a broadcast to a large
// registry is not cut short by the caller's deadline.
func (b *Broadcaster) Deliver(ctx context.Context, chatID int64, text string) (*entities.BroadcastReport, error) {
	if b.messenger == nil {
		return nil, boterrors.ErrSenderNotSet
	}

	b.mu.Lock()
	if b.sessions[chatID] != entities.BroadcastAwaitingMessage {
		b.mu.Unlock()
		return nil, boterrors.ErrNotAwaiting
	}
	if strings.TrimSpace(text) == "" {
		b.mu.Unlock()
		return nil, boterrors.ErrEmptyBroadcast
	}
	delete(b.sessions, chatID)
	b.mu.Unlock()

	recipients := b.registry.All(ctx)
	report := &entities.BroadcastReport{
		ID:        uuid.NewString(),
		Total:     len(recipients),
		StartedAt: b.now(),
	}

	log := b.logger.With().
		Str("broadcast_id", report.ID).
		Int("recipients", report.Total).
		Logger()
	log.Info().Msg("Broadcast started")

	var sent, failed atomic.Int64
	skipped := 0
	sem := make(chan struct{}, b.workers)
	var wg sync.WaitGroup

	for _, userID := range recipients {
		if err := b.limiter.Wait(b.ctx); err != nil {
			skipped++
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			sendCtx, cancel := context.WithTimeout(b.ctx, sendTimeout)
			defer cancel()

			_, err := b.messenger.Send(sendCtx, &entities.OutgoingMessage{ChatID: userID, Text: text})
			b.metrics.BroadcastSend(err == nil)
			if err != nil {
				failed.Add(1)
				log.Warn().Err(err).Int64("user_id", userID).Msg("Broadcast delivery failed")
				return
			}
			sent.Add(1)
		}(userID)
	}
	wg.Wait()

	report.Sent = int(sent.Load())
	report.Failed = int(failed.Load())
	report.Skipped = skipped
	report.FinishedAt = b.now()

	log.Info().
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Broadcast finished")

	return report, nil
}
