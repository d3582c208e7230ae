package buissines

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/consts"
	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/dto"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	boterrors "github.com/Conte777/linkbot/internal/domain/bot/errors"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
)

// auditTimeout bounds one event across all sinks
const auditTimeout = 30 * time.Second

// ChannelAuditSink mirrors events into the audit chat
type ChannelAuditSink struct {
	channel   string
	messenger deps.Messenger
}

// NewChannelAuditSink creates a sink posting to cfg.Channel
func NewChannelAuditSink(cfg *config.AuditConfig) *ChannelAuditSink {
	return &ChannelAuditSink{channel: cfg.Channel}
}

// SetMessenger sets the messaging gateway after construction
func (s *ChannelAuditSink) SetMessenger(m deps.Messenger) {
	s.messenger = m
}

// Name implements deps.AuditSink
func (s *ChannelAuditSink) Name() string { return "channel" }

// Publish posts a new-user notice, or forwards the user's message followed
// by the result the user received
func (s *ChannelAuditSink) Publish(ctx context.Context, event *entities.AuditEvent) error {
	if s.messenger == nil {
		return boterrors.ErrSenderNotSet
	}

	name := html.EscapeString(dto.Sender{Username: event.Username, FirstName: event.FirstName}.DisplayName())

	var text string
	switch event.Type {
	case entities.AuditNewUser:
		text = fmt.Sprintf(consts.MsgAuditNewUser, name, event.UserID)
	case entities.AuditExchange:
		if event.MessageID != 0 {
			if err := s.messenger.ForwardMessage(ctx, s.channel, event.ChatID, event.MessageID); err != nil {
				return fmt.Errorf("failed to forward message: %w", err)
			}
		}
		text = fmt.Sprintf(consts.MsgAuditResult, name, event.UserID, html.EscapeString(event.Link), event.Reply)
	default:
		return fmt.Errorf("unknown audit event type %q", event.Type)
	}

	if _, err := s.messenger.Send(ctx, &entities.OutgoingMessage{Channel: s.channel, Text: text, HTML: true}); err != nil {
		return fmt.Errorf("failed to send audit message: %w", err)
	}
	return nil
}

// messengerAware is implemented by sinks that post through the messaging gateway
type messengerAware interface {
	SetMessenger(m deps.Messenger)
}

// AuditMirror fans audit events out to every configured sink off the
// caller's path. Failures are logged and counted, never returned.
type AuditMirror struct {
	sinks   []deps.AuditSink
	timeout time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewAuditMirror creates a mirror over sinks; with no sinks it is a no-op
func NewAuditMirror(sinks []deps.AuditSink, m *metrics.Metrics, logger zerolog.Logger) *AuditMirror {
	return &AuditMirror{
		sinks:   sinks,
		timeout: auditTimeout,
		metrics: m,
		logger:  logger,
	}
}

// SetMessenger passes the messaging gateway to sinks that need it
func (a *AuditMirror) SetMessenger(m deps.Messenger) {
	for _, sink := range a.sinks {
		if ma, ok := sink.(messengerAware); ok {
			ma.SetMessenger(m)
		}
	}
}

// Enabled reports whether any sink is configured
func (a *AuditMirror) Enabled() bool {
	return len(a.sinks) > 0
}

// Record publishes event asynchronously
func (a *AuditMirror) Record(event *entities.AuditEvent) {
	if !a.Enabled() {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.publish(event)
	}()
}

// Wait blocks until every recorded event has been handled
func (a *AuditMirror) Wait() {
	a.wg.Wait()
}

func (a *AuditMirror) publish(event *entities.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	for _, sink := range a.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			a.metrics.AuditFailure(sink.Name())
			a.logger.Warn().Err(err).
				Str("sink", sink.Name()).
				Str("event_id", event.ID).
				Str("type", string(event.Type)).
				Int64("user_id", event.UserID).
				Msg("Audit publish failed")
		}
	}
}
