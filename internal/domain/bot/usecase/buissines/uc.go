// Package buissines contains business logic for the bot domain
package buissines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/consts"
	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/dto"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	boterrors "github.com/Conte777/linkbot/internal/domain/bot/errors"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
)

// Params holds UseCase dependencies
type Params struct {
	fx.In

	Gate        *Gate
	Broadcaster *Broadcaster
	Audit       *AuditMirror
	Registry    deps.UserRegistry
	Resolver    deps.LinkResolver
	Scheduler   deps.DeletionScheduler
	Delivery    *config.DeliveryConfig
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

// UseCase routes inbound messages through the gate, the resolver and the
// broadcast state machine
type UseCase struct {
	gate        *Gate
	broadcaster *Broadcaster
	audit       *AuditMirror
	registry    deps.UserRegistry
	resolver    deps.LinkResolver
	scheduler   deps.DeletionScheduler
	deleteAfter time.Duration
	sender      deps.Messenger
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	background sync.WaitGroup
}

// NewUseCase creates a new UseCase instance
// Note: sender is not passed here to break cyclic dependency
// Use SetSender after creating Telegram handlers
func NewUseCase(p Params) *UseCase {
	return &UseCase{
		gate:        p.Gate,
		broadcaster: p.Broadcaster,
		audit:       p.Audit,
		registry:    p.Registry,
		resolver:    p.Resolver,
		scheduler:   p.Scheduler,
		deleteAfter: p.Delivery.DeleteAfter,
		metrics:     p.Metrics,
		logger:      p.Logger,
	}
}

// SetSender sets the Messenger after construction
// This is called by fx.Invoke to resolve cyclic dependency
func (uc *UseCase) SetSender(sender deps.Messenger) {
	uc.sender = sender
	uc.gate.SetMessenger(sender)
	uc.broadcaster.SetMessenger(sender)
	uc.audit.SetMessenger(sender)
}

// Wait blocks until background registrations and audit events finish
func (uc *UseCase) Wait() {
	uc.background.Wait()
	uc.audit.Wait()
}

// HandleStart handles /start command
func (uc *UseCase) HandleStart(ctx context.Context, req *dto.StartCommandRequest) error {
	uc.logger.Info().
		Int64("user_id", req.UserID).
		Str("username", req.Username).
		Msg("User started bot")

	if !uc.gate.IsMember(ctx, req.UserID) {
		_, err := uc.send(ctx, uc.gate.JoinPrompt(req.ChatID, TriggerStart))
		return err
	}

	inserted := uc.register(ctx, req.Sender)

	if _, err := uc.reply(ctx, req.ChatID, consts.MsgWelcome, false); err != nil {
		return err
	}

	if inserted {
		uc.audit.Record(&entities.AuditEvent{
			Type:      entities.AuditNewUser,
			UserID:    req.UserID,
			Username:  req.Username,
			FirstName: req.FirstName,
			ChatID:    req.ChatID,
		})
	}

	return nil
}

// HandleText handles a plain text message: the pending broadcast body for
// the administrator, a link to resolve for everybody else
func (uc *UseCase) HandleText(ctx context.Context, req *dto.TextMessageRequest) error {
	if uc.broadcaster.IsAdmin(req.UserID) && uc.broadcaster.Awaiting(req.ChatID) {
		return uc.deliverBroadcast(ctx, req)
	}

	return uc.handleLink(ctx, req)
}

// handleLink gates, validates and resolves the link in req
func (uc *UseCase) handleLink(ctx context.Context, req *dto.TextMessageRequest) error {
	link := strings.TrimSpace(req.Text)
	if link == "" {
		return nil
	}

	if !uc.gate.IsMember(ctx, req.UserID) {
		_, err := uc.send(ctx, uc.gate.JoinPrompt(req.ChatID, TriggerLink))
		return err
	}

	uc.registerAsync(ctx, req.Sender)

	if err := uc.resolver.Validate(link); err != nil {
		uc.logger.Debug().Int64("user_id", req.UserID).Msg("Rejected invalid link")
		_, sendErr := uc.reply(ctx, req.ChatID, consts.MsgInvalidLink, false)
		return sendErr
	}

	if noticeID, err := uc.reply(ctx, req.ChatID, consts.MsgFetching, false); err == nil {
		uc.scheduler.Schedule(ctx, req.ChatID, noticeID, uc.deleteAfter)
	}

	result := uc.resolver.Resolve(ctx, link)

	var text string
	ephemeral := false
	if result.OK() {
		text, ephemeral = FormatReply(result, uc.deleteAfter)
	} else {
		uc.logger.Warn().
			Err(resolveError(result)).
			Int64("user_id", req.UserID).
			Str("link", link).
			Msg("Link resolution failed")
		text = FormatFailure(result, uc.broadcaster.IsAdmin(req.UserID))
	}

	replyID, err := uc.reply(ctx, req.ChatID, text, true)
	if err != nil {
		return err
	}

	if ephemeral {
		uc.scheduler.Schedule(ctx, req.ChatID, replyID, uc.deleteAfter)
	}

	uc.audit.Record(&entities.AuditEvent{
		Type:      entities.AuditExchange,
		UserID:    req.UserID,
		Username:  req.Username,
		FirstName: req.FirstName,
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		Link:      link,
		Result:    result.Kind.String(),
		Reply:     text,
	})

	return nil
}

// HandleUsers handles /users command
func (uc *UseCase) HandleUsers(ctx context.Context, req *dto.AdminCommandRequest) error {
	if !uc.broadcaster.IsAdmin(req.UserID) {
		return uc.denyAdmin(ctx, req)
	}

	_, err := uc.reply(ctx, req.ChatID, fmt.Sprintf(consts.MsgUserCount, uc.registry.Count(ctx)), false)
	return err
}

// HandleBroadcast handles /broadcast command
func (uc *UseCase) HandleBroadcast(ctx context.Context, req *dto.AdminCommandRequest) error {
	prompt, err := uc.broadcaster.Begin(req.UserID, req.ChatID)
	if err != nil {
		return uc.denyAdmin(ctx, req)
	}

	_, err = uc.reply(ctx, req.ChatID, prompt, false)
	return err
}

// HandleCancel handles /cancel command
func (uc *UseCase) HandleCancel(ctx context.Context, req *dto.AdminCommandRequest) error {
	text, err := uc.broadcaster.Cancel(req.UserID, req.ChatID)
	if err != nil {
		return uc.denyAdmin(ctx, req)
	}

	_, err = uc.reply(ctx, req.ChatID, text, false)
	return err
}

// HandleHelp handles /help command. Administrator commands are listed only
// to the administrator.
func (uc *UseCase) HandleHelp(ctx context.Context, req *dto.StartCommandRequest) error {
	admin := uc.broadcaster.IsAdmin(req.UserID)

	lines := []string{consts.MsgHelpHeader}
	for _, cmd := range consts.AllCommands {
		if cmd.AdminOnly && !admin {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s - %s", cmd.Slash(), cmd.Description))
	}

	_, err := uc.reply(ctx, req.ChatID, strings.Join(lines, "\n"), true)
	return err
}

func (uc *UseCase) deliverBroadcast(ctx context.Context, req *dto.TextMessageRequest) error {
	report, err := uc.broadcaster.Deliver(ctx, req.ChatID, req.Text)
	switch {
	case errors.Is(err, boterrors.ErrNotAwaiting):
		// another message consumed the session first
		return uc.handleLink(ctx, req)
	case errors.Is(err, boterrors.ErrEmptyBroadcast):
		_, sendErr := uc.reply(ctx, req.ChatID, consts.MsgBroadcastEmpty, false)
		return sendErr
	case err != nil:
		uc.logger.Error().Err(err).Int64("chat_id", req.ChatID).Msg("Broadcast failed")
		_, _ = uc.reply(ctx, req.ChatID, consts.MsgInternalError, false)
		return err
	}

	// the fan-out may outlast the update deadline
	_, err = uc.reply(context.WithoutCancel(ctx), req.ChatID, fmt.Sprintf(consts.MsgBroadcastDone, report.Sent, report.Total), false)
	return err
}

// resolveError describes a failed resolution for logs
func resolveError(res *entities.ResolutionResult) error {
	if res.StatusCode != 0 {
		return fmt.Errorf("%w: %s (status %d)", boterrors.ErrResolveFailed, res.Kind, res.StatusCode)
	}
	return fmt.Errorf("%w: %s", boterrors.ErrResolveFailed, res.Kind)
}

func (uc *UseCase) denyAdmin(ctx context.Context, req *dto.AdminCommandRequest) error {
	uc.logger.Warn().
		Int64("user_id", req.UserID).
		Str("username", req.Username).
		Msg("Non-administrator used an administrator command")

	_, err := uc.reply(ctx, req.ChatID, consts.MsgNotAdmin, false)
	return err
}

// register adds the sender to the registry; failures are logged, never returned
func (uc *UseCase) register(ctx context.Context, sender dto.Sender) bool {
	inserted, err := uc.registry.Add(ctx, &entities.User{
		ID:        sender.UserID,
		Username:  sender.Username,
		FirstName: sender.FirstName,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error().Err(err).Int64("user_id", sender.UserID).Msg("Failed to register user")
		return false
	}

	if inserted {
		uc.metrics.UserRegistered()
		uc.logger.Info().Int64("user_id", sender.UserID).Msg("New user registered")
	}
	return inserted
}

func (uc *UseCase) registerAsync(ctx context.Context, sender dto.Sender) {
	ctx = context.WithoutCancel(ctx)

	uc.background.Add(1)
	go func() {
		defer uc.background.Done()
		uc.register(ctx, sender)
	}()
}

func (uc *UseCase) reply(ctx context.Context, chatID int64, text string, html bool) (int, error) {
	return uc.send(ctx, &entities.OutgoingMessage{ChatID: chatID, Text: text, HTML: html})
}

func (uc *UseCase) send(ctx context.Context, msg *entities.OutgoingMessage) (int, error) {
	if uc.sender == nil {
		return 0, boterrors.ErrSenderNotSet
	}

	id, err := uc.sender.Send(ctx, msg)
	if err != nil {
		uc.logger.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("Failed to send message")
		return 0, fmt.Errorf("%w: %v", boterrors.ErrMessageDeliveryFailed, err)
	}
	return id, nil
}
