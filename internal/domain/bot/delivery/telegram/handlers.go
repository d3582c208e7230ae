// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Conte777/linkbot/internal/domain/bot/dto"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	boterrors "github.com/Conte777/linkbot/internal/domain/bot/errors"
	"github.com/Conte777/linkbot/internal/domain/bot/usecase/buissines"
)

// Constants for Telegram API
const (
	MaxMessageLength = 4096
	RequestTimeout   = 30 * time.Second
)

// Handlers contains Telegram update handlers
// Implements deps.Messenger interface
type Handlers struct {
	uc     *buissines.UseCase
	bot    *tgbot.Bot
	logger zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *buissines.UseCase, bot *tgbot.Bot, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		bot:    bot,
		logger: logger,
	}
}

// Send implements deps.Messenger interface
func (h *Handlers) Send(ctx context.Context, msg *entities.OutgoingMessage) (int, error) {
	if msg.Text == "" {
		h.logger.Warn().Int64("chat_id", msg.ChatID).Msg("Attempt to send empty message")
		return 0, boterrors.ErrEmptyMessage
	}

	chatID := any(msg.ChatID)
	if msg.Channel != "" {
		chatID = parseChatID(msg.Channel)
	}

	text := msg.Text
	if len([]rune(text)) > MaxMessageLength {
		text = string([]rune(text)[:MaxMessageLength-1]) + "…"
	}

	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if msg.HTML {
		params.ParseMode = models.ParseModeHTML
	}
	if msg.Button != nil {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: msg.Button.Text, URL: msg.Button.URL}},
			},
		}
	}

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	sent, err := h.bot.SendMessage(msgCtx, params)
	if err != nil {
		handledErr := h.handleSendMessageError(chatID, err)
		h.logMessageSend(chatID, len(text), false, handledErr)
		return 0, handledErr
	}

	h.logMessageSend(chatID, len(text), true, nil)
	return sent.ID, nil
}

// DeleteMessage implements deps.Messenger interface
func (h *Handlers) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	h.logger.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("Deleting message")

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.DeleteMessage(msgCtx, &tgbot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

// ForwardMessage implements deps.Messenger interface
func (h *Handlers) ForwardMessage(ctx context.Context, toChat string, fromChatID int64, messageID int) error {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.ForwardMessage(msgCtx, &tgbot.ForwardMessageParams{
		ChatID:     parseChatID(toChat),
		FromChatID: fromChatID,
		MessageID:  messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to forward message: %w", err)
	}

	return nil
}

// ChatMemberStatus implements deps.Messenger interface
func (h *Handlers) ChatMemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	member, err := h.bot.GetChatMember(msgCtx, &tgbot.GetChatMemberParams{
		ChatID: parseChatID(channel),
		UserID: userID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat member: %w", err)
	}

	return string(member.Type), nil
}

// HandleStart handles /start command
func (h *Handlers) HandleStart(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	sender, ok := senderFromUpdate(update)
	if !ok {
		return
	}

	h.logCommand(sender.UserID, "/start", "processing")

	if err := h.uc.HandleStart(ctx, &dto.StartCommandRequest{Sender: sender}); err != nil {
		h.logError(sender.UserID, "/start", err)
		return
	}

	h.logCommand(sender.UserID, "/start", "success")
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	sender, ok := senderFromUpdate(update)
	if !ok {
		return
	}

	if err := h.uc.HandleHelp(ctx, &dto.StartCommandRequest{Sender: sender}); err != nil {
		h.logError(sender.UserID, "/help", err)
	}
}

// HandleUsers handles /users command
func (h *Handlers) HandleUsers(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.handleAdmin(ctx, update, "/users", h.uc.HandleUsers)
}

// HandleBroadcast handles /broadcast command
func (h *Handlers) HandleBroadcast(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.handleAdmin(ctx, update, "/broadcast", h.uc.HandleBroadcast)
}

// HandleCancel handles /cancel command
func (h *Handlers) HandleCancel(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.handleAdmin(ctx, update, "/cancel", h.uc.HandleCancel)
}

// HandleText handles plain text messages (links and broadcast bodies)
func (h *Handlers) HandleText(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	sender, ok := senderFromUpdate(update)
	if !ok {
		return
	}

	req := &dto.TextMessageRequest{
		Sender:    sender,
		MessageID: update.Message.ID,
		Text:      update.Message.Text,
	}

	if err := h.uc.HandleText(ctx, req); err != nil {
		h.logError(sender.UserID, "text", err)
	}
}

func (h *Handlers) handleAdmin(
	ctx context.Context,
	update *models.Update,
	command string,
	fn func(context.Context, *dto.AdminCommandRequest) error,
) {
	sender, ok := senderFromUpdate(update)
	if !ok {
		return
	}

	h.logCommand(sender.UserID, command, "processing")

	if err := fn(ctx, &dto.AdminCommandRequest{Sender: sender}); err != nil {
		h.logError(sender.UserID, command, err)
		return
	}

	h.logCommand(sender.UserID, command, "success")
}

func (h *Handlers) handleSendMessageError(chatID any, err error) error {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "Forbidden"):
		h.logger.Warn().Interface("chat_id", chatID).Msg("User blocked the bot or chat not found")
		return fmt.Errorf("user blocked the bot or chat not found: %w", err)

	case strings.Contains(errorMsg, "Bad Request: chat not found"):
		h.logger.Warn().Interface("chat_id", chatID).Msg("Chat not found")
		return fmt.Errorf("chat not found: %w", err)

	case strings.Contains(errorMsg, "Too Many Requests"):
		h.logger.Warn().Interface("chat_id", chatID).Msg("Rate limit exceeded")
		return fmt.Errorf("rate limit exceeded: %w", err)

	default:
		return fmt.Errorf("failed to send message: %w", err)
	}
}

// logMessageSend logs message send result
func (h *Handlers) logMessageSend(chatID any, length int, success bool, err error) {
	logEvent := h.logger.Debug()
	if !success {
		logEvent = h.logger.Warn()
	}

	logEvent.Interface("chat_id", chatID).Int("message_length", length).Bool("success", success)

	if err != nil {
		logEvent.Err(err)
	}

	logEvent.Msg("Message send attempt completed")
}

// logCommand logs successful commands
func (h *Handlers) logCommand(userID int64, command, result string) {
	h.logger.Info().Int64("user_id", userID).Str("command", command).Str("result", result).Msg("Telegram command processed")
}

// logError logs command errors
func (h *Handlers) logError(userID int64, command string, err error) {
	h.logger.Error().Int64("user_id", userID).Str("command", command).Err(err).Msg("Telegram command failed")
}
