package buissines

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/consts"
	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
)

// Trigger is the action a gated user should retry after joining
type Trigger int

const (
	TriggerStart Trigger = iota
	TriggerLink
)

// memberStatuses are the chat member statuses that pass the gate
var memberStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
	"owner":         true,
}

// Gate checks that a user belongs to the required channel
type Gate struct {
	channel    string
	inviteLink string
	messenger  deps.Messenger
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewGate creates a subscription gate for cfg.Channel
func NewGate(cfg *config.GateConfig, m *metrics.Metrics, logger zerolog.Logger) *Gate {
	return &Gate{
		channel:    cfg.Channel,
		inviteLink: cfg.InviteLink,
		metrics:    m,
		logger:     logger,
	}
}

// SetMessenger sets the messaging gateway after construction
func (g *Gate) SetMessenger(m deps.Messenger) {
	g.messenger = m
}

// IsMember reports whether userID may use the bot. Lookup failures deny access.
func (g *Gate) IsMember(ctx context.Context, userID int64) bool {
	if g.messenger == nil {
		g.logger.Error().Int64("user_id", userID).Msg("Messenger is not set, denying access")
		g.metrics.GateDenial()
		return false
	}

	status, err := g.messenger.ChatMemberStatus(ctx, g.channel, userID)
	if err != nil {
		g.logger.Warn().Err(err).
			Int64("user_id", userID).
			Str("channel", g.channel).
			Msg("Membership lookup failed, denying access")
		g.metrics.GateDenial()
		return false
	}

	if !memberStatuses[status] {
		g.logger.Debug().
			Int64("user_id", userID).
			Str("status", status).
			Msg("User is not a channel member")
		g.metrics.GateDenial()
		return false
	}

	return true
}

// JoinPrompt builds the join affordance shown to a denied user
func (g *Gate) JoinPrompt(chatID int64, trigger Trigger) *entities.OutgoingMessage {
	retry := consts.MsgJoinRetryLink
	if trigger == TriggerStart {
		retry = consts.MsgJoinRetryStart
	}

	url := g.JoinURL()
	msg := &entities.OutgoingMessage{ChatID: chatID}
	if url == "" {
		msg.Text = fmt.Sprintf(consts.MsgJoinPrompt, g.channel, retry)
		return msg
	}

	msg.Text = fmt.Sprintf(consts.MsgJoinPrompt, url, retry)
	msg.Button = &entities.URLButton{Text: consts.MsgJoinButton, URL: url}
	return msg
}

// JoinURL returns the invite link when configured, otherwise the public
// t.me link of a username channel. Numeric channels without an invite link
// have no URL.
func (g *Gate) JoinURL() string {
	if g.inviteLink != "" {
		return g.inviteLink
	}
	if _, err := strconv.ParseInt(g.channel, 10, 64); err == nil {
		return ""
	}
	return "https://t.me/" + strings.TrimPrefix(g.channel, "@")
}
