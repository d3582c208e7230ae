package buissines

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/consts"
)

func TestGate_IsMember(t *testing.T) {
	tests := []struct {
		status string
		err    error
		want   bool
	}{
		{status: "member", want: true},
		{status: "administrator", want: true},
		{status: "creator", want: true},
		{status: "owner", want: true},
		{status: "restricted", want: false},
		{status: "left", want: false},
		{status: "kicked", want: false},
		{status: "", err: errors.New("Bad Request: user not found"), want: false},
		{status: "member", err: errors.New("context deadline exceeded"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			var gotChannel string
			m := &mockMessenger{MemberStatusFn: func(channel string, _ int64) (string, error) {
				gotChannel = channel
				return tt.status, tt.err
			}}
			g := NewGate(&config.GateConfig{Channel: "@news"}, nil, zerolog.Nop())
			g.SetMessenger(m)

			assert.Equal(t, tt.want, g.IsMember(context.Background(), 42))
			assert.Equal(t, "@news", gotChannel)
		})
	}
}

func TestGate_IsMemberWithoutMessenger(t *testing.T) {
	g := NewGate(&config.GateConfig{Channel: "news"}, nil, zerolog.Nop())
	assert.False(t, g.IsMember(context.Background(), 42))
}

func TestGate_JoinURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GateConfig
		want string
	}{
		{"username", config.GateConfig{Channel: "news"}, "https://t.me/news"},
		{"at username", config.GateConfig{Channel: "@news"}, "https://t.me/news"},
		{"numeric with invite", config.GateConfig{Channel: "-1001234", InviteLink: "https://t.me/+abc"}, "https://t.me/+abc"},
		{"numeric without invite", config.GateConfig{Channel: "-1001234"}, ""},
		{"invite overrides username", config.GateConfig{Channel: "news", InviteLink: "https://t.me/+abc"}, "https://t.me/+abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(&tt.cfg, nil, zerolog.Nop())
			assert.Equal(t, tt.want, g.JoinURL())
		})
	}
}

func TestGate_JoinPrompt(t *testing.T) {
	g := NewGate(&config.GateConfig{Channel: "news"}, nil, zerolog.Nop())

	start := g.JoinPrompt(7, TriggerStart)
	assert.Equal(t, int64(7), start.ChatID)
	assert.Equal(t, "🔒 To use this bot, you must join our channel first:\n\n👉 https://t.me/news\n\nAfter joining, press /start.", start.Text)
	assert.Equal(t, consts.MsgJoinButton, start.Button.Text)
	assert.Equal(t, "https://t.me/news", start.Button.URL)
	assert.False(t, start.HTML)

	link := g.JoinPrompt(7, TriggerLink)
	assert.Contains(t, link.Text, consts.MsgJoinRetryLink)

	numeric := NewGate(&config.GateConfig{Channel: "-1001234"}, nil, zerolog.Nop()).JoinPrompt(7, TriggerStart)
	assert.Nil(t, numeric.Button)
	assert.Contains(t, numeric.Text, "-1001234")
}
