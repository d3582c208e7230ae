package telegram

import (
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Conte777/linkbot/internal/domain/bot/dto"
)

// parseChatID turns a configured chat reference into a Bot API chat id:
// numeric ids become int64, usernames get a leading @
func parseChatID(ref string) any {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id
	}
	if strings.HasPrefix(ref, "@") {
		return ref
	}
	return "@" + ref
}

// senderFromUpdate extracts who sent a message update; false for updates
// that are not user messages (channel posts, edits, callbacks)
func senderFromUpdate(update *models.Update) (dto.Sender, bool) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return dto.Sender{}, false
	}

	msg := update.Message
	return dto.Sender{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
	}, true
}

// commandName returns the bot command a message starts with, without the
// slash and any @botname suffix; "" when the message is not a command
func commandName(msg *models.Message) string {
	if msg == nil || !strings.HasPrefix(msg.Text, "/") {
		return ""
	}

	word := strings.Fields(msg.Text)[0]
	word = strings.TrimPrefix(word, "/")
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	return strings.ToLower(word)
}

// isPlainText matches user messages that are not commands
func isPlainText(update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}
	return commandName(update.Message) == ""
}
