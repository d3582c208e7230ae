// Package dto contains data transfer objects for the bot domain
package dto

// Sender identifies who sent an update and where
type Sender struct {
	UserID    int64  `json:"userId"`
	ChatID    int64  `json:"chatId"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
}

// DisplayName returns @username when known, otherwise the first name
func (s Sender) DisplayName() string {
	if s.Username != "" {
		return "@" + s.Username
	}
	if s.FirstName != "" {
		return s.FirstName
	}
	return "user"
}

// StartCommandRequest represents a request to handle /start command
type StartCommandRequest struct {
	Sender
}

// TextMessageRequest represents a plain (non-command) text message
type TextMessageRequest struct {
	Sender
	MessageID int    `json:"messageId"`
	Text      string `json:"text"`
}

// AdminCommandRequest represents /users, /broadcast or /cancel
type AdminCommandRequest struct {
	Sender
}
