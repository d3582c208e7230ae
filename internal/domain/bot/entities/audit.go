package entities

import "time"

// AuditEventType distinguishes audit events
type AuditEventType string

const (
	AuditNewUser  AuditEventType = "new_user"
	AuditExchange AuditEventType = "exchange"
)

// AuditEvent is one mirrored user interaction
type AuditEvent struct {
	ID        string         `json:"id"`
	Type      AuditEventType `json:"type"`
	UserID    int64          `json:"user_id"`
	Username  string         `json:"username,omitempty"`
	FirstName string         `json:"first_name,omitempty"`
	ChatID    int64          `json:"chat_id"`
	// MessageID is the user's original message, forwarded verbatim by the channel sink
	MessageID  int       `json:"message_id,omitempty"`
	Link       string    `json:"link,omitempty"`
	Result     string    `json:"result,omitempty"`
	Reply      string    `json:"reply,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
