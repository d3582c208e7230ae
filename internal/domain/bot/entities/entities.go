// Package entities contains domain entities
package entities

import "time"

// User is a registered bot user. Identity is ID; rows are never deleted.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName pins the gorm table name
func (User) TableName() string { return "users" }

// PendingDeletion is an ephemeral reply waiting for its deletion time
type PendingDeletion struct {
	ID        uint      `gorm:"primaryKey"`
	ChatID    int64     `gorm:"uniqueIndex:idx_pending_chat_message"`
	MessageID int       `gorm:"uniqueIndex:idx_pending_chat_message"`
	FireAt    time.Time `gorm:"index"`
}

// TableName pins the gorm table name
func (PendingDeletion) TableName() string { return "pending_deletions" }

// URLButton is an inline keyboard button opening a URL
type URLButton struct {
	Text string
	URL  string
}

// OutgoingMessage is a message to be sent through the messaging gateway
type OutgoingMessage struct {
	ChatID int64
	// Channel addresses a chat by "@username" or numeric id string; overrides ChatID when set
	Channel string
	Text    string
	// HTML enables HTML parse mode; false sends the text verbatim
	HTML   bool
	Button *URLButton
}
