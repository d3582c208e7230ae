// Package deps contains interface definitions for the bot domain dependencies
package deps

import (
	"context"
	"time"

	"github.com/Conte777/linkbot/internal/domain/bot/entities"
)

// Messenger is the messaging gateway surface the bot consumes.
// Implemented by the Telegram delivery handlers; set on the use case after
// construction to break the UseCase -> Messenger <- Handlers -> UseCase cycle.
type Messenger interface {
	// Send sends a message and returns its id
	Send(ctx context.Context, msg *entities.OutgoingMessage) (messageID int, err error)

	// DeleteMessage deletes a previously sent message
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// ForwardMessage forwards a message verbatim to another chat
	ForwardMessage(ctx context.Context, toChat string, fromChatID int64, messageID int) error

	// ChatMemberStatus returns the user's membership status in channel
	// ("member", "administrator", "creator", "left", "kicked", "restricted")
	ChatMemberStatus(ctx context.Context, channel string, userID int64) (string, error)
}

// UserRegistry is the durable set of known users
type UserRegistry interface {
	// Add inserts the user if absent; inserted is true only for a new id
	Add(ctx context.Context, user *entities.User) (inserted bool, err error)

	// Count returns the number of users, 0 when the store is unreadable
	Count(ctx context.Context) int

	// All returns a snapshot of every user id, empty when the store is unreadable
	All(ctx context.Context) []int64
}

// LinkResolver turns a raw link into download/streaming links
type LinkResolver interface {
	// Validate rejects links that must not reach the resolution service
	Validate(rawLink string) error

	// Resolve calls the resolution service and classifies the response
	Resolve(ctx context.Context, rawLink string) *entities.ResolutionResult
}

// DeletionScheduler deletes a sent message after a delay
type DeletionScheduler interface {
	Schedule(ctx context.Context, chatID int64, messageID int, delay time.Duration)
}

// DeletionStore persists pending deletions across restarts
type DeletionStore interface {
	Save(ctx context.Context, d *entities.PendingDeletion) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	List(ctx context.Context) ([]entities.PendingDeletion, error)
}

// AuditSink receives mirrored user activity
type AuditSink interface {
	// Name identifies the sink in logs and metrics
	Name() string

	// Publish delivers one event; errors are logged by the caller, never surfaced
	Publish(ctx context.Context, event *entities.AuditEvent) error
}
