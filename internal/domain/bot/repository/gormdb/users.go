// Package gormdb contains gorm-backed repositories
package gormdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	boterrors "github.com/Conte777/linkbot/internal/domain/bot/errors"
)

type userRegistry struct {
	db     *gorm.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewUserRegistry creates the durable user registry
func NewUserRegistry(db *gorm.DB, logger zerolog.Logger) deps.UserRegistry {
	return &userRegistry{db: db, logger: logger}
}

// Add inserts the user unless the id is already known. The insert is
// committed before Add returns.
func (r *userRegistry) Add(ctx context.Context, user *entities.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		r.logger.Error().Err(res.Error).Int64("user_id", user.ID).Msg("Failed to add user to registry")
		return false, fmt.Errorf("%w: %v", boterrors.ErrRegistryUnavailable, res.Error)
	}

	return res.RowsAffected == 1, nil
}

// Count returns the number of registered users
func (r *userRegistry) Count(ctx context.Context) int {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&n).Error; err != nil {
		r.logUnreadable(err)
		return 0
	}
	return int(n)
}

// All returns every registered user id
func (r *userRegistry) All(ctx context.Context) []int64 {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		r.logUnreadable(err)
		return []int64{}
	}
	return ids
}

func (r *userRegistry) logUnreadable(err error) {
	r.logger.Error().
		Err(err).
		Bool("broadcast_impacted", true).
		Msg("User registry unreadable, degrading to empty set; broadcasts will reach nobody")
}
