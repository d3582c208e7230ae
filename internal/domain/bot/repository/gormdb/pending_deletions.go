package gormdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
)

type deletionStore struct {
	db *gorm.DB
}

// NewDeletionStore creates a store for pending deletions
func NewDeletionStore(db *gorm.DB) deps.DeletionStore {
	return &deletionStore{db: db}
}

// Save records a pending deletion; saving the same message twice updates its fire time
func (s *deletionStore) Save(ctx context.Context, d *entities.PendingDeletion) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fire_at"}),
		}).
		Create(d).Error
	if err != nil {
		return fmt.Errorf("failed to save pending deletion: %w", err)
	}
	return nil
}

// Delete removes a pending deletion
func (s *deletionStore) Delete(ctx context.Context, chatID int64, messageID int) error {
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		Delete(&entities.PendingDeletion{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete pending deletion: %w", err)
	}
	return nil
}

// List returns every pending deletion ordered by fire time
func (s *deletionStore) List(ctx context.Context) ([]entities.PendingDeletion, error) {
	var items []entities.PendingDeletion
	if err := s.db.WithContext(ctx).Order("fire_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending deletions: %w", err)
	}
	return items, nil
}
