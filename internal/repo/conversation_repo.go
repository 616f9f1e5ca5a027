// Package repo implements the data persistence layer for domain entities.
// This file provides GORM repository functions for the Conversation model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and query composition.
// Ownership is part of every query, so another user's conversation behaves
// exactly like a missing one.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// CreateConversation inserts an empty conversation owned by userID.
// CreatedAt and UpdatedAt are the same UTC instant and MessageCount is 0.
func CreateConversation(ctx context.Context, db *gorm.DB, userID, title string) (*domain.Conversation, error) {
	now := time.Now().UTC()
	c := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListConversations returns all conversations belonging to userID, most
// recently updated first. It returns an empty slice if the user has none.
func ListConversations(ctx context.Context, db *gorm.DB, userID string) ([]domain.Conversation, error) {
	out := []domain.Conversation{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc, id asc").
		Find(&out).Error
	return out, err
}

// GetConversation fetches a single conversation by ID and owner. A missing
// row yields (nil, nil).
func GetConversation(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TouchConversation sets updated_at (and the title, when non-empty) on a
// conversation owned by userID. Missing rows are ignored.
func TouchConversation(ctx context.Context, db *gorm.DB, id, userID, title string) error {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if title != "" {
		updates["title"] = title
	}
	return db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumns(updates).Error
}

// IncrementMessageCount adds one to message_count with a single UPDATE, so
// the increment itself is atomic per row.
func IncrementMessageCount(ctx context.Context, db *gorm.DB, id, userID string) error {
	return db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("message_count", gorm.Expr("message_count + ?", 1)).Error
}
