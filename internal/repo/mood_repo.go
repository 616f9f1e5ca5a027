// Package repo implements the data persistence layer for domain entities.
// This file provides the GORM query for the MoodEntry model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// ListMoods returns userID's mood entries with from <= date < until,
// oldest first.
func ListMoods(ctx context.Context, db *gorm.DB, userID string, from, until time.Time) ([]domain.MoodEntry, error) {
	out := []domain.MoodEntry{}
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, until).
		Order("date ASC, id ASC").
		Find(&out).Error
	return out, err
}
