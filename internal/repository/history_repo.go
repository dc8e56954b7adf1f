package repository

import (
	"context"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"gorm.io/gorm"
)

// HistoryRepository reads the moderation audit trail. Writes happen only
// inside QueueRepository.ConditionalTransition, in the same transaction as
// the state change, so the trail can never drift from the item.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListByItem returns the full transition history of one queue item in the
// order it happened. Replaying the to_state column from pending yields the
// item's current state, and the row count equals its version.
func (r *HistoryRepository) ListByItem(ctx context.Context, queueItemID uint64) ([]domain.HistoryRecord, error) {
	records := []domain.HistoryRecord{}
	err := r.db.WithContext(ctx).
		Where("queue_item_id = ?", queueItemID).
		Order("occurred_at ASC, id ASC").
		Find(&records).Error
	return records, err
}

// CountByItem returns the number of recorded transitions for one item
func (r *HistoryRepository) CountByItem(ctx context.Context, queueItemID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.HistoryRecord{}).
		Where("queue_item_id = ?", queueItemID).
		Count(&count).Error
	return count, err
}

// ListRecent returns the latest transitions across the whole queue, newest
// first, for the admin activity feed.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records := []domain.HistoryRecord{}
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
