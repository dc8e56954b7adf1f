package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"gorm.io/gorm"
)

// QueueRepository handles queue item storage. ConditionalTransition is the
// only code path that writes state or version; everything else reads.
type QueueRepository struct {
	db *gorm.DB
}

// NewQueueRepository creates a new QueueRepository
func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// Create inserts a new queue item in the initial pending state
func (r *QueueRepository) Create(ctx context.Context, item *domain.QueueItem) error {
	item.State = domain.StatePending
	item.Version = 0
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID retrieves a queue item by primary key
func (r *QueueRepository) FindByID(ctx context.Context, id uint64) (*domain.QueueItem, error) {
	var item domain.QueueItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByPostingUID retrieves a queue item by its posting UID
func (r *QueueRepository) FindByPostingUID(ctx context.Context, uid string) (*domain.QueueItem, error) {
	var item domain.QueueItem
	err := r.db.WithContext(ctx).Where("posting_uid = ?", uid).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ConditionalTransition applies a state transition with optimistic locking
// and appends the history record in the same transaction. The UPDATE only
// matches while the stored version still equals expectedVersion, so two
// racing actors can never both win; the loser gets a VersionConflictError
// carrying the state and version the winner left behind.
//
// On success the returned item reflects the committed row, with version
// expectedVersion+1 and record.ResultingVersion stamped to match.
func (r *QueueRepository) ConditionalTransition(
	ctx context.Context,
	id uint64,
	expectedVersion uint64,
	toState domain.State,
	record *domain.HistoryRecord,
) (*domain.QueueItem, error) {
	var updated domain.QueueItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"state":          toState,
			"version":        gorm.Expr("version + 1"),
			"last_actor_id":  record.ActorID,
			"last_action_at": now,
			"updated_at":     now,
		}
		if toState == domain.StateEscalated && record.Reason != nil {
			updates["escalation_reason"] = *record.Reason
		}

		result := tx.Model(&domain.QueueItem{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Zero rows means the item is gone or another actor won the
			// race; re-read inside the transaction to tell the two apart.
			var current domain.QueueItem
			if err := tx.First(&current, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
			return &domain.VersionConflictError{
				CurrentState:   current.State,
				CurrentVersion: current.Version,
			}
		}

		record.QueueItemID = id
		record.ResultingVersion = expectedVersion + 1
		if record.OccurredAt.IsZero() {
			record.OccurredAt = now
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Query lists queue items matching the filter. All predicates combine
// conjunctively. The filter must already be normalized (page >= 1,
// per_page bounded); see service.NormalizeFilter.
func (r *QueueRepository) Query(ctx context.Context, filter domain.QueueFilter) (*domain.QueuePage, error) {
	query := r.db.WithContext(ctx).Model(&domain.QueueItem{})

	if len(filter.States) > 0 {
		query = query.Where("state IN ?", filter.States)
	}
	if filter.PostingType != "" {
		query = query.Where("posting_type = ?", filter.PostingType)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("(title LIKE ? OR excerpt LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	items := []domain.QueueItem{}
	offset := (filter.Page - 1) * filter.PerPage
	err := query.Order(orderClause(filter)).
		Limit(filter.PerPage).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage))
	return &domain.QueuePage{
		Items:      items,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    filter.Page < totalPages,
		HasPrev:    filter.Page > 1,
	}, nil
}

// orderClause builds the ORDER BY for a normalized filter. The id tiebreak
// keeps pagination deterministic when items share a creation timestamp.
// Priority sort surfaces escalated items first regardless of age.
func orderClause(filter domain.QueueFilter) string {
	dir := "ASC"
	if filter.SortOrder == domain.SortOrderDesc {
		dir = "DESC"
	}

	if filter.SortBy == domain.SortByPriority {
		return "CASE WHEN state = 'escalated' THEN 0 ELSE 1 END, priority DESC, created_at " + dir + ", id ASC"
	}
	return "created_at " + dir + ", id ASC"
}

// Stats summarizes the queue for the dashboard
func (r *QueueRepository) Stats(ctx context.Context) (*domain.QueueStats, error) {
	stats := &domain.QueueStats{}

	var rows []struct {
		State domain.State
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.QueueItem{}).
		Select("state, COUNT(*) as count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		switch row.State {
		case domain.StatePending:
			stats.Pending = row.Count
		case domain.StateEscalated:
			stats.Escalated = row.Count
		case domain.StateApproved:
			stats.Approved = row.Count
		case domain.StateRejected:
			stats.Rejected = row.Count
		}
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err = r.db.WithContext(ctx).
		Model(&domain.QueueItem{}).
		Where("state IN ? AND last_action_at >= ?", []domain.State{domain.StateApproved, domain.StateRejected}, todayStart).
		Count(&stats.DecidedToday).Error
	if err != nil {
		return nil, err
	}

	var oldest sql.NullTime
	row := r.db.WithContext(ctx).
		Model(&domain.QueueItem{}).
		Where("state IN ?", []domain.State{domain.StatePending, domain.StateEscalated}).
		Select("MIN(created_at)").
		Row()
	if err := row.Scan(&oldest); err != nil {
		return nil, err
	}
	if oldest.Valid {
		stats.OldestOpenAt = &oldest.Time
	}

	return stats, nil
}
