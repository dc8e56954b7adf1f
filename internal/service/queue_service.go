package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sgsgita/moderation-backend/internal/analytics"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/notify"
	"github.com/sgsgita/moderation-backend/internal/repository"
	"github.com/sgsgita/moderation-backend/internal/ws"
	"github.com/sgsgita/moderation-backend/pkg/cache"
	"github.com/sgsgita/moderation-backend/pkg/logger"
)

// Listing defaults and bounds
const (
	defaultPerPage = 20
	maxPerPage     = 100

	sideEffectTimeout = 5 * time.Second
)

// Indexer pushes queue items into the search index. Optional: when absent,
// search falls back to the database LIKE path.
type Indexer interface {
	IndexItem(ctx context.Context, item *domain.QueueItem) error
}

// QueueService owns the moderation queue lifecycle: intake, listing, stats
// and the optimistic-concurrency transition flow. The database is the sole
// conflict arbiter; the service holds no queue state between requests.
type QueueService struct {
	queueRepo   *repository.QueueRepository
	historyRepo *repository.HistoryRepository
	cache       cache.Service

	// Optional side-effect sinks, all fired after commit and never able
	// to fail a transition.
	emitter   *notify.Emitter
	hub       *ws.Hub
	analytics *analytics.Repository
	indexer   Indexer
}

// NewQueueService creates a QueueService
func NewQueueService(queueRepo *repository.QueueRepository, historyRepo *repository.HistoryRepository, cacheService cache.Service) *QueueService {
	return &QueueService{
		queueRepo:   queueRepo,
		historyRepo: historyRepo,
		cache:       cacheService,
	}
}

// SetEmitter sets the notification emitter (optional dependency)
func (s *QueueService) SetEmitter(emitter *notify.Emitter) {
	s.emitter = emitter
}

// SetHub sets the websocket hub for the live moderator feed (optional dependency)
func (s *QueueService) SetHub(hub *ws.Hub) {
	s.hub = hub
}

// SetAnalytics sets the decision analytics sink (optional dependency)
func (s *QueueService) SetAnalytics(repo *analytics.Repository) {
	s.analytics = repo
}

// SetIndexer sets the search indexer (optional dependency)
func (s *QueueService) SetIndexer(indexer Indexer) {
	s.indexer = indexer
}

// Enqueue accepts a posting into the review queue. Idempotent on
// posting_uid: re-submitting an already-queued posting returns the existing
// item untouched. The bool reports whether a new item was created.
func (s *QueueService) Enqueue(ctx context.Context, req *domain.EnqueueRequest) (*domain.QueueItem, bool, error) {
	if verr := ValidateEnqueueRequest(req); verr != nil {
		return nil, false, verr
	}

	if req.PostingUID == "" {
		req.PostingUID = uuid.NewString()
	} else {
		existing, err := s.queueRepo.FindByPostingUID(ctx, req.PostingUID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}
	}

	item := &domain.QueueItem{
		PostingUID:  req.PostingUID,
		PostingType: req.PostingType,
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		AuthorID:    req.AuthorID,
		State:       domain.StatePending,
		Version:     0,
	}

	if err := s.queueRepo.Create(ctx, item); err != nil {
		// A concurrent submit of the same posting_uid may have won the
		// unique index race; surface that item instead of the error.
		if req.PostingUID != "" {
			if existing, findErr := s.queueRepo.FindByPostingUID(ctx, req.PostingUID); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	enqueuedCount.WithLabelValues(item.PostingType).Inc()
	s.afterEnqueue(item)
	return item, true, nil
}

// SubmitAction attempts one state transition. The flow is validate, read,
// resolve against the transition table, then a single conditional write
// guarded by expected_version. The version guard also pins the state: any
// state change bumps the version, so a target resolved from a stale read
// can never be written. Conflicts are returned to the caller, never retried
// here.
func (s *QueueService) SubmitAction(ctx context.Context, req *domain.ActionRequest) (*domain.QueueItem, error) {
	if verr := ValidateActionRequest(req); verr != nil {
		transitionRefusedCount.WithLabelValues(refusalInvalidPayload).Inc()
		return nil, verr
	}

	item, err := s.queueRepo.FindByID(ctx, req.QueueItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			transitionRefusedCount.WithLabelValues(refusalNotFound).Inc()
		}
		return nil, err
	}

	target, err := domain.ResolveTransition(item.State, req.Action, req.Actor.Role)
	if err != nil {
		transitionRefusedCount.WithLabelValues(refusalKind(err)).Inc()
		return nil, err
	}

	// Cheap precheck; the write below re-checks atomically.
	if *req.ExpectedVersion != item.Version {
		transitionRefusedCount.WithLabelValues(refusalVersionConflict).Inc()
		return nil, &domain.VersionConflictError{CurrentState: item.State, CurrentVersion: item.Version}
	}

	record := newHistoryRecord(item, req, target)
	updated, err := s.queueRepo.ConditionalTransition(ctx, item.ID, *req.ExpectedVersion, target, record)
	if err != nil {
		var conflict *domain.VersionConflictError
		if errors.As(err, &conflict) {
			transitionRefusedCount.WithLabelValues(refusalVersionConflict).Inc()
		}
		return nil, err
	}

	transitionAcceptedCount.WithLabelValues(string(req.Action), string(target), string(req.Actor.Role)).Inc()
	s.afterTransition(updated, req, record)
	return updated, nil
}

// GetItem fetches one queue item by id
func (s *QueueService) GetItem(ctx context.Context, id uint64) (*domain.QueueItem, error) {
	return s.queueRepo.FindByID(ctx, id)
}

// GetHistory returns the full audit trail of an item, oldest first. The
// item must exist; an untouched item has an empty (non-nil) trail.
func (s *QueueService) GetHistory(ctx context.Context, id uint64) ([]domain.HistoryRecord, error) {
	if _, err := s.queueRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByItem(ctx, id)
}

// List runs a queue listing query after normalizing the filter
func (s *QueueService) List(ctx context.Context, filter domain.QueueFilter) (*domain.QueuePage, error) {
	normalized, verr := NormalizeFilter(filter)
	if verr != nil {
		return nil, verr
	}
	return s.queueRepo.Query(ctx, normalized)
}

// Stats returns the dashboard summary, cached for a short window because
// every moderator's dashboard polls it.
func (s *QueueService) Stats(ctx context.Context) (*domain.QueueStats, error) {
	if data, err := s.cache.GetQueueStats(ctx); err == nil {
		var stats domain.QueueStats
		if jsonErr := json.Unmarshal(data, &stats); jsonErr == nil {
			return &stats, nil
		}
	}

	stats, err := s.queueRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetQueueStats(ctx, stats); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to cache queue stats")
	}
	return stats, nil
}

// NormalizeFilter applies listing defaults and bounds: page >= 1, per_page
// clamped to [1, 100] with a default of 20, sort defaulting to created_at
// desc. Unknown sort keys, orders and states are violations rather than
// silent fallbacks.
func NormalizeFilter(filter domain.QueueFilter) (domain.QueueFilter, *domain.ValidationError) {
	var violations []domain.FieldViolation
	add := func(field, message string) {
		violations = append(violations, domain.FieldViolation{Field: field, Message: message})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	} else if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	switch filter.SortBy {
	case "":
		filter.SortBy = domain.SortByCreatedAt
	case domain.SortByCreatedAt, domain.SortByPriority:
	default:
		add("sort_by", "must be one of: created_at, priority")
	}

	switch filter.SortOrder {
	case "":
		filter.SortOrder = domain.SortOrderDesc
	case domain.SortOrderAsc, domain.SortOrderDesc:
	default:
		add("sort_order", "must be one of: asc, desc")
	}

	for _, state := range filter.States {
		if !state.Valid() {
			add("states", "unknown state: "+string(state))
		}
	}
	if filter.PostingType != "" && !domain.ValidPostingType(filter.PostingType) {
		add("posting_type", "must be one of: story, photo, event, comment")
	}
	if utf8.RuneCountInString(filter.Search) > maxSearchQueryLen {
		add("search", "must be at most 100 characters")
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		add("to_date", "must not be before from_date")
	}

	if len(violations) > 0 {
		return filter, &domain.ValidationError{Violations: violations}
	}
	return filter, nil
}

func refusalKind(err error) string {
	var terminal *domain.TerminalStateError
	if errors.As(err, &terminal) {
		return refusalTerminalState
	}
	var illegal *domain.IllegalTransitionError
	if errors.As(err, &illegal) {
		if illegal.Role != "" {
			return refusalRoleDenied
		}
		return refusalIllegalTransition
	}
	return refusalIllegalTransition
}

// newHistoryRecord captures the transition as seen at decision time. The
// repository stamps QueueItemID and ResultingVersion when it commits.
func newHistoryRecord(item *domain.QueueItem, req *domain.ActionRequest, target domain.State) *domain.HistoryRecord {
	record := &domain.HistoryRecord{
		FromState:  item.State,
		ToState:    target,
		Action:     req.Action,
		ActorID:    req.Actor.ID,
		ActorRole:  req.Actor.Role,
		OccurredAt: time.Now(),
	}
	if req.Reason != "" {
		record.Reason = &req.Reason
	}
	if req.Feedback != "" {
		record.Feedback = &req.Feedback
	}
	if req.Notes != "" {
		record.Notes = &req.Notes
	}
	return record
}

// afterTransition fires the post-commit side effects. All of them are
// best-effort: the transition is already durable and none of these may
// undo or fail it.
func (s *QueueService) afterTransition(item *domain.QueueItem, req *domain.ActionRequest, record *domain.HistoryRecord) {
	event := &domain.TransitionEvent{
		QueueItemID:      item.ID,
		PostingUID:       item.PostingUID,
		PostingType:      item.PostingType,
		FromState:        record.FromState,
		ToState:          item.State,
		Action:           record.Action,
		ActorID:          record.ActorID,
		ActorRole:        record.ActorRole,
		ResultingVersion: item.Version,
		OccurredAt:       record.OccurredAt,
		Reason:           req.Reason,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := s.cache.InvalidateQueueStats(ctx); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("failed to invalidate stats cache")
		}
		if err := s.cache.InvalidateSearches(ctx); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("failed to invalidate search cache")
		}
		if s.emitter != nil {
			s.emitter.EmitTransition(ctx, item, req)
		}
		if s.hub != nil {
			s.hub.Broadcast(&ws.Event{Type: ws.EventTransition, Payload: event})
		}
		if s.analytics != nil {
			if err := s.analytics.RecordTransition(ctx, event); err != nil {
				logger.GetLogger().Warn().Err(err).Uint64("queue_item_id", item.ID).Msg("failed to record decision event")
			}
		}
		if s.indexer != nil {
			if err := s.indexer.IndexItem(ctx, item); err != nil {
				logger.GetLogger().Warn().Err(err).Uint64("queue_item_id", item.ID).Msg("failed to reindex item")
			}
		}
	}()
}

func (s *QueueService) afterEnqueue(item *domain.QueueItem) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := s.cache.InvalidateQueueStats(ctx); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("failed to invalidate stats cache")
		}
		if s.hub != nil {
			s.hub.Broadcast(&ws.Event{Type: ws.EventEnqueued, Payload: item})
		}
		if s.indexer != nil {
			if err := s.indexer.IndexItem(ctx, item); err != nil {
				logger.GetLogger().Warn().Err(err).Uint64("queue_item_id", item.ID).Msg("failed to index new item")
			}
		}
	}()
}
