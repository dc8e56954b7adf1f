package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupQueueTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// A single connection keeps every goroutine on the same in-memory
	// database and serializes writes the way the production DB would.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.QueueItem{}, &domain.HistoryRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedItem(t *testing.T, db *gorm.DB, uid string, state domain.State, createdAt time.Time) *domain.QueueItem {
	t.Helper()
	item := &domain.QueueItem{
		PostingUID:  uid,
		PostingType: domain.PostingTypeStory,
		Title:       "Posting " + uid,
		AuthorID:    "author-1",
		State:       state,
		CreatedAt:   createdAt,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
	return item
}

func approvalRecord(item *domain.QueueItem, actorID string) *domain.HistoryRecord {
	return &domain.HistoryRecord{
		QueueItemID: item.ID,
		FromState:   item.State,
		ToState:     domain.StateApproved,
		Action:      domain.ActionApprove,
		ActorID:     actorID,
		ActorRole:   domain.RoleModerator,
	}
}

func TestConditionalTransition_Applied(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "uid-1", domain.StatePending, time.Now())
	if item.Version != 0 {
		t.Fatalf("expected initial version 0, got %d", item.Version)
	}

	updated, err := repo.ConditionalTransition(ctx, item.ID, 0, domain.StateApproved, approvalRecord(item, "mod-1"))
	if err != nil {
		t.Fatalf("expected transition to apply, got: %v", err)
	}
	if updated.State != domain.StateApproved {
		t.Errorf("expected state approved, got %s", updated.State)
	}
	if updated.Version != 1 {
		t.Errorf("expected version 1, got %d", updated.Version)
	}
	if updated.LastActorID == nil || *updated.LastActorID != "mod-1" {
		t.Errorf("expected last_actor_id mod-1, got %v", updated.LastActorID)
	}

	var records []domain.HistoryRecord
	if err := db.Where("queue_item_id = ?", item.ID).Find(&records).Error; err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}
	if records[0].ResultingVersion != 1 {
		t.Errorf("expected resulting_version 1, got %d", records[0].ResultingVersion)
	}
	if records[0].FromState != domain.StatePending || records[0].ToState != domain.StateApproved {
		t.Errorf("expected pending->approved, got %s->%s", records[0].FromState, records[0].ToState)
	}
}

func TestConditionalTransition_StaleVersionConflict(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "uid-1", domain.StatePending, time.Now())

	if _, err := repo.ConditionalTransition(ctx, item.ID, 0, domain.StateApproved, approvalRecord(item, "mod-1")); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	// Second actor still holds version 0
	_, err := repo.ConditionalTransition(ctx, item.ID, 0, domain.StateRejected, &domain.HistoryRecord{
		FromState: domain.StatePending,
		ToState:   domain.StateRejected,
		Action:    domain.ActionReject,
		ActorID:   "mod-2",
		ActorRole: domain.RoleModerator,
	})
	if err == nil {
		t.Fatal("expected version conflict, got nil")
	}

	var conflict *domain.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected VersionConflictError, got %T: %v", err, err)
	}
	if conflict.CurrentState != domain.StateApproved {
		t.Errorf("expected conflict to carry state approved, got %s", conflict.CurrentState)
	}
	if conflict.CurrentVersion != 1 {
		t.Errorf("expected conflict to carry version 1, got %d", conflict.CurrentVersion)
	}

	// The losing attempt must leave no trace
	var count int64
	db.Model(&domain.HistoryRecord{}).Where("queue_item_id = ?", item.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 history record after rejected attempt, got %d", count)
	}

	current, err := repo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("failed to re-read item: %v", err)
	}
	if current.State != domain.StateApproved || current.Version != 1 {
		t.Errorf("loser must not mutate item; got state=%s version=%d", current.State, current.Version)
	}
}

func TestConditionalTransition_NotFound(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)

	_, err := repo.ConditionalTransition(context.Background(), 9999, 0, domain.StateApproved, &domain.HistoryRecord{
		FromState: domain.StatePending,
		ToState:   domain.StateApproved,
		Action:    domain.ActionApprove,
		ActorID:   "mod-1",
		ActorRole: domain.RoleModerator,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestConditionalTransition_ConcurrentSingleWinner(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "uid-1", domain.StatePending, time.Now())

	var wg sync.WaitGroup
	results := make([]error, 2)
	states := []domain.State{domain.StateApproved, domain.StateRejected}
	actions := []domain.Action{domain.ActionApprove, domain.ActionReject}

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = repo.ConditionalTransition(ctx, item.ID, 0, states[i], &domain.HistoryRecord{
				FromState: domain.StatePending,
				ToState:   states[i],
				Action:    actions[i],
				ActorID:   fmt.Sprintf("mod-%d", i+1),
				ActorRole: domain.RoleModerator,
			})
		}(i)
	}
	wg.Wait()

	var applied, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			applied++
		default:
			var conflict *domain.VersionConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("expected VersionConflictError for loser, got %T: %v", err, err)
			}
			conflicts++
		}
	}
	if applied != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got applied=%d conflicts=%d", applied, conflicts)
	}

	current, err := repo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("failed to re-read item: %v", err)
	}
	if current.Version != 1 {
		t.Errorf("expected version 1 after race, got %d", current.Version)
	}
	if !current.State.Terminal() {
		t.Errorf("expected a terminal state after race, got %s", current.State)
	}

	var count int64
	db.Model(&domain.HistoryRecord{}).Where("queue_item_id = ?", item.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 history record after race, got %d", count)
	}
}

func TestConditionalTransition_EscalationStampsReason(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "uid-1", domain.StatePending, time.Now())

	reason := "legal_risk"
	notes := "needs counsel review"
	updated, err := repo.ConditionalTransition(ctx, item.ID, 0, domain.StateEscalated, &domain.HistoryRecord{
		FromState: domain.StatePending,
		ToState:   domain.StateEscalated,
		Action:    domain.ActionEscalate,
		ActorID:   "mod-1",
		ActorRole: domain.RoleModerator,
		Reason:    &reason,
		Notes:     &notes,
	})
	if err != nil {
		t.Fatalf("escalation failed: %v", err)
	}
	if updated.EscalationReason == nil || *updated.EscalationReason != "legal_risk" {
		t.Errorf("expected escalation_reason legal_risk, got %v", updated.EscalationReason)
	}
	if updated.State != domain.StateEscalated || updated.Version != 1 {
		t.Errorf("expected escalated v1, got %s v%d", updated.State, updated.Version)
	}
}

func TestQuery_FilterSortPaginate(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	// 25 items: 10 pending, 5 escalated, 10 approved, one minute apart,
	// oldest first.
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	var n int
	seed := func(state domain.State, count int) {
		for i := 0; i < count; i++ {
			n++
			seedItem(t, db, fmt.Sprintf("uid-%02d", n), state, base.Add(time.Duration(n)*time.Minute))
		}
	}
	seed(domain.StatePending, 10)
	seed(domain.StateEscalated, 5)
	seed(domain.StateApproved, 10)

	page, err := repo.Query(ctx, domain.QueueFilter{
		States:    []domain.State{domain.StatePending, domain.StateEscalated},
		SortBy:    domain.SortByCreatedAt,
		SortOrder: domain.SortOrderDesc,
		Page:      2,
		PerPage:   10,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if page.Total != 15 {
		t.Errorf("expected total 15, got %d", page.Total)
	}
	if page.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", page.TotalPages)
	}
	if page.HasNext {
		t.Error("expected has_next false on last page")
	}
	if !page.HasPrev {
		t.Error("expected has_prev true on page 2")
	}
	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items on page 2, got %d", len(page.Items))
	}

	// Descending by created_at: page 2 holds the 5 oldest of the 15 open
	// items, i.e. uid-05 down to uid-01.
	for i, item := range page.Items {
		wantUID := fmt.Sprintf("uid-%02d", 5-i)
		if item.PostingUID != wantUID {
			t.Errorf("position %d: expected %s, got %s", i, wantUID, item.PostingUID)
		}
	}
}

func TestQuery_CreatedAtTiebreakDeterministic(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	// All items share one timestamp; order must still be stable.
	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 4; i++ {
		seedItem(t, db, fmt.Sprintf("uid-%d", i), domain.StatePending, at)
	}

	filter := domain.QueueFilter{
		SortBy:    domain.SortByCreatedAt,
		SortOrder: domain.SortOrderDesc,
		Page:      1,
		PerPage:   10,
	}

	first, err := repo.Query(ctx, filter)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := repo.Query(ctx, filter)
		if err != nil {
			t.Fatalf("repeat query failed: %v", err)
		}
		for i := range first.Items {
			if again.Items[i].ID != first.Items[i].ID {
				t.Fatalf("run %d: order not deterministic at position %d", run, i)
			}
		}
	}

	// Ties resolve by id ascending in both directions
	for i := 1; i < len(first.Items); i++ {
		if first.Items[i-1].ID >= first.Items[i].ID {
			t.Errorf("expected id ASC tiebreak, got %d before %d", first.Items[i-1].ID, first.Items[i].ID)
		}
	}
}

func TestQuery_PrioritySortEscalatedFirst(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	// Escalated item is the newest; priority sort must still surface it first.
	pendingHigh := seedItem(t, db, "uid-pending-high", domain.StatePending, base)
	db.Model(pendingHigh).Update("priority", 9)
	seedItem(t, db, "uid-pending-low", domain.StatePending, base.Add(time.Minute))
	escalated := seedItem(t, db, "uid-escalated", domain.StateEscalated, base.Add(2*time.Minute))

	page, err := repo.Query(ctx, domain.QueueFilter{
		States:    []domain.State{domain.StatePending, domain.StateEscalated},
		SortBy:    domain.SortByPriority,
		SortOrder: domain.SortOrderAsc,
		Page:      1,
		PerPage:   10,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.Items[0].ID != escalated.ID {
		t.Errorf("expected escalated item first, got %s", page.Items[0].PostingUID)
	}
	if page.Items[1].ID != pendingHigh.ID {
		t.Errorf("expected high-priority pending second, got %s", page.Items[1].PostingUID)
	}
}

func TestQuery_ConjunctiveFilters(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	match := seedItem(t, db, "uid-match", domain.StatePending, base)
	db.Model(match).Update("posting_type", domain.PostingTypePhoto)
	// Same type, wrong state
	wrongState := seedItem(t, db, "uid-state", domain.StateApproved, base)
	db.Model(wrongState).Update("posting_type", domain.PostingTypePhoto)
	// Right state, wrong type
	seedItem(t, db, "uid-type", domain.StatePending, base)
	// Right state and type, outside date range
	late := seedItem(t, db, "uid-date", domain.StatePending, base.Add(48*time.Hour))
	db.Model(late).Update("posting_type", domain.PostingTypePhoto)

	from := base.Add(-time.Hour)
	to := base.Add(time.Hour)
	page, err := repo.Query(ctx, domain.QueueFilter{
		States:      []domain.State{domain.StatePending},
		PostingType: domain.PostingTypePhoto,
		FromDate:    &from,
		ToDate:      &to,
		SortBy:      domain.SortByCreatedAt,
		SortOrder:   domain.SortOrderAsc,
		Page:        1,
		PerPage:     10,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("expected exactly 1 match, got total=%d len=%d", page.Total, len(page.Items))
	}
	if page.Items[0].PostingUID != "uid-match" {
		t.Errorf("expected uid-match, got %s", page.Items[0].PostingUID)
	}
}

func TestQuery_EmptyResult(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)

	page, err := repo.Query(context.Background(), domain.QueueFilter{
		States:    []domain.State{domain.StateEscalated},
		SortBy:    domain.SortByCreatedAt,
		SortOrder: domain.SortOrderAsc,
		Page:      1,
		PerPage:   20,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected total 0, got %d", page.Total)
	}
	if page.Items == nil {
		t.Error("expected empty items slice, got nil")
	}
	if len(page.Items) != 0 {
		t.Errorf("expected no items, got %d", len(page.Items))
	}
	if page.TotalPages != 0 || page.HasNext || page.HasPrev {
		t.Errorf("expected empty pagination, got pages=%d next=%v prev=%v", page.TotalPages, page.HasNext, page.HasPrev)
	}
}

func TestStats(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	oldest := time.Now().Add(-72 * time.Hour)
	seedItem(t, db, "uid-1", domain.StatePending, oldest)
	seedItem(t, db, "uid-2", domain.StatePending, time.Now().Add(-time.Hour))
	seedItem(t, db, "uid-3", domain.StateEscalated, time.Now().Add(-30*time.Minute))
	decided := seedItem(t, db, "uid-4", domain.StatePending, time.Now().Add(-2*time.Hour))
	if _, err := repo.ConditionalTransition(ctx, decided.ID, 0, domain.StateApproved, approvalRecord(decided, "mod-1")); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Pending != 2 {
		t.Errorf("expected 2 pending, got %d", stats.Pending)
	}
	if stats.Escalated != 1 {
		t.Errorf("expected 1 escalated, got %d", stats.Escalated)
	}
	if stats.Approved != 1 {
		t.Errorf("expected 1 approved, got %d", stats.Approved)
	}
	if stats.DecidedToday != 1 {
		t.Errorf("expected 1 decided today, got %d", stats.DecidedToday)
	}
	if stats.OldestOpenAt == nil {
		t.Fatal("expected oldest_open_at to be set")
	}
	if got := *stats.OldestOpenAt; got.Sub(oldest).Abs() > time.Second {
		t.Errorf("expected oldest open near %v, got %v", oldest, got)
	}
}

func TestFindByPostingUID(t *testing.T) {
	db := setupQueueTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	seedItem(t, db, "uid-known", domain.StatePending, time.Now())

	item, err := repo.FindByPostingUID(ctx, "uid-known")
	if err != nil {
		t.Fatalf("expected item, got: %v", err)
	}
	if item.PostingUID != "uid-known" {
		t.Errorf("expected uid-known, got %s", item.PostingUID)
	}

	if _, err := repo.FindByPostingUID(ctx, "uid-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
