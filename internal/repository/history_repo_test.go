package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sgsgita/moderation-backend/internal/domain"
)

func TestHistoryReplayMatchesItemState(t *testing.T) {
	db := setupQueueTestDB(t)
	queueRepo := NewQueueRepository(db)
	historyRepo := NewHistoryRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "uid-1", domain.StatePending, time.Now())

	// pending -> escalated -> approved
	reason := "policy_unclear"
	notes := "second opinion"
	if _, err := queueRepo.ConditionalTransition(ctx, item.ID, 0, domain.StateEscalated, &domain.HistoryRecord{
		FromState: domain.StatePending,
		ToState:   domain.StateEscalated,
		Action:    domain.ActionEscalate,
		ActorID:   "mod-1",
		ActorRole: domain.RoleModerator,
		Reason:    &reason,
		Notes:     &notes,
	}); err != nil {
		t.Fatalf("escalation failed: %v", err)
	}
	if _, err := queueRepo.ConditionalTransition(ctx, item.ID, 1, domain.StateApproved, &domain.HistoryRecord{
		FromState: domain.StateEscalated,
		ToState:   domain.StateApproved,
		Action:    domain.ActionApprove,
		ActorID:   "admin-1",
		ActorRole: domain.RoleAdmin,
	}); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	current, err := queueRepo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("failed to read item: %v", err)
	}

	records, err := historyRepo.ListByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}

	// Row count equals version
	if uint64(len(records)) != current.Version {
		t.Errorf("expected %d history records for version %d", current.Version, len(records))
	}

	// Replaying to_state from pending reproduces the current state
	state := domain.StatePending
	for i, record := range records {
		if record.FromState != state {
			t.Errorf("record %d: expected from_state %s, got %s", i, state, record.FromState)
		}
		state = record.ToState
		if record.ResultingVersion != uint64(i+1) {
			t.Errorf("record %d: expected resulting_version %d, got %d", i, i+1, record.ResultingVersion)
		}
	}
	if state != current.State {
		t.Errorf("replay ended at %s, item is %s", state, current.State)
	}
}

func TestListByItem_OrderedAndScoped(t *testing.T) {
	db := setupQueueTestDB(t)
	queueRepo := NewQueueRepository(db)
	historyRepo := NewHistoryRepository(db)
	ctx := context.Background()

	first := seedItem(t, db, "uid-1", domain.StatePending, time.Now())
	other := seedItem(t, db, "uid-2", domain.StatePending, time.Now())

	if _, err := queueRepo.ConditionalTransition(ctx, first.ID, 0, domain.StateApproved, approvalRecord(first, "mod-1")); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if _, err := queueRepo.ConditionalTransition(ctx, other.ID, 0, domain.StateRejected, &domain.HistoryRecord{
		FromState: domain.StatePending,
		ToState:   domain.StateRejected,
		Action:    domain.ActionReject,
		ActorID:   "mod-2",
		ActorRole: domain.RoleModerator,
	}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	records, err := historyRepo.ListByItem(ctx, first.ID)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected only uid-1's record, got %d", len(records))
	}
	if records[0].QueueItemID != first.ID {
		t.Errorf("expected record for item %d, got %d", first.ID, records[0].QueueItemID)
	}

	count, err := historyRepo.CountByItem(ctx, first.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestListByItem_EmptyForUntouchedItem(t *testing.T) {
	db := setupQueueTestDB(t)
	historyRepo := NewHistoryRepository(db)

	item := seedItem(t, db, "uid-1", domain.StatePending, time.Now())

	records, err := historyRepo.ListByItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no history for untouched item, got %d", len(records))
	}
	if records == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestListRecent(t *testing.T) {
	db := setupQueueTestDB(t)
	queueRepo := NewQueueRepository(db)
	historyRepo := NewHistoryRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		item := seedItem(t, db, fmt.Sprintf("uid-recent-%d", i), domain.StatePending, time.Now())
		record := approvalRecord(item, "mod-1")
		record.OccurredAt = time.Now().Add(time.Duration(i) * time.Second)
		if _, err := queueRepo.ConditionalTransition(ctx, item.ID, 0, domain.StateApproved, record); err != nil {
			t.Fatalf("transition failed: %v", err)
		}
	}

	records, err := historyRepo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].OccurredAt.Before(records[1].OccurredAt) {
		t.Error("expected newest first")
	}
}
