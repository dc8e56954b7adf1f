package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/repository"
)

func setupExportService(t *testing.T) (*ExportService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.QueueItem{}, &domain.HistoryRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewExportService(repository.NewQueueRepository(db), nil, 0), db
}

func seedExportItem(t *testing.T, db *gorm.DB, uid string, state domain.State) *domain.QueueItem {
	t.Helper()
	item := &domain.QueueItem{
		PostingUID:  uid,
		PostingType: domain.PostingTypeStory,
		Title:       "Posting " + uid,
		AuthorID:    "author-1",
		State:       state,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return item
}

func TestExport_CSV(t *testing.T) {
	svc, db := setupExportService(t)
	seedExportItem(t, db, "uid-csv-1", domain.StatePending)
	seedExportItem(t, db, "uid-csv-2", domain.StateApproved)
	seedExportItem(t, db, "uid-csv-3", domain.StateRejected)

	result, err := svc.Export(context.Background(), domain.QueueFilter{}, ExportFormatCSV, false)

	assert.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, 3, result.ItemCount)

	rows, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	assert.NoError(t, err)
	if assert.Len(t, rows, 4) { // header + 3 items
		assert.Equal(t, csvHeader, rows[0])
		assert.Len(t, rows[1], len(csvHeader))
	}
}

func TestExport_JSON(t *testing.T) {
	svc, db := setupExportService(t)
	seedExportItem(t, db, "uid-json-1", domain.StatePending)
	seedExportItem(t, db, "uid-json-2", domain.StateEscalated)

	result, err := svc.Export(context.Background(), domain.QueueFilter{}, ExportFormatJSON, false)

	assert.NoError(t, err)
	assert.Equal(t, "application/json", result.ContentType)

	var items []domain.QueueItem
	assert.NoError(t, json.Unmarshal(result.Data, &items))
	assert.Len(t, items, 2)
}

func TestExport_FilterApplied(t *testing.T) {
	svc, db := setupExportService(t)
	seedExportItem(t, db, "uid-f-1", domain.StatePending)
	seedExportItem(t, db, "uid-f-2", domain.StateApproved)

	result, err := svc.Export(context.Background(), domain.QueueFilter{
		States: []domain.State{domain.StateApproved},
	}, ExportFormatJSON, false)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.ItemCount)
}

func TestExport_WalksEveryPage(t *testing.T) {
	svc, db := setupExportService(t)
	for i := 0; i < maxPerPage+5; i++ {
		seedExportItem(t, db, fmt.Sprintf("uid-page-%03d", i), domain.StatePending)
	}

	result, err := svc.Export(context.Background(), domain.QueueFilter{}, ExportFormatJSON, false)

	assert.NoError(t, err)
	assert.Equal(t, maxPerPage+5, result.ItemCount)
}

func TestExport_HonorsConfiguredLimit(t *testing.T) {
	_, db := setupExportService(t)
	for i := 0; i < 7; i++ {
		seedExportItem(t, db, fmt.Sprintf("uid-cap-%d", i), domain.StatePending)
	}
	svc := NewExportService(repository.NewQueueRepository(db), nil, 5)

	result, err := svc.Export(context.Background(), domain.QueueFilter{}, ExportFormatJSON, false)

	assert.NoError(t, err)
	assert.Equal(t, 5, result.ItemCount)
}

func TestExport_UnknownFormat(t *testing.T) {
	svc, _ := setupExportService(t)

	_, err := svc.Export(context.Background(), domain.QueueFilter{}, "xml", false)

	var verr *domain.ValidationError
	if assert.ErrorAs(t, err, &verr) {
		assert.Equal(t, []string{"format"}, verr.Fields())
	}
}

func TestExport_ArchiveWithoutStorage(t *testing.T) {
	svc, _ := setupExportService(t)

	_, err := svc.Export(context.Background(), domain.QueueFilter{}, ExportFormatCSV, true)

	assert.ErrorIs(t, err, ErrArchiveUnavailable)
}
