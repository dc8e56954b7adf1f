package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/repository"
	"github.com/sgsgita/moderation-backend/pkg/logger"
	"github.com/sgsgita/moderation-backend/pkg/storage"
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

const presignedURLExpiry = 24 * time.Hour

// defaultExportLimit bounds an export when no limit is configured
const defaultExportLimit = 10000

// ErrArchiveUnavailable is returned when archive=true is requested but no
// object storage is configured
var ErrArchiveUnavailable = errors.New("archive storage not configured")

// ExportResult describes a produced export. Data is inline for direct
// downloads; ArchiveKey and DownloadURL are set when the export was
// archived to object storage instead.
type ExportResult struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	ItemCount   int    `json:"item_count"`
	Data        []byte `json:"-"`
	ArchiveKey  string `json:"archive_key,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// ExportService produces queue exports for offline review and compliance
// archiving
type ExportService struct {
	queueRepo *repository.QueueRepository
	s3        *storage.S3Client
	limit     int
}

// NewExportService creates an ExportService. s3 may be nil; archiving is
// then unavailable but direct downloads still work. limit caps the number
// of exported items; zero or negative means the default of 10000.
func NewExportService(queueRepo *repository.QueueRepository, s3 *storage.S3Client, limit int) *ExportService {
	if limit <= 0 {
		limit = defaultExportLimit
	}
	return &ExportService{queueRepo: queueRepo, s3: s3, limit: limit}
}

// Export renders every item matching the filter. With archive set, the
// result is uploaded to object storage and returned as a presigned URL
// rather than inline bytes.
func (s *ExportService) Export(ctx context.Context, filter domain.QueueFilter, format string, archive bool) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatJSON {
		return nil, &domain.ValidationError{Violations: []domain.FieldViolation{
			{Field: "format", Message: "must be one of: csv, json"},
		}}
	}
	if archive && s.s3 == nil {
		return nil, ErrArchiveUnavailable
	}

	normalized, verr := NormalizeFilter(filter)
	if verr != nil {
		return nil, verr
	}

	items, err := s.collectAll(ctx, normalized)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Format:    format,
		ItemCount: len(items),
	}

	switch format {
	case ExportFormatCSV:
		result.ContentType = "text/csv"
		result.Filename = "queue_export.csv"
		result.Data, err = renderCSV(items)
	case ExportFormatJSON:
		result.ContentType = "application/json"
		result.Filename = "queue_export.json"
		result.Data, err = json.MarshalIndent(items, "", "  ")
	}
	if err != nil {
		return nil, err
	}

	if archive {
		key := storage.GenerateKey("exports", result.Filename)
		upload, err := s.s3.Upload(ctx, key, bytes.NewReader(result.Data), result.ContentType, int64(len(result.Data)))
		if err != nil {
			return nil, err
		}
		url, err := s.s3.GetPresignedURL(ctx, upload.Key, presignedURLExpiry)
		if err != nil {
			return nil, err
		}
		result.ArchiveKey = upload.Key
		result.DownloadURL = url
		result.Data = nil

		logger.GetLogger().Info().
			Str("key", upload.Key).
			Int("items", result.ItemCount).
			Msg("queue export archived")
	}

	return result, nil
}

// collectAll pages through the result set up to the export limit. Exports
// ignore the filter's own pagination and walk every page.
func (s *ExportService) collectAll(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueItem, error) {
	filter.PerPage = maxPerPage

	var items []domain.QueueItem
	for page := 1; ; page++ {
		filter.Page = page
		result, err := s.queueRepo.Query(ctx, filter)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(items) >= s.limit {
			items = items[:s.limit]
			break
		}
		if !result.HasNext {
			break
		}
	}
	return items, nil
}

var csvHeader = []string{
	"id", "posting_uid", "posting_type", "title", "author_id",
	"state", "version", "priority", "escalation_reason",
	"last_actor_id", "last_action_at", "created_at",
}

func renderCSV(items []domain.QueueItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i := range items {
		item := &items[i]
		row := []string{
			strconv.FormatUint(item.ID, 10),
			item.PostingUID,
			item.PostingType,
			item.Title,
			item.AuthorID,
			string(item.State),
			strconv.FormatUint(item.Version, 10),
			strconv.Itoa(item.Priority),
			derefOrEmpty(item.EscalationReason),
			derefOrEmpty(item.LastActorID),
			formatTimePtr(item.LastActionAt),
			item.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
