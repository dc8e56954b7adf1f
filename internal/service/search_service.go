package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/repository"
	"github.com/sgsgita/moderation-backend/pkg/cache"
	es "github.com/sgsgita/moderation-backend/pkg/elasticsearch"
	pkglogger "github.com/sgsgita/moderation-backend/pkg/logger"
)

// QueueIndex is the Elasticsearch index holding queue items
const QueueIndex = "moderation_queue"

const maxSearchQueryLen = 100

// QueueDocument is a queue item as indexed in Elasticsearch
type QueueDocument struct {
	QueueItemID uint64 `json:"queue_item_id"`
	PostingUID  string `json:"posting_uid"`
	PostingType string `json:"posting_type"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	AuthorID    string `json:"author_id"`
	State       string `json:"state"`
	Priority    int    `json:"priority"`
	CreatedAt   string `json:"created_at"`
}

// SearchHit is one search result with term highlights
type SearchHit struct {
	QueueItemID uint64              `json:"queue_item_id"`
	PostingUID  string              `json:"posting_uid"`
	PostingType string              `json:"posting_type"`
	Title       string              `json:"title"`
	State       string              `json:"state"`
	Score       float64             `json:"score"`
	Highlights  map[string][]string `json:"highlights,omitempty"`
}

// SearchResults is a search response page
type SearchResults struct {
	Query   string      `json:"query"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Hits    []SearchHit `json:"hits"`
}

// SearchService finds queue items by full text. Elasticsearch when
// configured, a title/excerpt LIKE fallback through the primary store
// otherwise, so search never disappears with the cluster.
type SearchService struct {
	esClient  *es.Client
	queueRepo *repository.QueueRepository
	cache     cache.Service
}

// NewSearchService creates a SearchService. esClient may be nil.
func NewSearchService(esClient *es.Client, queueRepo *repository.QueueRepository, cacheService cache.Service) *SearchService {
	svc := &SearchService{esClient: esClient, queueRepo: queueRepo, cache: cacheService}
	if esClient != nil {
		if err := svc.ensureIndex(context.Background()); err != nil {
			pkglogger.GetLogger().Error().Err(err).Msg("failed to create search index")
		}
	}
	return svc
}

// Available reports whether full-text search is backed by Elasticsearch
func (s *SearchService) Available() bool {
	return s.esClient != nil
}

func (s *SearchService) ensureIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"queue_item_id": map[string]interface{}{"type": "long"},
				"posting_uid":   map[string]interface{}{"type": "keyword"},
				"posting_type":  map[string]interface{}{"type": "keyword"},
				"title":         map[string]interface{}{"type": "text"},
				"excerpt":       map[string]interface{}{"type": "text"},
				"author_id":     map[string]interface{}{"type": "keyword"},
				"state":         map[string]interface{}{"type": "keyword"},
				"priority":      map[string]interface{}{"type": "integer"},
				"created_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
	return s.esClient.CreateIndex(ctx, QueueIndex, mapping)
}

// IndexItem upserts one queue item into the index. Called on enqueue and
// after every accepted transition so the indexed state tracks the store.
func (s *SearchService) IndexItem(ctx context.Context, item *domain.QueueItem) error {
	if s.esClient == nil {
		return nil
	}
	return s.esClient.IndexDocument(ctx, QueueIndex, strconv.FormatUint(item.ID, 10), docFromItem(item))
}

// DeleteItem removes a queue item from the index
func (s *SearchService) DeleteItem(ctx context.Context, id uint64) error {
	if s.esClient == nil {
		return nil
	}
	return s.esClient.DeleteDocument(ctx, QueueIndex, strconv.FormatUint(id, 10))
}

// Search runs a full-text query over titles and excerpts
func (s *SearchService) Search(ctx context.Context, query string, states []domain.State, page, perPage int) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Violations: []domain.FieldViolation{
			{Field: "q", Message: "is required"},
		}}
	}
	if utf8.RuneCountInString(query) > maxSearchQueryLen {
		return nil, &domain.ValidationError{Violations: []domain.FieldViolation{
			{Field: "q", Message: "must be at most 100 characters"},
		}}
	}
	for _, state := range states {
		if !state.Valid() {
			return nil, &domain.ValidationError{Violations: []domain.FieldViolation{
				{Field: "states", Message: "unknown state: " + string(state)},
			}}
		}
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	key := searchCacheKey(query, states, page, perPage)
	if data, err := s.cache.GetSearch(ctx, key); err == nil {
		var cached SearchResults
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return &cached, nil
		}
	}

	var (
		results *SearchResults
		err     error
	)
	if s.esClient != nil {
		results, err = s.searchES(ctx, query, states, page, perPage)
	} else {
		results, err = s.searchFallback(ctx, query, states, page, perPage)
	}
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.SetSearch(ctx, key, results); cacheErr != nil {
		pkglogger.GetLogger().Warn().Err(cacheErr).Msg("failed to cache search results")
	}
	return results, nil
}

func (s *SearchService) searchES(ctx context.Context, query string, states []domain.State, page, perPage int) (*SearchResults, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "excerpt"},
				"type":   "best_fields",
			},
		},
	}

	var filter []map[string]interface{}
	if len(states) > 0 {
		values := make([]string, len(states))
		for i, state := range states {
			values[i] = string(state)
		}
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"state": values},
		})
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"title":   map[string]interface{}{"number_of_fragments": 0},
				"excerpt": map[string]interface{}{"fragment_size": 150, "number_of_fragments": 2},
			},
			"pre_tags":  []string{"<mark>"},
			"post_tags": []string{"</mark>"},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}

	from := (page - 1) * perPage
	resp, err := s.esClient.Search(ctx, QueueIndex, esQuery, from, perPage)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hit := SearchHit{Score: r.Score, Highlights: r.Highlight}
		if v, ok := r.Source["queue_item_id"].(float64); ok {
			hit.QueueItemID = uint64(v)
		}
		if v, ok := r.Source["posting_uid"].(string); ok {
			hit.PostingUID = v
		}
		if v, ok := r.Source["posting_type"].(string); ok {
			hit.PostingType = v
		}
		if v, ok := r.Source["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := r.Source["state"].(string); ok {
			hit.State = v
		}
		hits = append(hits, hit)
	}

	return &SearchResults{
		Query:   query,
		Total:   resp.Total,
		Page:    page,
		PerPage: perPage,
		Hits:    hits,
	}, nil
}

// searchFallback serves search from the primary store when Elasticsearch
// is not configured. Substring match on title and excerpt, no highlights.
func (s *SearchService) searchFallback(ctx context.Context, query string, states []domain.State, page, perPage int) (*SearchResults, error) {
	pageResult, err := s.queueRepo.Query(ctx, domain.QueueFilter{
		States:    states,
		Search:    query,
		SortBy:    domain.SortByCreatedAt,
		SortOrder: domain.SortOrderDesc,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(pageResult.Items))
	for _, item := range pageResult.Items {
		hits = append(hits, SearchHit{
			QueueItemID: item.ID,
			PostingUID:  item.PostingUID,
			PostingType: item.PostingType,
			Title:       item.Title,
			State:       string(item.State),
		})
	}

	return &SearchResults{
		Query:   query,
		Total:   pageResult.Total,
		Page:    page,
		PerPage: perPage,
		Hits:    hits,
	}, nil
}

// BulkReindex rebuilds the index from the primary store, paging through
// every queue item. Used after mapping changes or index loss.
func (s *SearchService) BulkReindex(ctx context.Context) (int, error) {
	if s.esClient == nil {
		return 0, fmt.Errorf("elasticsearch not available")
	}

	indexed := 0
	for page := 1; ; page++ {
		result, err := s.queueRepo.Query(ctx, domain.QueueFilter{
			SortBy:    domain.SortByCreatedAt,
			SortOrder: domain.SortOrderAsc,
			Page:      page,
			PerPage:   maxPerPage,
		})
		if err != nil {
			return indexed, err
		}
		if len(result.Items) == 0 {
			break
		}

		docs := make(map[string]interface{}, len(result.Items))
		for i := range result.Items {
			item := &result.Items[i]
			docs[strconv.FormatUint(item.ID, 10)] = docFromItem(item)
		}
		if err := s.esClient.BulkIndex(ctx, QueueIndex, docs); err != nil {
			return indexed, err
		}
		indexed += len(docs)

		if !result.HasNext {
			break
		}
	}

	pkglogger.GetLogger().Info().Int("count", indexed).Msg("queue index rebuilt")
	return indexed, nil
}

func docFromItem(item *domain.QueueItem) *QueueDocument {
	return &QueueDocument{
		QueueItemID: item.ID,
		PostingUID:  item.PostingUID,
		PostingType: item.PostingType,
		Title:       item.Title,
		Excerpt:     item.Excerpt,
		AuthorID:    item.AuthorID,
		State:       string(item.State),
		Priority:    item.Priority,
		CreatedAt:   item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func searchCacheKey(query string, states []domain.State, page, perPage int) string {
	var b strings.Builder
	b.WriteString(query)
	for _, state := range states {
		b.WriteString("|")
		b.WriteString(string(state))
	}
	fmt.Fprintf(&b, "|%d|%d", page, perPage)
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
