package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/service"
	"github.com/sgsgita/moderation-backend/pkg/ginutil"
)

// SearchHandler handles queue content search
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles GET /api/v1/queue/search
// @Summary Search queue items by content
// @Description Full-text search over title and excerpt with highlighting. Falls back to a title/excerpt substring scan against the primary store when the search cluster is down.
// @Tags queue
// @Produce json
// @Param q query string true "Query text (max 100 characters)"
// @Param state query string false "Comma-separated state filter"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /queue/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")

	var states []domain.State
	if raw := c.Query("state"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				states = append(states, domain.State(s))
			}
		}
	}

	page := ginutil.QueryInt(c, "page", 1)
	perPage := ginutil.QueryInt(c, "per_page", 20)

	results, err := h.searchService.Search(c.Request.Context(), query, states, page, perPage)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	common.SuccessResponse(c, results, nil)
}
