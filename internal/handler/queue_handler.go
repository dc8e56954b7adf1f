package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/middleware"
	"github.com/sgsgita/moderation-backend/internal/service"
	"github.com/sgsgita/moderation-backend/pkg/ginutil"
)

var enqueueValidator = validator.New()

// QueueHandler handles moderation queue requests
type QueueHandler struct {
	service *service.QueueService
}

// NewQueueHandler creates a new QueueHandler
func NewQueueHandler(service *service.QueueService) *QueueHandler {
	return &QueueHandler{service: service}
}

// Enqueue handles POST /api/v1/queue
// @Summary Submit a posting for review
// @Description Called by the content service. Creates a pending queue item at version 0. Re-submitting the same posting_uid returns the existing item.
// @Tags queue
// @Accept json
// @Produce json
// @Param request body domain.EnqueueRequest true "Posting to review"
// @Success 200 {object} common.APIResponse "Already enqueued"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /queue [post]
func (h *QueueHandler) Enqueue(c *gin.Context) {
	var req domain.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := enqueueValidator.Struct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	item, created, err := h.service.Enqueue(c.Request.Context(), &req)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, common.APIResponse{Data: item})
}

// SubmitAction handles POST /api/v1/queue/:id/actions
// @Summary Submit a moderation decision
// @Description Applies approve/reject/escalate to a queue item. The request carries the version the actor last saw; a stale version is refused whole with the current state and version in the error details.
// @Tags queue
// @Accept json
// @Produce json
// @Param id path int true "Queue item ID"
// @Param request body domain.ActionRequest true "Decision"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse "INVALID_ACTION_PAYLOAD with field violations"
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse "VERSION_CONFLICT with current state and version"
// @Failure 422 {object} common.APIResponse "ILLEGAL_TRANSITION or TERMINAL_STATE"
// @Security BearerAuth
// @Router /queue/{id}/actions [post]
func (h *QueueHandler) SubmitAction(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid queue item id", nil)
		return
	}

	var req domain.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.QueueItemID = id
	req.Actor = middleware.GetActor(c)

	item, err := h.service.SubmitAction(c.Request.Context(), &req)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	common.SuccessResponse(c, item, nil)
}

// GetItem handles GET /api/v1/queue/:id
// @Summary Get a queue item
// @Tags queue
// @Produce json
// @Param id path int true "Queue item ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /queue/{id} [get]
func (h *QueueHandler) GetItem(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid queue item id", nil)
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	common.SuccessResponse(c, item, nil)
}

// GetHistory handles GET /api/v1/queue/:id/history
// @Summary Get a queue item's action trail
// @Description Returns accepted actions in occurrence order. An item that has seen no actions yet returns an empty list.
// @Tags queue
// @Produce json
// @Param id path int true "Queue item ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /queue/{id}/history [get]
func (h *QueueHandler) GetHistory(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid queue item id", nil)
		return
	}

	records, err := h.service.GetHistory(c.Request.Context(), id)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	common.SuccessResponse(c, records, nil)
}

// List handles GET /api/v1/queue
// @Summary List queue items
// @Description Filters are combined conjunctively. Sorting by created_at is a stable total order; priority sort surfaces escalated items first.
// @Tags queue
// @Produce json
// @Param state query string false "Comma-separated states (pending, escalated, approved, rejected)"
// @Param posting_type query string false "Posting type filter"
// @Param from query string false "Created-at lower bound (YYYY-MM-DD)"
// @Param to query string false "Created-at upper bound (YYYY-MM-DD, inclusive)"
// @Param search query string false "Title substring"
// @Param sort_by query string false "created_at (default) or priority"
// @Param sort_order query string false "asc or desc (default)"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Items per page (default 20, max 100)"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /queue [get]
func (h *QueueHandler) List(c *gin.Context) {
	filter, verr := parseQueueFilter(c)
	if verr != nil {
		respondModerationError(c, verr)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	common.SuccessResponse(c, page.Items, &common.Meta{
		Page:       page.Page,
		Limit:      page.PerPage,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	})
}

// GetStats handles GET /api/v1/queue/stats
// @Summary Queue statistics
// @Description Counts by state, today's decisions and the oldest open item, for the moderator dashboard. Served from cache when warm.
// @Tags queue
// @Produce json
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /queue/stats [get]
func (h *QueueHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondModerationError(c, err)
		return
	}

	common.SuccessResponse(c, stats, nil)
}

// parseQueueFilter reads the shared listing/export query parameters.
// Enumeration checks happen in the service; only shape errors are raised here.
func parseQueueFilter(c *gin.Context) (domain.QueueFilter, *domain.ValidationError) {
	var violations []domain.FieldViolation

	filter := domain.QueueFilter{
		PostingType: c.Query("posting_type"),
		Search:      c.Query("search"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
	}

	if raw := c.Query("state"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				filter.States = append(filter.States, domain.State(s))
			}
		}
	}

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			violations = append(violations, domain.FieldViolation{Field: "from", Message: "must be a date in YYYY-MM-DD form"})
		} else {
			filter.FromDate = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			violations = append(violations, domain.FieldViolation{Field: "to", Message: "must be a date in YYYY-MM-DD form"})
		} else {
			// Inclusive through the end of the named day
			end := t.Add(24*time.Hour - time.Second)
			filter.ToDate = &end
		}
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, domain.FieldViolation{Field: "page", Message: "must be an integer"})
		} else {
			filter.Page = n
		}
	}
	if raw := c.Query("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, domain.FieldViolation{Field: "per_page", Message: "must be an integer"})
		} else {
			filter.PerPage = n
		}
	}

	if len(violations) > 0 {
		return filter, &domain.ValidationError{Violations: violations}
	}
	return filter, nil
}

// respondModerationError maps the engine's error taxonomy onto HTTP. Every
// refusal carries a distinct code so dashboards can react without parsing
// messages.
func respondModerationError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		common.ErrorResponseWithCode(c, http.StatusBadRequest, "INVALID_ACTION_PAYLOAD",
			"Invalid payload", verr.Violations)
		return
	}

	var terr *domain.TerminalStateError
	if errors.As(err, &terr) {
		common.ErrorResponseWithCode(c, http.StatusUnprocessableEntity, "TERMINAL_STATE",
			"Item is already resolved", gin.H{"state": terr.State})
		return
	}

	var ierr *domain.IllegalTransitionError
	if errors.As(err, &ierr) {
		details := gin.H{"from_state": ierr.From, "action": ierr.Action}
		if ierr.Role != "" {
			details["role"] = ierr.Role
		}
		common.ErrorResponseWithCode(c, http.StatusUnprocessableEntity, "ILLEGAL_TRANSITION",
			"Transition not permitted", details)
		return
	}

	var cerr *domain.VersionConflictError
	if errors.As(err, &cerr) {
		common.ErrorResponseWithCode(c, http.StatusConflict, "VERSION_CONFLICT",
			"Item changed since it was read", gin.H{
				"current_state":   cerr.CurrentState,
				"current_version": cerr.CurrentVersion,
			})
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		common.ErrorResponseWithCode(c, http.StatusNotFound, "NOT_FOUND", "Queue item not found", nil)
		return
	}

	if errors.Is(err, domain.ErrStorageUnavailable) {
		common.ErrorResponseWithCode(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE",
			"Storage unavailable, retry later", nil)
		return
	}

	common.ErrorResponse(c, http.StatusInternalServerError, "Internal error", err)
}
