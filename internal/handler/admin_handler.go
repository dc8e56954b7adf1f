package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sgsgita/moderation-backend/internal/analytics"
	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/middleware"
	"github.com/sgsgita/moderation-backend/internal/service"
	"github.com/sgsgita/moderation-backend/pkg/ginutil"
)

// AdminHandler handles the admin surface: moderator accounts, decision
// analytics, index maintenance and the audit trail.
type AdminHandler struct {
	moderators service.ModeratorService
	analytics  *analytics.Repository
	search     *service.SearchService
	audit      *middleware.AuditLogger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(moderators service.ModeratorService) *AdminHandler {
	return &AdminHandler{moderators: moderators}
}

// SetAnalytics sets the analytics repository (optional)
func (h *AdminHandler) SetAnalytics(repo *analytics.Repository) {
	h.analytics = repo
}

// SetSearchService sets the search service for index maintenance (optional)
func (h *AdminHandler) SetSearchService(search *service.SearchService) {
	h.search = search
}

// SetAuditLogger sets the audit logger (optional)
func (h *AdminHandler) SetAuditLogger(audit *middleware.AuditLogger) {
	h.audit = audit
}

func (h *AdminHandler) auditLog(c *gin.Context, action, resource, resourceID, details string) {
	if h.audit != nil {
		h.audit.LogRequest(c, action, resource, resourceID, details)
	}
}

// ListModerators handles GET /api/v1/admin/moderators
// @Summary List moderator accounts
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/moderators [get]
func (h *AdminHandler) ListModerators(c *gin.Context) {
	page := ginutil.QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := ginutil.QueryInt(c, "limit", 20)
	if limit < 1 {
		limit = 20
	}

	moderators, meta, err := h.moderators.List(c.Request.Context(), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list moderators", err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: moderators, Meta: meta})
}

// GetModerator handles GET /api/v1/admin/moderators/:id
// @Summary Get a moderator account
// @Tags admin
// @Produce json
// @Param id path int true "Moderator ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/moderators/{id} [get]
func (h *AdminHandler) GetModerator(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid moderator id", nil)
		return
	}

	moderator, err := h.moderators.Get(c.Request.Context(), id)
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "Moderator not found", nil)
		return
	}
	common.SuccessResponse(c, moderator, nil)
}

// CreateModerator handles POST /api/v1/admin/moderators
// @Summary Create a moderator account
// @Tags admin
// @Accept json
// @Produce json
// @Param request body domain.CreateModeratorRequest true "New account"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/moderators [post]
func (h *AdminHandler) CreateModerator(c *gin.Context) {
	var req domain.CreateModeratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	moderator, err := h.moderators.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondAdminError(c, err, "Failed to create moderator")
		return
	}

	h.auditLog(c, "moderator_create", "moderator", strconv.FormatUint(moderator.ID, 10),
		fmt.Sprintf("username=%s role=%s", moderator.Username, moderator.Role))
	c.JSON(http.StatusCreated, common.APIResponse{Data: moderator})
}

// UpdateModeratorRole handles PUT /api/v1/admin/moderators/:id/role
// @Summary Change a moderator's role
// @Description Takes effect on the account's next token refresh.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Moderator ID"
// @Param request body domain.UpdateModeratorRoleRequest true "New role"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/moderators/{id}/role [put]
func (h *AdminHandler) UpdateModeratorRole(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid moderator id", nil)
		return
	}

	var req domain.UpdateModeratorRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.moderators.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		h.respondAdminError(c, err, "Failed to update role")
		return
	}

	h.auditLog(c, "moderator_role_change", "moderator", c.Param("id"), "role="+string(req.Role))
	common.SuccessResponse(c, gin.H{"message": "Role updated"}, nil)
}

// SetModeratorStatus handles PUT /api/v1/admin/moderators/:id/status
// @Summary Enable or disable a moderator account
// @Description Disabled accounts cannot log in or refresh tokens. Admins cannot disable themselves.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Moderator ID"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/moderators/{id}/status [put]
func (h *AdminHandler) SetModeratorStatus(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid moderator id", nil)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.moderators.SetStatus(c.Request.Context(), middleware.GetActorID(c), id, req.Status); err != nil {
		h.respondAdminError(c, err, "Failed to update status")
		return
	}

	h.auditLog(c, "moderator_status_change", "moderator", c.Param("id"), "status="+req.Status)
	common.SuccessResponse(c, gin.H{"message": "Status updated"}, nil)
}

// DeleteModerator handles DELETE /api/v1/admin/moderators/:id
// @Summary Delete a moderator account
// @Description Self-deletion is refused.
// @Tags admin
// @Produce json
// @Param id path int true "Moderator ID"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/moderators/{id} [delete]
func (h *AdminHandler) DeleteModerator(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid moderator id", nil)
		return
	}

	if err := h.moderators.Delete(c.Request.Context(), middleware.GetActorID(c), id); err != nil {
		h.respondAdminError(c, err, "Failed to delete moderator")
		return
	}

	h.auditLog(c, "moderator_delete", "moderator", c.Param("id"), "")
	common.SuccessResponse(c, gin.H{"message": "Moderator deleted"}, nil)
}

// GetDecisionAnalytics handles GET /api/v1/admin/analytics/decisions
// @Summary Decision analytics
// @Description Daily decision counts, per-actor activity and top rejection reasons over the requested window, from the analytics store.
// @Tags admin
// @Produce json
// @Param days query int false "Window in days (default 7, max 90)"
// @Success 200 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/analytics/decisions [get]
func (h *AdminHandler) GetDecisionAnalytics(c *gin.Context) {
	if h.analytics == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Analytics storage not configured", nil)
		return
	}

	days := ginutil.QueryInt(c, "days", 7)
	if days < 1 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	report, err := h.analytics.DecisionReport(c.Request.Context(), days)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to query analytics", err)
		return
	}

	common.SuccessResponse(c, report, nil)
}

// ReindexSearch handles POST /api/v1/admin/search/reindex
// @Summary Rebuild the search index
// @Description Walks the queue store and re-indexes every item. Returns the number indexed.
// @Tags admin
// @Produce json
// @Success 200 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/search/reindex [post]
func (h *AdminHandler) ReindexSearch(c *gin.Context) {
	if h.search == nil || !h.search.Available() {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Search is not configured", nil)
		return
	}

	count, err := h.search.BulkReindex(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Reindex failed", err)
		return
	}

	h.auditLog(c, "reindex", "index", service.QueueIndex, fmt.Sprintf("indexed=%d", count))
	common.SuccessResponse(c, gin.H{"indexed": count}, nil)
}

// ListAuditLogs handles GET /api/v1/admin/audit-logs
// @Summary List audit log entries
// @Tags admin
// @Produce json
// @Param actor_id query string false "Filter by actor"
// @Param action query string false "Filter by action"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	if h.audit == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Audit log not configured", nil)
		return
	}

	page := ginutil.QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := ginutil.QueryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, total, err := h.audit.ListAuditLogs(c.Request.Context(), c.Query("actor_id"), c.Query("action"), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list audit logs", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{
		Data: logs,
		Meta: &common.Meta{Page: page, Limit: limit, Total: total},
	})
}

func (h *AdminHandler) respondAdminError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, common.ErrModeratorExists):
		common.ErrorResponse(c, http.StatusConflict, "Username or email already in use", nil)
	case errors.Is(err, common.ErrModeratorNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Moderator not found", nil)
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Operation not permitted on own account", nil)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, fallback, err)
	}
}
