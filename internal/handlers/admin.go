package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/services"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// AdminServiceInterface defines the dashboard, moderation and plan contract.
type AdminServiceInterface interface {
	GetDashboardStats(ctx context.Context) (*services.DashboardStatsResponse, error)
	ModerateListing(ctx context.Context, admin *models.User, propertyID, status string) (*models.Listing, error)
	ChangeSubscription(ctx context.Context, admin *models.User, userID, tier string) (*models.User, error)
}

// AuditLogReader pages through the audit trail.
type AuditLogReader interface {
	List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error)
}

// AdminHandler handles admin HTTP requests.
type AdminHandler struct {
	service   AdminServiceInterface
	audit     AuditLogReader
	validator *Validator
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service AdminServiceInterface, audit AuditLogReader, validator *Validator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service:   service,
		audit:     audit,
		validator: validator,
		logger:    logger,
	}
}

// ModerateListingRequest sets a listing's moderation status
type ModerateListingRequest struct {
	Status string `json:"status" validate:"required,moderation_status"`
}

// ChangeSubscriptionRequest moves a user to another plan
type ChangeSubscriptionRequest struct {
	SubscriptionType string `json:"subscription_type" validate:"required,tier"`
}

// SubscriptionResponse is a user's plan after a change
type SubscriptionResponse struct {
	UserID           string `json:"user_id"`
	SubscriptionType string `json:"subscription_type"`
	UpdatedAt        string `json:"updated_at"`
}

// AuditLogResponse represents an audit log entry in HTTP response
type AuditLogResponse struct {
	ID            string                 `json:"id"`
	EventType     string                 `json:"event_type"`
	ActorID       *string                `json:"actor_id,omitempty"`
	TargetID      *string                `json:"target_id,omitempty"`
	ResourceType  *string                `json:"resource_type,omitempty"`
	ResourceID    *string                `json:"resource_id,omitempty"`
	Action        string                 `json:"action"`
	Success       bool                   `json:"success"`
	FailureReason *string                `json:"failure_reason,omitempty"`
	IPAddress     *string                `json:"ip_address,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     string                 `json:"created_at"`
}

// ListAuditLogsResponse is one page of the audit trail
type ListAuditLogsResponse struct {
	Logs   []*AuditLogResponse `json:"logs"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// GetDashboardStats handles GET /admin/stats
func (h *AdminHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

// ModerateListing handles PATCH /admin/listings/{id}/status
func (h *AdminHandler) ModerateListing(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetUserFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req ModerateListingRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.validator.ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	listing, err := h.service.ModerateListing(r.Context(), admin, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, listingModelToResponse(listing))
}

// ChangeSubscription handles PUT /admin/users/{id}/subscription
func (h *AdminHandler) ChangeSubscription(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetUserFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req ChangeSubscriptionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.validator.ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.ChangeSubscription(r.Context(), admin, chi.URLParam(r, "id"), req.SubscriptionType)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SubscriptionResponse{
		UserID:           user.ID,
		SubscriptionType: user.SubscriptionType,
		UpdatedAt:        user.UpdatedAt.Format(time.RFC3339),
	})
}

// ListAuditLogs handles GET /admin/audit-logs
// Accepts optional ?event_type=, ?actor_id=, ?limit= and ?offset=.
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.AuditLogFilter{EventType: q.Get("event_type")}

	if raw := q.Get("actor_id"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "invalid actor_id")
			return
		}
		filter.ActorID = &actorID
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = l
	}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = o
	}
	filter = filter.Normalize()

	logs, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	resp := ListAuditLogsResponse{
		Logs:   make([]*AuditLogResponse, len(logs)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i, log := range logs {
		resp.Logs[i] = auditLogToResponse(log)
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// auditLogToResponse converts an audit log model to a response DTO
func auditLogToResponse(log *models.AuditLog) *AuditLogResponse {
	resp := &AuditLogResponse{
		ID:            log.ID.String(),
		EventType:     log.EventType,
		ResourceType:  log.ResourceType,
		ResourceID:    log.ResourceID,
		Action:        log.Action,
		Success:       log.Success,
		FailureReason: log.FailureReason,
		IPAddress:     log.IPAddress,
		Metadata:      log.Metadata,
		CreatedAt:     log.CreatedAt.Format(time.RFC3339),
	}

	if log.ActorID != nil {
		actorStr := log.ActorID.String()
		resp.ActorID = &actorStr
	}

	if log.TargetID != nil {
		targetStr := log.TargetID.String()
		resp.TargetID = &targetStr
	}

	return resp
}
