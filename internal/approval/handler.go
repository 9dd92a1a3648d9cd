package approval

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/study-tracker/internal"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/frahmantamala/study-tracker/internal/transport"
	"github.com/frahmantamala/study-tracker/pkg/logger"
)

type ServiceAPI interface {
	GetStatus(ctx context.Context, userID int64) (Status, error)
	CheckAccess(ctx context.Context, principal *coreuser.User) error
	ListApprovals(ctx context.Context, principal *coreuser.User) ([]*Request, error)
	Decide(ctx context.Context, reviewer *coreuser.User, dto DecisionDTO) (*Request, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetStatus handles GET /user/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := coreuser.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthorized)
		return
	}

	status, err := h.Service.GetStatus(r.Context(), principal.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, StatusResponse{Status: status})
}

// ListApprovals handles GET /admin/approvals
func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	principal, ok := coreuser.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthorized)
		return
	}

	requests, err := h.Service.ListApprovals(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if requests == nil {
		requests = []*Request{}
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{Approvals: requests})
}

// DecideApproval handles PATCH /admin/approvals
func (h *Handler) DecideApproval(w http.ResponseWriter, r *http.Request) {
	principal, ok := coreuser.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthorized)
		return
	}

	var dto DecisionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	updated, err := h.Service.Decide(r.Context(), principal, dto)
	if err != nil {
		h.Logger.Warn("DecideApproval: service error", "error", err, "approval_id", dto.ID, "reviewer_id", principal.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DecisionResponse{Success: true, Approval: updated})
}

// Gate rejects requests from accounts that are not approved.
func (h *Handler) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := coreuser.FromContext(r.Context())
		if !ok {
			h.HandleServiceError(w, internal.ErrUnauthorized)
			return
		}

		if err := h.Service.CheckAccess(r.Context(), principal); err != nil {
			h.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
