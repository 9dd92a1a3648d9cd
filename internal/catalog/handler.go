package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/study-tracker/internal"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/frahmantamala/study-tracker/internal/transport"
	"github.com/frahmantamala/study-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetCatalog(ctx context.Context) (*CatalogResponse, error)
	ListProgress(ctx context.Context, userID int64) (*ProgressResponse, error)
	ToggleProgress(ctx context.Context, userID, problemID int64) (*ToggleResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.GetCatalog(r.Context())
	if err != nil {
		h.Logger.Error("GetCatalog: failed to load catalog", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := coreuser.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthorized)
		return
	}

	resp, err := h.Service.ListProgress(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ToggleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := coreuser.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthorized)
		return
	}

	idStr := chi.URLParam(r, "id")
	problemID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || problemID <= 0 {
		h.Logger.Warn("invalid problem ID", "id", idStr)
		h.HandleServiceError(w, internal.ErrInvalidParameters)
		return
	}

	resp, err := h.Service.ToggleProgress(r.Context(), user.ID, problemID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ToggleProgress: progress updated", "user_id", user.ID, "problem_id", problemID, "solved", resp.Solved)
	h.WriteJSON(w, http.StatusOK, resp)
}
