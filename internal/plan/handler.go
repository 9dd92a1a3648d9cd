package plan

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
	Create(ctx context.Context, userID int64, dto CreatePlanDTO) (*Plan, error)
	ListDay(ctx context.Context, userID int64, day string) (*DayResponse, error)
	Counts(ctx context.Context, userID int64) (*CountsResponse, error)
	MarkDone(ctx context.Context, userID, planID int64) (*Plan, error)
	MarkSkipped(ctx context.Context, userID, planID int64) (*Plan, error)
	History(ctx context.Context, userID int64) ([]*Plan, error)
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

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*coreuser.User, bool) {
	u, ok := coreuser.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthorized)
		return nil, false
	}
	return u, true
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreatePlanDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	p, err := h.Service.Create(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreatePlan: plan created", "plan_id", p.ID, "user_id", user.ID)
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.ListDay(r.Context(), user.ID, r.URL.Query().Get("day"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetCounts(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.Counts(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkDone(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.MarkDone)
}

func (h *Handler) MarkSkipped(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.MarkSkipped)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64, int64) (*Plan, error)) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	idStr := chi.URLParam(r, "id")
	planID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || planID <= 0 {
		h.Logger.Warn("invalid plan ID", "id", idStr)
		h.HandleServiceError(w, internal.ErrInvalidParameters)
		return
	}

	p, err := apply(r.Context(), user.ID, planID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	plans, err := h.Service.History(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, HistoryResponse{Plans: plans})
}
