package passwordreset

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/study-tracker/internal/transport"
	"github.com/frahmantamala/study-tracker/pkg/logger"
)

type ServiceAPI interface {
	RequestReset(ctx context.Context, dto ForgotPasswordDTO, ip string) (*MessageResponse, error)
	Redeem(ctx context.Context, dto ResetPasswordDTO) (*MessageResponse, error)
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

// ForgotPassword handles POST /forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	ip := transport.ForwardedIP(r)
	if ip == "" {
		ip = UnknownIP
	}

	resp, err := h.Service.RequestReset(r.Context(), dto, ip)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// ResetPassword handles POST /reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	resp, err := h.Service.Redeem(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
