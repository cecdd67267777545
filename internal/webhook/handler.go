package webhook

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gudangku/gudangku/internal/platform/httpx"
)

// Handler wires the inbound webhook endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers webhook routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/receive-stock", h.receiveStock)
}

func (h *Handler) receiveStock(w http.ResponseWriter, r *http.Request) {
	var input ReceiveStockRequest
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}
	result, err := h.service.ReceiveStock(r.Context(), input)
	if err != nil {
		h.logger.Error("receive stock", slog.String("reference", input.Reference), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
