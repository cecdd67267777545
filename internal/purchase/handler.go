package purchase

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gudangku/gudangku/internal/platform/httpx"
	"github.com/gudangku/gudangku/internal/shared"
)

// Handler wires HTTP endpoints for the purchase request lifecycle.
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

// MountRoutes registers purchase routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/warehouses", h.warehouses)
	r.Get("/stats", h.stats)
	r.Route("/request", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	params := shared.ListParams{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	}
	result, err := h.service.List(r.Context(), params)
	if err != nil {
		h.logger.Error("list purchase requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateRequest
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create purchase request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get purchase request", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input UpdateRequest
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}
	if input.Items != nil {
		for _, line := range *input.Items {
			if err := h.validator.Struct(line); err != nil {
				httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
				return
			}
		}
	}
	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update purchase request", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete purchase request", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Purchase request deleted"})
}

func (h *Handler) warehouses(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Warehouses(r.Context())
	if err != nil {
		h.logger.Error("list warehouses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("purchase stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func requestID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", ErrValidation)
	}
	return id, nil
}
