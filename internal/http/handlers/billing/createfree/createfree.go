// Package createfree реализует HTTP-обработчик перехода на бесплатный план.
package createfree

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/stockfortress/stockfortress/internal/http/response"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
	billingservice "github.com/stockfortress/stockfortress/internal/services/billing"
)

// Handler управляет HTTP-запросами на бесплатную подписку.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс биллинга для бесплатного плана.
type Service interface {
	CreateFree(ctx context.Context, userID string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Перейти на бесплатный план
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.FreeSubscriptionRequest true "Идентификатор пользователя"
// @Success 200 {object} response.Response "План создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Биллинг не сконфигурирован"
// @Router /api/billing/create-free [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.createfree"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.FreeSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.CreateFree(r.Context(), req.UserID)
	if errors.Is(err, billingservice.ErrNotConfigured) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("billing is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to create free subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create free subscription"))
		return
	}

	log.Info("free subscription created", slog.String("user_id", req.UserID))
	render.JSON(w, r, response.OKWithData(map[string]any{"created": true}))
}
