// Package changeplan реализует HTTP-обработчик смены тарифного плана.
package changeplan

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

// Handler управляет HTTP-запросами на смену плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс биллинга для смены плана.
type Service interface {
	ChangePlan(ctx context.Context, req models.ChangePlanRequest) error
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
// @Summary Сменить тарифный план
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.ChangePlanRequest true "Новый план"
// @Success 200 {object} response.Response "План изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или план"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Биллинг не сконфигурирован"
// @Router /api/billing/change-plan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.changeplan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ChangePlanRequest
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

	err := h.service.ChangePlan(r.Context(), req)
	switch {
	case errors.Is(err, billingservice.ErrNotConfigured):
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("billing is not configured"))
		return
	case errors.Is(err, billingservice.ErrInvalidPlan):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan or billing cycle"))
		return
	case errors.Is(err, billingservice.ErrSubscriptionNotFound),
		errors.Is(err, billingservice.ErrNoStripeSubscription):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	case err != nil:
		log.Error("failed to change plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not change plan"))
		return
	}

	log.Info("plan changed", slog.String("user_id", req.UserID), slog.String("plan", req.Plan))
	render.JSON(w, r, response.OKWithData(map[string]any{"changed": true}))
}
