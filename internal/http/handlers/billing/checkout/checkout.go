// Package checkout реализует HTTP-обработчик создания checkout-сессии
// платёжного процессора.
package checkout

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

// Handler управляет HTTP-запросами на создание checkout-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс биллинга для создания сессии.
type Service interface {
	CreateCheckout(ctx context.Context, req models.CheckoutRequest) (string, error)
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
// @Summary Создать checkout-сессию
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Данные для checkout"
// @Success 200 {object} map[string]any "URL сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или план"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Биллинг не сконфигурирован"
// @Router /api/billing/create-checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CheckoutRequest
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

	url, err := h.service.CreateCheckout(r.Context(), req)
	switch {
	case errors.Is(err, billingservice.ErrNotConfigured):
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("billing is not configured"))
		return
	case errors.Is(err, billingservice.ErrInvalidPlan):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan or billing cycle"))
		return
	case err != nil:
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("user_id", req.UserID))
	render.JSON(w, r, map[string]any{"url": url})
}
