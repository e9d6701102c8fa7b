// Package subscription реализует HTTP-обработчик выдачи подписки
// пользователя. При отсутствии строки возвращается бесплатный план.
package subscription

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/stockfortress/stockfortress/internal/http/response"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
	billingservice "github.com/stockfortress/stockfortress/internal/services/billing"
)

// Handler управляет HTTP-запросами на чтение подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс биллинга для чтения подписки.
type Service interface {
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подписка пользователя
// @Tags Billing
// @Produce json
// @Param userId path string true "Идентификатор пользователя"
// @Success 200 {object} models.Subscription "Подписка"
// @Failure 503 {object} response.ErrorResponse "Биллинг не сконфигурирован"
// @Router /api/billing/subscription/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.subscription"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "userId")
	sub, err := h.service.GetSubscription(r.Context(), userID)
	if errors.Is(err, billingservice.ErrNotConfigured) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("billing is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to get subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get subscription"))
		return
	}

	render.JSON(w, r, sub)
}
