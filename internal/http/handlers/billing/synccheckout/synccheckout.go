// Package synccheckout реализует HTTP-обработчик синхронизации
// завершённой checkout-сессии с локальным хранилищем.
package synccheckout

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

// Handler управляет HTTP-запросами на синхронизацию checkout-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс биллинга для синхронизации.
type Service interface {
	SyncCheckout(ctx context.Context, sessionID string) error
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
// @Summary Синхронизировать checkout-сессию
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.SyncCheckoutRequest true "Идентификатор сессии"
// @Success 200 {object} response.Response "Синхронизировано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Биллинг не сконфигурирован"
// @Router /api/billing/sync-checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.synccheckout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SyncCheckoutRequest
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

	err := h.service.SyncCheckout(r.Context(), req.SessionID)
	if errors.Is(err, billingservice.ErrNotConfigured) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("billing is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to sync checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sync checkout session"))
		return
	}

	log.Info("checkout session synced", slog.String("session_id", req.SessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{"synced": true}))
}
