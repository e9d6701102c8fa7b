// Package bulk реализует HTTP-обработчик массовой выдачи котировок.
package bulk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/stockfortress/stockfortress/internal/http/response"
	"github.com/stockfortress/stockfortress/internal/models"
)

// Handler управляет HTTP-запросами на котировки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс рыночных данных.
type Service interface {
	BulkQuotes(ctx context.Context, symbols []string) map[string]models.MarketQuote
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Котировки по списку тикеров
// @Tags Market
// @Produce json
// @Param tickers query string true "Тикеры через запятую"
// @Success 200 {object} map[string]models.MarketQuote "Котировки"
// @Failure 400 {object} response.ErrorResponse "Пустой список тикеров"
// @Router /api/market-data/bulk [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.market.bulk"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	raw := strings.TrimSpace(r.URL.Query().Get("tickers"))
	if raw == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("tickers query parameter is required"))
		return
	}

	quotes := h.service.BulkQuotes(r.Context(), strings.Split(raw, ","))
	log.Info("bulk quotes served", slog.Int("tickers", len(quotes)))
	render.JSON(w, r, quotes)
}
