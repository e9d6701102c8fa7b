// Package get реализует HTTP-обработчик выдачи отчёта по тикеру.
//
// Handler нормализует тикер из пути, вызывает оркестратор отчётов и
// возвращает JSON отчёта как есть, помечая попадание в кеш.
package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/stockfortress/stockfortress/internal/aiprovider"
	"github.com/stockfortress/stockfortress/internal/http/response"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
	reportservice "github.com/stockfortress/stockfortress/internal/services/report"
)

// Handler управляет HTTP-запросами на получение отчёта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс оркестратора отчётов.
type Service interface {
	GetReport(ctx context.Context, ticker string) (*models.ReportResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить отчёт по тикеру
// @Description Возвращает AI-отчёт по акции, из кеша или сгенерированный заново.
// @Tags Reports
// @Produce json
// @Param ticker path string true "Биржевой тикер"
// @Success 200 {object} map[string]any "Отчёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный тикер"
// @Failure 502 {object} response.ErrorResponse "Сбой генерации или неразбираемый ответ"
// @Failure 503 {object} response.ErrorResponse "Провайдер не сконфигурирован"
// @Router /api/report/{ticker} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ticker := chi.URLParam(r, "ticker")
	result, err := h.service.GetReport(r.Context(), ticker)
	switch {
	case errors.Is(err, reportservice.ErrInvalidTicker):
		log.Error("invalid ticker", slog.String("ticker", ticker))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid ticker"))
		return
	case errors.Is(err, aiprovider.ErrNotConfigured):
		log.Error("ai provider is not configured")
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("ai provider is not configured"))
		return
	case errors.Is(err, reportservice.ErrUnparseable):
		log.Error("unparseable ai response", slog.String("ticker", ticker))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to parse AI analysis - retry"))
		return
	case err != nil:
		// Текст ошибки провайдера отдаётся клиенту для диагностики.
		log.Error("failed to generate report", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("report served",
		slog.String("ticker", result.Ticker),
		slog.Bool("cached", result.Cached))
	render.JSON(w, r, map[string]any{
		"ticker": result.Ticker,
		"cached": result.Cached,
		"report": result.Report,
	})
}
