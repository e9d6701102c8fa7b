// Package list реализует HTTP-обработчик листинга записей блога
// с пагинацией и фильтрами по вердикту и тикеру.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/stockfortress/stockfortress/internal/http/response"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
	blogservice "github.com/stockfortress/stockfortress/internal/services/blog"
)

// Handler управляет HTTP-запросами на листинг блога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса блога для листинга.
type Service interface {
	List(ctx context.Context, filter models.BlogFilter) (*blogservice.PostPage, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список записей блога
// @Tags Blog
// @Produce json
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Param verdict query string false "Фильтр по вердикту"
// @Param ticker query string false "Фильтр по тикеру"
// @Success 200 {object} map[string]any "Страница записей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Failure 503 {object} response.ErrorResponse "Хранилище не сконфигурировано"
// @Router /api/blog [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filter := models.BlogFilter{
		Page:    page,
		Limit:   limit,
		Verdict: r.URL.Query().Get("verdict"),
		Ticker:  r.URL.Query().Get("ticker"),
	}

	result, err := h.service.List(r.Context(), filter)
	if errors.Is(err, blogservice.ErrNotConfigured) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("blog storage is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list posts"))
		return
	}

	render.JSON(w, r, result)
}
