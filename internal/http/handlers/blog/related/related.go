// Package related реализует HTTP-обработчик выдачи связанных записей блога:
// последние записи по другим тикерам.
package related

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
	blogservice "github.com/stockfortress/stockfortress/internal/services/blog"
)

// Handler управляет HTTP-запросами на связанные записи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса блога для связанных записей.
type Service interface {
	Related(ctx context.Context, slug string) ([]*models.BlogPostSummary, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Связанные записи блога
// @Tags Blog
// @Produce json
// @Param slug path string true "Slug исходной записи"
// @Success 200 {object} map[string]any "Список записей"
// @Failure 503 {object} response.ErrorResponse "Хранилище не сконфигурировано"
// @Router /api/blog/{slug}/related [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.related"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	posts, err := h.service.Related(r.Context(), slug)
	if errors.Is(err, blogservice.ErrNotConfigured) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("blog storage is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to list related posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list related posts"))
		return
	}

	if posts == nil {
		posts = []*models.BlogPostSummary{}
	}
	render.JSON(w, r, map[string]any{"posts": posts})
}
