// Package slugs реализует HTTP-обработчик выдачи сводок всех записей
// блога: slug, тикер, вердикт и дата для генерации sitemap и
// архивных ссылок на стороне клиента.
package slugs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/stockfortress/stockfortress/internal/http/response"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
	blogservice "github.com/stockfortress/stockfortress/internal/services/blog"
)

// Handler управляет HTTP-запросами на список slug.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса блога для списка slug.
type Service interface {
	SitemapEntries(ctx context.Context) ([]*models.BlogPostSummary, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Все slug записей блога
// @Tags Blog
// @Produce json
// @Success 200 {object} map[string]any "Сводки записей"
// @Failure 503 {object} response.ErrorResponse "Хранилище не сконфигурировано"
// @Router /api/blog/all-slugs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.slugs"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	posts, err := h.service.SitemapEntries(r.Context())
	if errors.Is(err, blogservice.ErrNotConfigured) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("blog storage is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to list slugs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list slugs"))
		return
	}

	if posts == nil {
		posts = []*models.BlogPostSummary{}
	}
	render.JSON(w, r, map[string]any{"posts": posts})
}
