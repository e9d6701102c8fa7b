// Package read реализует HTTP-обработчик чтения записи блога по slug.
// Счётчик просмотров увеличивается в фоне и не задерживает ответ.
package read

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

// Handler управляет HTTP-запросами на чтение записи блога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса блога для чтения.
type Service interface {
	Get(ctx context.Context, slug string) (*models.BlogPost, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прочитать запись блога
// @Tags Blog
// @Produce json
// @Param slug path string true "Slug записи"
// @Success 200 {object} models.BlogPost "Запись"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 503 {object} response.ErrorResponse "Хранилище не сконфигурировано"
// @Router /api/blog/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	post, err := h.service.Get(r.Context(), slug)
	switch {
	case errors.Is(err, blogservice.ErrPostNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("post not found"))
		return
	case errors.Is(err, blogservice.ErrNotConfigured):
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("blog storage is not configured"))
		return
	case err != nil:
		log.Error("failed to read post", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read post"))
		return
	}

	render.JSON(w, r, post)
}
