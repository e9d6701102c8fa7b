// Package migrate реализует служебный HTTP-обработчик одноразовой
// миграции slug записей блога к каноничному виду.
package migrate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/stockfortress/stockfortress/internal/http/response"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	blogservice "github.com/stockfortress/stockfortress/internal/services/blog"
)

// Handler управляет HTTP-запросами на миграцию slug.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса блога для миграции slug.
type Service interface {
	MigrateSlugs(ctx context.Context) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Миграция slug записей блога
// @Tags Blog
// @Produce json
// @Success 200 {object} map[string]any "Число обновлённых записей"
// @Failure 503 {object} response.ErrorResponse "Хранилище не сконфигурировано"
// @Router /api/blog/migrate-slugs [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.migrate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	migrated, err := h.service.MigrateSlugs(r.Context())
	if errors.Is(err, blogservice.ErrNotConfigured) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("blog storage is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to migrate slugs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not migrate slugs"))
		return
	}

	log.Info("slugs migrated", slog.Int("migrated", migrated))
	render.JSON(w, r, response.OKWithData(map[string]any{"migrated": migrated}))
}
