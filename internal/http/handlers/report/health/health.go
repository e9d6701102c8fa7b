// Package health реализует HTTP-обработчик проверки состояния сервиса.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// Handler возвращает статус сервиса и сводку по зависимостям.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает источники данных проверки.
type Service interface {
	ProviderConfigured() bool
	CacheEntries() int
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверка состояния сервиса
// @Tags Reports
// @Produce json
// @Success 200 {object} map[string]any "Состояние"
// @Router /api/health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":              "healthy",
		"provider_configured": h.service.ProviderConfigured(),
		"cache_entries":       h.service.CacheEntries(),
	})
}
