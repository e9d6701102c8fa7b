// Package mware содержит общие HTTP middleware приложения:
// редирект с www-домена и глобальное ограничение частоты запросов.
package mware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/stockfortress/stockfortress/internal/http/response"
)

var limiter = rate.NewLimiter(25, 50)

// RateLimit отклоняет запросы сверх глобального лимита с кодом 429.
func RateLimit(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests", slog.String("path", r.URL.Path))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WWWRedirect перенаправляет запросы с хоста "www.<домен>" на голый домен
// постоянным редиректом, сохраняя путь и query-строку.
func WWWRedirect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if strings.HasPrefix(strings.ToLower(host), "www.") {
			target := "https://" + host[len("www."):] + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}
