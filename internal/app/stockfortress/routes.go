package stockfortress

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/stockfortress/stockfortress/internal/http/handlers/billing/changeplan"
	"github.com/stockfortress/stockfortress/internal/http/handlers/billing/checkout"
	"github.com/stockfortress/stockfortress/internal/http/handlers/billing/createfree"
	billingsub "github.com/stockfortress/stockfortress/internal/http/handlers/billing/subscription"
	"github.com/stockfortress/stockfortress/internal/http/handlers/billing/synccheckout"
	billingwebhook "github.com/stockfortress/stockfortress/internal/http/handlers/billing/webhook"
	"github.com/stockfortress/stockfortress/internal/http/handlers/blog/list"
	"github.com/stockfortress/stockfortress/internal/http/handlers/blog/migrate"
	"github.com/stockfortress/stockfortress/internal/http/handlers/blog/read"
	"github.com/stockfortress/stockfortress/internal/http/handlers/blog/related"
	"github.com/stockfortress/stockfortress/internal/http/handlers/blog/slugs"
	"github.com/stockfortress/stockfortress/internal/http/handlers/market/bulk"
	"github.com/stockfortress/stockfortress/internal/http/handlers/report/get"
	"github.com/stockfortress/stockfortress/internal/http/handlers/report/health"
	"github.com/stockfortress/stockfortress/internal/http/handlers/seo"
	"github.com/stockfortress/stockfortress/internal/http/handlers/static"
	"github.com/stockfortress/stockfortress/internal/http/mware"
	billingservice "github.com/stockfortress/stockfortress/internal/services/billing"
	blogservice "github.com/stockfortress/stockfortress/internal/services/blog"
	marketservice "github.com/stockfortress/stockfortress/internal/services/market"
	reportservice "github.com/stockfortress/stockfortress/internal/services/report"
)

// RouteDeps — зависимости маршрутов приложения.
type RouteDeps struct {
	Report  *reportservice.Service
	Health  health.Service
	Blog    *blogservice.Service
	Billing *billingservice.Service
	Market  *marketservice.Service
	SiteURL string
	Static  string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps *RouteDeps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		mware.WWWRedirect,
	)

	seoHandler := seo.New(logger, deps.Blog, deps.SiteURL)

	r.Route("/api", func(r chi.Router) {
		r.Use(mware.RateLimit(logger))

		r.Get("/report/{ticker}", get.New(logger, deps.Report).ServeHTTP)
		r.Get("/health", health.New(logger, deps.Health).ServeHTTP)

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", list.New(logger, deps.Blog).ServeHTTP)
			r.Get("/all-slugs", slugs.New(logger, deps.Blog).ServeHTTP)
			r.Post("/migrate-slugs", migrate.New(logger, deps.Blog).ServeHTTP)
			r.Get("/{slug}", read.New(logger, deps.Blog).ServeHTTP)
			r.Get("/{slug}/related", related.New(logger, deps.Blog).ServeHTTP)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Post("/create-checkout", checkout.New(logger, deps.Billing).ServeHTTP)
			r.Post("/sync-checkout", synccheckout.New(logger, deps.Billing).ServeHTTP)
			r.Post("/change-plan", changeplan.New(logger, deps.Billing).ServeHTTP)
			r.Post("/create-free", createfree.New(logger, deps.Billing).ServeHTTP)
			r.Post("/webhook", billingwebhook.New(logger, deps.Billing).ServeHTTP)
			r.Get("/subscription/{userId}", billingsub.New(logger, deps.Billing).ServeHTTP)
		})

		r.Get("/market-data/bulk", bulk.New(logger, deps.Market).ServeHTTP)
		r.Get("/sitemap.xml", seoHandler.Sitemap)
	})

	r.Get("/sitemap.xml", seoHandler.Sitemap)
	r.Get("/robots.txt", seoHandler.Robots)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	// Отдача фронтенда: все прочие пути уходят в SPA.
	r.NotFound(static.New(deps.Static).ServeHTTP)
}
