// Package stockfortress собирает приложение: хранилище, кеш, провайдера
// генерации, сервисы и HTTP-сервер. База данных и redis — опциональные
// зависимости: без них соответствующие операции отвечают 503, а не
// роняют процесс на старте.
package stockfortress

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/stockfortress/stockfortress/internal/aiprovider"
	"github.com/stockfortress/stockfortress/internal/cache"
	"github.com/stockfortress/stockfortress/internal/clients/yahoo"
	"github.com/stockfortress/stockfortress/internal/config"
	"github.com/stockfortress/stockfortress/internal/lib/background"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/migrations"
	billingservice "github.com/stockfortress/stockfortress/internal/services/billing"
	blogservice "github.com/stockfortress/stockfortress/internal/services/blog"
	marketservice "github.com/stockfortress/stockfortress/internal/services/market"
	reportservice "github.com/stockfortress/stockfortress/internal/services/report"
	teaserservice "github.com/stockfortress/stockfortress/internal/services/teaser"
	"github.com/stockfortress/stockfortress/internal/storage"
)

// App — собранное приложение с HTTP-сервером и фоновыми задачами.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	tasks  *background.Runner
}

// healthStatus агрегирует состояние зависимостей для health-эндпоинта.
type healthStatus struct {
	provider *aiprovider.Provider
	cache    *cache.Layered
}

func (h healthStatus) ProviderConfigured() bool { return h.provider.Configured() }
func (h healthStatus) CacheEntries() int        { return h.cache.Entries() }

// New собирает приложение из конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var db *storage.Storage
	if cfg.StorageConnectionString != "" {
		var err error
		db, err = storage.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("database is not configured, blog and billing are degraded")
	}

	var redisCache *cache.Redis
	if cfg.RedisConnection.AddressRedis != "" {
		var err error
		redisCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			// Локальный уровень кеша остаётся рабочим.
			logger.Warn("redis is unavailable, falling back to local cache", sl.Err(err))
			redisCache = nil
		}
	}
	reportCache := cache.NewLayered(redisCache, cache.NewMemory(time.Now), reportservice.CacheTTL, logger)

	provider := aiprovider.New(cfg.AI)
	tasks := background.NewRunner(logger)

	var teaserGen reportservice.TeaserGenerator
	if db != nil {
		teaserGen = teaserservice.New(provider, db, time.Now, logger)
	}
	reportSvc := reportservice.New(provider, reportCache, teaserGen, tasks, logger)

	var postRepo blogservice.PostRepository
	var subRepo billingservice.SubscriptionRepository
	if db != nil {
		postRepo = db
		subRepo = db
	}
	blogSvc := blogservice.New(postRepo, tasks, logger)
	billingSvc := billingservice.New(cfg.Stripe, cfg.ClientURL, subRepo, logger)
	marketSvc := marketservice.New(yahoo.NewClient(), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &RouteDeps{
		Report:  reportSvc,
		Health:  healthStatus{provider: provider, cache: reportCache},
		Blog:    blogSvc,
		Billing: billingSvc,
		Market:  marketSvc,
		SiteURL: cfg.SiteURL,
		Static:  cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		tasks:  tasks,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста либо
// ошибки сервера. При завершении дожидается фоновых задач.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.tasks.Wait()
		if a.db != nil {
			_ = a.db.Close()
		}
		return err
	}
}
