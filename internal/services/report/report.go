// Package report содержит оркестратор отчётов: проверку тикера, двухуровневый
// кеш и обращение к генеративному провайдеру при промахе. Тизер для тикера
// ставится в фон при каждом запросе независимо от попадания в кеш.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stockfortress/stockfortress/internal/aiprovider"
	"github.com/stockfortress/stockfortress/internal/lib/background"
	"github.com/stockfortress/stockfortress/internal/models"
)

// CacheTTL — время жизни отчёта в кеше.
const CacheTTL = 24 * time.Hour

const maxTickerLen = 10

var (
	// ErrInvalidTicker — тикер пуст или длиннее десяти символов.
	ErrInvalidTicker = errors.New("invalid ticker")
	// ErrUnparseable — ответ провайдера не распарсился как JSON;
	// повторный запрос, скорее всего, пройдёт.
	ErrUnparseable = errors.New("failed to parse AI analysis - retry")
	// ErrGenerationFailed — любая другая ошибка генерации.
	ErrGenerationFailed = errors.New("analysis generation failed")
)

var (
	metricGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockfortress_reports_generated_total",
		Help: "Number of reports generated by the AI provider.",
	})
	metricCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockfortress_report_cache_hits_total",
		Help: "Number of report requests served from cache.",
	})
)

// Generator описывает отчётный профиль генеративного провайдера.
type Generator interface {
	GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Cache описывает двухуровневый кеш отчётов.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	Set(ctx context.Context, key string, value json.RawMessage)
}

// TeaserGenerator описывает генератор тизеров, запускаемый в фоне.
type TeaserGenerator interface {
	Generate(ctx context.Context, ticker string, reportData json.RawMessage, reportID *string) (*models.BlogPost, error)
}

// Service — оркестратор отчётов.
type Service struct {
	gen    Generator
	cache  Cache
	teaser TeaserGenerator
	tasks  *background.Runner
	log    *slog.Logger
}

// New создает новый Service. teaser может быть nil, если генерация
// тизеров не сконфигурирована.
func New(gen Generator, cache Cache, teaser TeaserGenerator, tasks *background.Runner, log *slog.Logger) *Service {
	return &Service{
		gen:    gen,
		cache:  cache,
		teaser: teaser,
		tasks:  tasks,
		log:    log,
	}
}

// NormalizeTicker приводит тикер к каноническому виду и проверяет его.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" || len(ticker) > maxTickerLen {
		return "", ErrInvalidTicker
	}
	return ticker, nil
}

// GetReport возвращает отчёт по тикеру из кеша или генерирует новый.
// Внутренних повторов нет: при сбое клиент сам повторяет запрос.
func (s *Service) GetReport(ctx context.Context, rawTicker string) (*models.ReportResult, error) {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	cacheKey := "report:" + ticker
	if data, found := s.cache.Get(ctx, cacheKey); found {
		metricCacheHits.Inc()
		s.dispatchTeaser(ticker, data)
		return &models.ReportResult{Ticker: ticker, Cached: true, Report: data}, nil
	}

	text, err := s.gen.GenerateReport(ctx, systemPrompt, userPrompt(ticker))
	if errors.Is(err, aiprovider.ErrNotConfigured) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	report := json.RawMessage(text)
	if !json.Valid(report) {
		s.log.Error("provider returned non-JSON analysis", slog.String("ticker", ticker))
		return nil, ErrUnparseable
	}
	metricGenerated.Inc()

	s.cache.Set(ctx, cacheKey, report)
	s.dispatchTeaser(ticker, report)

	return &models.ReportResult{Ticker: ticker, Cached: false, Report: report}, nil
}

// dispatchTeaser ставит генерацию тизера в фон. Ответ клиенту не ждёт
// результата; сбой задачи логируется её собственной границей ошибок.
func (s *Service) dispatchTeaser(ticker string, report json.RawMessage) {
	if s.teaser == nil {
		return
	}
	s.tasks.Go("teaser "+ticker, func(ctx context.Context) error {
		if _, err := s.teaser.Generate(ctx, ticker, report, nil); err != nil {
			return err
		}
		return nil
	})
	s.log.Info("teaser generation scheduled", slog.String("ticker", ticker))
}
