// Package teaser генерирует короткие тизер-статьи из готовых отчётов.
// Инвариант: не больше одной сохранённой статьи на (тикер, календарный день).
// Дневной гард ограничивает частоту генерации, а upsert по слагу закрывает
// гонку между конкурентными генерациями одного тикера.
package teaser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
	"github.com/stockfortress/stockfortress/internal/storage"
)

const (
	maxExcerptLen  = 200
	defaultVerdict = "WATCH"

	// RelatedPostsLimit — сколько постов возвращает блок "похожие статьи".
	RelatedPostsLimit = 5
)

// Generator описывает тизерный профиль генеративного провайдера.
type Generator interface {
	GenerateTeaser(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PostRepository описывает методы хранилища, нужные генератору тизеров.
type PostRepository interface {
	FindPostByTickerSince(ctx context.Context, ticker string, from, to time.Time) (*models.BlogPost, error)
	UpsertPost(ctx context.Context, post models.BlogPost) (*models.BlogPost, error)
}

// Service — генератор тизеров.
type Service struct {
	gen  Generator
	repo PostRepository
	now  func() time.Time
	log  *slog.Logger
}

// New создает новый Service. Часы задаются извне для тестируемости.
func New(gen Generator, repo PostRepository, now func() time.Time, log *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		gen:  gen,
		repo: repo,
		now:  now,
		log:  log,
	}
}

// Slug — чистая функция тикера: один тикер — один слаг, независимо
// от заголовка и даты.
func Slug(ticker string) string {
	return strings.ToLower(ticker) + "-stock-analysis"
}

// Generate создает тизер для тикера из данных отчёта. Если статья для
// этого тикера уже была создана сегодня (по UTC), возвращается она и
// генерация не выполняется.
func (s *Service) Generate(ctx context.Context, ticker string, reportData json.RawMessage, reportID *string) (*models.BlogPost, error) {
	const op = "teaser.Generate"
	ticker = strings.ToUpper(ticker)

	dayStart := s.now().UTC().Truncate(24 * time.Hour)
	existing, err := s.repo.FindPostByTickerSince(ctx, ticker, dayStart, dayStart.Add(24*time.Hour))
	if err == nil {
		s.log.Info("teaser already exists today, skipping", slog.String("ticker", ticker))
		return existing, nil
	}
	if err != storage.ErrNotFound {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pretty, err := json.MarshalIndent(reportData, "", "  ")
	if err != nil {
		pretty = reportData
	}

	text, err := s.gen.GenerateTeaser(ctx, systemPrompt, userPrompt(ticker, pretty))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var draft models.TeaserDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, fmt.Errorf("%s: parse teaser: %w", op, err)
	}

	post := s.buildPost(ticker, draft, reportData, reportID)

	saved, err := s.repo.UpsertPost(ctx, post)
	if storage.IsUniqueViolation(err) {
		// Конкурентная генерация успела первой — дубликат, не ошибка.
		s.log.Info("duplicate teaser detected, skipping", slog.String("ticker", ticker))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("teaser published",
		slog.String("ticker", ticker), slog.String("slug", saved.Slug))
	return saved, nil
}

// buildPost собирает пост из черновика провайдера и данных отчёта.
func (s *Service) buildPost(ticker string, draft models.TeaserDraft, reportData json.RawMessage, reportID *string) models.BlogPost {
	verdict := defaultVerdict
	companyName := ""
	var parsed models.ReportVerdict
	if err := json.Unmarshal(reportData, &parsed); err == nil {
		if parsed.Step7Verdict.Action != "" {
			verdict = parsed.Step7Verdict.Action
		}
		companyName = parsed.Meta.CompanyName
	} else {
		s.log.Warn("failed to extract verdict from report", sl.Err(err))
	}

	title := draft.Title
	if title == "" {
		title = ticker + " Stock Analysis"
	}
	// Усечение по рунам: срез байтов может разорвать многобайтовый символ.
	excerpt := draft.Excerpt
	if runes := []rune(excerpt); len(runes) > maxExcerptLen {
		excerpt = string(runes[:maxExcerptLen])
	}
	tags := draft.Tags
	if len(tags) == 0 {
		tags = []string{ticker}
	}

	return models.BlogPost{
		ID:          uuid.New().String(),
		Ticker:      ticker,
		Title:       title,
		Slug:        Slug(ticker),
		Excerpt:     excerpt,
		Content:     StripTables(draft.Content),
		Verdict:     verdict,
		CompanyName: companyName,
		Tags:        tags,
		ReportID:    reportID,
	}
}
