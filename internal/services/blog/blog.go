// Package blog отдаёт опубликованные тизеры: листинг с пагинацией,
// чтение по slug, связанные записи и служебные операции для SEO.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stockfortress/stockfortress/internal/lib/background"
	"github.com/stockfortress/stockfortress/internal/models"
	"github.com/stockfortress/stockfortress/internal/services/teaser"
	"github.com/stockfortress/stockfortress/internal/storage"
)

const (
	defaultPage  = 1
	defaultLimit = 12
	maxLimit     = 50
)

var (
	// ErrNotConfigured — база данных не сконфигурирована.
	ErrNotConfigured = errors.New("blog storage is not configured")
	// ErrPostNotFound — запись с таким slug не существует.
	ErrPostNotFound = errors.New("blog post not found")
)

// PostRepository описывает методы хранилища записей блога.
type PostRepository interface {
	ListPosts(ctx context.Context, filter models.BlogFilter) ([]*models.BlogPostSummary, int, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ListRelatedPosts(ctx context.Context, excludeTicker string, limit int) ([]*models.BlogPostSummary, error)
	ListSitemapEntries(ctx context.Context) ([]*models.BlogPostSummary, error)
	IncrementPostViews(ctx context.Context, id string) error
	UpdatePostSlug(ctx context.Context, id, slug string) error
}

// PostPage — страница листинга блога.
type PostPage struct {
	Posts []*models.BlogPostSummary `json:"posts"`
	Total int                       `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
	Pages int                       `json:"pages"`
}

// Service — операции чтения блога поверх хранилища.
type Service struct {
	repo  PostRepository
	tasks *background.Runner
	log   *slog.Logger
}

// New создает новый Service. repo равен nil, когда база не сконфигурирована.
func New(repo PostRepository, tasks *background.Runner, log *slog.Logger) *Service {
	return &Service{repo: repo, tasks: tasks, log: log}
}

// List возвращает страницу записей. Номер страницы и размер приводятся
// к допустимым границам, а не отклоняются.
func (s *Service) List(ctx context.Context, filter models.BlogFilter) (*PostPage, error) {
	const op = "blog.List"
	if s.repo == nil {
		return nil, ErrNotConfigured
	}

	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	// Фильтры регистронезависимы: в базе вердикты и тикеры в верхнем регистре.
	filter.Verdict = strings.ToUpper(strings.TrimSpace(filter.Verdict))
	filter.Ticker = strings.ToUpper(strings.TrimSpace(filter.Ticker))

	posts, total, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if posts == nil {
		posts = []*models.BlogPostSummary{}
	}

	pages := (total + filter.Limit - 1) / filter.Limit
	if pages < 1 {
		pages = 1
	}
	return &PostPage{
		Posts: posts,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
		Pages: pages,
	}, nil
}

// Get возвращает запись по slug и увеличивает счётчик просмотров
// в фоне, не задерживая ответ.
func (s *Service) Get(ctx context.Context, slug string) (*models.BlogPost, error) {
	const op = "blog.Get"
	if s.repo == nil {
		return nil, ErrNotConfigured
	}

	post, err := s.repo.GetPostBySlug(ctx, slug)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.tasks != nil {
		id := post.ID
		s.tasks.Go("increment views "+slug, func(ctx context.Context) error {
			return s.repo.IncrementPostViews(ctx, id)
		})
	}
	return post, nil
}

// Related возвращает последние записи по другим тикерам. Тикер исходной
// записи берётся из хранилища: по одному slug его не восстановить,
// у старых записей slug содержит заголовок и дату. Если запись не
// найдена, выдаются просто последние записи без исключения.
func (s *Service) Related(ctx context.Context, slug string) ([]*models.BlogPostSummary, error) {
	const op = "blog.Related"
	if s.repo == nil {
		return nil, ErrNotConfigured
	}

	excludeTicker := ""
	current, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current != nil {
		excludeTicker = current.Ticker
	}

	posts, err := s.repo.ListRelatedPosts(ctx, excludeTicker, teaser.RelatedPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

// SitemapEntries возвращает сводки всех записей: slug, тикер, вердикт
// и дату создания. Используется для sitemap и выдачи all-slugs.
func (s *Service) SitemapEntries(ctx context.Context) ([]*models.BlogPostSummary, error) {
	const op = "blog.SitemapEntries"
	if s.repo == nil {
		return nil, ErrNotConfigured
	}

	entries, err := s.repo.ListSitemapEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// MigrateSlugs приводит slug всех записей к каноничному виду
// "<ticker>-stock-analysis". Записи, чей новый slug конфликтует с
// существующим, пропускаются. Возвращает число обновлённых записей.
func (s *Service) MigrateSlugs(ctx context.Context) (int, error) {
	const op = "blog.MigrateSlugs"
	if s.repo == nil {
		return 0, ErrNotConfigured
	}

	migrated := 0
	page := 1
	for {
		posts, _, err := s.repo.ListPosts(ctx, models.BlogFilter{Page: page, Limit: maxLimit})
		if err != nil {
			return migrated, fmt.Errorf("%s: %w", op, err)
		}
		if len(posts) == 0 {
			return migrated, nil
		}

		for _, post := range posts {
			want := teaser.Slug(post.Ticker)
			if post.Slug == want {
				continue
			}
			if err := s.repo.UpdatePostSlug(ctx, post.ID, want); err != nil {
				if storage.IsUniqueViolation(err) {
					s.log.Warn("slug already taken, skipping",
						slog.String("post_id", post.ID), slog.String("slug", want))
					continue
				}
				return migrated, fmt.Errorf("%s: %w", op, err)
			}
			migrated++
		}
		page++
	}
}
