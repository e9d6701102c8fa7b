package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stockfortress/stockfortress/internal/models"
)

// UpsertPost вставляет пост или обновляет существующий с тем же слагом.
// Счётчик просмотров при обновлении сохраняется.
func (s *Storage) UpsertPost(ctx context.Context, post models.BlogPost) (*models.BlogPost, error) {
	const op = "storage.UpsertPost"

	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO blog_posts (id, ticker, title, slug, excerpt, content,
			      verdict, company_name, tags, report_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (slug) DO UPDATE
			  SET ticker = EXCLUDED.ticker, title = EXCLUDED.title,
			      excerpt = EXCLUDED.excerpt, content = EXCLUDED.content,
			      verdict = EXCLUDED.verdict, company_name = EXCLUDED.company_name,
			      tags = EXCLUDED.tags, report_id = EXCLUDED.report_id
			  RETURNING id, author_name, views, created_at`
	row := s.DB.QueryRowContext(ctx, query,
		post.ID, post.Ticker, post.Title, post.Slug, post.Excerpt, post.Content,
		post.Verdict, post.CompanyName, tags, post.ReportID)

	result := post
	if err := row.Scan(&result.ID, &result.AuthorName, &result.Views, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// FindPostByTickerSince возвращает пост по тикеру, созданный в интервале
// [from, to). Используется как дневной дубликат-гард тизеров.
func (s *Storage) FindPostByTickerSince(ctx context.Context, ticker string, from, to time.Time) (*models.BlogPost, error) {
	const op = "storage.FindPostByTickerSince"

	query := `SELECT id, ticker, title, slug, excerpt, content, verdict,
	              company_name, author_name, tags, views, report_id, created_at
			  FROM blog_posts
			  WHERE ticker = $1 AND created_at >= $2 AND created_at < $3
			  LIMIT 1`
	post, err := scanPost(s.DB.QueryRowContext(ctx, query, ticker, from, to))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

// GetPostBySlug возвращает пост по слагу.
func (s *Storage) GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	const op = "storage.GetPostBySlug"

	query := `SELECT id, ticker, title, slug, excerpt, content, verdict,
	              company_name, author_name, tags, views, report_id, created_at
			  FROM blog_posts WHERE slug = $1`
	post, err := scanPost(s.DB.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

// ListPosts возвращает страницу постов по фильтру, отсортированных
// по убыванию даты создания, и точное общее количество для пагинации.
func (s *Storage) ListPosts(ctx context.Context, filter models.BlogFilter) ([]*models.BlogPostSummary, int, error) {
	const op = "storage.ListPosts"

	where := " WHERE 1=1"
	args := []any{}
	if filter.Verdict != "" {
		args = append(args, filter.Verdict)
		where += fmt.Sprintf(" AND verdict = $%d", len(args))
	}
	if filter.Ticker != "" {
		args = append(args, filter.Ticker)
		where += fmt.Sprintf(" AND ticker = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM blog_posts` + where
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := `SELECT id, ticker, title, slug, excerpt, verdict, company_name,
	              author_name, tags, views, created_at
			  FROM blog_posts` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var posts []*models.BlogPostSummary
	for rows.Next() {
		var p models.BlogPostSummary
		var tags []byte
		if err := rows.Scan(&p.ID, &p.Ticker, &p.Title, &p.Slug, &p.Excerpt,
			&p.Verdict, &p.CompanyName, &p.AuthorName, &tags, &p.Views, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return posts, total, nil
}

// ListRelatedPosts возвращает limit самых свежих постов, исключая указанный тикер.
func (s *Storage) ListRelatedPosts(ctx context.Context, excludeTicker string, limit int) ([]*models.BlogPostSummary, error) {
	const op = "storage.ListRelatedPosts"

	query := `SELECT ticker, title, slug, verdict, company_name, created_at
			  FROM blog_posts WHERE ticker <> $1
			  ORDER BY created_at DESC LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, excludeTicker, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var posts []*models.BlogPostSummary
	for rows.Next() {
		var p models.BlogPostSummary
		if err := rows.Scan(&p.Ticker, &p.Title, &p.Slug, &p.Verdict, &p.CompanyName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}


// ListSitemapEntries возвращает сводки всех постов для генерации
// sitemap и клиентских архивных ссылок.
func (s *Storage) ListSitemapEntries(ctx context.Context) ([]*models.BlogPostSummary, error) {
	const op = "storage.ListSitemapEntries"

	query := `SELECT ticker, slug, company_name, verdict, created_at
			  FROM blog_posts ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []*models.BlogPostSummary
	for rows.Next() {
		var e models.BlogPostSummary
		if err := rows.Scan(&e.Ticker, &e.Slug, &e.CompanyName, &e.Verdict, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// IncrementPostViews увеличивает счётчик просмотров поста на единицу.
func (s *Storage) IncrementPostViews(ctx context.Context, id string) error {
	const op = "storage.IncrementPostViews"

	_, err := s.DB.ExecContext(ctx, `UPDATE blog_posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePostSlug меняет слаг поста. Возвращает ошибку уникального
// ограничения, если слаг уже занят другим постом.
func (s *Storage) UpdatePostSlug(ctx context.Context, id, slug string) error {
	const op = "storage.UpdatePostSlug"

	_, err := s.DB.ExecContext(ctx, `UPDATE blog_posts SET slug = $1 WHERE id = $2`, slug, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanPost(row *sql.Row) (*models.BlogPost, error) {
	var p models.BlogPost
	var tags []byte
	if err := row.Scan(&p.ID, &p.Ticker, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
		&p.Verdict, &p.CompanyName, &p.AuthorName, &tags, &p.Views, &p.ReportID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, err
	}
	return &p, nil
}
