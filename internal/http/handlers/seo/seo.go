// Package seo реализует обработчики sitemap.xml и robots.txt.
// Карта сайта собирается из статических страниц и slug записей блога.
package seo

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
)

// PostLister отдаёт slug и дату создания всех записей блога. Может быть
// nil, тогда в карту сайта попадают только статические страницы.
type PostLister interface {
	SitemapEntries(ctx context.Context) ([]*models.BlogPostSummary, error)
}

// Handler отдаёт SEO-артефакты сайта.
type Handler struct {
	log     *slog.Logger
	posts   PostLister
	siteURL string
	now     func() time.Time
}

// New создает новый Handler. siteURL — канонический адрес без завершающего слеша.
func New(log *slog.Logger, posts PostLister, siteURL string) *Handler {
	return &Handler{
		log:     log,
		posts:   posts,
		siteURL: siteURL,
		now:     time.Now,
	}
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap отдаёт sitemap.xml: статические страницы и записи блога.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.seo.sitemap"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	today := h.now().UTC().Format("2006-01-02")
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.siteURL + "/", LastMod: today, ChangeFreq: "daily", Priority: "1.0"},
			{Loc: h.siteURL + "/blog", LastMod: today, ChangeFreq: "daily", Priority: "0.8"},
			{Loc: h.siteURL + "/pricing", LastMod: today, ChangeFreq: "weekly", Priority: "0.6"},
		},
	}

	if h.posts != nil {
		entries, err := h.posts.SitemapEntries(r.Context())
		if err != nil {
			// Карта сайта деградирует до статических страниц.
			log.Error("failed to list blog posts", sl.Err(err))
		}
		for _, entry := range entries {
			lastMod := today
			if !entry.CreatedAt.IsZero() {
				lastMod = entry.CreatedAt.UTC().Format("2006-01-02")
			}
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        h.siteURL + "/blog/" + entry.Slug,
				LastMod:    lastMod,
				ChangeFreq: "weekly",
				Priority:   "0.7",
			})
		}
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Error("failed to marshal sitemap", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}

// Robots отдаёт robots.txt с закрытыми служебными путями и ссылкой на sitemap.
func (h *Handler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("User-agent: *\n" +
		"Allow: /\n" +
		"Disallow: /dashboard/\n" +
		"Disallow: /api/\n" +
		"\n" +
		"Sitemap: " + h.siteURL + "/sitemap.xml\n"))
}
