package models

import "time"

// BlogPost представляет собой тизер-статью, сгенерированную из отчёта.
// Уникальность поста обеспечивается слагом: один слаг — один тикер.
type BlogPost struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Verdict     string    `json:"verdict"`
	CompanyName string    `json:"company_name"`
	AuthorName  string    `json:"author_name"`
	Tags        []string  `json:"tags"`
	Views       int       `json:"views"`
	ReportID    *string   `json:"report_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlogPostSummary — усечённое представление поста для списков и сайтмапа.
type BlogPostSummary struct {
	ID          string    `json:"id,omitempty"`
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title,omitempty"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Verdict     string    `json:"verdict"`
	CompanyName string    `json:"company_name"`
	AuthorName  string    `json:"author_name,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Views       int       `json:"views,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlogFilter — фильтры и пагинация списка постов.
type BlogFilter struct {
	Page    int
	Limit   int
	Verdict string
	Ticker  string
}

// TeaserDraft — данные тизера в том виде, в котором их возвращает провайдер.
type TeaserDraft struct {
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}
