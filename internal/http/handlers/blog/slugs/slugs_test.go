package slugs_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/http/handlers/blog/slugs"
	"github.com/stockfortress/stockfortress/internal/models"
	blogservice "github.com/stockfortress/stockfortress/internal/services/blog"
)

type stubService struct {
	entries []*models.BlogPostSummary
	err     error
}

func (s *stubService) SitemapEntries(_ context.Context) ([]*models.BlogPostSummary, error) {
	return s.entries, s.err
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestHandler_PostsPayload(t *testing.T) {
	svc := &stubService{entries: []*models.BlogPostSummary{{
		Ticker:      "AAPL",
		Slug:        "aapl-stock-analysis",
		CompanyName: "Apple Inc.",
		Verdict:     "BUY",
		CreatedAt:   time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/blog/all-slugs", nil)
	w := httptest.NewRecorder()
	slugs.New(newNoopLogger(), svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	posts, ok := body["posts"]
	require.True(t, ok, "записи отдаются под ключом posts")
	require.Len(t, posts, 1)
	assert.Equal(t, "AAPL", posts[0]["ticker"])
	assert.Equal(t, "aapl-stock-analysis", posts[0]["slug"])
	assert.Equal(t, "Apple Inc.", posts[0]["company_name"])
	assert.Equal(t, "BUY", posts[0]["verdict"])
	assert.Contains(t, posts[0], "created_at")
}

func TestHandler_EmptyListIsArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/blog/all-slugs", nil)
	w := httptest.NewRecorder()
	slugs.New(newNoopLogger(), &stubService{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"posts":[]`)
}

func TestHandler_NotConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/blog/all-slugs", nil)
	w := httptest.NewRecorder()
	slugs.New(newNoopLogger(), &stubService{err: blogservice.ErrNotConfigured}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
