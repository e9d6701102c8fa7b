package teaser

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/models"
	"github.com/stockfortress/stockfortress/internal/storage"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateTeaser(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindPostByTickerSince(ctx context.Context, ticker string, from, to time.Time) (*models.BlogPost, error) {
	args := m.Called(ctx, ticker, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func (m *MockRepository) UpsertPost(ctx context.Context, post models.BlogPost) (*models.BlogPost, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func fixedClock() time.Time {
	return time.Date(2026, 1, 10, 15, 30, 0, 0, time.UTC)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "aapl-stock-analysis", Slug("AAPL"))
	assert.Equal(t, "brk.b-stock-analysis", Slug("BRK.B"))
	// Слаг зависит только от тикера и стабилен между вызовами.
	assert.Equal(t, Slug("TSLA"), Slug("TSLA"))
}

func TestGenerate_SkipsWhenPostExistsToday(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockRepository)

	existing := &models.BlogPost{Ticker: "AAPL", Slug: "aapl-stock-analysis"}
	dayStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo.On("FindPostByTickerSince", mock.Anything, "AAPL", dayStart, dayStart.Add(24*time.Hour)).
		Return(existing, nil).Once()

	svc := New(gen, repo, fixedClock, newNoopLogger())
	post, err := svc.Generate(context.Background(), "aapl", json.RawMessage(`{}`), nil)

	require.NoError(t, err)
	assert.Equal(t, existing, post)
	gen.AssertNotCalled(t, "GenerateTeaser")
	repo.AssertExpectations(t)
}

func TestGenerate_BuildsPostFromDraft(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockRepository)

	report := json.RawMessage(`{"meta":{"company_name":"Apple Inc."},"step_7_verdict":{"action":"BUY"}}`)
	draft := `{"title":"Apple Is Unstoppable","excerpt":"Short text","content":"Body","tags":["AAPL","tech"]}`

	repo.On("FindPostByTickerSince", mock.Anything, "AAPL", mock.Anything, mock.Anything).
		Return(nil, storage.ErrNotFound).Once()
	gen.On("GenerateTeaser", mock.Anything, mock.Anything, mock.Anything).Return(draft, nil).Once()
	repo.On("UpsertPost", mock.Anything, mock.MatchedBy(func(p models.BlogPost) bool {
		return p.Ticker == "AAPL" &&
			p.Slug == "aapl-stock-analysis" &&
			p.Verdict == "BUY" &&
			p.CompanyName == "Apple Inc." &&
			p.Title == "Apple Is Unstoppable" &&
			p.ID != ""
	})).Return(&models.BlogPost{Slug: "aapl-stock-analysis"}, nil).Once()

	svc := New(gen, repo, fixedClock, newNoopLogger())
	post, err := svc.Generate(context.Background(), "AAPL", report, nil)

	require.NoError(t, err)
	require.NotNil(t, post)
	repo.AssertExpectations(t)
	gen.AssertExpectations(t)
}

func TestGenerate_DefaultsWhenDraftIsSparse(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockRepository)

	longExcerpt := strings.Repeat("a", 300)
	draft := `{"title":"","excerpt":"` + longExcerpt + `","content":"Body","tags":[]}`

	repo.On("FindPostByTickerSince", mock.Anything, "TSLA", mock.Anything, mock.Anything).
		Return(nil, storage.ErrNotFound).Once()
	gen.On("GenerateTeaser", mock.Anything, mock.Anything, mock.Anything).Return(draft, nil).Once()
	repo.On("UpsertPost", mock.Anything, mock.MatchedBy(func(p models.BlogPost) bool {
		return p.Title == "TSLA Stock Analysis" &&
			len(p.Excerpt) == 200 &&
			p.Verdict == "WATCH" &&
			len(p.Tags) == 1 && p.Tags[0] == "TSLA"
	})).Return(&models.BlogPost{Slug: "tsla-stock-analysis"}, nil).Once()

	svc := New(gen, repo, fixedClock, newNoopLogger())
	_, err := svc.Generate(context.Background(), "TSLA", json.RawMessage(`{}`), nil)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGenerate_ExcerptTruncatesOnRuneBoundary(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockRepository)

	longExcerpt := strings.Repeat("ж", 300)
	draft := `{"title":"t","excerpt":"` + longExcerpt + `","content":"Body","tags":["MSFT"]}`

	repo.On("FindPostByTickerSince", mock.Anything, "MSFT", mock.Anything, mock.Anything).
		Return(nil, storage.ErrNotFound).Once()
	gen.On("GenerateTeaser", mock.Anything, mock.Anything, mock.Anything).Return(draft, nil).Once()
	repo.On("UpsertPost", mock.Anything, mock.MatchedBy(func(p models.BlogPost) bool {
		return utf8.ValidString(p.Excerpt) && utf8.RuneCountInString(p.Excerpt) == 200
	})).Return(&models.BlogPost{Slug: "msft-stock-analysis"}, nil).Once()

	svc := New(gen, repo, fixedClock, newNoopLogger())
	_, err := svc.Generate(context.Background(), "MSFT", json.RawMessage(`{}`), nil)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGenerate_DuplicateSlugIsNotAnError(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockRepository)

	repo.On("FindPostByTickerSince", mock.Anything, "NVDA", mock.Anything, mock.Anything).
		Return(nil, storage.ErrNotFound).Once()
	gen.On("GenerateTeaser", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"title":"t","excerpt":"e","content":"c","tags":["NVDA"]}`, nil).Once()
	repo.On("UpsertPost", mock.Anything, mock.Anything).
		Return(nil, &pgconn.PgError{Code: "23505"}).Once()

	svc := New(gen, repo, fixedClock, newNoopLogger())
	post, err := svc.Generate(context.Background(), "NVDA", json.RawMessage(`{}`), nil)

	require.NoError(t, err)
	assert.Nil(t, post)
	repo.AssertExpectations(t)
}

func TestGenerate_UnparseableDraftFails(t *testing.T) {
	gen := new(MockGenerator)
	repo := new(MockRepository)

	repo.On("FindPostByTickerSince", mock.Anything, "AMD", mock.Anything, mock.Anything).
		Return(nil, storage.ErrNotFound).Once()
	gen.On("GenerateTeaser", mock.Anything, mock.Anything, mock.Anything).
		Return("not json at all", nil).Once()

	svc := New(gen, repo, fixedClock, newNoopLogger())
	_, err := svc.Generate(context.Background(), "AMD", json.RawMessage(`{}`), nil)

	require.Error(t, err)
	repo.AssertNotCalled(t, "UpsertPost")
}
