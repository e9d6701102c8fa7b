package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/aiprovider"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

type fakeCache struct {
	entries map[string]json.RawMessage
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]json.RawMessage)}
}

func (c *fakeCache) Get(_ context.Context, key string) (json.RawMessage, bool) {
	data, ok := c.entries[key]
	return data, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value json.RawMessage) {
	c.entries[key] = value
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "обычный тикер", input: "aapl", expected: "AAPL"},
		{name: "пробелы обрезаются", input: "  tsla  ", expected: "TSLA"},
		{name: "тикер с точкой", input: "brk.b", expected: "BRK.B"},
		{name: "пустая строка", input: "", wantErr: true},
		{name: "одни пробелы", input: "   ", wantErr: true},
		{name: "длиннее десяти символов", input: "TOOLONGTICKER", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTicker(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTicker)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGetReport_GeneratesOnceAndCaches(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"meta":{"ticker":"AAPL"}}`, nil).Once()

	svc := New(gen, newFakeCache(), nil, nil, newNoopLogger())

	first, err := svc.GetReport(context.Background(), "aapl")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "AAPL", first.Ticker)

	second, err := svc.GetReport(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Report, second.Report)

	gen.AssertExpectations(t)
}

func TestGetReport_InvalidTicker(t *testing.T) {
	gen := new(MockGenerator)
	svc := New(gen, newFakeCache(), nil, nil, newNoopLogger())

	_, err := svc.GetReport(context.Background(), "TOOLONGTICKER")
	assert.ErrorIs(t, err, ErrInvalidTicker)
	gen.AssertNotCalled(t, "GenerateReport")
}

func TestGetReport_UnparseableResponse(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything).
		Return("I am sorry, I cannot help with that.", nil).Once()

	cache := newFakeCache()
	svc := New(gen, cache, nil, nil, newNoopLogger())

	_, err := svc.GetReport(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnparseable)
	assert.Empty(t, cache.entries, "неразбираемый ответ не должен кешироваться")
}

func TestGetReport_NotConfiguredPassesThrough(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything).
		Return("", aiprovider.ErrNotConfigured).Once()

	svc := New(gen, newFakeCache(), nil, nil, newNoopLogger())

	_, err := svc.GetReport(context.Background(), "AAPL")
	assert.ErrorIs(t, err, aiprovider.ErrNotConfigured)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
}

func TestGetReport_GenerationFailure(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateReport", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("upstream timeout")).Once()

	svc := New(gen, newFakeCache(), nil, nil, newNoopLogger())

	_, err := svc.GetReport(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
