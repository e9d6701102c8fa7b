package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/clients/yahoo"
)

type fakeProvider struct {
	quotes map[string]yahoo.Quote
	err    error
	last   []string
}

func (f *fakeProvider) Quotes(_ context.Context, symbols []string) (map[string]yahoo.Quote, error) {
	f.last = symbols
	return f.quotes, f.err
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestBulkQuotes(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]yahoo.Quote{
		"AAPL": {Symbol: "AAPL", Price: 232.5, Change: 1.2, Percent: 0.52},
	}}
	svc := New(provider, newNoopLogger())

	result := svc.BulkQuotes(context.Background(), []string{"aapl", "tsla"})

	require.Len(t, result, 2)
	assert.Equal(t, 232.5, result["AAPL"].Price)
	assert.Zero(t, result["TSLA"].Price, "тикер без котировки возвращается с нулями")
}

func TestBulkQuotes_NormalizesAndDeduplicates(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]yahoo.Quote{}}
	svc := New(provider, newNoopLogger())

	result := svc.BulkQuotes(context.Background(), []string{" aapl ", "AAPL", "", "tsla"})

	assert.Len(t, result, 2)
	assert.Equal(t, []string{"AAPL", "TSLA"}, provider.last)
}

func TestBulkQuotes_ProviderFailureDegradesToZeroes(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	svc := New(provider, newNoopLogger())

	result := svc.BulkQuotes(context.Background(), []string{"AAPL", "TSLA"})

	require.Len(t, result, 2)
	for _, q := range result {
		assert.Zero(t, q.Price)
		assert.Zero(t, q.Change)
		assert.Zero(t, q.Percent)
	}
}

func TestBulkQuotes_EmptyInput(t *testing.T) {
	provider := &fakeProvider{}
	svc := New(provider, newNoopLogger())

	result := svc.BulkQuotes(context.Background(), []string{"", "   "})

	assert.Empty(t, result)
	assert.Nil(t, provider.last, "провайдер не вызывается для пустого списка")
}
