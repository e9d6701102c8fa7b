package yahoo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/clients/yahoo"
)

func TestQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL,TSLA", r.URL.Query().Get("symbols"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"quoteResponse": {
				"result": [
					{"symbol": "AAPL", "regularMarketPrice": 232.5, "regularMarketChange": 1.2, "regularMarketChangePercent": 0.52},
					{"symbol": "TSLA", "regularMarketPrice": 345.2, "regularMarketChange": -3.1, "regularMarketChangePercent": -0.89}
				],
				"error": null
			}
		}`))
	}))
	defer srv.Close()

	c := yahoo.NewClient(yahoo.WithBaseURL(srv.URL))
	quotes, err := c.Quotes(context.Background(), []string{"AAPL", "TSLA"})

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 232.5, quotes["AAPL"].Price)
	assert.Equal(t, -3.1, quotes["TSLA"].Change)
}

func TestQuotes_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := yahoo.NewClient(yahoo.WithBaseURL(srv.URL))
	_, err := c.Quotes(context.Background(), []string{"AAPL"})
	require.Error(t, err)
}

func TestQuotes_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quoteResponse": {"result": [], "error": "Invalid symbols"}}`))
	}))
	defer srv.Close()

	c := yahoo.NewClient(yahoo.WithBaseURL(srv.URL))
	_, err := c.Quotes(context.Background(), []string{"???"})
	require.Error(t, err)
}
