// Package yahoo — клиент публичного котировочного API Yahoo Finance.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Quote — моментальная котировка одного тикера.
type Quote struct {
	Symbol  string
	Price   float64
	Change  float64
	Percent float64
}

// Client запрашивает котировки у Yahoo Finance. Авторизация не нужна,
// но endpoint требует браузерный User-Agent.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option настраивает клиента.
type Option func(*Client)

// WithBaseURL переопределяет адрес API. Используется в тестах.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient создает новый клиент Yahoo Finance.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol               string  `json:"symbol"`
			RegularMarketPrice   float64 `json:"regularMarketPrice"`
			RegularMarketChange  float64 `json:"regularMarketChange"`
			RegularMarketPercent float64 `json:"regularMarketChangePercent"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

// Quotes возвращает котировки по списку тикеров одним запросом.
// Тикеры, по которым Yahoo ничего не вернул, отсутствуют в результате.
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	const op = "yahoo.Quotes"

	params := url.Values{}
	params.Add("symbols", strings.Join(symbols, ","))
	params.Add("fields", "symbol,regularMarketPrice,regularMarketChange,regularMarketChangePercent")
	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if parsed.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("%s: api error: %v", op, parsed.QuoteResponse.Error)
	}

	quotes := make(map[string]Quote, len(parsed.QuoteResponse.Result))
	for _, r := range parsed.QuoteResponse.Result {
		quotes[strings.ToUpper(r.Symbol)] = Quote{
			Symbol:  strings.ToUpper(r.Symbol),
			Price:   r.RegularMarketPrice,
			Change:  r.RegularMarketChange,
			Percent: r.RegularMarketPercent,
		}
	}
	return quotes, nil
}
