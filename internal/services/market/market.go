// Package market отдаёт массовые котировки для панели пользователя.
// Источник данных ненадёжен, поэтому отказ по тикеру не роняет запрос:
// такой тикер возвращается с нулевыми значениями.
package market

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stockfortress/stockfortress/internal/clients/yahoo"
	"github.com/stockfortress/stockfortress/internal/lib/sl"
	"github.com/stockfortress/stockfortress/internal/models"
)

const maxSymbols = 50

// QuoteProvider — источник котировок.
type QuoteProvider interface {
	Quotes(ctx context.Context, symbols []string) (map[string]yahoo.Quote, error)
}

// Service — массовое получение котировок с деградацией до нулей.
type Service struct {
	provider QuoteProvider
	log      *slog.Logger
}

// New создает новый Service.
func New(provider QuoteProvider, log *slog.Logger) *Service {
	return &Service{provider: provider, log: log}
}

// BulkQuotes возвращает котировку для каждого запрошенного тикера.
// Список ограничен maxSymbols, дубликаты схлопываются, порядок ключей
// соответствует нормализованным тикерам из запроса.
func (s *Service) BulkQuotes(ctx context.Context, symbols []string) map[string]models.MarketQuote {
	normalized := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		normalized = append(normalized, sym)
		if len(normalized) == maxSymbols {
			break
		}
	}

	result := make(map[string]models.MarketQuote, len(normalized))
	for _, sym := range normalized {
		result[sym] = models.MarketQuote{}
	}
	if len(normalized) == 0 {
		return result
	}

	quotes, err := s.provider.Quotes(ctx, normalized)
	if err != nil {
		s.log.Warn("quote provider failed, returning zeroed quotes", sl.Err(err))
		return result
	}

	for sym, q := range quotes {
		if _, ok := result[sym]; !ok {
			continue
		}
		result[sym] = models.MarketQuote{
			Price:   q.Price,
			Change:  q.Change,
			Percent: q.Percent,
		}
	}
	return result
}
