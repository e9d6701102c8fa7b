package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/stockfortress/stockfortress/internal/lib/sl"
)

// Layered объединяет durable- и локальный уровни кеша.
// Чтение: сначала durable, при его недоступности или промахе — локальный.
// Запись: durable best-effort (ошибки только логируются), локальный всегда.
type Layered struct {
	durable *Redis
	local   *Memory
	ttl     time.Duration
	log     *slog.Logger
}

// NewLayered создает двухуровневый кеш. durable может быть nil,
// если redis не сконфигурирован — тогда работает только локальный уровень.
func NewLayered(durable *Redis, local *Memory, ttl time.Duration, log *slog.Logger) *Layered {
	return &Layered{
		durable: durable,
		local:   local,
		ttl:     ttl,
		log:     log,
	}
}

// Get возвращает значение по ключу или false, если его нет ни на одном уровне.
func (l *Layered) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if l.durable != nil {
		data, found, err := l.durable.Get(ctx, key)
		if err != nil {
			l.log.Warn("durable cache read failed", slog.String("key", key), sl.Err(err))
		} else if found {
			return data, true
		}
	}
	return l.local.Get(key, l.ttl)
}

// Set пишет значение на оба уровня. Ошибка durable-уровня не
// поднимается к вызывающему: локальная запись служит подстраховкой.
func (l *Layered) Set(ctx context.Context, key string, value json.RawMessage) {
	if l.durable != nil {
		if err := l.durable.Set(ctx, key, value, l.ttl); err != nil {
			l.log.Warn("durable cache write failed", slog.String("key", key), sl.Err(err))
		}
	}
	l.local.Set(key, value)
}

// Entries возвращает количество записей локального уровня (для health-эндпоинта).
func (l *Layered) Entries() int {
	return l.local.Len()
}
