// Package background реализует запуск отсоединённых фоновых задач.
//
// Задача выполняется в отдельной горутине с собственным контекстом и
// границей ошибок: паника или ошибка задачи логируется и никогда
// не влияет на запрос, который её породил.
package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stockfortress/stockfortress/internal/lib/sl"
)

// DefaultTaskTimeout ограничивает время жизни одной фоновой задачи.
const DefaultTaskTimeout = 3 * time.Minute

// Runner запускает фоновые задачи, результат которых никого не ждёт.
type Runner struct {
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunner создает новый Runner с таймаутом по умолчанию.
func NewRunner(log *slog.Logger) *Runner {
	return &Runner{
		log:     log,
		timeout: DefaultTaskTimeout,
	}
}

// Go запускает задачу fn в отдельной горутине. Контекст задачи не
// наследуется от контекста запроса: задача должна пережить ответ клиенту.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("background task panicked",
					slog.String("task", name), slog.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			r.log.Error("background task failed",
				slog.String("task", name), sl.Err(err))
			return
		}
		r.log.Info("background task finished",
			slog.String("task", name), sl.Dur("took", time.Since(start)))
	}()
}

// Wait блокируется до завершения всех запущенных задач.
// Используется в тестах и при graceful shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}
