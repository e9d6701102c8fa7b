// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"log/slog"
	"time"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Используется для единообразного вывода ошибок в логах:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Dur возвращает slog.Attr с длительностью операции в миллисекундах.
func Dur(key string, d time.Duration) slog.Attr {
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(d.Round(time.Millisecond).String()),
	}
}
