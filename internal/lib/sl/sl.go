// Package sl содержит вспомогательные функции для формирования
// структурированных полей лога slog.
package sl

import (
	"io"
	"log/slog"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
//	log.Error("failed to stream track", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// ID возвращает атрибут с идентификатором сущности.
func ID(key string, id int64) slog.Attr {
	return slog.Int64(key, id)
}

const envLocal = "local"

// New создаёт логгер процесса: текстовый с уровнем debug для локального
// окружения, JSON с уровнем info для остальных.
func New(env string, w io.Writer) *slog.Logger {
	if env == envLocal {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
