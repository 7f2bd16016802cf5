// Package files хранит загруженные пользователями файлы: аватары, обложки и аудио.
// Ключ файла имеет вид <kind>/user_<id>/..., см. пакет upload.
package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Storage хранилище файлов.
// Open возвращает models.ErrFileNotFound, если файла нет.
// Delete не считает ошибкой отсутствие файла.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (*models.StoredFile, error)
	Delete(ctx context.Context, key string) error
}

// New создаёт хранилище по настройке Backend.
func New(ctx context.Context, cfg config.FileStorage) (Storage, error) {
	const op = "files.New"
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.Root)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("%s: unknown backend %q", op, cfg.Backend)
	}
}

// DeleteAll удаляет файлы по ключам, пустые ключи пропускаются.
// Ошибки только логируются: строки в базе к этому моменту уже удалены.
func DeleteAll(ctx context.Context, s Storage, log *slog.Logger, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			log.Warn("failed to delete stored file", slog.String("key", key), sl.Err(err))
		}
	}
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	switch strings.ToLower(path.Ext(key)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	}
	return "application/octet-stream"
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}
