// Package upload проверяет загружаемые файлы и строит ключи для их хранения.
//
// Ключ имеет вид <kind>/user_<id>/[cover/]<имя>_<суффикс><расширение>,
// суффикс делает ключ уникальным, поэтому замена файла не перезаписывает старый
// до того, как новая запись сохранена в базе.
package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Виды загружаемых файлов.
const (
	KindAvatar   = "avatar"
	KindAlbum    = "album"
	KindTrack    = "track"
	KindPlaylist = "playlist"
)

// Rule ограничения для одного типа файлов.
type Rule struct {
	MaxSize    int64
	Extensions []string
}

// Validate проверяет размер и расширение файла.
func Validate(file *models.FileUpload, rule Rule) error {
	const op = "upload.Validate"
	if file == nil {
		return nil
	}
	if file.Size > rule.MaxSize {
		return fmt.Errorf("%s: %w: max size for file %dMB", op, models.ErrFileTooLarge, rule.MaxSize>>20)
	}
	ext := Ext(file.Filename)
	for _, allowed := range rule.Extensions {
		if strings.EqualFold(ext, allowed) {
			return nil
		}
	}
	return fmt.Errorf("%s: %w: %q, allowed: %s", op, models.ErrFileExtension, ext, strings.Join(rule.Extensions, ", "))
}

// Ext возвращает расширение файла без точки в нижнем регистре.
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Key строит ключ хранения файла.
func Key(kind string, userID int64, filename string, cover bool) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := filepath.Ext(base)
	stem := sanitize(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = "file"
	}
	name := fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:8], strings.ToLower(ext))

	dir := path.Join(kind, fmt.Sprintf("user_%d", userID))
	if cover {
		dir = path.Join(dir, "cover")
	}
	return path.Join(dir, name)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}

// Saver сохраняет содержимое по ключу.
type Saver interface {
	Save(ctx context.Context, key string, r io.Reader, size int64) error
}

// Store сохраняет файл под новым ключом и возвращает ключ.
// Для file == nil ничего не делает и возвращает пустую строку.
func Store(ctx context.Context, s Saver, kind string, userID int64, file *models.FileUpload, cover bool) (string, error) {
	const op = "upload.Store"
	if file == nil {
		return "", nil
	}
	key := Key(kind, userID, file.Filename, cover)
	if err := s.Save(ctx, key, file.Content, file.Size); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}
