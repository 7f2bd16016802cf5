package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Local хранит файлы в каталоге на диске.
type Local struct {
	root string
}

// NewLocal создаёт каталог root, если его нет.
func NewLocal(root string) (*Local, error) {
	const op = "files.NewLocal"
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Local{root: root}, nil
}

func (l *Local) path(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	return filepath.Join(l.root, filepath.FromSlash(path.Clean(key))), nil
}

// Save записывает файл через временный файл и переименование.
func (l *Local) Save(ctx context.Context, key string, r io.Reader, _ int64) error {
	const op = "files.Local.Save"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := l.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Open открывает файл для чтения.
func (l *Local) Open(_ context.Context, key string) (*models.StoredFile, error) {
	const op = "files.Local.Open"
	p, err := l.path(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.StoredFile{
		Name:        path.Base(key),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: contentType(key),
		Content:     f,
	}, nil
}

// Delete удаляет файл, отсутствие файла не ошибка.
func (l *Local) Delete(_ context.Context, key string) error {
	const op = "files.Local.Delete"
	p, err := l.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
