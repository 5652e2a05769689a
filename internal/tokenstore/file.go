package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File хранит токен в файле с правами 0600.
type File struct {
	path string
}

// NewFile создаёт файловое хранилище. Каталог создаётся при первой записи.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path возвращает путь к файлу токена.
func (f *File) Path() string {
	return f.path
}

func (f *File) Load(_ context.Context) (string, error) {
	const op = "tokenstore.File.Load"
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *File) Save(_ context.Context, token string) error {
	const op = "tokenstore.File.Save"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (f *File) Clear(_ context.Context) error {
	const op = "tokenstore.File.Clear"
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
