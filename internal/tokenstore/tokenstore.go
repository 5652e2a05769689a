// Package tokenstore хранит единственное значение, переживающее перезапуск клиента, —
// bearer-токен сессии. Писать в хранилище могут только HTTP-адаптер (при 401)
// и слой сессии (вход, выход, смена пароля).
package tokenstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/magabrotheeeer/notes-client/internal/config"
)

// Store описывает хранилище токена. Пустая строка без ошибки означает отсутствие токена.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// New создаёт хранилище по настройкам сессии.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	const op = "tokenstore.New"
	switch cfg.Backend {
	case config.SessionMemory:
		return NewMemory(""), nil
	case config.SessionRedis:
		r, err := NewRedis(ctx, cfg.RedisConnection, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return r, nil
	default:
		path := cfg.FilePath
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			path = filepath.Join(dir, "notes-client", "token")
		}
		return NewFile(path), nil
	}
}

// Memory — хранилище в памяти процесса.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory создаёт хранилище с начальным токеном.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Load(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *Memory) Save(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
