// Package notify показывает короткие уведомления о результате операций.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Console печатает уведомления в w.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole создаёт уведомления для терминала.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) {
	c.print("✓", msg)
}

func (c *Console) Error(msg string) {
	c.print("✗", msg)
}

func (c *Console) print(mark, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", mark, msg)
}

// Log пишет уведомления в журнал. Подходит для неинтерактивного режима.
type Log struct {
	log *slog.Logger
}

// NewLog создаёт уведомления поверх логгера.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log.With(slog.String("component", "notify"))}
}

func (l *Log) Success(msg string) {
	l.log.Info(msg, slog.String("kind", "success"))
}

func (l *Log) Error(msg string) {
	l.log.Warn(msg, slog.String("kind", "error"))
}

// Multi рассылает уведомление нескольким получателям.
type Multi []interface {
	Success(msg string)
	Error(msg string)
}

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
