package store

import (
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/lib/sl"
)

// Failure — ошибка операции контейнера. Message пригоден для показа
// пользователю и совпадает с тем, что записано в слайс.
type Failure struct {
	Op      string
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// toast определяет, показывать ли уведомление об ошибке.
type toast bool

const (
	quiet  toast = false
	notify toast = true
)

func (s *Store) begin(t ActionType) uint64 {
	id := s.seq.Add(1)
	s.Dispatch(Action{Type: t, Phase: PhasePending, RequestID: id})
	return id
}

func (s *Store) fulfill(t ActionType, id uint64, payload any) {
	s.Dispatch(Action{Type: t, Phase: PhaseFulfilled, RequestID: id, Payload: payload})
}

// reject завершает запрос ошибкой. Сообщение берётся с сервера, иначе fallback.
func (s *Store) reject(op string, t ActionType, id uint64, err error, fallback string, show toast) error {
	msg := apiclient.MessageOr(err, fallback)

	s.log.Warn("operation failed", slog.String("op", op), slog.String("message", msg), sl.Err(err))
	s.Dispatch(Action{Type: t, Phase: PhaseRejected, RequestID: id, Error: msg})

	if errors.Is(err, apiclient.ErrUnauthorized) {
		s.Dispatch(Action{Type: TypeSessionExpired})
	}
	if show {
		s.notifier.Error(msg)
	}
	return &Failure{Op: op, Message: msg, Err: err}
}

func (s *Store) success(msg string) {
	if msg != "" {
		s.notifier.Success(msg)
	}
}
