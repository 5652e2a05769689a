package apiclient

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку адаптера.
type Kind string

const (
	// KindRequest — сервер ответил не-2xx статусом.
	KindRequest Kind = "request"
	// KindUnauthorized — сервер ответил 401; сессия уже очищена.
	KindUnauthorized Kind = "unauthorized"
	// KindNetwork — сервер недоступен или запрос прерван.
	KindNetwork Kind = "network"
	// KindDecode — ответ сервера не удалось разобрать.
	KindDecode Kind = "decode"
)

// ErrUnauthorized совпадает (errors.Is) с любой ошибкой вида KindUnauthorized.
var ErrUnauthorized = errors.New("unauthorized")

// Error — ошибочный результат вызова API.
//
// Message всегда непустой: это сообщение сервера, если оно было (FromServer == true),
// иначе общее сообщение адаптера.
type Error struct {
	Kind       Kind
	Status     int
	Message    string
	FromServer bool
	Err        error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибку с ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Kind == KindUnauthorized
}

// MessageOr возвращает сообщение сервера из err, а если его нет — fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.FromServer && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

const (
	msgNetwork      = "Network error: unable to reach the server"
	msgUnauthorized = "Session expired, please log in again"
	msgDecode       = "Unexpected response from the server"
)

func statusMessage(status int) string {
	return fmt.Sprintf("Request failed with status code %d", status)
}
