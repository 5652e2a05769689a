package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/lib/sl"
	"github.com/magabrotheeeer/notes-client/internal/models"
)

var errIncompleteProfile = errors.New("profile response has no user or account")

// Register создаёт аккаунт и его администратора. Сессию не открывает.
func (s *Store) Register(ctx context.Context, in models.Registration) error {
	const op = "store.Register"

	id := s.begin(TypeRegister)
	reply, err := s.api.Register(ctx, in)
	if err != nil {
		return s.reject(op, TypeRegister, id, err, "Registration failed", notify)
	}

	s.fulfill(TypeRegister, id, nil)
	s.success(reply.Message)
	return nil
}

// Login открывает сессию и сохраняет токен. Профиль не загружается.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	const op = "store.Login"

	id := s.begin(TypeLogin)
	reply, err := s.api.Login(ctx, creds)
	if err != nil {
		return s.reject(op, TypeLogin, id, err, "Login failed", notify)
	}

	// Адаптер берёт токен из хранилища: без сохранённого токена сессии нет.
	if err := s.tokens.Save(ctx, reply.Data.Token); err != nil {
		return s.reject(op, TypeLogin, id, fmt.Errorf("persist token: %w", err), "Login failed", notify)
	}
	s.fulfill(TypeLogin, id, reply.Data.Token)
	s.success(reply.Message)
	return nil
}

// FetchProfile загружает пользователя и аккаунт сессии.
func (s *Store) FetchProfile(ctx context.Context) error {
	const op = "store.FetchProfile"

	id := s.begin(TypeFetchProfile)
	reply, err := s.api.Profile(ctx)
	if err == nil && (reply.Data.User == nil || reply.Data.Account == nil) {
		err = errIncompleteProfile
	}
	if err != nil {
		return s.reject(op, TypeFetchProfile, id, err, "Failed to fetch profile", quiet)
	}

	s.fulfill(TypeFetchProfile, id, Credentials{User: *reply.Data.User, Account: *reply.Data.Account})
	return nil
}

// FetchUsers загружает страницу участников аккаунта со статистикой.
func (s *Store) FetchUsers(ctx context.Context, q models.PageQuery) error {
	const op = "store.FetchUsers"

	id := s.begin(TypeFetchUsers)
	reply, err := s.api.Users(ctx, q)
	if err != nil {
		return s.reject(op, TypeFetchUsers, id, err, "Failed to fetch users", quiet)
	}

	s.fulfill(TypeFetchUsers, id, UsersPayload{
		Users:      reply.Data.Users,
		Pagination: reply.Data.Pagination,
		Stats:      reply.Data.Stats,
	})
	return nil
}

// Invite приглашает участника в аккаунт.
func (s *Store) Invite(ctx context.Context, in models.Invitation) error {
	const op = "store.Invite"

	id := s.begin(TypeInvite)
	reply, err := s.api.Invite(ctx, in)
	if err != nil {
		return s.reject(op, TypeInvite, id, err, "Failed to invite user", notify)
	}

	s.fulfill(TypeInvite, id, nil)
	s.success(reply.Message)
	return nil
}

// ChangePassword меняет пароль и закрывает сессию: войти нужно заново.
func (s *Store) ChangePassword(ctx context.Context, in models.PasswordChange) error {
	const op = "store.ChangePassword"

	id := s.begin(TypeChangePassword)
	reply, err := s.api.ChangePassword(ctx, in)
	if err != nil {
		return s.reject(op, TypeChangePassword, id, err, "Failed to change password", notify)
	}

	s.clearToken(ctx, op)
	s.fulfill(TypeChangePassword, id, nil)
	s.success(reply.Message)
	return nil
}

// Logout закрывает сессию. Локальная очистка выполняется всегда,
// даже если сервер недоступен.
func (s *Store) Logout(ctx context.Context) error {
	const op = "store.Logout"

	id := s.begin(TypeLogout)
	_, err := s.api.Logout(ctx)
	if err != nil {
		s.log.Warn("server logout failed, clearing session locally", slog.String("op", op), sl.Err(err))
	}

	s.clearToken(ctx, op)
	s.fulfill(TypeLogout, id, nil)
	if err == nil {
		s.notifier.Success("Logged out successfully")
	}
	return nil
}

// ForgetSession очищает сессию без обращения к серверу.
func (s *Store) ForgetSession(ctx context.Context) {
	s.clearToken(ctx, "store.ForgetSession")
	s.Dispatch(Action{Type: TypeLocalLogout})
}

func (s *Store) clearToken(ctx context.Context, op string) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error("failed to clear token", slog.String("op", op), sl.Err(err))
	}
}

// IsUnauthorized сообщает, что операция провалилась из-за потери сессии.
func IsUnauthorized(err error) bool {
	return errors.Is(err, apiclient.ErrUnauthorized)
}
