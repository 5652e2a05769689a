package store

import "github.com/magabrotheeeer/notes-client/internal/models"

// SessionState — слайс сессии: пользователь, его аккаунт и токен.
//
// IsAuthenticated всегда равно Token != ""; User и Account задаются только вместе.
type SessionState struct {
	User            *models.User
	Account         *models.Account
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string

	Users           []models.User
	UsersPagination models.Pagination
	AccountStats    models.MemberStats

	Requests Requests
}

// InitialSession возвращает слайс сессии для токена, восстановленного из хранилища.
func InitialSession(token string) SessionState {
	return SessionState{
		Token:           token,
		IsAuthenticated: token != "",
		UsersPagination: models.DefaultPagination(),
	}
}

// Credentials — полезная нагрузка setCredentials.
type Credentials struct {
	User    models.User
	Account models.Account
}

func reduceSession(s SessionState, a Action) SessionState {
	switch a.Type {
	case TypeAuthClearError:
		s.Error = ""
		return s
	case TypeSetCredentials:
		if c, ok := a.Payload.(Credentials); ok {
			s.User, s.Account = ptr(c.User), ptr(c.Account)
		}
		return s
	case TypeLocalLogout, TypeSessionExpired:
		return teardown(s)
	case TypeRegister, TypeLogin, TypeFetchProfile, TypeFetchUsers,
		TypeInvite, TypeChangePassword, TypeLogout:
	default:
		return s
	}

	requests, out, ok := s.Requests.track(a)
	if !ok {
		return s
	}
	s.Requests = requests

	switch a.Phase {
	case PhasePending:
		s.Error = ""
	case PhaseRejected:
		if out.current {
			s.Error = a.Error
		}
	case PhaseFulfilled:
		if out.apply {
			s = applySession(s, a)
		}
	}

	s.IsLoading = s.Requests.Loading()
	s.IsAuthenticated = s.Token != ""
	return s
}

func applySession(s SessionState, a Action) SessionState {
	switch a.Type {
	case TypeLogin:
		if token, ok := a.Payload.(string); ok {
			s.Token = token
		}
	case TypeFetchProfile:
		if c, ok := a.Payload.(Credentials); ok {
			s.User, s.Account = ptr(c.User), ptr(c.Account)
		}
	case TypeFetchUsers:
		if p, ok := a.Payload.(UsersPayload); ok {
			s.Users = append([]models.User(nil), p.Users...)
			s.UsersPagination = p.Pagination.Normalize()
			s.AccountStats = p.Stats
		}
	case TypeChangePassword, TypeLogout:
		s = teardown(s)
	}
	return s
}

// UsersPayload — полезная нагрузка fetchUsers/fulfilled.
type UsersPayload struct {
	Users      []models.User
	Pagination models.Pagination
	Stats      models.MemberStats
}

// teardown сбрасывает сессию, сохраняя трекер запросов.
func teardown(s SessionState) SessionState {
	s.User = nil
	s.Account = nil
	s.Token = ""
	s.IsAuthenticated = false
	s.Users = nil
	s.UsersPagination = models.DefaultPagination()
	s.AccountStats = models.MemberStats{}
	return s
}

func ptr[T any](v T) *T {
	return &v
}
