// Package guard решает, можно ли открыть раздел клиента при текущей сессии,
// и куда перенаправить пользователя, если нельзя.
package guard

import (
	"errors"

	"github.com/magabrotheeeer/notes-client/internal/store"
)

// Access — требование раздела к сессии.
type Access int

const (
	// Public доступен всем.
	Public Access = iota
	// PublicOnly доступен только без сессии (вход, регистрация).
	PublicOnly
	// Protected требует сессии.
	Protected
	// AdminOnly требует сессии администратора.
	AdminOnly
)

// Surface — раздел клиента.
type Surface string

const (
	Home           Surface = "home"
	Login          Surface = "login"
	Register       Surface = "register"
	Dashboard      Surface = "dashboard"
	Notes          Surface = "notes"
	NoteCreate     Surface = "notes/create"
	NoteEdit       Surface = "notes/edit"
	NoteView       Surface = "notes/view"
	Profile        Surface = "profile"
	ChangePassword Surface = "change-password"
	Members        Surface = "members"
	Subscription   Surface = "subscription"
)

var surfaces = map[Surface]Access{
	Home:           Public,
	Login:          PublicOnly,
	Register:       PublicOnly,
	Dashboard:      Protected,
	Notes:          Protected,
	NoteCreate:     Protected,
	NoteEdit:       Protected,
	NoteView:       Protected,
	Profile:        Protected,
	ChangePassword: Protected,
	Members:        AdminOnly,
	Subscription:   AdminOnly,
}

// AccessOf возвращает требование раздела. Неизвестные разделы публичны.
func AccessOf(s Surface) Access {
	return surfaces[s]
}

// Decision — результат проверки: Redirect пуст, если доступ разрешён.
type Decision struct {
	Redirect Surface
}

// Allowed сообщает, что раздел можно открыть.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Check проверяет доступ к разделу s.
func Check(s Surface, session store.SessionState) Decision {
	switch AccessOf(s) {
	case PublicOnly:
		if session.IsAuthenticated {
			return Decision{Redirect: Dashboard}
		}
	case Protected:
		if !session.IsAuthenticated {
			return Decision{Redirect: Login}
		}
	case AdminOnly:
		if !session.IsAuthenticated {
			return Decision{Redirect: Login}
		}
		if !session.User.IsAdmin() {
			return Decision{Redirect: Dashboard}
		}
	}
	return Decision{}
}

// DeniedError — отказ в доступе к разделу.
type DeniedError struct {
	Surface  Surface
	Redirect Surface
}

func (e *DeniedError) Error() string {
	switch e.Redirect {
	case Login:
		return "please log in to open " + string(e.Surface)
	case Dashboard:
		if AccessOf(e.Surface) == AdminOnly {
			return string(e.Surface) + " is available to account admins only"
		}
		return "already logged in"
	default:
		return "access to " + string(e.Surface) + " denied"
	}
}

// ErrDenied совпадает (errors.Is) с любым *DeniedError.
var ErrDenied = errors.New("access denied")

// Is позволяет сравнивать ошибку с ErrDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// Require возвращает *DeniedError, если раздел открыть нельзя.
func Require(s Surface, session store.SessionState) error {
	if d := Check(s, session); !d.Allowed() {
		return &DeniedError{Surface: s, Redirect: d.Redirect}
	}
	return nil
}
