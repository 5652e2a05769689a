// Package models содержит доменные структуры клиента заметок: пользователя,
// аккаунт (тенант), заметки, тарифы, подписку и платежи, а также тела запросов к API.
// Структуры не содержат поведения, кроме небольших вычисляемых предикатов.
package models

import "time"

// Роли пользователя внутри аккаунта.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User представляет пользователя аккаунта.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IsAdmin сообщает, является ли пользователь администратором аккаунта.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// MemberStats — сводка по участникам аккаунта.
type MemberStats struct {
	TotalUsers       int `json:"totalUsers"`
	TotalActiveUsers int `json:"totalActiveUsers"`
}

// Credentials — тело запроса на вход.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration — тело запроса на регистрацию нового аккаунта.
type Registration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountName string `json:"accountName"`
}

// Invitation — приглашение участника в аккаунт.
type Invitation struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PasswordChange — тело запроса на смену пароля.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
