package forms

import (
	"strings"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

// Register — форма регистрации аккаунта.
type Register struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email_loose"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AccountName     string `json:"accountName" validate:"required"`
}

// Validate проверяет форму и возвращает тело запроса.
func (f Register) Validate() (models.Registration, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.AccountName = strings.TrimSpace(f.AccountName)
	f.Email = strings.TrimSpace(f.Email)

	if err := check(f, nil); err != nil {
		return models.Registration{}, err
	}
	return models.Registration{
		Name:        f.Name,
		Email:       f.Email,
		Password:    f.Password,
		AccountName: f.AccountName,
	}, nil
}

// Login — форма входа.
type Login struct {
	Email    string `json:"email" validate:"required,email_loose"`
	Password string `json:"password" validate:"required"`
}

// Validate проверяет форму и возвращает тело запроса.
func (f Login) Validate() (models.Credentials, error) {
	f.Email = strings.TrimSpace(f.Email)

	if err := check(f, nil); err != nil {
		return models.Credentials{}, err
	}
	return models.Credentials{Email: f.Email, Password: f.Password}, nil
}

// ChangePassword — форма смены пароля.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// Validate проверяет форму и возвращает тело запроса.
func (f ChangePassword) Validate() (models.PasswordChange, error) {
	var override map[string]string
	if f.ConfirmPassword == "" {
		override = map[string]string{"confirmPassword": "Please confirm your new password"}
	}

	if err := check(f, override); err != nil {
		return models.PasswordChange{}, err
	}
	return models.PasswordChange{CurrentPassword: f.CurrentPassword, NewPassword: f.NewPassword}, nil
}

// Invite — форма приглашения участника.
type Invite struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email_loose"`
}

// Validate проверяет форму. Email не должен совпадать (без учёта регистра)
// с email уже загруженных участников.
func (f Invite) Validate(members []models.User) (models.Invitation, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)

	var override map[string]string
	for _, m := range members {
		if f.Email != "" && strings.EqualFold(m.Email, f.Email) {
			override = map[string]string{"email": "User with this email already exists"}
			break
		}
	}

	if err := check(f, override); err != nil {
		return models.Invitation{}, err
	}
	return models.Invitation{Name: f.Name, Email: f.Email}, nil
}
