package store

import "github.com/magabrotheeeer/notes-client/internal/models"

// AvailableTags возвращает различные теги загруженных заметок в порядке первого появления.
func AvailableTags(notes []models.Note) []string {
	var all []string
	for _, n := range notes {
		all = append(all, n.Tags...)
	}
	return models.NormalizeTags(all)
}

// CanCreateNote сообщает, позволяет ли квота аккаунта сессии создать заметку.
func CanCreateNote(s SessionState) bool {
	return s.Account != nil && s.Account.CanCreateNote()
}

// IsAdmin сообщает, что пользователь сессии — администратор.
func IsAdmin(s SessionState) bool {
	return s.IsAuthenticated && s.User.IsAdmin()
}
