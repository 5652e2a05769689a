package forms

import (
	"strings"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

// Note — форма создания и редактирования заметки.
type Note struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags"`
}

// NoteFrom заполняет форму редактирования из заметки.
func NoteFrom(n models.Note) Note {
	return Note{Title: n.Title, Description: n.Description, Tags: append([]string(nil), n.Tags...)}
}

// Validate проверяет форму и возвращает тело запроса. Теги нормализуются.
func (f Note) Validate() (models.NoteInput, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)

	if err := check(f, nil); err != nil {
		return models.NoteInput{}, err
	}
	return models.NoteInput{
		Title:       f.Title,
		Description: f.Description,
		Tags:        models.NormalizeTags(f.Tags),
	}, nil
}

// SplitTags разбирает список тегов, введённый через запятую.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return models.NormalizeTags(strings.Split(s, ","))
}
