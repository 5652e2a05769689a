package models

import (
	"strings"
	"time"
)

// Author — автор заметки.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Note — заметка, принадлежащая ровно одному аккаунту.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Author      Author    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NotePatch — частичное представление заметки из ответа на обновление.
// nil означает, что поле в ответе отсутствовало.
type NotePatch struct {
	ID          *string    `json:"id,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Apply поверхностно накладывает patch на заметку и возвращает копию.
// Поля, отсутствующие в patch, сохраняются.
func (n Note) Apply(p NotePatch) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Author != nil {
		n.Author = *p.Author
	}
	if p.CreatedAt != nil {
		n.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		n.UpdatedAt = *p.UpdatedAt
	}
	return n
}

// NoteInput — тело запроса на создание или обновление заметки.
type NoteInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// NormalizeTags обрезает пробелы, убирает пустые и повторяющиеся теги,
// сохраняя порядок первого появления. Теги чувствительны к регистру.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// HasTag проверяет точное совпадение тега.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
