package store

import (
	"context"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

// CreateNote создаёт заметку. Список не меняется: его перезагружает вызывающий.
func (s *Store) CreateNote(ctx context.Context, in models.NoteInput) error {
	const op = "store.CreateNote"

	in.Tags = models.NormalizeTags(in.Tags)

	id := s.begin(TypeCreateNote)
	reply, err := s.api.CreateNote(ctx, in)
	if err != nil {
		return s.reject(op, TypeCreateNote, id, err, "Failed to create note", notify)
	}

	s.fulfill(TypeCreateNote, id, nil)
	s.success(reply.Message)
	return nil
}

// FetchNotes заменяет список заметок страницей, соответствующей q.
func (s *Store) FetchNotes(ctx context.Context, q models.NotesQuery) error {
	const op = "store.FetchNotes"

	id := s.begin(TypeFetchNotes)
	reply, err := s.api.Notes(ctx, q)
	if err != nil {
		return s.reject(op, TypeFetchNotes, id, err, "Failed to fetch notes", quiet)
	}

	s.fulfill(TypeFetchNotes, id, NotesPayload{Notes: reply.Data.Notes, Pagination: reply.Data.Pagination})
	return nil
}

// ReloadNotes перезапрашивает список с текущими пагинацией и фильтрами.
func (s *Store) ReloadNotes(ctx context.Context) error {
	st := s.State().Notes
	return s.FetchNotes(ctx, models.NotesQuery{
		Page:   st.Pagination.Page,
		Limit:  st.Pagination.Limit,
		Search: st.Filters.Search,
		Tags:   st.Filters.Tags,
	})
}

// FetchNote загружает заметку в SelectedNote.
func (s *Store) FetchNote(ctx context.Context, noteID string) error {
	const op = "store.FetchNote"

	id := s.begin(TypeFetchNote)
	reply, err := s.api.Note(ctx, noteID)
	if err != nil {
		return s.reject(op, TypeFetchNote, id, err, "Failed to fetch note", quiet)
	}

	s.fulfill(TypeFetchNote, id, reply.Data.Note)
	return nil
}

// UpdateNote обновляет заметку и накладывает ответ сервера на локальные копии.
func (s *Store) UpdateNote(ctx context.Context, noteID string, in models.NoteInput) error {
	const op = "store.UpdateNote"

	// nil оставляет теги без изменений, пустой срез их очищает.
	if in.Tags != nil {
		in.Tags = models.NormalizeTags(in.Tags)
	}

	id := s.begin(TypeUpdateNote)
	reply, err := s.api.UpdateNote(ctx, noteID, in)
	if err != nil {
		return s.reject(op, TypeUpdateNote, id, err, "Failed to update note", notify)
	}

	s.fulfill(TypeUpdateNote, id, NoteUpdated{ID: noteID, Patch: reply.Data.NotePatch})
	s.notifier.Success("Note updated successfully")
	return nil
}

// DeleteNote удаляет заметку.
func (s *Store) DeleteNote(ctx context.Context, noteID string) error {
	const op = "store.DeleteNote"

	id := s.begin(TypeDeleteNote)
	if _, err := s.api.DeleteNote(ctx, noteID); err != nil {
		return s.reject(op, TypeDeleteNote, id, err, "Failed to delete note", notify)
	}

	s.fulfill(TypeDeleteNote, id, noteID)
	s.notifier.Success("Note deleted successfully")
	return nil
}
