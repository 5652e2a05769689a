package store

import "github.com/magabrotheeeer/notes-client/internal/models"

// NotesState — слайс заметок: текущая страница, выбранная заметка, пагинация и фильтры.
type NotesState struct {
	Notes        []models.Note
	SelectedNote *models.Note
	Pagination   models.Pagination
	Filters      models.Filters
	IsLoading    bool
	Error        string

	Requests Requests
}

// InitialNotes возвращает пустой слайс заметок.
func InitialNotes() NotesState {
	return NotesState{Pagination: models.DefaultPagination()}
}

// NoteUpdated — полезная нагрузка updateNote/fulfilled.
type NoteUpdated struct {
	ID    string
	Patch models.NotePatch
}

// NotesPayload — полезная нагрузка fetchNotes/fulfilled.
type NotesPayload struct {
	Notes      []models.Note
	Pagination models.Pagination
}

func reduceNotes(s NotesState, a Action) NotesState {
	switch a.Type {
	case TypeNotesClearError:
		s.Error = ""
		return s
	case TypeSetFilters:
		if p, ok := a.Payload.(models.FiltersPatch); ok {
			if p.Search != nil {
				s.Filters.Search = *p.Search
			}
			if p.Tags != nil {
				s.Filters.Tags = *p.Tags
			}
		}
		return s
	case TypeSetPagination:
		if p, ok := a.Payload.(models.PaginationPatch); ok {
			if p.Page != nil {
				s.Pagination.Page = *p.Page
			}
			if p.Limit != nil {
				s.Pagination.Limit = *p.Limit
			}
			s.Pagination = s.Pagination.Normalize()
		}
		return s
	case TypeClearSelectedNote:
		s.SelectedNote = nil
		return s
	case TypeCreateNote, TypeFetchNotes, TypeFetchNote, TypeUpdateNote, TypeDeleteNote:
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
			s = applyNotes(s, a)
		}
	}

	s.IsLoading = s.Requests.Loading()
	return s
}

func applyNotes(s NotesState, a Action) NotesState {
	switch a.Type {
	case TypeFetchNotes:
		if p, ok := a.Payload.(NotesPayload); ok {
			s.Notes = append([]models.Note(nil), p.Notes...)
			s.Pagination = p.Pagination.Normalize()
		}
	case TypeFetchNote:
		if n, ok := a.Payload.(models.Note); ok {
			s.SelectedNote = &n
		}
	case TypeUpdateNote:
		u, ok := a.Payload.(NoteUpdated)
		if !ok {
			return s
		}
		notes := make([]models.Note, len(s.Notes))
		for i, n := range s.Notes {
			if n.ID == u.ID {
				n = n.Apply(u.Patch)
			}
			notes[i] = n
		}
		s.Notes = notes
		if s.SelectedNote != nil && s.SelectedNote.ID == u.ID {
			s.SelectedNote = ptr(s.SelectedNote.Apply(u.Patch))
		}
	case TypeDeleteNote:
		id, ok := a.Payload.(string)
		if !ok {
			return s
		}
		notes := make([]models.Note, 0, len(s.Notes))
		for _, n := range s.Notes {
			if n.ID != id {
				notes = append(notes, n)
			}
		}
		s.Notes = notes
		if s.SelectedNote != nil && s.SelectedNote.ID == id {
			s.SelectedNote = nil
		}
	}
	return s
}
