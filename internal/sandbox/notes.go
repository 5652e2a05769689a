package sandbox

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

type noteRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags"`
}

type noteUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !s.decode(w, r, &req) {
		return
	}
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accounts[p.accountID]
	if !acc.CanCreateNote() {
		fail(w, r, http.StatusForbidden, "Note limit reached. Upgrade to Pro for unlimited notes.")
		return
	}
	author := s.users[p.userID]
	now := s.now()
	n := &note{
		Note: models.Note{
			ID:          uuid.NewString(),
			Title:       req.Title,
			Description: req.Description,
			Tags:        models.NormalizeTags(req.Tags),
			Author:      models.Author{ID: author.ID, Name: author.Name},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		accountID: p.accountID,
	}
	s.notes = append(s.notes, n)
	acc.NoteCount++

	ok(w, r, http.StatusCreated, "Note created successfully", map[string]any{"note": n.Note})
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	p := current(r)
	page, limit := pageQuery(r)
	search := strings.ToLower(r.URL.Query().Get("search"))
	tag := r.URL.Query().Get("tags")

	s.mu.Lock()
	var matched []models.Note
	for i := len(s.notes) - 1; i >= 0; i-- {
		n := s.notes[i]
		if n.accountID != p.accountID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), search) &&
			!strings.Contains(strings.ToLower(n.Description), search) {
			continue
		}
		if tag != "" && !n.HasTag(tag) {
			continue
		}
		matched = append(matched, n.Note)
	}
	s.mu.Unlock()

	items, pg := paginate(matched, page, limit)
	ok(w, r, http.StatusOK, "", map[string]any{"notes": items, "pagination": pg})
}

func (s *Server) findNote(accountID, id string) (int, *note) {
	for i, n := range s.notes {
		if n.ID == id && n.accountID == accountID {
			return i, n
		}
	}
	return -1, nil
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	p := current(r)
	s.mu.Lock()
	_, n := s.findNote(p.accountID, chi.URLParam(r, "id"))
	var out models.Note
	if n != nil {
		out = n.Note
	}
	s.mu.Unlock()

	if n == nil {
		fail(w, r, http.StatusNotFound, "Note not found")
		return
	}
	ok(w, r, http.StatusOK, "", map[string]any{"note": out})
}

// updateNote отвечает только изменёнными полями, id и updatedAt.
func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	var req noteUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, n := s.findNote(p.accountID, chi.URLParam(r, "id"))
	if n == nil {
		fail(w, r, http.StatusNotFound, "Note not found")
		return
	}
	changed := map[string]any{"id": n.ID}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" && *req.Title != n.Title {
		n.Title = *req.Title
		changed["title"] = n.Title
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" && *req.Description != n.Description {
		n.Description = *req.Description
		changed["description"] = n.Description
	}
	if req.Tags != nil {
		tags := models.NormalizeTags(*req.Tags)
		if !equalTags(tags, n.Tags) {
			n.Tags = tags
			changed["tags"] = tags
		}
	}
	n.UpdatedAt = s.now()
	changed["updatedAt"] = n.UpdatedAt

	ok(w, r, http.StatusOK, "Note updated successfully", changed)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	i, n := s.findNote(p.accountID, chi.URLParam(r, "id"))
	if n == nil {
		fail(w, r, http.StatusNotFound, "Note not found")
		return
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	if acc := s.accounts[p.accountID]; acc.NoteCount > 0 {
		acc.NoteCount--
	}
	ok(w, r, http.StatusOK, "Note deleted successfully", nil)
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}
