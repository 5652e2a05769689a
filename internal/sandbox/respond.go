package sandbox

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

type envelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Message: message, Data: data})
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Message: message})
}

// decode читает JSON-тело и валидирует его по тегам validate.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var errs validator.ValidationErrors
		if ve, isVE := err.(validator.ValidationErrors); isVE {
			errs = ve
		}
		fail(w, r, http.StatusUnprocessableEntity, validationMessage(errs))
		return false
	}
	return true
}

func validationMessage(errs validator.ValidationErrors) string {
	var msgs []string
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s is too short", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	if len(msgs) == 0 {
		return "validation failed"
	}
	return strings.Join(msgs, ", ")
}

func pageQuery(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = models.DefaultLimit
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) ([]T, models.Pagination) {
	p := models.Pagination{Page: page, Limit: limit, Total: len(items)}.Normalize()
	start := min((p.Page-1)*p.Limit, len(items))
	end := min(start+p.Limit, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, p
}
