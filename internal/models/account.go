package models

import (
	"math"
	"time"
)

// Тарифные планы.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// UnlimitedNotes — значение лимита, означающее отсутствие ограничения.
const UnlimitedNotes = -1

// Account — тенант: граница биллинга и квоты заметок.
type Account struct {
	AccountID     string    `json:"account_id"`
	Slug          string    `json:"slug"`
	Plan          string    `json:"plan"`
	Limit         int       `json:"limit"`
	NoteCount     int       `json:"note_count"`
	AccountActive bool      `json:"account_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Unlimited сообщает, что у аккаунта нет лимита заметок.
func (a Account) Unlimited() bool {
	return a.Limit == UnlimitedNotes
}

// CanCreateNote возвращает true, если квота позволяет создать ещё одну заметку.
func (a Account) CanCreateNote() bool {
	if a.Unlimited() {
		return true
	}
	return a.NoteCount < a.Limit
}

// UsagePercent возвращает заполненность квоты в процентах, не больше 100.
// Для безлимитного аккаунта (и некорректного лимита) возвращает 0.
func (a Account) UsagePercent() float64 {
	if a.Unlimited() || a.Limit <= 0 {
		return 0
	}
	return math.Min(float64(a.NoteCount)/float64(a.Limit)*100, 100)
}
