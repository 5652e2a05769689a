package models

// Значения пагинации по умолчанию.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Pagination описывает текущую страницу серверной выборки.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// DefaultPagination возвращает начальное состояние пагинации.
func DefaultPagination() Pagination {
	return Pagination{Page: DefaultPage, Limit: DefaultLimit}
}

// Normalize приводит пагинацию к инвариантам:
// limit > 0, total >= 0, pages = ceil(total/limit), 1 <= page <= max(pages, 1).
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Total < 0 {
		p.Total = 0
	}
	p.Pages = (p.Total + p.Limit - 1) / p.Limit
	if p.Page < 1 {
		p.Page = 1
	}
	if maxPage := max(p.Pages, 1); p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// PaginationPatch — частичное обновление пагинации; nil поля не меняются.
type PaginationPatch struct {
	Page  *int
	Limit *int
}

// PageQuery — параметры запроса страницы.
type PageQuery struct {
	Page  int
	Limit int
}

// Filters — активные фильтры списка заметок: подстрока и точный тег (логическое И).
type Filters struct {
	Search string `json:"search"`
	Tags   string `json:"tags"`
}

// FiltersPatch — частичное обновление фильтров.
type FiltersPatch struct {
	Search *string
	Tags   *string
}

// NotesQuery — параметры запроса списка заметок.
type NotesQuery struct {
	Page   int
	Limit  int
	Search string
	Tags   string
}
