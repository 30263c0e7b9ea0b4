// Package gallery листает отсортированный список работ с фильтром по категории.
package gallery

// All — значение фильтра "все категории".
const All = "all"

// Item — элемент галереи.
type Item interface {
	ItemID() string
	ItemCategory() string
}

// Page — видимая страница.
type Page[T Item] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	TotalItems int    `json:"total_items"`
	PageSize   int    `json:"page_size"`
	Category   string `json:"category"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
}

// Pager хранит полный список, выбранную категорию и номер страницы.
// Номер страницы — ограниченный счётчик: Next/Prev/Goto держат его
// в [1, TotalPages], смена категории сбрасывает его в 1.
type Pager[T Item] struct {
	items    []T
	category string
	pageSize int
	page     int
}

// NewPager создаёт пейджер с фиксированным размером страницы.
func NewPager[T Item](pageSize int) *Pager[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pager[T]{category: All, pageSize: pageSize, page: 1}
}

// SetItems заменяет полный список (уже отсортированный хранилищем).
func (p *Pager[T]) SetItems(items []T) {
	p.items = items
}

// SetCategory меняет фильтр и возвращает на первую страницу.
func (p *Pager[T]) SetCategory(category string) {
	if category == "" {
		category = All
	}
	p.category = category
	p.page = 1
}

func (p *Pager[T]) Category() string {
	return p.category
}

// Filtered возвращает элементы выбранной категории в исходном порядке.
func (p *Pager[T]) Filtered() []T {
	if p.category == All {
		return p.items
	}
	out := make([]T, 0, len(p.items))
	for _, it := range p.items {
		if it.ItemCategory() == p.category {
			out = append(out, it)
		}
	}
	return out
}

// TotalPages — не меньше 1, даже для пустого списка.
func (p *Pager[T]) TotalPages() int {
	return totalPages(len(p.Filtered()), p.pageSize)
}

// Page — текущий номер страницы, приведённый к допустимому диапазону.
func (p *Pager[T]) Page() int {
	return clamp(p.page, 1, p.TotalPages())
}

// Next — следующая страница; на последней ничего не делает.
func (p *Pager[T]) Next() {
	p.page = clamp(p.Page()+1, 1, p.TotalPages())
}

// Prev — предыдущая страница; на первой ничего не делает.
func (p *Pager[T]) Prev() {
	p.page = clamp(p.Page()-1, 1, p.TotalPages())
}

// Goto переходит на страницу n, приводя её к диапазону.
func (p *Pager[T]) Goto(n int) {
	p.page = clamp(n, 1, p.TotalPages())
}

// Remove удаляет элемент по id, не трогая номер страницы.
// Если текущая страница опустела, она будет приведена к диапазону
// при следующем View.
func (p *Pager[T]) Remove(id string) bool {
	for i, it := range p.items {
		if it.ItemID() == id {
			next := make([]T, 0, len(p.items)-1)
			next = append(next, p.items[:i]...)
			next = append(next, p.items[i+1:]...)
			p.items = next
			return true
		}
	}
	return false
}

// View вычисляет видимую страницу.
func (p *Pager[T]) View() Page[T] {
	filtered := p.Filtered()
	total := totalPages(len(filtered), p.pageSize)
	page := clamp(p.page, 1, total)

	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	items := make([]T, end-start)
	copy(items, filtered[start:end])

	return Page[T]{
		Items:      items,
		Page:       page,
		TotalPages: total,
		TotalItems: len(filtered),
		PageSize:   p.pageSize,
		Category:   p.category,
		HasPrev:    page > 1,
		HasNext:    page < total,
	}
}

// Paginate — одноразовый расчёт страницы для запроса без состояния.
func Paginate[T Item](items []T, category string, pageSize, page int) Page[T] {
	p := NewPager[T](pageSize)
	p.SetItems(items)
	p.SetCategory(category)
	p.Goto(page)
	return p.View()
}

func totalPages(n, pageSize int) int {
	if n == 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
