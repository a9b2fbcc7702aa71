package library

// DefaultPageSize is the number of books shown per page on the list screen.
const DefaultPageSize = 9

// Page is one window of a paginated collection.
type Page[T any] struct {
	Items       []T
	Number      int // zero-based
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// Paginate slices items into the window for page current. An out-of-range
// page yields an empty window, never a panic. Non-positive sizes fall back to
// DefaultPageSize.
func Paginate[T any](items []T, pageSize, current int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := Page[T]{Number: current, Items: []T{}}

	p.TotalPages = (len(items) + pageSize - 1) / pageSize
	p.HasNext = current < p.TotalPages-1
	p.HasPrevious = current > 0

	start := current * pageSize
	if current < 0 || start >= len(items) {
		return p
	}
	end := min(start+pageSize, len(items))
	p.Items = items[start:end]
	return p
}

// Pager holds the current page over a collection that may change underneath
// it. Whenever the collection's length changes the pager returns to page 0.
type Pager[T any] struct {
	pageSize int
	current  int
	items    []T
}

// NewPager returns a pager with a fixed page size. Non-positive sizes fall
// back to DefaultPageSize.
func NewPager[T any](pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager[T]{pageSize: pageSize}
}

// SetItems replaces the underlying collection.
func (p *Pager[T]) SetItems(items []T) {
	if len(items) != len(p.items) {
		p.current = 0
	}
	p.items = items
}

func (p *Pager[T]) PageSize() int { return p.pageSize }
func (p *Pager[T]) Current() int  { return p.current }
func (p *Pager[T]) Len() int      { return len(p.items) }

// TotalPages is ceil(len/pageSize).
func (p *Pager[T]) TotalPages() int {
	return (len(p.items) + p.pageSize - 1) / p.pageSize
}

// Page returns the current window.
func (p *Pager[T]) Page() Page[T] {
	return Paginate(p.items, p.pageSize, p.current)
}

// Next advances one page. It reports false and does nothing on the last page.
func (p *Pager[T]) Next() bool {
	if p.current >= p.TotalPages()-1 {
		return false
	}
	p.current++
	return true
}

// Previous moves back one page. It reports false and does nothing on page 0.
func (p *Pager[T]) Previous() bool {
	if p.current <= 0 {
		return false
	}
	p.current--
	return true
}

// GoTo jumps to page n clamped into [0, TotalPages-1], or 0 when empty. It
// returns the page actually selected.
func (p *Pager[T]) GoTo(n int) int {
	p.current = max(0, min(n, p.TotalPages()-1))
	return p.current
}
