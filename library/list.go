package library

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// User-facing messages of the list screen.
const (
	msgFetchFailed  = "Failed to fetch books."
	msgDeleted      = "Book deleted successfully!"
	msgDeleteFailed = "Failed to delete the book. Please try again."
)

// ListView is a snapshot of everything the list screen renders.
type ListView struct {
	Loading     bool
	Books       []Book // current page
	Total       int    // size of the filtered collection
	Page        int    // zero-based
	TotalPages  int
	HasNext     bool
	HasPrevious bool
	Filter      FilterState
	Pending     *Book // book awaiting delete confirmation
}

// ListController drives the list screen: fetch, then filter, then paginate.
// It owns its state; nothing is shared with an EditController.
type ListController struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	filters  Registry[Book]

	mu      sync.Mutex
	books   []Book
	loading bool
	filter  FilterState
	pager   *Pager[Book]
	pending *Book
}

// NewListController wires a list screen. pageSize is fixed for the
// controller's lifetime.
func NewListController(repo Repository, notifier Notifier, logger *zap.Logger, pageSize int) *ListController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListController{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		filters:  BookFilters(),
		pager:    NewPager[Book](pageSize),
	}
}

// Load fetches the full collection. On failure the user is notified and the
// collection is left as it was.
func (c *ListController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	books, err := c.repo.ListAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.logger.Error("fetching books failed", zap.Error(err))
		c.notifier.Notify(msgFetchFailed, SeverityError)
		return err
	}
	c.logger.Debug("fetched books", zap.Int("count", len(books)))
	c.books = books
	c.refreshLocked()
	return nil
}

// Loading reports whether a fetch is in flight.
func (c *ListController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SelectDimension switches the active filter dimension. Only one dimension
// may constrain the list, so every selected value is cleared.
func (c *ListController) SelectDimension(dimension string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.SetDimension(dimension)
	c.filter.ClearAll()
	c.refreshLocked()
}

// SetFilterValue selects value for dimension.
func (c *ListController) SetFilterValue(dimension, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.SetValue(dimension, value)
	c.refreshLocked()
}

// ClearFilter removes the value of one dimension, keeping it active.
func (c *ListController) ClearFilter(dimension string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Clear(dimension)
	c.refreshLocked()
}

// ResetFilters drops the active dimension and every value.
func (c *ListController) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Reset()
	c.refreshLocked()
}

func (c *ListController) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Next()
}

func (c *ListController) PreviousPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Previous()
}

// GoToPage jumps to page n (zero-based, clamped) and returns the page selected.
func (c *ListController) GoToPage(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.GoTo(n)
}

// View returns a snapshot for rendering.
func (c *ListController) View() ListView {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := c.pager.Page()
	v := ListView{
		Loading:     c.loading,
		Books:       append([]Book(nil), page.Items...),
		Total:       c.pager.Len(),
		Page:        page.Number,
		TotalPages:  page.TotalPages,
		HasNext:     page.HasNext,
		HasPrevious: page.HasPrevious,
		Filter:      c.filter.clone(),
	}
	if c.pending != nil {
		p := *c.pending
		v.Pending = &p
	}
	return v
}

// Books returns the unfiltered collection.
func (c *ListController) Books() []Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Book(nil), c.books...)
}

// Genres lists the distinct genres of the unfiltered collection in order of
// first appearance, for populating filter options.
func (c *ListController) Genres() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[Genre]struct{}, len(c.books))
	out := make([]string, 0)
	for _, b := range c.books {
		if _, ok := seen[b.Genre]; ok {
			continue
		}
		seen[b.Genre] = struct{}{}
		out = append(out, string(b.Genre))
	}
	return out
}

// RequestDelete is the first phase of a delete: it marks the book with id as
// awaiting confirmation.
func (c *ListController) RequestDelete(id string) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		return Book{}, ErrUnknownBook
	}
	for _, b := range c.books {
		if b.ID == id {
			pending := b
			c.pending = &pending
			return b, nil
		}
	}
	return Book{}, ErrUnknownBook
}

// CancelDelete abandons a pending delete.
func (c *ListController) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// PendingDelete returns the book awaiting confirmation, if any.
func (c *ListController) PendingDelete() (Book, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Book{}, false
	}
	return *c.pending, true
}

// ConfirmDelete deletes the pending book. On success the full collection is
// fetched again once the delete has resolved; on failure the loaded list is
// left untouched.
func (c *ListController) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if pending == nil {
		return ErrNoPendingDelete
	}

	if err := c.repo.Delete(ctx, pending.ID); err != nil {
		c.logger.Error("deleting book failed", zap.String("id", pending.ID), zap.Error(err))
		c.notifier.Notify(msgDeleteFailed, SeverityError)
		return err
	}
	c.notifier.Notify(msgDeleted, SeveritySuccess)
	return c.Load(ctx)
}

func (c *ListController) refreshLocked() {
	c.pager.SetItems(Apply(c.books, c.filters, c.filter.Dimension, c.filter.Values))
}
