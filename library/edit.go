package library

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// User-facing messages of the form screen.
const (
	msgLoadFailed = "Failed to load book details."
	msgSaveFailed = "Failed to save book."
	msgAdded      = "Book added successfully!"
	msgUpdated    = "Book updated successfully!"
)

// Target selects what the form edits: a new record or an existing one.
type Target interface {
	isTarget()
}

// NewBook targets the create form.
type NewBook struct{}

// ExistingBook targets the edit form of the persisted record ID.
type ExistingBook struct {
	ID string
}

func (NewBook) isTarget()      {}
func (ExistingBook) isTarget() {}

// TargetFor maps an optional identifier, as it arrives from a route or a
// command argument, to a Target.
func TargetFor(id string) Target {
	if id == "" {
		return NewBook{}
	}
	return ExistingBook{ID: id}
}

// EditController drives the create/edit form.
type EditController struct {
	repo      Repository
	notifier  Notifier
	navigator Navigator
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	target     Target
	values     FormValues
	errs       *ValidationError
	loading    bool
	submitting bool
	generation uint64
}

// EditOption customizes an EditController.
type EditOption func(*EditController)

// WithNow overrides the clock used for the default year.
func WithNow(now func() time.Time) EditOption {
	return func(c *EditController) { c.now = now }
}

func NewEditController(repo Repository, notifier Notifier, navigator Navigator, logger *zap.Logger, opts ...EditOption) *EditController {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &EditController{
		repo:      repo,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
		now:       time.Now,
		target:    NewBook{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.values = DefaultFormValues(c.now())
	return c
}

// Open enters the form for target. The form starts at its defaults; for an
// existing record it is then hydrated from the repository. A response that
// arrives after another Open has started is discarded.
func (c *EditController) Open(ctx context.Context, target Target) error {
	if target == nil {
		target = NewBook{}
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.target = target
	c.values = DefaultFormValues(c.now())
	c.errs = nil
	existing, ok := target.(ExistingBook)
	c.loading = ok
	c.mu.Unlock()

	if !ok {
		return nil
	}

	book, err := c.repo.GetByID(ctx, existing.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding stale book response", zap.String("id", existing.ID))
		return nil
	}
	c.loading = false
	if err != nil {
		c.logger.Error("fetching book failed", zap.String("id", existing.ID), zap.Error(err))
		c.notifier.Notify(msgLoadFailed, SeverityError)
		return err
	}
	c.values = FormValuesFromBook(book, c.now())
	return nil
}

// Target returns what the form currently edits.
func (c *EditController) Target() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Values returns the form's working values.
func (c *EditController) Values() FormValues {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// SetValues replaces the working values, as typing into the form does.
func (c *EditController) SetValues(v FormValues) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = v
}

// FieldErrors returns the result of the last failed validation, or nil.
func (c *EditController) FieldErrors() *ValidationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// Loading reports whether hydration is in flight.
func (c *EditController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Submitting reports whether a submission is in flight.
func (c *EditController) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Submit validates values and creates or updates the record depending on
// the target. Invalid input never reaches the repository. While the record is
// being fetched Submit returns ErrLoadInProgress, and while a submission is in
// flight further calls return ErrSubmitInProgress. On success the user
// is sent back to the list; on failure the entered values stay in the form.
func (c *EditController) Submit(ctx context.Context, values FormValues) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrLoadInProgress
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	c.values = values
	c.errs = nil

	payload, err := validateForm(values)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			c.errs = verr
		}
		c.mu.Unlock()
		return err
	}
	c.submitting = true
	target := c.target
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	success := msgAdded
	switch t := target.(type) {
	case ExistingBook:
		success = msgUpdated
		_, err = c.repo.Update(ctx, t.ID, payload)
	default:
		_, err = c.repo.Create(ctx, payload)
	}
	if err != nil {
		c.logger.Error("saving book failed", zap.Error(err))
		c.notifier.Notify(msgSaveFailed, SeverityError)
		return err
	}

	c.notifier.Notify(success, SeveritySuccess)
	if c.navigator != nil {
		c.navigator.ToList()
	}
	return nil
}

func validateForm(v FormValues) (BookPayload, error) {
	if err := v.Validate(); err != nil {
		return BookPayload{}, err
	}
	return v.Payload()
}
