package testutil

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"book-catalog/library"
)

// Compile-time interface check.
var _ library.Repository = (*FakeRepository)(nil)

// Call is one recorded repository invocation.
type Call struct {
	Method  string // ListAll, GetByID, Create, Update, Delete
	ID      string
	Payload library.BookPayload
}

// FakeRepository is a thread-safe in-memory library.Repository that records
// every call. Each method can be overridden with a hook; without one it acts
// on the in-memory collection. Unknown ids fail like a 404 from the API.
type FakeRepository struct {
	ListAllFn func(ctx context.Context) ([]library.Book, error)
	GetByIDFn func(ctx context.Context, id string) (library.Book, error)
	CreateFn  func(ctx context.Context, p library.BookPayload) (library.Book, error)
	UpdateFn  func(ctx context.Context, id string, p library.BookPayload) (library.Book, error)
	DeleteFn  func(ctx context.Context, id string) error

	mu     sync.Mutex
	books  []library.Book
	calls  []Call
	nextID int
}

// NewFakeRepository returns a FakeRepository holding books.
func NewFakeRepository(books ...library.Book) *FakeRepository {
	r := &FakeRepository{}
	r.Seed(books...)
	return r
}

// Seed replaces the in-memory collection.
func (r *FakeRepository) Seed(books ...library.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books = append([]library.Book(nil), books...)
	for _, b := range books {
		if n, err := strconv.Atoi(b.ID); err == nil && n > r.nextID {
			r.nextID = n
		}
	}
}

// Stored returns a copy of the in-memory collection.
func (r *FakeRepository) Stored() []library.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]library.Book(nil), r.books...)
}

// Calls returns a copy of all recorded calls in order.
func (r *FakeRepository) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (r *FakeRepository) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears the recorded calls.
func (r *FakeRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *FakeRepository) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *FakeRepository) ListAll(ctx context.Context) ([]library.Book, error) {
	r.record(Call{Method: "ListAll"})
	if r.ListAllFn != nil {
		return r.ListAllFn(ctx)
	}
	return r.Stored(), nil
}

func (r *FakeRepository) GetByID(ctx context.Context, id string) (library.Book, error) {
	r.record(Call{Method: "GetByID", ID: id})
	if r.GetByIDFn != nil {
		return r.GetByIDFn(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexLocked(id); i >= 0 {
		return r.books[i], nil
	}
	return library.Book{}, notFound("fetch book")
}

func (r *FakeRepository) Create(ctx context.Context, p library.BookPayload) (library.Book, error) {
	r.record(Call{Method: "Create", Payload: p})
	if r.CreateFn != nil {
		return r.CreateFn(ctx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b := bookFrom(strconv.Itoa(r.nextID), p)
	r.books = append(r.books, b)
	return b, nil
}

func (r *FakeRepository) Update(ctx context.Context, id string, p library.BookPayload) (library.Book, error) {
	r.record(Call{Method: "Update", ID: id, Payload: p})
	if r.UpdateFn != nil {
		return r.UpdateFn(ctx, id, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return library.Book{}, notFound("update book")
	}
	r.books[i] = bookFrom(id, p)
	return r.books[i], nil
}

func (r *FakeRepository) Delete(ctx context.Context, id string) error {
	r.record(Call{Method: "Delete", ID: id})
	if r.DeleteFn != nil {
		return r.DeleteFn(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return notFound("delete book")
	}
	r.books = append(r.books[:i], r.books[i+1:]...)
	return nil
}

func (r *FakeRepository) indexLocked(id string) int {
	for i, b := range r.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func bookFrom(id string, p library.BookPayload) library.Book {
	return library.Book{ID: id, Title: p.Title, Author: p.Author, Year: p.Year, Genre: p.Genre, Status: p.Status}
}

func notFound(op string) error {
	return &library.FetchError{Op: op, StatusCode: http.StatusNotFound}
}

// Gate lets a hook block until the test releases it, for interleaving
// concurrent calls deterministically.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// NewGate returns a gate that holds callers until Release.
func NewGate() *Gate {
	return &Gate{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

// Wait signals entry and blocks until Release or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entered blocks until some caller has reached Wait.
func (g *Gate) Entered() {
	<-g.entered
}

// Release unblocks every current and future waiter.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}
