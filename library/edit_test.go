package library_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog/library"
	"book-catalog/testutil"
)

type editFixture struct {
	repo  *testutil.FakeRepository
	notes *testutil.Notifications
	nav   *testutil.Navigation
	edit  *library.EditController
}

func newEdit(t *testing.T, books ...library.Book) *editFixture {
	t.Helper()
	f := &editFixture{
		repo:  testutil.NewFakeRepository(books...),
		notes: &testutil.Notifications{},
		nav:   &testutil.Navigation{},
	}
	clock := testutil.NewClock(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	f.edit = library.NewEditController(f.repo, f.notes, f.nav, testutil.Logger(), library.WithNow(clock.Now))
	return f
}

func dune() library.FormValues {
	return library.FormValues{
		Title:  "Dune",
		Author: "Frank Herbert",
		Year:   "1965",
		Genre:  "adventure",
		Status: "available",
	}
}

func TestTargetFor(t *testing.T) {
	assert.Equal(t, library.NewBook{}, library.TargetFor(""))
	assert.Equal(t, library.ExistingBook{ID: "7"}, library.TargetFor("7"))
}

func TestEditCreateModeDefaults(t *testing.T) {
	f := newEdit(t)
	require.NoError(t, f.edit.Open(context.Background(), library.NewBook{}))

	assert.Equal(t, library.FormValues{Year: "2025", Status: "available"}, f.edit.Values())
	assert.False(t, f.edit.Loading())
	assert.Empty(t, f.repo.Calls())
	assert.Equal(t, library.NewBook{}, f.edit.Target())
}

func TestEditAddBook(t *testing.T) {
	f := newEdit(t)
	require.NoError(t, f.edit.Open(context.Background(), library.TargetFor("")))

	require.NoError(t, f.edit.Submit(context.Background(), dune()))

	want := library.BookPayload{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: library.GenreAdventure, Status: library.StatusAvailable}
	assert.Equal(t, []testutil.Call{{Method: "Create", Payload: want}}, f.repo.Calls())
	assert.Equal(t, []string{"list"}, f.nav.History())
	assert.Equal(t, []testutil.Notification{{Message: "Book added successfully!", Severity: library.SeveritySuccess}}, f.notes.All())
	assert.False(t, f.edit.Submitting())
}

func TestEditValidationBlocksSubmit(t *testing.T) {
	f := newEdit(t)
	require.NoError(t, f.edit.Open(context.Background(), library.NewBook{}))

	bad := dune()
	bad.Title = "1984"
	bad.Genre = "poetry"
	err := f.edit.Submit(context.Background(), bad)

	var verr *library.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, f.edit.FieldErrors().Message("title"))
	assert.Equal(t, "Invalid genre", f.edit.FieldErrors().Message("genre"))
	assert.Empty(t, f.repo.Calls())
	assert.Empty(t, f.notes.All())
	assert.Empty(t, f.nav.History())
	assert.Equal(t, bad, f.edit.Values())

	require.NoError(t, f.edit.Submit(context.Background(), dune()))
	assert.Nil(t, f.edit.FieldErrors())
}

func TestEditHydratesExistingBook(t *testing.T) {
	book := testutil.NewBook(testutil.WithID("5"), testutil.WithTitle("Emma"), testutil.WithAuthor("Jane Austen"),
		testutil.WithYear(1815), testutil.WithGenre(library.GenreRomantic), testutil.WithStatus(library.StatusIssued))
	f := newEdit(t, book)

	require.NoError(t, f.edit.Open(context.Background(), library.TargetFor("5")))

	assert.Equal(t, library.FormValues{Title: "Emma", Author: "Jane Austen", Year: "1815", Genre: "romantic", Status: "issued"}, f.edit.Values())
	assert.False(t, f.edit.Loading())
	assert.Equal(t, []testutil.Call{{Method: "GetByID", ID: "5"}}, f.repo.Calls())
}

func TestEditHydrationFallsBackPerField(t *testing.T) {
	f := newEdit(t, library.Book{ID: "9", Title: "Sparse"})
	require.NoError(t, f.edit.Open(context.Background(), library.ExistingBook{ID: "9"}))
	assert.Equal(t, library.FormValues{Title: "Sparse", Year: "2025", Status: "available"}, f.edit.Values())
}

func TestEditHydrationFailure(t *testing.T) {
	f := newEdit(t)
	err := f.edit.Open(context.Background(), library.ExistingBook{ID: "missing"})

	var fe *library.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.NotFound())
	assert.Equal(t, library.FormValues{Year: "2025", Status: "available"}, f.edit.Values())
	assert.False(t, f.edit.Loading())
	assert.Equal(t, []string{"Failed to load book details."}, f.notes.Messages())
}

func TestEditUpdateBook(t *testing.T) {
	f := newEdit(t, testutil.NewBook(testutil.WithID("3")))
	require.NoError(t, f.edit.Open(context.Background(), library.ExistingBook{ID: "3"}))
	f.repo.Reset()

	require.NoError(t, f.edit.Submit(context.Background(), dune()))

	calls := f.repo.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Update", calls[0].Method)
	assert.Equal(t, "3", calls[0].ID)
	assert.Equal(t, "Dune", f.repo.Stored()[0].Title)
	assert.Equal(t, []string{"Book updated successfully!"}, f.notes.Messages())
	assert.Equal(t, []string{"list"}, f.nav.History())
}

func TestEditSaveFailureKeepsValues(t *testing.T) {
	f := newEdit(t)
	f.repo.CreateFn = func(context.Context, library.BookPayload) (library.Book, error) {
		return library.Book{}, &library.FetchError{Op: "create book", StatusCode: http.StatusBadRequest}
	}
	require.NoError(t, f.edit.Open(context.Background(), library.NewBook{}))

	err := f.edit.Submit(context.Background(), dune())
	assert.True(t, library.IsFetchError(err))

	assert.Equal(t, dune(), f.edit.Values())
	assert.Empty(t, f.nav.History())
	assert.Equal(t, []testutil.Notification{{Message: "Failed to save book.", Severity: library.SeverityError}}, f.notes.All())
	assert.False(t, f.edit.Submitting(), "submit is re-enabled after failure")
}

func TestEditRejectsDoubleSubmit(t *testing.T) {
	f := newEdit(t)
	gate := testutil.NewGate()
	f.repo.CreateFn = func(ctx context.Context, p library.BookPayload) (library.Book, error) {
		if err := gate.Wait(ctx); err != nil {
			return library.Book{}, err
		}
		return library.Book{ID: "1", Title: p.Title}, nil
	}
	require.NoError(t, f.edit.Open(context.Background(), library.NewBook{}))

	first := make(chan error, 1)
	go func() { first <- f.edit.Submit(context.Background(), dune()) }()
	gate.Entered()

	assert.True(t, f.edit.Submitting())
	err := f.edit.Submit(context.Background(), dune())
	assert.ErrorIs(t, err, library.ErrSubmitInProgress)

	gate.Release()
	require.NoError(t, <-first)
	assert.Equal(t, 1, f.repo.CallCount("Create"))
	assert.Equal(t, []string{"Book added successfully!"}, f.notes.Messages())
}

func TestEditDiscardsStaleHydration(t *testing.T) {
	slow := testutil.NewBook(testutil.WithID("1"), testutil.WithTitle("Slow"))
	fast := testutil.NewBook(testutil.WithID("2"), testutil.WithTitle("Fast"))
	f := newEdit(t, slow, fast)

	gate := testutil.NewGate()
	f.repo.GetByIDFn = func(ctx context.Context, id string) (library.Book, error) {
		if id == "1" {
			if err := gate.Wait(ctx); err != nil {
				return library.Book{}, err
			}
			return slow, nil
		}
		return fast, nil
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- f.edit.Open(context.Background(), library.ExistingBook{ID: "1"}) }()
	gate.Entered()

	require.NoError(t, f.edit.Open(context.Background(), library.ExistingBook{ID: "2"}))
	assert.Equal(t, "Fast", f.edit.Values().Title)

	gate.Release()
	require.NoError(t, <-firstDone)
	assert.Equal(t, "Fast", f.edit.Values().Title, "slow response for a superseded target must not win")
	assert.Equal(t, library.ExistingBook{ID: "2"}, f.edit.Target())
	assert.False(t, f.edit.Loading())
}

func TestEditStaleHydrationFailureIsSilent(t *testing.T) {
	f := newEdit(t, testutil.NewBook(testutil.WithID("2")))
	gate := testutil.NewGate()
	f.repo.GetByIDFn = func(ctx context.Context, id string) (library.Book, error) {
		if id == "1" {
			_ = gate.Wait(ctx)
			return library.Book{}, errors.New("boom")
		}
		return testutil.NewBook(testutil.WithID("2")), nil
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- f.edit.Open(context.Background(), library.ExistingBook{ID: "1"}) }()
	gate.Entered()
	require.NoError(t, f.edit.Open(context.Background(), library.NewBook{}))

	gate.Release()
	assert.NoError(t, <-firstDone)
	assert.Empty(t, f.notes.All())
}

func TestEditLoadingFlagDuringHydration(t *testing.T) {
	f := newEdit(t, testutil.NewBook(testutil.WithID("1")))
	gate := testutil.NewGate()
	f.repo.GetByIDFn = func(ctx context.Context, id string) (library.Book, error) {
		if err := gate.Wait(ctx); err != nil {
			return library.Book{}, err
		}
		return testutil.NewBook(testutil.WithID(id)), nil
	}

	done := make(chan error, 1)
	go func() { done <- f.edit.Open(context.Background(), library.ExistingBook{ID: "1"}) }()
	gate.Entered()

	assert.True(t, f.edit.Loading())
	assert.False(t, f.edit.Submitting())

	gate.Release()
	require.NoError(t, <-done)
	assert.False(t, f.edit.Loading())
}

func TestEditSubmitWaitsForHydration(t *testing.T) {
	emma := testutil.NewBook(testutil.WithID("5"), testutil.WithTitle("Emma"), testutil.WithAuthor("Jane Austen"))
	f := newEdit(t, emma)
	gate := testutil.NewGate()
	f.repo.GetByIDFn = func(ctx context.Context, id string) (library.Book, error) {
		if err := gate.Wait(ctx); err != nil {
			return library.Book{}, err
		}
		return emma, nil
	}

	done := make(chan error, 1)
	go func() { done <- f.edit.Open(context.Background(), library.ExistingBook{ID: "5"}) }()
	gate.Entered()

	placeholder := dune()
	placeholder.Title = "Placeholder"
	err := f.edit.Submit(context.Background(), placeholder)
	assert.ErrorIs(t, err, library.ErrLoadInProgress)
	assert.Zero(t, f.repo.CallCount("Update"))
	assert.False(t, f.edit.Submitting())

	gate.Release()
	require.NoError(t, <-done)
	assert.Equal(t, "Emma", f.edit.Values().Title)
	assert.Equal(t, "Emma", f.repo.Stored()[0].Title)
	assert.Empty(t, f.notes.All())

	require.NoError(t, f.edit.Submit(context.Background(), dune()))
	assert.Equal(t, 1, f.repo.CallCount("Update"))
}

func TestEditSetValues(t *testing.T) {
	f := newEdit(t)
	f.edit.SetValues(dune())
	assert.Equal(t, dune(), f.edit.Values())
}
