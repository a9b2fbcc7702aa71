package testutil

import (
	"strconv"

	"book-catalog/library"
)

// NewBook returns a persisted Book with sensible defaults, suitable for test
// fixtures. Override individual fields with options.
func NewBook(opts ...func(*library.Book)) library.Book {
	b := library.Book{
		ID:     "1",
		Title:  "Test Book",
		Author: "Test Author",
		Year:   2020,
		Genre:  library.GenreThriller,
		Status: library.StatusAvailable,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Books returns n fixtures with ids "1".."n" and titles "Book 1".."Book n".
func Books(n int, opts ...func(*library.Book)) []library.Book {
	out := make([]library.Book, 0, n)
	for i := 1; i <= n; i++ {
		id := strconv.Itoa(i)
		all := append([]func(*library.Book){WithID(id), WithTitle("Book " + id)}, opts...)
		out = append(out, NewBook(all...))
	}
	return out
}

// WithID sets the book id.
func WithID(id string) func(*library.Book) {
	return func(b *library.Book) { b.ID = id }
}

// WithTitle sets the book title.
func WithTitle(title string) func(*library.Book) {
	return func(b *library.Book) { b.Title = title }
}

// WithAuthor sets the book author.
func WithAuthor(author string) func(*library.Book) {
	return func(b *library.Book) { b.Author = author }
}

// WithYear sets the publication year.
func WithYear(year int) func(*library.Book) {
	return func(b *library.Book) { b.Year = year }
}

// WithGenre sets the genre.
func WithGenre(g library.Genre) func(*library.Book) {
	return func(b *library.Book) { b.Genre = g }
}

// WithStatus sets the circulation status.
func WithStatus(s library.Status) func(*library.Book) {
	return func(b *library.Book) { b.Status = s }
}
