package library

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validForm() FormValues {
	return FormValues{
		Title:  "Dune",
		Author: "Frank Herbert",
		Year:   "1965",
		Genre:  "adventure",
		Status: "available",
	}
}

func TestDefaultFormValues(t *testing.T) {
	v := DefaultFormValues(fixedNow)
	assert.Equal(t, FormValues{Year: "2025", Status: "available"}, v)
}

func TestFormValuesFromBook(t *testing.T) {
	full := Book{ID: "1", Title: "Emma", Author: "Jane Austen", Year: 1815, Genre: GenreRomantic, Status: StatusIssued}
	assert.Equal(t, FormValues{Title: "Emma", Author: "Jane Austen", Year: "1815", Genre: "romantic", Status: "issued"},
		FormValuesFromBook(full, fixedNow))

	partial := Book{ID: "2", Title: "Untitled"}
	assert.Equal(t, FormValues{Title: "Untitled", Year: "2025", Status: "available"},
		FormValuesFromBook(partial, fixedNow))
}

func TestValidateAcceptsValidForm(t *testing.T) {
	assert.NoError(t, validForm().Validate())

	v := validForm()
	v.Title = "Catch-22"
	v.Author = "J. R. R. O'Tolkien"
	assert.NoError(t, v.Validate())
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FormValues)
		field   string
		rule    string
		message string
	}{
		{"missing title", func(v *FormValues) { v.Title = "" }, "title", "required", "Title is required"},
		{"digits only title", func(v *FormValues) { v.Title = "1984" }, "title", "book_title", messages["title.book_title"]},
		{"title symbols", func(v *FormValues) { v.Title = "Dune!" }, "title", "book_title", messages["title.book_title"]},
		{"missing author", func(v *FormValues) { v.Author = "" }, "author", "required", "Author is required"},
		{"author digits", func(v *FormValues) { v.Author = "R2D2" }, "author", "book_author", messages["author.book_author"]},
		{"author hyphen", func(v *FormValues) { v.Author = "Jean-Paul" }, "author", "book_author", messages["author.book_author"]},
		{"year text", func(v *FormValues) { v.Year = "nineteen" }, "year", "number", "Year must be a number"},
		{"missing year", func(v *FormValues) { v.Year = "" }, "year", "required", "Year is required"},
		{"bad genre", func(v *FormValues) { v.Genre = "poetry" }, "genre", "oneof", "Invalid genre"},
		{"missing genre", func(v *FormValues) { v.Genre = "" }, "genre", "required", "Genre is required"},
		{"bad status", func(v *FormValues) { v.Status = "lost" }, "status", "oneof", "Invalid status"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := validForm()
			tc.mutate(&v)

			err := v.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
			assert.Equal(t, tc.rule, verr.Fields[0].Rule)
			assert.Equal(t, tc.message, verr.Message(tc.field))
			assert.Empty(t, verr.Message("other"))
		})
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	err := FormValues{}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 5)
	assert.Equal(t, "validation failed: title, author, year, genre, status", verr.Error())
}

func TestPayload(t *testing.T) {
	p, err := validForm().Payload()
	require.NoError(t, err)
	assert.Equal(t, BookPayload{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: GenreAdventure, Status: StatusAvailable}, p)

	v := validForm()
	v.Year = "1.5"
	_, err = v.Payload()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Year must be a number", verr.Message("year"))
}

func TestNilValidationErrorMessage(t *testing.T) {
	var verr *ValidationError
	assert.Empty(t, verr.Message("title"))
}
