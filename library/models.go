package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Genre is one of the fixed set of catalog genres.
type Genre string

const (
	GenreThriller  Genre = "thriller"
	GenreAction    Genre = "action"
	GenreAdventure Genre = "adventure"
	GenreRomantic  Genre = "romantic"
	GenreComedy    Genre = "comedy"
)

// Status is the circulation state of a book.
type Status string

const (
	StatusAvailable Status = "available"
	StatusIssued    Status = "issued"
)

// Genres returns the allowed genres in display order.
func Genres() []Genre {
	return []Genre{GenreThriller, GenreAction, GenreAdventure, GenreRomantic, GenreComedy}
}

// Statuses returns the allowed statuses in display order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusIssued}
}

// Book is a single catalog record. ID is empty until the remote API has
// persisted the record and assigned one.
type Book struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  Genre  `json:"genre"`
	Status Status `json:"status"`
}

// Persisted reports whether the record has a server-assigned identifier.
func (b Book) Persisted() bool { return b.ID != "" }

// BookPayload is the body sent on create and update.
type BookPayload struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  Genre  `json:"genre"`
	Status Status `json:"status"`
}

// Payload strips the identifier from b.
func (b Book) Payload() BookPayload {
	return BookPayload{
		Title:  b.Title,
		Author: b.Author,
		Year:   b.Year,
		Genre:  b.Genre,
		Status: b.Status,
	}
}

// wireBook mirrors Book but tolerates id and year arriving either as JSON
// numbers or strings; mock backends serialize both ways.
type wireBook struct {
	ID     json.RawMessage `json:"id"`
	Title  string          `json:"title"`
	Author string          `json:"author"`
	Year   json.RawMessage `json:"year"`
	Genre  Genre           `json:"genre"`
	Status Status          `json:"status"`
}

func (b *Book) UnmarshalJSON(data []byte) error {
	var w wireBook
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := scalarString(w.ID)
	if err != nil {
		return fmt.Errorf("book id: %w", err)
	}
	yearStr, err := scalarString(w.Year)
	if err != nil {
		return fmt.Errorf("book year: %w", err)
	}

	var year int
	if yearStr != "" {
		if year, err = strconv.Atoi(yearStr); err != nil {
			return fmt.Errorf("book year: %w", err)
		}
	}

	*b = Book{
		ID:     id,
		Title:  w.Title,
		Author: w.Author,
		Year:   year,
		Genre:  w.Genre,
		Status: w.Status,
	}
	return nil
}

// scalarString decodes a JSON string or number into its string form. Null
// and absent values yield "".
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}
	return n.String(), nil
}
