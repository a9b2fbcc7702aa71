package library

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	titleChars  = regexp.MustCompile(`^[A-Za-z0-9\s\-']+$`)
	authorChars = regexp.MustCompile(`^[A-Za-z\s.']+$`)
	hasLetter   = regexp.MustCompile(`[A-Za-z]`)
)

// FormValues is the working state of the book form. Year is kept as the raw
// text the user typed so the schema can reject non-numeric input.
type FormValues struct {
	Title  string `json:"title" validate:"required,book_title"`
	Author string `json:"author" validate:"required,book_author"`
	Year   string `json:"year" validate:"required,number"`
	Genre  string `json:"genre" validate:"required,oneof=thriller action adventure romantic comedy"`
	Status string `json:"status" validate:"required,oneof=available issued"`
}

// DefaultFormValues is the initial create-mode form: empty text fields,
// the current year, no genre, status available.
func DefaultFormValues(now time.Time) FormValues {
	return FormValues{
		Year:   strconv.Itoa(now.Year()),
		Status: string(StatusAvailable),
	}
}

// FormValuesFromBook hydrates the form from a fetched record. Missing fields
// fall back to the create-mode defaults.
func FormValuesFromBook(b Book, now time.Time) FormValues {
	v := DefaultFormValues(now)
	if b.Title != "" {
		v.Title = b.Title
	}
	if b.Author != "" {
		v.Author = b.Author
	}
	if b.Year != 0 {
		v.Year = strconv.Itoa(b.Year)
	}
	if b.Genre != "" {
		v.Genre = string(b.Genre)
	}
	if b.Status != "" {
		v.Status = string(b.Status)
	}
	return v
}

// Validate checks v against the form schema. It returns a *ValidationError
// listing every invalid field, or nil.
func (v FormValues) Validate() error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe.Field(), fe.Tag()),
		})
	}
	return &ValidationError{Fields: fields}
}

// Payload converts validated values into the request body.
func (v FormValues) Payload() (BookPayload, error) {
	year, err := strconv.Atoi(strings.TrimSpace(v.Year))
	if err != nil {
		return BookPayload{}, &ValidationError{Fields: []FieldError{{
			Field: "year", Rule: "number", Message: fieldMessage("year", "number"),
		}}}
	}
	return BookPayload{
		Title:  v.Title,
		Author: v.Author,
		Year:   year,
		Genre:  Genre(v.Genre),
		Status: Status(v.Status),
	}, nil
}

var messages = map[string]string{
	"title.required":     "Title is required",
	"title.book_title":   "Title must contain at least one letter and may include numbers, spaces, hyphens, and apostrophes",
	"author.required":    "Author is required",
	"author.book_author": "Author must contain at least one letter and may include spaces, dots, and apostrophes",
	"year.required":      "Year is required",
	"year.number":        "Year must be a number",
	"genre.required":     "Genre is required",
	"genre.oneof":        "Invalid genre",
	"status.required":    "Status is required",
	"status.oneof":       "Invalid status",
}

func fieldMessage(field, rule string) string {
	if msg, ok := messages[field+"."+rule]; ok {
		return msg
	}
	return field + " is invalid (" + rule + ")"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "book_title", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return titleChars.MatchString(s) && hasLetter.MatchString(s)
	})
	mustRegister(v, "book_author", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return authorChars.MatchString(s) && hasLetter.MatchString(s)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("library: register " + tag + ": " + err.Error())
	}
}
