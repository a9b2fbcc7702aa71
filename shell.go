package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"book-catalog/library"
)

const shellHelp = `Commands:
  Browse:  list, refresh, next, prev, page N
  Filter:  filter genre|status|none, value V, clear, genres
  Books:   add, edit ID, delete ID
  System:  help, exit`

// shell is the interactive list screen. Form screens are entered through the
// app's navigation and always return to the list.
type shell struct {
	app  *app
	list *library.ListController
}

func newShell(a *app) *shell {
	return &shell{app: a, list: a.newList()}
}

func (s *shell) run(ctx context.Context) error {
	a := s.app
	fmt.Fprintln(a.out, "Welcome to the Book Catalog!")
	fmt.Fprintln(a.out, shellHelp)

	_ = s.list.Load(ctx)
	s.render()

	for ctx.Err() == nil {
		line, ok := a.prompt("\n> ")
		if !ok {
			break
		}
		quit, err := s.dispatch(ctx, strings.Fields(line))
		if quit {
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		}
		s.follow(ctx)
		s.render()
		// Fetch failures are already on screen as a toast.
		if err != nil && !library.IsFetchError(err) {
			fmt.Fprintf(a.errw, "Error: %v\n", err)
		}
	}
	return nil
}

func (s *shell) render() {
	a := s.app
	a.term.clear(a.out)
	renderToasts(a.out, a.term, a.toaster.Active())
	renderList(a.out, a.term, s.list.View())
}

// dispatch runs one shell command.
func (s *shell) dispatch(ctx context.Context, fields []string) (quit bool, err error) {
	if len(fields) == 0 {
		return false, nil
	}
	a := s.app
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "list", "refresh":
		return false, s.list.Load(ctx)
	case "next":
		if !s.list.NextPage() {
			return false, errors.New("already on the last page")
		}
	case "prev":
		if !s.list.PreviousPage() {
			return false, errors.New("already on the first page")
		}
	case "page":
		if len(args) != 1 {
			return false, errors.New("usage: page N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return false, fmt.Errorf("invalid page %q", args[0])
		}
		s.list.GoToPage(n - 1)
	case "filter":
		if len(args) != 1 {
			return false, errors.New("usage: filter genre|status|none")
		}
		switch dim := strings.ToLower(args[0]); dim {
		case library.DimensionGenre, library.DimensionStatus:
			s.list.SelectDimension(dim)
		case "none":
			s.list.ResetFilters()
		default:
			return false, fmt.Errorf("unknown filter %q", args[0])
		}
	case "value":
		dim := s.list.View().Filter.Dimension
		if dim == "" {
			return false, errors.New("select a filter first: filter genre|status")
		}
		if len(args) == 0 {
			s.list.ClearFilter(dim)
			return false, nil
		}
		s.list.SetFilterValue(dim, strings.ToLower(strings.Join(args, " ")))
	case "clear":
		if dim := s.list.View().Filter.Dimension; dim != "" {
			s.list.ClearFilter(dim)
		}
	case "genres":
		printGenres(a, s.list.Genres())
		a.prompt("Press Enter to continue...")
	case "add":
		a.ToCreate()
	case "edit":
		if len(args) != 1 {
			return false, errors.New("usage: edit ID")
		}
		a.ToEdit(args[0])
	case "delete":
		if len(args) != 1 {
			return false, errors.New("usage: delete ID")
		}
		return false, a.deleteBook(ctx, s.list, args[0], false)
	case "help":
		fmt.Fprintln(a.out, shellHelp)
		a.prompt("Press Enter to continue...")
	case "exit", "quit":
		return true, nil
	default:
		fmt.Fprintln(a.out, "Unknown command. Type 'help' for the list of commands.")
		a.prompt("Press Enter to continue...")
	}
	return false, nil
}

// follow acts on navigation requested by the last command until the shell is
// back on the list screen.
func (s *shell) follow(ctx context.Context) {
	for {
		r := s.app.takeRoute()
		switch r.screen {
		case screenForm:
			s.form(ctx, r.target)
		case screenList:
			_ = s.list.Load(ctx)
		default:
			return
		}
	}
}

// form runs the create or edit screen for target. A successful save navigates
// back to the list.
func (s *shell) form(ctx context.Context, target library.Target) {
	a := s.app
	edit := a.newEdit()
	a.term.clear(a.out)
	if _, ok := target.(library.ExistingBook); ok {
		fmt.Fprintln(a.out, "Edit Book")
	} else {
		fmt.Fprintln(a.out, "Add New Book")
	}

	if err := edit.Open(ctx, target); err != nil {
		return
	}

	for {
		values, ok := a.fillForm(edit.Values(), edit.FieldErrors())
		if !ok {
			return
		}
		err := edit.Submit(ctx, values)
		if err == nil {
			return
		}
		a.reportSubmitError(err)
		if library.IsFetchError(err) {
			renderToasts(a.out, a.term, a.toaster.Active())
			if !a.confirm("Try again?") {
				return
			}
		}
	}
}

type formField struct {
	name    string
	label   string
	options []string
	value   *string
}

// fillForm prompts for every field, offering the current value as the
// default. ok is false when the user cancels or input ends.
func (a *app) fillForm(values library.FormValues, errs *library.ValidationError) (library.FormValues, bool) {
	fields := []formField{
		{name: "title", label: "Title", value: &values.Title},
		{name: "author", label: "Author", value: &values.Author},
		{name: "year", label: "Year", value: &values.Year},
		{name: "genre", label: "Genre", options: genreOptions(), value: &values.Genre},
		{name: "status", label: "Status", options: statusOptions(), value: &values.Status},
	}

	fmt.Fprintln(a.out, "Press Enter to keep the value in brackets, '-' to clear it, or '!' to cancel.")
	for _, f := range fields {
		if msg := errs.Message(f.name); msg != "" {
			fmt.Fprintln(a.out, a.term.colour(ansiRed, "  "+msg))
		}
		label := f.label
		if len(f.options) > 0 {
			label += " (" + strings.Join(f.options, "/") + ")"
		}
		line, ok := a.prompt(fmt.Sprintf("%s [%s]: ", label, *f.value))
		if !ok || line == "!" {
			return values, false
		}
		switch line {
		case "":
		case "-":
			*f.value = ""
		default:
			*f.value = line
		}
	}
	return values, true
}

func genreOptions() []string {
	out := make([]string, 0, len(library.Genres()))
	for _, g := range library.Genres() {
		out = append(out, string(g))
	}
	return out
}

func statusOptions() []string {
	out := make([]string, 0, len(library.Statuses()))
	for _, s := range library.Statuses() {
		out = append(out, string(s))
	}
	return out
}
