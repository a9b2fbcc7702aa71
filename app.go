package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"book-catalog/config"
	"book-catalog/library"
)

type screen int

const (
	screenNone screen = iota
	screenList
	screenForm
)

type route struct {
	screen screen
	target library.Target
}

// app is the state shared by every bookshelf command. It doubles as the
// Navigator handed to the controllers: navigation is recorded and acted on
// by the caller once the controller call returns.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	repo    library.Repository
	toaster *library.Toaster

	in   *bufio.Scanner
	out  io.Writer
	errw io.Writer
	term terminal

	next route
}

var _ library.Navigator = (*app)(nil)

func newApp(cfg *config.Config, logger *zap.Logger, in io.Reader, out, errw io.Writer) *app {
	return &app{
		cfg:     cfg,
		logger:  logger,
		repo:    library.NewClient(cfg.API.BaseURL),
		toaster: library.NewToaster(library.WithTTL(cfg.UI.ToastTTL)),
		in:      bufio.NewScanner(in),
		out:     out,
		errw:    errw,
		term:    detectTerminal(out),
	}
}

func (a *app) ToList()          { a.next = route{screen: screenList} }
func (a *app) ToCreate()        { a.next = route{screen: screenForm, target: library.NewBook{}} }
func (a *app) ToEdit(id string) { a.next = route{screen: screenForm, target: library.TargetFor(id)} }

// takeRoute returns and clears the pending navigation.
func (a *app) takeRoute() route {
	r := a.next
	a.next = route{}
	return r
}

func (a *app) newList() *library.ListController {
	return library.NewListController(a.repo, a.toaster, a.logger, a.cfg.UI.PageSize)
}

func (a *app) newEdit() *library.EditController {
	return library.NewEditController(a.repo, a.toaster, a, a.logger)
}

// flushToasts prints the pending toasts once and dismisses them.
func (a *app) flushToasts() {
	toasts := a.toaster.Active()
	renderToasts(a.out, a.term, toasts)
	for _, t := range toasts {
		a.toaster.Dismiss(t.ID)
	}
}

// prompt prints label and reads one line. ok is false at end of input.
func (a *app) prompt(label string) (line string, ok bool) {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *app) confirm(question string) bool {
	answer, ok := a.prompt(question + " [y/N] ")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// deleteBook runs the two-phase delete for id on a loaded list.
func (a *app) deleteBook(ctx context.Context, list *library.ListController, id string, assumeYes bool) error {
	book, err := list.RequestDelete(id)
	if err != nil {
		return fmt.Errorf("book %q: %w", id, err)
	}
	if !assumeYes && !a.confirm(fmt.Sprintf("Are you sure you want to delete %s?", book.Title)) {
		list.CancelDelete()
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	return list.ConfirmDelete(ctx)
}

// reportSubmitError prints inline field errors. Fetch failures were already
// turned into a toast by the controller.
func (a *app) reportSubmitError(err error) {
	var verr *library.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(a.errw, "Please fix the following:")
		renderFieldErrors(a.errw, verr)
	}
}
