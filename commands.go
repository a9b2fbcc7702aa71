package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"book-catalog/library"
)

// listOptions narrows what the list subcommand and post-save listings show.
type listOptions struct {
	genre  string
	status string
	page   int // one-based
}

// showList loads the catalog and prints one page of it.
func (a *app) showList(ctx context.Context, opts listOptions) error {
	list := a.newList()
	if err := list.Load(ctx); err != nil {
		a.flushToasts()
		return err
	}
	switch {
	case opts.genre != "":
		list.SelectDimension(library.DimensionGenre)
		list.SetFilterValue(library.DimensionGenre, opts.genre)
	case opts.status != "":
		list.SelectDimension(library.DimensionStatus)
		list.SetFilterValue(library.DimensionStatus, opts.status)
	}
	if opts.page > 1 {
		list.GoToPage(opts.page - 1)
	}
	renderList(a.out, a.term, list.View())
	return nil
}

func newListCmd(appFn func() *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List books, optionally filtered by genre or status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.page < 1 {
				return fmt.Errorf("invalid page %d: pages start at 1", opts.page)
			}
			return appFn().showList(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.genre, "genre", "", "only show books of this genre")
	cmd.Flags().StringVar(&opts.status, "status", "", "only show books with this status")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page to show")
	cmd.MarkFlagsMutuallyExclusive("genre", "status")
	return cmd
}

// formFlags carries the book fields that may be given on the command line.
type formFlags struct {
	title       string
	author      string
	year        int
	genre       string
	status      string
	interactive bool
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "book title")
	cmd.Flags().StringVar(&f.author, "author", "", "book author")
	cmd.Flags().IntVar(&f.year, "year", 0, "publication year")
	cmd.Flags().StringVar(&f.genre, "genre", "", "one of thriller, action, adventure, romantic, comedy")
	cmd.Flags().StringVar(&f.status, "status", "", "available or issued")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "prompt for every field")
}

// overlay copies the flags the user actually set onto values.
func (f *formFlags) overlay(cmd *cobra.Command, values library.FormValues) library.FormValues {
	changed := cmd.Flags().Changed
	if changed("title") {
		values.Title = f.title
	}
	if changed("author") {
		values.Author = f.author
	}
	if changed("year") {
		values.Year = strconv.Itoa(f.year)
	}
	if changed("genre") {
		values.Genre = f.genre
	}
	if changed("status") {
		values.Status = f.status
	}
	return values
}

// submitForm opens the form for target, applies the flags and saves it.
// After a successful save the catalog is listed, as the form navigates back
// to the list.
func (a *app) submitForm(ctx context.Context, cmd *cobra.Command, target library.Target, flags *formFlags) error {
	edit := a.newEdit()
	if err := edit.Open(ctx, target); err != nil {
		a.flushToasts()
		return err
	}

	values := flags.overlay(cmd, edit.Values())
	if flags.interactive {
		var ok bool
		if values, ok = a.fillForm(values, nil); !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	if err := edit.Submit(ctx, values); err != nil {
		a.reportSubmitError(err)
		a.flushToasts()
		return err
	}
	a.flushToasts()

	if a.takeRoute().screen == screenList {
		return a.showList(ctx, listOptions{})
	}
	return nil
}

func newAddCmd(appFn func() *app) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appFn().submitForm(cmd.Context(), cmd, library.NewBook{}, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd(appFn func() *app) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appFn().submitForm(cmd.Context(), cmd, library.TargetFor(args[0]), &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(appFn func() *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a book after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()
			list := a.newList()
			if err := list.Load(ctx); err != nil {
				a.flushToasts()
				return err
			}
			err := a.deleteBook(ctx, list, args[0], yes)
			a.flushToasts()
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newGenresCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genres present in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			list := a.newList()
			if err := list.Load(cmd.Context()); err != nil {
				a.flushToasts()
				return err
			}
			printGenres(a, list.Genres())
			return nil
		},
	}
}

func printGenres(a *app, genres []string) {
	if len(genres) == 0 {
		fmt.Fprintln(a.out, "No genres.")
		return
	}
	for _, g := range genres {
		fmt.Fprintln(a.out, g)
	}
}

func newShellCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse the catalog interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newShell(appFn()).run(cmd.Context())
		},
	}
}
