package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"book-catalog/library"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiCyan   = "\033[36m"
	ansiClear  = "\033[H\033[2J"
	defaultCol = 80
)

// terminal describes where output goes. Colours and screen clearing are only
// used on a real terminal.
type terminal struct {
	tty   bool
	width int
}

func detectTerminal(w io.Writer) terminal {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return terminal{width: defaultCol}
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = defaultCol
	}
	return terminal{tty: true, width: width}
}

func (t terminal) clear(w io.Writer) {
	if t.tty {
		fmt.Fprint(w, ansiClear)
	}
}

func (t terminal) colour(code, s string) string {
	if !t.tty {
		return s
	}
	return code + s + ansiReset
}

// columnWidths splits the space left after the ID column and the fixed
// columns between title and author.
func (t terminal) columnWidths(idWidth int) (title, author int) {
	// Year(6) Genre(11) Status(10) and separators
	free := t.width - idWidth - 6 - 11 - 10 - 5
	title = max(12, free*3/5)
	author = max(10, free-title)
	return title, author
}

func renderList(w io.Writer, t terminal, v library.ListView) {
	if v.Loading {
		fmt.Fprintln(w, "Loading...")
		return
	}
	if v.Filter.Dimension != "" {
		value := v.Filter.ActiveValue()
		if value == "" {
			value = "any"
		}
		fmt.Fprintf(w, "Filter: %s = %s\n", v.Filter.Dimension, value)
	}
	if v.Total == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}

	// IDs are never truncated: edit and delete take them verbatim.
	iw := idWidth(v.Books)
	tw, aw := t.columnWidths(iw)
	row := "%-" + strconv.Itoa(iw) + "s %-" + strconv.Itoa(tw) + "s %-" + strconv.Itoa(aw) + "s %-6s %-11s %s\n"
	fmt.Fprintf(w, row, "ID", "Title", "Author", "Year", "Genre", "Status")
	fmt.Fprintln(w, strings.Repeat("-", min(t.width, iw+tw+aw+6+11+10+5)))
	for _, b := range v.Books {
		fmt.Fprintf(w, row,
			b.ID,
			truncateString(b.Title, tw),
			truncateString(b.Author, aw),
			strconv.Itoa(b.Year),
			string(b.Genre),
			string(b.Status))
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d books)\n", v.Page+1, v.TotalPages, v.Total)
}

func idWidth(books []library.Book) int {
	w := len("ID")
	for _, b := range books {
		w = max(w, len(b.ID))
	}
	return w
}

func renderToasts(w io.Writer, t terminal, toasts []library.Toast) {
	for _, toast := range toasts {
		code := ansiCyan
		switch toast.Severity {
		case library.SeveritySuccess:
			code = ansiGreen
		case library.SeverityError:
			code = ansiRed
		}
		fmt.Fprintln(w, t.colour(code, "["+string(toast.Severity)+"] "+toast.Message))
	}
}

func renderFieldErrors(w io.Writer, verr *library.ValidationError) {
	for _, f := range verr.Fields {
		fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
	}
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}
