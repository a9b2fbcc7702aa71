// Command import_books loads a JSON array of books into a running catalog
// through its REST API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"book-catalog/config"
	"book-catalog/library"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "import_books <file.json>",
		Short:         "Import books from a JSON file into the catalog",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			entries, err := readBooks(args[0])
			if err != nil {
				return err
			}
			imp := &importer{repo: library.NewClient(cfg.API.BaseURL), logger: logger, out: out}
			return imp.run(cmd.Context(), entries)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: bookshelf.yaml in . or ./config)")
	return cmd
}

// readBooks splits the file into one raw entry per book so that a malformed
// entry fails on its own.
func readBooks(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

type importer struct {
	repo   library.Repository
	logger *zap.Logger
	out    io.Writer
}

// errImportIncomplete is returned when at least one book was not imported.
var errImportIncomplete = errors.New("some books were not imported")

func (imp *importer) run(ctx context.Context, entries []json.RawMessage) error {
	fmt.Fprintf(imp.out, "Importing %d books...\n", len(entries))

	successCount := 0
	errorCount := 0
	for i, raw := range entries {
		// Book accepts years sent as strings or numbers.
		var book library.Book
		if err := json.Unmarshal(raw, &book); err != nil {
			fmt.Fprintf(imp.out, "Importing: entry %d... ERROR - %v\n", i+1, err)
			imp.logger.Warn("import failed", zap.Int("entry", i+1), zap.Error(err))
			errorCount++
			continue
		}
		fmt.Fprintf(imp.out, "Importing: %s by %s... ", book.Title, book.Author)

		created, err := imp.importOne(ctx, book.Payload())
		if err != nil {
			fmt.Fprintf(imp.out, "ERROR - %v\n", err)
			imp.logger.Warn("import failed", zap.String("title", book.Title), zap.Error(err))
			errorCount++
			continue
		}
		fmt.Fprintf(imp.out, "SUCCESS (ID: %s)\n", created.ID)
		successCount++
	}

	fmt.Fprintf(imp.out, "\nImport complete!\n")
	fmt.Fprintf(imp.out, "Successfully imported: %d books\n", successCount)
	fmt.Fprintf(imp.out, "Errors: %d\n", errorCount)

	if successCount > 0 {
		if err := imp.printCatalog(ctx); err != nil {
			fmt.Fprintf(imp.out, "Error retrieving books: %v\n", err)
		}
	}
	if errorCount > 0 {
		return errImportIncomplete
	}
	return nil
}

// importOne applies the same rules as the book form before creating p.
func (imp *importer) importOne(ctx context.Context, p library.BookPayload) (library.Book, error) {
	values := library.FormValues{
		Title:  p.Title,
		Author: p.Author,
		Genre:  string(p.Genre),
		Status: string(p.Status),
	}
	if p.Year != 0 {
		values.Year = strconv.Itoa(p.Year)
	}
	if values.Status == "" {
		values.Status = string(library.StatusAvailable)
	}
	if err := values.Validate(); err != nil {
		return library.Book{}, err
	}
	payload, err := values.Payload()
	if err != nil {
		return library.Book{}, err
	}
	return imp.repo.Create(ctx, payload)
}

func (imp *importer) printCatalog(ctx context.Context) error {
	books, err := imp.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	// IDs are printed whole; they are what edit and delete take.
	idWidth := len("ID")
	for _, b := range books {
		idWidth = max(idWidth, len(b.ID))
	}
	row := "%-" + strconv.Itoa(idWidth) + "s %-50s %-30s\n"
	fmt.Fprintln(imp.out, "\nCatalog:")
	fmt.Fprintf(imp.out, row, "ID", "Title", "Author")
	fmt.Fprintln(imp.out, strings.Repeat("-", idWidth+82))
	for _, b := range books {
		fmt.Fprintf(imp.out, row, b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30))
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
