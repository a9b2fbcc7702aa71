package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"book-catalog/library"
)

// ErrNotFound is returned when no book has the requested id.
var ErrNotFound = errors.New("book not found")

// Database provides high-level helpers around a SQLite connection.
type Database struct {
	db  *sql.DB
	now func() time.Time

	addBookStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db, now: time.Now}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addBookStmt != nil {
		d.addBookStmt.Close()
	}
	return d.db.Close()
}

// Ping checks the connection is usable.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            year INTEGER NOT NULL,
            genre TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_books_created ON books(created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	d.addBookStmt, err = d.db.Prepare(
		`INSERT INTO books(id,title,author,year,genre,status,created_at) VALUES(?,?,?,?,?,?,?)`)
	return err
}

// ---------------------------------------------------------------------------
// CRUD helpers
// ---------------------------------------------------------------------------

const bookColumns = `id,title,author,year,genre,status`

// ListBooks returns every book in insertion order.
func (d *Database) ListBooks(ctx context.Context) ([]library.Book, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []library.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (d *Database) GetBook(ctx context.Context, id string) (library.Book, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id=?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return library.Book{}, ErrNotFound
	}
	if err != nil {
		return library.Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, nil
}

// AddBook stores p under a freshly generated id and returns the stored record.
func (d *Database) AddBook(ctx context.Context, p library.BookPayload) (library.Book, error) {
	id := uuid.NewString()
	_, err := d.addBookStmt.ExecContext(ctx, id, p.Title, p.Author, p.Year, string(p.Genre), string(p.Status), d.now().UTC())
	if err != nil {
		return library.Book{}, fmt.Errorf("add book: %w", err)
	}
	return bookFromPayload(id, p), nil
}

// UpdateBook replaces every field of the book with id.
func (d *Database) UpdateBook(ctx context.Context, id string, p library.BookPayload) (library.Book, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE books SET title=?, author=?, year=?, genre=?, status=? WHERE id=?`,
		p.Title, p.Author, p.Year, string(p.Genre), string(p.Status), id)
	if err != nil {
		return library.Book{}, fmt.Errorf("update book %s: %w", id, err)
	}
	if err := expectOneRow(res); err != nil {
		return library.Book{}, err
	}
	return bookFromPayload(id, p), nil
}

func (d *Database) DeleteBook(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(r rowScanner) (library.Book, error) {
	var (
		b             library.Book
		genre, status string
	)
	if err := r.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &genre, &status); err != nil {
		return library.Book{}, err
	}
	b.Genre = library.Genre(genre)
	b.Status = library.Status(status)
	return b, nil
}

func bookFromPayload(id string, p library.BookPayload) library.Book {
	return library.Book{
		ID:     id,
		Title:  p.Title,
		Author: p.Author,
		Year:   p.Year,
		Genre:  p.Genre,
		Status: p.Status,
	}
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
