// Package migrate imports the catalog and borrow ledger of the legacy
// SQLite deployment into the document store.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"library-backend/internal/library"
	"library-backend/internal/platform/db"
)

const unknownUser = "unknown"

// Target is the part of library.Store the import writes through.
type Target interface {
	GetBookByLegacyID(ctx context.Context, legacyID int64) (*library.Book, error)
	InsertBook(ctx context.Context, b *library.Book) error
	InsertBorrow(ctx context.Context, r *library.BorrowRecord) error
}

type Report struct {
	BooksImported   int
	BooksExisting   int
	BorrowsImported int
	// Skipped lists borrow rows whose book was not imported.
	Skipped []string
}

// OpenSQLite opens an existing legacy database file. A missing file is an
// error rather than a fresh empty database.
func OpenSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy database: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return conn, nil
}

type legacyBook struct {
	id     int64
	title  string
	author string
	genre  sql.NullString
	copies sql.NullInt64
}

type legacyBorrow struct {
	id         int64
	userID     int64
	bookID     int64
	borrowDate sql.NullString
	returned   bool
	returnDate sql.NullString
}

// FromSQLite copies library_book and library_borrowrecord into dst.
// Books already imported (same legacy id) are reused, so the book half is
// safe to re-run. Usernames come from auth_user.
func FromSQLite(ctx context.Context, src *sql.DB, dst Target) (Report, error) {
	var (
		books   []legacyBook
		users   map[int64]string
		borrows []legacyBorrow
	)
	err := db.RunInTx(ctx, src, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if books, err = readBooks(ctx, tx); err != nil {
			return err
		}
		if users, err = readUsers(ctx, tx); err != nil {
			return err
		}
		borrows, err = readBorrows(ctx, tx)
		return err
	})
	if err != nil {
		return Report{}, err
	}

	// rows without a usable borrow_date are stamped with the import time
	importedAt := time.Now().UTC().Truncate(time.Millisecond)

	var rep Report
	type imported struct{ id, title string }
	byLegacy := make(map[int64]imported, len(books))

	for _, lb := range books {
		existing, err := dst.GetBookByLegacyID(ctx, lb.id)
		if err != nil {
			return rep, fmt.Errorf("lookup book %d: %w", lb.id, err)
		}
		if existing != nil {
			byLegacy[lb.id] = imported{existing.ID, existing.Title}
			rep.BooksExisting++
			continue
		}

		legacyID := lb.id
		b := &library.Book{
			Title:       lb.title,
			Author:      lb.author,
			Genre:       lb.genre.String,
			TotalCopies: 1,
			LegacyID:    &legacyID,
		}
		if lb.copies.Valid {
			b.TotalCopies = int(lb.copies.Int64)
		}
		if err := dst.InsertBook(ctx, b); err != nil {
			return rep, fmt.Errorf("insert book %d: %w", lb.id, err)
		}
		byLegacy[lb.id] = imported{b.ID, b.Title}
		rep.BooksImported++
	}
	log.Printf("[INFO] books: %d imported, %d already present", rep.BooksImported, rep.BooksExisting)

	for _, lr := range borrows {
		book, ok := byLegacy[lr.bookID]
		if !ok {
			msg := fmt.Sprintf("borrow record %d: book id %d not migrated", lr.id, lr.bookID)
			log.Printf("[WARN] skipping %s", msg)
			rep.Skipped = append(rep.Skipped, msg)
			continue
		}
		username, ok := users[lr.userID]
		if !ok {
			username = unknownUser
		}
		rec := &library.BorrowRecord{
			UserID:     lr.userID,
			Username:   username,
			BookID:     book.id,
			BookTitle:  book.title,
			BorrowDate: importedAt,
			Returned:   lr.returned,
		}
		if t, ok := parseTime(lr.borrowDate); ok {
			rec.BorrowDate = t
		}
		if t, ok := parseTime(lr.returnDate); ok {
			rec.ReturnDate = &t
		}
		if err := dst.InsertBorrow(ctx, rec); err != nil {
			return rep, fmt.Errorf("insert borrow %d: %w", lr.id, err)
		}
		rep.BorrowsImported++
	}
	log.Printf("[INFO] borrow records: %d imported, %d skipped", rep.BorrowsImported, len(rep.Skipped))
	return rep, nil
}

func readBooks(ctx context.Context, q db.DBTX) ([]legacyBook, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, title, author, genre, total_copies FROM library_book ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query library_book: %w", err)
	}
	defer rows.Close()

	var out []legacyBook
	for rows.Next() {
		var b legacyBook
		if err := rows.Scan(&b.id, &b.title, &b.author, &b.genre, &b.copies); err != nil {
			return nil, fmt.Errorf("scan library_book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func readUsers(ctx context.Context, q db.DBTX) (map[int64]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, username FROM auth_user`)
	if err != nil {
		return nil, fmt.Errorf("query auth_user: %w", err)
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan auth_user: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

func readBorrows(ctx context.Context, q db.DBTX) ([]legacyBorrow, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id, user_id, book_id, borrow_date, returned, return_date
FROM library_borrowrecord
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query library_borrowrecord: %w", err)
	}
	defer rows.Close()

	var out []legacyBorrow
	for rows.Next() {
		var r legacyBorrow
		if err := rows.Scan(&r.id, &r.userID, &r.bookID, &r.borrowDate, &r.returned, &r.returnDate); err != nil {
			return nil, fmt.Errorf("scan library_borrowrecord: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseTime accepts the formats Django and the sqlite driver produce.
// Unparseable values are dropped.
func parseTime(v sql.NullString) (time.Time, bool) {
	s := strings.TrimSpace(v.String)
	if !v.Valid || s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), true
		}
	}
	log.Printf("[WARN] unparseable timestamp %q", s)
	return time.Time{}, false
}
