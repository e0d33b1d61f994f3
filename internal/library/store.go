package library

import (
	"context"
	"time"
)

// Store is the document store holding the catalog and the borrow ledger.
// Lookups by id return an *APIError with CodeNotFound when nothing matches;
// any other error means the store itself failed.
type Store interface {
	ListBooks(ctx context.Context) ([]Book, error)
	GetBook(ctx context.Context, id string) (*Book, error)
	// FindBook and GetBookByLegacyID return nil, nil when nothing matches.
	FindBook(ctx context.Context, title, author string) (*Book, error)
	GetBookByLegacyID(ctx context.Context, legacyID int64) (*Book, error)
	InsertBook(ctx context.Context, b *Book) error
	UpdateBook(ctx context.Context, b *Book) error
	DeleteBook(ctx context.Context, id string) error

	CountActiveBorrows(ctx context.Context, bookID string) (int64, error)
	HasActiveBorrow(ctx context.Context, userID int64, bookID string) (bool, error)
	InsertBorrow(ctx context.Context, r *BorrowRecord) error
	GetBorrow(ctx context.Context, id string) (*BorrowRecord, error)
	MarkReturned(ctx context.Context, id string, at time.Time) error
	// ListActiveBorrows orders by user_id asc, borrow_date desc.
	// A nil userID lists every user.
	ListActiveBorrows(ctx context.Context, userID *int64) ([]BorrowRecord, error)
}
