package library

import (
	"context"
	"log"
	"time"

	"library-backend/internal/platform/db"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

// Now is truncated to the millisecond precision BSON dates keep.
func (realClock) Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// Service implements catalog management and the borrow ledger on top of a
// Store. status is the document store health captured at startup: reads
// degrade when it is down, writes fail with CodeUnavailable.
type Service struct {
	store   Store
	status  db.StoreStatus
	clock   Clock
	metrics *Metrics
}

func NewService(store Store, status db.StoreStatus, metrics *Metrics) *Service {
	return &Service{
		store:   store,
		status:  status,
		clock:   realClock{},
		metrics: metrics,
	}
}

func (s *Service) Status() db.StoreStatus { return s.status }

func (s *Service) checkConnected() error {
	if !s.status.Connected {
		return ErrUnavailable(s.status.Error)
	}
	return nil
}

// storeErr passes APIErrors through and reports anything else as the
// store being unreachable.
func storeErr(op string, err error) error {
	if CodeOf(err) != CodeInternal {
		return err
	}
	log.Printf("[WARN] %s: %v", op, err)
	return ErrUnavailable(err.Error())
}

// ===== catalog =====

func (s *Service) ListBooks(ctx context.Context) BookList {
	empty := BookList{Items: []BookResponse{}}
	if !s.status.Connected {
		empty.StoreError = s.status.Error
		return empty
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		log.Printf("[WARN] list books: %v", err)
		empty.StoreError = err.Error()
		return empty
	}

	items := make([]BookResponse, 0, len(books))
	for i := range books {
		active, err := s.store.CountActiveBorrows(ctx, books[i].ID)
		if err != nil {
			log.Printf("[WARN] count borrows for %s: %v", books[i].ID, err)
			empty.StoreError = err.Error()
			return empty
		}
		items = append(items, buildBookResponse(&books[i], active))
	}
	return BookList{Items: items}
}

func (s *Service) GetBook(ctx context.Context, id string) (BookResponse, error) {
	if err := s.checkConnected(); err != nil {
		return BookResponse{}, err
	}
	b, err := s.store.GetBook(ctx, id)
	if err != nil {
		return BookResponse{}, storeErr("get book", err)
	}
	active, err := s.store.CountActiveBorrows(ctx, b.ID)
	if err != nil {
		return BookResponse{}, storeErr("count borrows", err)
	}
	return buildBookResponse(b, active), nil
}

// BookDetail adds the borrow flags for viewerID; pass nil for anonymous viewers.
func (s *Service) BookDetail(ctx context.Context, id string, viewerID *int64) (BookDetail, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}
	d := BookDetail{Book: book, CanBorrow: book.AvailableCopies > 0}
	if viewerID != nil {
		has, err := s.store.HasActiveBorrow(ctx, *viewerID, id)
		if err != nil {
			return BookDetail{}, storeErr("check borrow", err)
		}
		d.AlreadyBorrowed = has
	}
	return d, nil
}

func (s *Service) CreateBook(ctx context.Context, in BookInput) (BookResponse, error) {
	b, err := in.validate()
	if err != nil {
		return BookResponse{}, err
	}
	if err := s.checkConnected(); err != nil {
		return BookResponse{}, err
	}
	if err := s.store.InsertBook(ctx, &b); err != nil {
		return BookResponse{}, storeErr("insert book", err)
	}
	log.Printf("[INFO] book created: %s %q", b.ID, b.Title)
	return buildBookResponse(&b, 0), nil
}

// UpdateBook overwrites the book fields. total_copies may drop below the
// number of active borrows; availability then floors at zero.
func (s *Service) UpdateBook(ctx context.Context, id string, in BookInput) (BookResponse, error) {
	b, err := in.validate()
	if err != nil {
		return BookResponse{}, err
	}
	if err := s.checkConnected(); err != nil {
		return BookResponse{}, err
	}
	b.ID = id
	if err := s.store.UpdateBook(ctx, &b); err != nil {
		return BookResponse{}, storeErr("update book", err)
	}
	return s.GetBook(ctx, id)
}

// DeleteBook does not touch the ledger; records keep their book_id and
// book_title snapshot.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if err := s.store.DeleteBook(ctx, id); err != nil {
		return storeErr("delete book", err)
	}
	log.Printf("[INFO] book deleted: %s", id)
	return nil
}
