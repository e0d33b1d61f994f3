package library

import (
	"context"
	"log"
)

// Borrow lends one copy of bookID to the user. The duplicate and
// availability checks are separate reads before the insert; two concurrent
// requests for the last copy can both succeed.
func (s *Service) Borrow(ctx context.Context, userID int64, username, bookID string) (BorrowResponse, error) {
	resp, result, err := s.borrow(ctx, userID, username, bookID)
	s.metrics.borrow(result)
	return resp, err
}

func (s *Service) borrow(ctx context.Context, userID int64, username, bookID string) (BorrowResponse, string, error) {
	if err := s.checkConnected(); err != nil {
		return BorrowResponse{}, resultError, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if CodeOf(err) == CodeNotFound {
			return BorrowResponse{}, resultNotFound, err
		}
		return BorrowResponse{}, resultError, storeErr("get book", err)
	}

	has, err := s.store.HasActiveBorrow(ctx, userID, book.ID)
	if err != nil {
		return BorrowResponse{}, resultError, storeErr("check borrow", err)
	}
	if has {
		return BorrowResponse{}, resultAlreadyBorrowed, ErrConflict("you have already borrowed this book")
	}

	active, err := s.store.CountActiveBorrows(ctx, book.ID)
	if err != nil {
		return BorrowResponse{}, resultError, storeErr("count borrows", err)
	}
	if AvailableCopies(book.TotalCopies, active) <= 0 {
		return BorrowResponse{}, resultNoCopies, ErrConflict("no copies available to borrow")
	}

	rec := &BorrowRecord{
		UserID:     userID,
		Username:   username,
		BookID:     book.ID,
		BookTitle:  book.Title,
		BorrowDate: s.clock.Now(),
		Returned:   false,
	}
	if err := s.store.InsertBorrow(ctx, rec); err != nil {
		return BorrowResponse{}, resultError, storeErr("insert borrow", err)
	}
	log.Printf("[INFO] borrowed: user=%d book=%s record=%s", userID, book.ID, rec.ID)
	return buildBorrowResponse(rec), resultOK, nil
}

// ReturnBorrow closes a ledger entry. Only the owner or staff may return it.
// Returning an already returned record changes nothing and is not an error.
func (s *Service) ReturnBorrow(ctx context.Context, recordID string, actorID int64, actorIsStaff bool) (ReturnResult, error) {
	res, result, err := s.returnBorrow(ctx, recordID, actorID, actorIsStaff)
	s.metrics.returned(result)
	return res, err
}

func (s *Service) returnBorrow(ctx context.Context, recordID string, actorID int64, actorIsStaff bool) (ReturnResult, string, error) {
	if err := s.checkConnected(); err != nil {
		return ReturnResult{}, resultError, err
	}

	rec, err := s.store.GetBorrow(ctx, recordID)
	if err != nil {
		if CodeOf(err) == CodeNotFound {
			return ReturnResult{}, resultNotFound, err
		}
		return ReturnResult{}, resultError, storeErr("get borrow", err)
	}

	if !actorIsStaff && rec.UserID != actorID {
		return ReturnResult{}, resultForbidden, ErrForbidden("you are not allowed to return this record")
	}

	if rec.Returned {
		return ReturnResult{
			Record:          buildBorrowResponse(rec),
			AlreadyReturned: true,
			Message:         "already returned",
		}, resultAlreadyReturned, nil
	}

	now := s.clock.Now()
	if err := s.store.MarkReturned(ctx, rec.ID, now); err != nil {
		return ReturnResult{}, resultError, storeErr("mark returned", err)
	}
	rec.Returned = true
	rec.ReturnDate = &now
	log.Printf("[INFO] returned: record=%s by=%d", rec.ID, actorID)

	return ReturnResult{
		Record:  buildBorrowResponse(rec),
		Message: "returned " + rec.BookTitle,
	}, resultOK, nil
}

func (s *Service) ListActiveBorrowsForUser(ctx context.Context, userID int64) BorrowList {
	return s.listActive(ctx, &userID)
}

// ListAllActiveBorrows is the staff view, ordered by user then newest first.
func (s *Service) ListAllActiveBorrows(ctx context.Context) BorrowList {
	return s.listActive(ctx, nil)
}

func (s *Service) listActive(ctx context.Context, userID *int64) BorrowList {
	empty := BorrowList{Items: []BorrowResponse{}}
	if !s.status.Connected {
		empty.StoreError = s.status.Error
		return empty
	}
	recs, err := s.store.ListActiveBorrows(ctx, userID)
	if err != nil {
		log.Printf("[WARN] list borrows: %v", err)
		empty.StoreError = err.Error()
		return empty
	}
	items := make([]BorrowResponse, 0, len(recs))
	for i := range recs {
		items = append(items, buildBorrowResponse(&recs[i]))
	}
	return BorrowList{Items: items}
}
