package library

import "time"

// Book is a catalog entry. Available copies are never stored.
type Book struct {
	ID          string
	Title       string
	Author      string
	Genre       string
	TotalCopies int
	LegacyID    *int64 // primary key in the legacy SQLite catalog, if imported
}

// BorrowRecord is a ledger entry. Username and BookTitle are snapshots
// taken at borrow time and are never rewritten.
type BorrowRecord struct {
	ID         string
	UserID     int64
	Username   string
	BookID     string
	BookTitle  string
	BorrowDate time.Time
	Returned   bool
	ReturnDate *time.Time
}

// Active reports whether the record still holds a copy.
func (r *BorrowRecord) Active() bool { return !r.Returned }

// AvailableCopies floors total minus active borrows at zero.
func AvailableCopies(totalCopies int, activeBorrows int64) int {
	n := int64(totalCopies) - activeBorrows
	if n < 0 {
		return 0
	}
	return int(n)
}
