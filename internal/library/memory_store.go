package library

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

type IDGen interface{ NewULID(t time.Time) string }

type ulidGen struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newULIDGen() *ulidGen {
	return &ulidGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGen) NewULID(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

// MemoryStore keeps the catalog and ledger in process memory. It backs the
// "memory" store mode and the tests; ids are ULIDs.
type MemoryStore struct {
	mu      sync.RWMutex
	ids     IDGen
	order   []string
	books   map[string]Book
	borrows map[string]BorrowRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids:     newULIDGen(),
		books:   map[string]Book{},
		borrows: map[string]BorrowRecord{},
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) ListBooks(_ context.Context) ([]Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Book, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.books[id])
	}
	return out, nil
}

func (m *MemoryStore) GetBook(_ context.Context, id string) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound("book not found")
	}
	return &b, nil
}

func (m *MemoryStore) FindBook(_ context.Context, title, author string) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if b := m.books[id]; b.Title == title && b.Author == author {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) GetBookByLegacyID(_ context.Context, legacyID int64) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if b := m.books[id]; b.LegacyID != nil && *b.LegacyID == legacyID {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) InsertBook(_ context.Context, b *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.ids.NewULID(time.Now())
	m.books[b.ID] = *b
	m.order = append(m.order, b.ID)
	return nil
}

func (m *MemoryStore) UpdateBook(_ context.Context, b *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.books[b.ID]
	if !ok {
		return ErrNotFound("book not found")
	}
	cur.Title, cur.Author, cur.Genre, cur.TotalCopies = b.Title, b.Author, b.Genre, b.TotalCopies
	m.books[b.ID] = cur
	return nil
}

// DeleteBook leaves borrow records that reference the book in place.
func (m *MemoryStore) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return ErrNotFound("book not found")
	}
	delete(m.books, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) CountActiveBorrows(_ context.Context, bookID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.borrows {
		if r.BookID == bookID && !r.Returned {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) HasActiveBorrow(_ context.Context, userID int64, bookID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.borrows {
		if r.UserID == userID && r.BookID == bookID && !r.Returned {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) InsertBorrow(_ context.Context, r *BorrowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	at := r.BorrowDate
	if at.IsZero() {
		at = realClock{}.Now()
	}
	r.ID = m.ids.NewULID(at)
	m.borrows[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetBorrow(_ context.Context, id string) (*BorrowRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.borrows[id]
	if !ok {
		return nil, ErrNotFound("borrow record not found")
	}
	return &r, nil
}

func (m *MemoryStore) MarkReturned(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.borrows[id]
	if !ok {
		return ErrNotFound("borrow record not found")
	}
	r.Returned = true
	r.ReturnDate = &at
	m.borrows[id] = r
	return nil
}

func (m *MemoryStore) ListActiveBorrows(_ context.Context, userID *int64) ([]BorrowRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]BorrowRecord, 0)
	for _, r := range m.borrows {
		if r.Returned {
			continue
		}
		if userID != nil && r.UserID != *userID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		if !out[i].BorrowDate.Equal(out[j].BorrowDate) {
			return out[i].BorrowDate.After(out[j].BorrowDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
