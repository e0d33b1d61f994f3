package library

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	maxTitleLen  = 255
	maxAuthorLen = 255
	maxGenreLen  = 100
)

// BookInput is the create/update payload. TotalCopies defaults to 1.
type BookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	TotalCopies *int   `json:"total_copies"`
}

// validate reports every bad field at once, before anything is written.
func (in BookInput) validate() (Book, error) {
	b := Book{
		Title:       cleanText(in.Title),
		Author:      cleanText(in.Author),
		Genre:       cleanText(in.Genre),
		TotalCopies: 1,
	}
	if in.TotalCopies != nil {
		b.TotalCopies = *in.TotalCopies
	}

	fields := map[string]string{}
	checkText(fields, "title", b.Title, maxTitleLen, true)
	checkText(fields, "author", b.Author, maxAuthorLen, true)
	checkText(fields, "genre", b.Genre, maxGenreLen, false)
	if b.TotalCopies < 0 {
		fields["total_copies"] = "must be >= 0"
	}
	if len(fields) > 0 {
		return Book{}, ErrFields(fields)
	}
	return b, nil
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func checkText(fields map[string]string, name, v string, max int, required bool) {
	switch {
	case required && v == "":
		fields[name] = "required"
	case utf8.RuneCountInString(v) > max:
		fields[name] = "too long"
	}
}

type BookResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	TotalCopies     int    `json:"total_copies"`
	BorrowedCount   int64  `json:"borrowed_count"`
	AvailableCopies int    `json:"available_copies"`
}

// BookList is a possibly degraded read: when the store cannot be reached
// Items is empty and StoreError says why.
type BookList struct {
	Items      []BookResponse `json:"items"`
	StoreError string         `json:"store_error,omitempty"`
}

type BookDetail struct {
	Book            BookResponse `json:"book"`
	CanBorrow       bool         `json:"can_borrow"`
	AlreadyBorrowed bool         `json:"already_borrowed"`
}

type BorrowResponse struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	Username   string     `json:"username"`
	BookID     string     `json:"book_id"`
	BookTitle  string     `json:"book_title"`
	BorrowDate time.Time  `json:"borrow_date"`
	Returned   bool       `json:"returned"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

type BorrowList struct {
	Items      []BorrowResponse `json:"items"`
	StoreError string           `json:"store_error,omitempty"`
}

type ReturnResult struct {
	Record          BorrowResponse `json:"record"`
	AlreadyReturned bool           `json:"already_returned"`
	Message         string         `json:"message"`
}

// UserBorrows is one group of the staff view.
type UserBorrows struct {
	UserID   int64            `json:"user_id"`
	Username string           `json:"username"`
	Borrows  []BorrowResponse `json:"borrows"`
}

func buildBookResponse(b *Book, active int64) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		TotalCopies:     b.TotalCopies,
		BorrowedCount:   active,
		AvailableCopies: AvailableCopies(b.TotalCopies, active),
	}
}

func buildBorrowResponse(r *BorrowRecord) BorrowResponse {
	resp := BorrowResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		Username:   r.Username,
		BookID:     r.BookID,
		BookTitle:  r.BookTitle,
		BorrowDate: r.BorrowDate,
		Returned:   r.Returned,
	}
	if r.ReturnDate != nil {
		v := *r.ReturnDate
		resp.ReturnDate = &v
	}
	return resp
}

// groupByUser keeps the incoming order of users and of records per user.
// The username shown is the one on the user's first record.
func groupByUser(items []BorrowResponse) []UserBorrows {
	out := make([]UserBorrows, 0)
	index := map[int64]int{}
	for _, it := range items {
		i, ok := index[it.UserID]
		if !ok {
			i = len(out)
			index[it.UserID] = i
			out = append(out, UserBorrows{UserID: it.UserID, Username: it.Username})
		}
		out[i].Borrows = append(out[i].Borrows, it)
	}
	return out
}
