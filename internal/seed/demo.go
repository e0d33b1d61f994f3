// Package seed loads a demo admin account and a few sample books for
// manual testing.
package seed

import (
	"context"
	"fmt"
	"log"

	"library-backend/internal/library"
)

const (
	AdminUsername = "admin"
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
)

var DemoBooks = []library.Book{
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", TotalCopies: 3},
	{Title: "1984", Author: "George Orwell", Genre: "Dystopian", TotalCopies: 2},
	{Title: "Clean Code", Author: "Robert C. Martin", Genre: "Programming", TotalCopies: 1},
}

type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, username, email, password string) (bool, error)
}

type BookStore interface {
	FindBook(ctx context.Context, title, author string) (*library.Book, error)
	InsertBook(ctx context.Context, b *library.Book) error
}

type Result struct {
	AdminCreated bool
	BooksCreated int
}

// Demo is safe to run repeatedly: the admin is created only when missing
// and books are matched on title and author.
func Demo(ctx context.Context, accounts AdminEnsurer, books BookStore) (Result, error) {
	var res Result

	created, err := accounts.EnsureAdmin(ctx, AdminUsername, AdminEmail, AdminPassword)
	if err != nil {
		return res, fmt.Errorf("admin account: %w", err)
	}
	res.AdminCreated = created
	if created {
		log.Printf("[INFO] created admin user: %s / %s", AdminUsername, AdminPassword)
	} else {
		log.Printf("[INFO] admin user already exists")
	}

	for _, sample := range DemoBooks {
		existing, err := books.FindBook(ctx, sample.Title, sample.Author)
		if err != nil {
			return res, fmt.Errorf("find %q: %w", sample.Title, err)
		}
		if existing != nil {
			continue
		}
		b := sample
		if err := books.InsertBook(ctx, &b); err != nil {
			return res, fmt.Errorf("insert %q: %w", sample.Title, err)
		}
		res.BooksCreated++
	}
	log.Printf("[INFO] created %d sample books", res.BooksCreated)
	return res, nil
}
