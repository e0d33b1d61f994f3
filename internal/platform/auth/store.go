package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"library-backend/internal/platform/db"
)

type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsDisabled   bool
	CreatedAt    time.Time
}

type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, a *Account) error
}

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store {
	return &Store{db: conn}
}

const schema = `
CREATE TABLE IF NOT EXISTS auth_users (
	id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	username      VARCHAR(150) NOT NULL,
	email         VARCHAR(254) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	is_staff      TINYINT(1) NOT NULL DEFAULT 0,
	is_disabled   TINYINT(1) NOT NULL DEFAULT 0,
	created_at    DATETIME(6) NOT NULL,
	UNIQUE KEY uq_auth_users_username (username)
)`

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create auth_users: %w", err)
	}
	return nil
}

// GetByUsername returns nil, nil when no such account exists.
func (s *Store) GetByUsername(ctx context.Context, username string) (*Account, error) {
	const q = `
SELECT id, username, email, password_hash, is_staff, is_disabled, created_at
FROM auth_users
WHERE username = ?
LIMIT 1
`
	var a Account
	err := s.db.QueryRowContext(ctx, q, username).Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.IsStaff,
		&a.IsDisabled,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO auth_users (username, email, password_hash, is_staff, is_disabled, created_at)
VALUES (?, ?, ?, ?, 0, ?)
`
	res, err := s.db.ExecContext(ctx, q, a.Username, a.Email, a.PasswordHash, a.IsStaff, a.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
