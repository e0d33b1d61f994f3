package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"

	minPasswordLen = 8
	maxUsernameLen = 150
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisabled           = errors.New("account disabled")
)

// ValidationError lists the offending fields of a registration request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "invalid registration" }

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	store    AccountStore
	secret   []byte
	tokenTTL time.Duration
	clock    Clock
}

func NewService(store AccountStore, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL, clock: realClock{}}
}

func (s *Service) Secret() []byte { return s.secret }

func (s *Service) Login(ctx context.Context, username, password string) (string, *Account, error) {
	acct, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if acct == nil {
		return "", nil, ErrInvalidCredentials
	}
	if acct.IsDisabled {
		return "", nil, ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(acct)
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

// IssueToken signs an HS256 token carrying the identity the library needs.
func (s *Service) IssueToken(acct *Account) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatInt(acct.ID, 10),
		"username": acct.Username,
		"staff":    acct.IsStaff,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

// Register creates a regular or staff account. Role "Admin" maps to staff.
func (s *Service) Register(ctx context.Context, username, email, password, role string) (*Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	fields := map[string]string{}
	switch {
	case username == "":
		fields["username"] = "required"
	case len(username) > maxUsernameLen:
		fields["username"] = "must be at most 150 characters"
	}
	if len(password) < minPasswordLen {
		fields["password"] = "must be at least 8 characters"
	}
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAdmin {
		fields["role"] = "must be User or Admin"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	exists, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acct := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsStaff:      role == RoleAdmin,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// EnsureAdmin creates a staff account unless the username is taken.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.Register(ctx, username, email, password, RoleAdmin)
	if errors.Is(err, ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
