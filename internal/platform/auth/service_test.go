package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byName: map[string]*Account{}}
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byName[username]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) Create(_ context.Context, a *Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[a.Username]; ok {
		return ErrAlreadyExists
	}
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.byName[a.Username] = &cp
	return nil
}

var testSecret = []byte("test-secret")

func newTestService() (*Service, *fakeAccounts) {
	store := newFakeAccounts()
	return NewService(store, testSecret, time.Hour), store
}

func TestRegister_MapsAdminRoleToStaff(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "password1", "")
	require.NoError(t, err)
	assert.False(t, user.IsStaff)
	assert.Equal(t, int64(1), user.ID)

	admin, err := svc.Register(ctx, "boss", "", "password1", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.NotEqual(t, "password1", admin.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "  ", "", "short", "Root")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "password")
	assert.Contains(t, ve.Fields, "role")
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "password1", RoleUser)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice", "", "password2", RoleUser)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLogin_IssuesParsableToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "boss", "", "password1", RoleAdmin)
	require.NoError(t, err)

	token, acct, err := svc.Login(ctx, "boss", "password1")
	require.NoError(t, err)
	assert.Equal(t, "boss", acct.Username)

	id, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: acct.ID, Username: "boss", IsStaff: true}, id)

	_, err = ParseToken(token, []byte("other-secret"))
	assert.Error(t, err)
}

func TestLogin_Failures(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "", "password1", RoleUser)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	store.byName["alice"].IsDisabled = true
	_, _, err = svc.Login(ctx, "alice", "password1")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.False(t, created)
}

func newAuthRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, svc)
	r.GET("/me", RequireAuth(svc.Secret()), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "staff": id.IsStaff})
	})
	r.GET("/staff", RequireAuth(svc.Secret()), RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", OptionalAuth(svc.Secret()), func(c *gin.Context) {
		_, ok := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	return r
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlers_RegisterLoginAndGuards(t *testing.T) {
	svc, _ := newTestService()
	r := newAuthRouter(svc)

	w := do(r, http.MethodPost, "/register", `{"username":"alice","password":"password1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/register", `{"username":"alice","password":"password1"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/register", `{"username":"bob","password":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"password"`)

	w = do(r, http.MethodPost, "/login", `{"username":"alice","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := svc.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "", "garbage").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "", token).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/staff", "", token).Code)

	w = do(r, http.MethodGet, "/maybe", "", "garbage")
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
	w = do(r, http.MethodGet, "/maybe", "", token)
	assert.JSONEq(t, `{"authenticated":true}`, w.Body.String())
}
