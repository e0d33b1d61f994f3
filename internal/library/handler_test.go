package library

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
)

var testSecret = []byte("library-test-secret")

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), svc, testSecret)
	return r
}

func tokenFor(t *testing.T, id int64, username string, staff bool) string {
	t.Helper()
	issuer := auth.NewService(nil, testSecret, time.Hour)
	tok, err := issuer.IssueToken(&auth.Account{ID: id, Username: username, IsStaff: staff})
	require.NoError(t, err)
	return tok
}

func call(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHTTP_BorrowReturnFlow(t *testing.T) {
	svc, _ := newTestService(t)
	r := newTestRouter(t, svc)
	staff := tokenFor(t, 100, "admin", true)
	alice := tokenFor(t, 1, "alice", false)
	bob := tokenFor(t, 2, "bob", false)

	w := call(r, http.MethodPost, "/api/v1/admin/books", `{"title":"The Hobbit","author":"J.R.R. Tolkien","total_copies":1}`, staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[BookResponse](t, w)
	assert.Equal(t, 1, book.AvailableCopies)

	w = call(r, http.MethodPost, "/api/v1/books/"+book.ID+"/borrow", "", alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[BorrowResponse](t, w)
	assert.Equal(t, "alice", rec.Username)
	assert.Empty(t, w.Header().Get("Location"))

	w = call(r, http.MethodPost, "/api/v1/books/"+book.ID+"/borrow", "", bob)
	assert.Equal(t, http.StatusConflict, w.Code)
	errBody := decode[errorDTO](t, w)
	assert.Equal(t, CodeConflict, errBody.Error.Code)

	w = call(r, http.MethodGet, "/api/v1/books/"+book.ID, "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[BookDetail](t, w)
	assert.True(t, detail.AlreadyBorrowed)
	assert.False(t, detail.CanBorrow)

	w = call(r, http.MethodPost, "/api/v1/borrows/"+rec.ID+"/return", "", bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, http.MethodPost, "/api/v1/borrows/"+rec.ID+"/return", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[ReturnResult](t, w).AlreadyReturned)

	w = call(r, http.MethodPost, "/api/v1/borrows/"+rec.ID+"/return", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ReturnResult](t, w).AlreadyReturned)
}

func TestHTTP_Guards(t *testing.T) {
	svc, _ := newTestService(t)
	r := newTestRouter(t, svc)
	user := tokenFor(t, 1, "alice", false)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/books", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/v1/books/x/borrow", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/borrows", "", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/v1/admin/books", `{"title":"T","author":"A"}`, user).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/api/v1/books/unknown", "", "").Code)
}

func TestHTTP_CreateValidationAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	r := newTestRouter(t, svc)
	staff := tokenFor(t, 100, "admin", true)

	w := call(r, http.MethodPost, "/api/v1/admin/books", `{"title":"","author":"A","total_copies":-2}`, staff)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorDTO](t, w)
	assert.Equal(t, CodeInvalidArgument, body.Error.Code)
	assert.Equal(t, "required", body.Error.Fields["title"])
	assert.Equal(t, "must be >= 0", body.Error.Fields["total_copies"])

	w = call(r, http.MethodPost, "/api/v1/admin/books", `{not json`, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodPost, "/api/v1/admin/books", `{"title":"T","author":"A"}`, staff)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[BookResponse](t, w).ID
	assert.Equal(t, "/api/v1/books/"+id, w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, w.Header().Get("Location"), "", "").Code)

	w = call(r, http.MethodPut, "/api/v1/admin/books/"+id, `{"title":"T2","author":"A","total_copies":4}`, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decode[BookResponse](t, w).TotalCopies)

	assert.Equal(t, http.StatusNoContent, call(r, http.MethodDelete, "/api/v1/admin/books/"+id, "", staff).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodDelete, "/api/v1/admin/books/"+id, "", staff).Code)
}

func TestHTTP_BorrowListsByRole(t *testing.T) {
	svc, _ := newTestService(t)
	r := newTestRouter(t, svc)
	ctx := context.Background()
	book := mustCreateBook(t, svc, "Shared", 3)
	_, err := svc.Borrow(ctx, 1, "alice", book.ID)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, 2, "bob", book.ID)
	require.NoError(t, err)

	w := call(r, http.MethodGet, "/api/v1/borrows", "", tokenFor(t, 1, "alice", false))
	require.Equal(t, http.StatusOK, w.Code)
	own := decode[BorrowList](t, w)
	require.Len(t, own.Items, 1)
	assert.Equal(t, int64(1), own.Items[0].UserID)

	w = call(r, http.MethodGet, "/api/v1/borrows", "", tokenFor(t, 100, "admin", true))
	require.Equal(t, http.StatusOK, w.Code)
	grouped := decode[groupedBorrows](t, w)
	require.Len(t, grouped.Users, 2)
	assert.Equal(t, "alice", grouped.Users[0].Username)
	assert.Equal(t, "bob", grouped.Users[1].Username)
}

func TestHTTP_StoreDown(t *testing.T) {
	svc := NewService(NewMemoryStore(), db.Disconnected(errors.New("no reachable servers")), nil)
	r := newTestRouter(t, svc)

	w := call(r, http.MethodGet, "/api/v1/books", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[BookList](t, w)
	assert.Empty(t, list.Items)
	assert.Equal(t, "no reachable servers", list.StoreError)

	w = call(r, http.MethodPost, "/api/v1/books/x/borrow", "", tokenFor(t, 1, "alice", false))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	store := NewMemoryStore()
	svc := NewService(store, db.Connected(), m)
	ctx := context.Background()
	book := mustCreateBook(t, svc, "Counted", 1)

	rec, err := svc.Borrow(ctx, 1, "u1", book.ID)
	require.NoError(t, err)
	_, _ = svc.Borrow(ctx, 1, "u1", book.ID)
	_, _ = svc.Borrow(ctx, 2, "u2", book.ID)
	_, _ = svc.Borrow(ctx, 2, "u2", "missing")
	_, _ = svc.ReturnBorrow(ctx, rec.ID, 2, false)
	_, _ = svc.ReturnBorrow(ctx, rec.ID, 1, false)
	_, _ = svc.ReturnBorrow(ctx, rec.ID, 1, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.borrows.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.borrows.WithLabelValues(resultAlreadyBorrowed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.borrows.WithLabelValues(resultNoCopies)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.borrows.WithLabelValues(resultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.returns.WithLabelValues(resultForbidden)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.returns.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.returns.WithLabelValues(resultAlreadyReturned)))
}
