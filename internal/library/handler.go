package library

import (
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/auth"
)

type Handler struct {
	svc  *Service
	base string // mount prefix, e.g. /api/v1
}

// RegisterRoutes mounts the catalog and ledger endpoints. secret verifies
// bearer tokens issued by the auth package.
func RegisterRoutes(r *gin.RouterGroup, svc *Service, secret []byte) {
	h := &Handler{svc: svc, base: r.BasePath()}

	// catalog (public)
	r.GET("/books", h.ListBooks)
	r.GET("/books/:id", auth.OptionalAuth(secret), h.GetBookDetail)

	// circulation
	user := r.Group("", auth.RequireAuth(secret))
	user.POST("/books/:id/borrow", h.Borrow)
	user.POST("/borrows/:id/return", h.Return)
	user.GET("/borrows", h.ListBorrows)

	// catalog management
	admin := r.Group("/admin", auth.RequireAuth(secret), auth.RequireStaff())
	admin.GET("/books", h.ListBooks)
	admin.POST("/books", h.CreateBook)
	admin.PUT("/books/:id", h.UpdateBook)
	admin.DELETE("/books/:id", h.DeleteBook)
}

// ListBooks godoc
// @Summary  List the catalog with available copies
// @Tags     books
// @Produce  json
// @Success  200 {object} BookList
// @Router   /books [get]
func (h *Handler) ListBooks(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListBooks(c.Request.Context()))
}

// GetBookDetail godoc
// @Summary  Book detail with borrow flags for the caller
// @Tags     books
// @Produce  json
// @Param    id path string true "book id"
// @Success  200 {object} BookDetail
// @Router   /books/{id} [get]
func (h *Handler) GetBookDetail(c *gin.Context) {
	var viewer *int64
	if id, ok := auth.CurrentIdentity(c); ok {
		viewer = &id.UserID
	}
	res, err := h.svc.BookDetail(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Borrow godoc
// @Summary  Borrow one copy of a book
// @Tags     borrows
// @Produce  json
// @Param    id path string true "book id"
// @Success  201 {object} BorrowResponse
// @Router   /books/{id}/borrow [post]
func (h *Handler) Borrow(c *gin.Context) {
	id, _ := auth.CurrentIdentity(c)
	res, err := h.svc.Borrow(c.Request.Context(), id.UserID, id.Username, c.Param("id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Return godoc
// @Summary  Return a borrowed copy (owner or staff)
// @Tags     borrows
// @Produce  json
// @Param    id path string true "borrow record id"
// @Success  200 {object} ReturnResult
// @Router   /borrows/{id}/return [post]
func (h *Handler) Return(c *gin.Context) {
	id, _ := auth.CurrentIdentity(c)
	res, err := h.svc.ReturnBorrow(c.Request.Context(), c.Param("id"), id.UserID, id.IsStaff)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

type groupedBorrows struct {
	Users      []UserBorrows `json:"users"`
	StoreError string        `json:"store_error,omitempty"`
}

// ListBorrows godoc
// @Summary  Active borrows: own for users, grouped by user for staff
// @Tags     borrows
// @Produce  json
// @Success  200 {object} BorrowList
// @Router   /borrows [get]
func (h *Handler) ListBorrows(c *gin.Context) {
	id, _ := auth.CurrentIdentity(c)
	if id.IsStaff {
		all := h.svc.ListAllActiveBorrows(c.Request.Context())
		c.JSON(http.StatusOK, groupedBorrows{Users: groupByUser(all.Items), StoreError: all.StoreError})
		return
	}
	c.JSON(http.StatusOK, h.svc.ListActiveBorrowsForUser(c.Request.Context(), id.UserID))
}

// CreateBook godoc
// @Summary  Add a book (staff)
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    body body BookInput true "book"
// @Success  201 {object} BookResponse
// @Router   /admin/books [post]
func (h *Handler) CreateBook(c *gin.Context) {
	var req BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorFromErr(ErrInvalid("invalid json")))
		return
	}
	res, err := h.svc.CreateBook(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", path.Join(h.base, "books", res.ID))
	c.JSON(http.StatusCreated, res)
}

// UpdateBook godoc
// @Summary  Overwrite a book (staff)
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    id   path string    true "book id"
// @Param    body body BookInput true "book"
// @Success  200 {object} BookResponse
// @Router   /admin/books/{id} [put]
func (h *Handler) UpdateBook(c *gin.Context) {
	var req BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorFromErr(ErrInvalid("invalid json")))
		return
	}
	res, err := h.svc.UpdateBook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteBook godoc
// @Summary  Delete a book (staff); borrow records are kept
// @Tags     admin
// @Param    id path string true "book id"
// @Success  204
// @Router   /admin/books/{id} [delete]
func (h *Handler) DeleteBook(c *gin.Context) {
	if err := h.svc.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

type errorDTO struct {
	Error *APIError `json:"error"`
}

func errorFromErr(err error) errorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return errorDTO{Error: api}
	}
	return errorDTO{Error: ErrInternal(err.Error())}
}
