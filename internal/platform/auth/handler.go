package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// Login godoc
// @Summary  Exchange credentials for a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} LoginResponse
// @Router   /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_ARGUMENT", "username and password are required")
		return
	}

	token, acct, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrDisabled) {
			abort(c, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid credentials")
			return
		}
		log.Printf("[ERROR] login: %v", err)
		abort(c, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   acct.ID,
		Username: acct.Username,
		IsStaff:  acct.IsStaff,
	})
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // User (default) or Admin
}

// Register godoc
// @Summary  Create an account and return a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body RegisterRequest true "account"
// @Success  201 {object} LoginResponse
// @Router   /register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid json")
		return
	}

	acct, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
				"code": "INVALID_ARGUMENT", "message": ve.Error(), "fields": ve.Fields,
			}})
		case errors.Is(err, ErrAlreadyExists):
			abort(c, http.StatusConflict, "CONFLICT", "username already exists")
		default:
			log.Printf("[ERROR] register: %v", err)
			abort(c, http.StatusInternalServerError, "INTERNAL", "register failed")
		}
		return
	}

	// registering logs the user in
	token, err := h.svc.IssueToken(acct)
	if err != nil {
		abort(c, http.StatusInternalServerError, "INTERNAL", "token issue failed")
		return
	}
	c.JSON(http.StatusCreated, LoginResponse{
		Token:    token,
		UserID:   acct.ID,
		Username: acct.Username,
		IsStaff:  acct.IsStaff,
	})
}
