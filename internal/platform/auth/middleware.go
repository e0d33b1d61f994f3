package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ctxIdentityKey = "identity"

// Identity is the caller as seen by the library service.
type Identity struct {
	UserID   int64
	Username string
	IsStaff  bool
}

var (
	errMissingHeader = errors.New("missing Authorization header")
	errBadHeader     = errors.New("invalid Authorization header")
	errBadToken      = errors.New("invalid token")
)

// RequireAuth validates "Authorization: Bearer <token>" and stores the Identity.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFromRequest(c, secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
			return
		}
		c.Set(ctxIdentityKey, id)
		c.Next()
	}
}

// OptionalAuth stores the Identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if id, err := identityFromRequest(c, secret); err == nil {
				c.Set(ctxIdentityKey, id)
			}
		}
		c.Next()
	}
}

// RequireStaff must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
			return
		}
		if !id.IsStaff {
			abort(c, http.StatusForbidden, "FORBIDDEN", "staff only")
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func identityFromRequest(c *gin.Context, secret []byte) (Identity, error) {
	h := c.GetHeader("Authorization")
	if h == "" {
		return Identity{}, errMissingHeader
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, errBadHeader
	}
	tokenStr := strings.TrimSpace(parts[1])
	if tokenStr == "" {
		return Identity{}, errBadToken
	}
	return ParseToken(tokenStr, secret)
}

// ParseToken verifies an HS256 token and extracts the Identity claims.
func ParseToken(tokenStr string, secret []byte) (Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return Identity{}, errBadToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errBadToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, errBadToken
	}
	username, _ := claims["username"].(string)
	staff, _ := claims["staff"].(bool)

	return Identity{UserID: userID, Username: username, IsStaff: staff}, nil
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": msg}})
}
