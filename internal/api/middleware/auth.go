package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"strangerlink/backend/internal/auth"
)

// TokenValidator validates bearer tokens into claims.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Auth validates the Authorization header and stores the identity in the
// gin context. Registered users get "user_id", anonymous visitors get
// "anon_id".
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, validator)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		if claims.UserID != "" {
			c.Set("user_id", claims.UserID)
		}
		if claims.AnonID != "" {
			c.Set("anon_id", claims.AnonID)
		}
		c.Next()
	}
}

// RequireUser is Auth restricted to registered identities; anonymous
// tokens are rejected.
func RequireUser(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, validator)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "registered account required"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, validator TokenValidator) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return validator.ValidateToken(parts[1])
}
