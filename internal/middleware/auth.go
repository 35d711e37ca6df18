package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"corpcab/internal/domain"
	"corpcab/internal/service"
)

const (
	// ContextUserID is the gin context key holding the caller's user ID.
	ContextUserID = "user_id"

	// ContextRole is the gin context key holding the caller's role.
	ContextRole = "role"

	// ContextToken is the gin context key holding the raw bearer token.
	ContextToken = "token"
)

// Authenticator resolves a bearer token to a caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Identity, error)
}

// AuthMiddleware returns middleware that requires a valid bearer token and
// stores the caller's identity on the request context.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextRole, string(identity.Role))
		c.Set(ContextToken, token)
		c.Next()
	}
}

// RequireRole returns middleware that rejects callers without the given role.
// It must run after AuthMiddleware.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		// Browser WebSocket clients cannot set Authorization headers.
		return c.Query("token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
