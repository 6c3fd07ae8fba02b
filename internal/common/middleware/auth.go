package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kamba-santa-backend/internal/common/logger"
	"kamba-santa-backend/internal/platform/firebase"
)

const (
	identityKey = "identity"
	userIDKey   = "user_id"
)

// Authenticate verifies the bearer ID token and stores the caller's identity
// in the request context. Requests without a valid token are rejected.
func Authenticate(verifier firebase.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be 'Bearer <token>'"})
			return
		}

		identity, err := verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn().Err(err).Msg("ID token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(identityKey, identity)
		c.Set(userIDKey, identity.UID)
		c.Next()
	}
}

// RequireAuth rejects requests that did not pass Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(identityKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user's id, or "".
func UserIDFromContext(c *gin.Context) string {
	if val, exists := c.Get(userIDKey); exists {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// IdentityFromContext returns the full verified identity, if present.
func IdentityFromContext(c *gin.Context) (*firebase.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := val.(*firebase.Identity)
	return identity, ok
}
