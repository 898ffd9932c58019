package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parley-chat/server/internal/auth"
	"github.com/parley-chat/server/internal/crypto"
)

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(jwtManager *crypto.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]

		// Verify token
		claims, err := jwtManager.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		identity := auth.FromClaims(claims)
		if identity.UserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			c.Abort()
			return
		}

		// Store identity in context
		c.Set("userID", identity.UserID)
		c.Set("principal", auth.NewPrincipal(&identity))

		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	return userID.(string), true
}

// GetPrincipal extracts the authenticated principal from the Gin context.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	p, exists := c.Get("principal")
	if !exists {
		return auth.Anonymous, false
	}
	return p.(auth.Principal), true
}

// RequireRole aborts with 403 unless the principal holds at least one of
// the given roles. Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !p.AnyOf(roles...) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	}
}
