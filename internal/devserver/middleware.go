package devserver

import (
	"log"
	"net/http"

	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/auth"
	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/httputil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextUserID   = "user_id"
	contextUsername = "username"
)

// AuthMiddleware validates the bearer token of a request and stores the
// caller's identity in the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := auth.ValidateAccessToken(secret, tokenString)
		if err != nil {
			log.Printf("[DEVSERVER] Rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUsername, claims.Username)
		c.Next()
	}
}

func userFromContext(c *gin.Context) (uuid.UUID, string, bool) {
	value, exists := c.Get(contextUserID)
	if !exists {
		return uuid.Nil, "", false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, c.GetString(contextUsername), true
}

// CORSMiddleware allows requests without an Origin header and those from
// allowedOrigins; everything else is rejected.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" {
			allowed := false
			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == origin || allowedOrigin == "*" {
					c.Header("Access-Control-Allow-Origin", origin)
					allowed = true
					break
				}
			}
			if !allowed {
				log.Printf("[CORS] Origin '%s' not in allowed list: %v", origin, allowedOrigins)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
				return
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
