package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "userID"

// TokenParser validates a bearer token and returns its user id
type TokenParser interface {
	Parse(token string) (int64, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token
func JWTAuthMiddleware(parser TokenParser, logger *zap.Logger) gin.HandlerFunc {
	const bearerSchema = "Bearer "

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header must start with Bearer"})
			return
		}

		userID, err := parser.Parse(strings.TrimSpace(authHeader[len(bearerSchema):]))
		if err != nil {
			logger.Debug("Rejected bearer token", zap.Error(err), zap.String("request_id", c.GetString(RequestIDKey)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
