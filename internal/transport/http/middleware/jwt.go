package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"template-tester-server/internal/pkg/jwtutil"
	"template-tester-server/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// AuthJWT extracts the bearer token, verifies it, and exposes the subject's
// id and username on the request context. Handlers that need the full user
// record load it explicitly.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, jwtutil.ErrTokenExpired) {
				message = "token expired"
			}
			response.Error(c, 401, response.CodeUnauthorized, message)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}
