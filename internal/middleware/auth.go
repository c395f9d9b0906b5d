package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/MStepRom/kursova2025/internal/lib/jwt"
	"github.com/gin-gonic/gin"
)

const (
	TokenHeader = "x-auth-token"

	// UserIDKey is the gin context key holding the authenticated user id.
	UserIDKey = "userID"

	unauthorizedMsg = "No token or invalid token, authorization denied"
)

type AuthMiddleware struct {
	secret string
	log    *slog.Logger
}

func NewAuthMiddleware(secret string, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: secret, log: log}
}

func (m *AuthMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := m.log.With(slog.String("path", c.FullPath()))

		token := c.GetHeader(TokenHeader)
		if token == "" {
			token = extractTokenFromHeader(c.GetHeader("Authorization"))
		}

		if token == "" {
			log.Info("request without token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": unauthorizedMsg})
			return
		}

		claims, err := jwt.ParseToken(token, m.secret)
		if err != nil {
			log.Warn("token rejected", sl.Err(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": unauthorizedMsg})
			return
		}

		c.Set(UserIDKey, claims.User.ID)
		c.Next()
	}
}

// UserID returns the id set by the auth middleware.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	return id, id != ""
}

func extractTokenFromHeader(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
