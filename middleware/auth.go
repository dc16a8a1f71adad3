package middleware

import (
	"errors"
	"strings"

	"noteshelf/services"
	"noteshelf/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID      = "user_id"
	ContextToken       = "token"
	ContextTokenExpiry = "token_expires_at"
)

// AuthMiddleware accepts "Authorization: Bearer <token>" as well as a bare
// "Authorization: <token>". blacklist may be nil.
func AuthMiddleware(tokens *services.TokenService, blacklist services.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			utils.Unauthorized(c, "No token, authorization denied")
			return
		}

		userID, expiresAt, err := tokens.Parse(tokenString)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoSigningSecret):
				_ = c.Error(err)
				utils.InternalError(c, "Server config error")
			case errors.Is(err, services.ErrTokenExpired):
				utils.TrackAuthAttempt("failure", "token_expired")
				utils.Unauthorized(c, "Token expired")
			default:
				utils.TrackAuthAttempt("failure", "token_invalid")
				utils.Unauthorized(c, "Invalid token")
			}
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsRevoked(c.Request.Context(), tokenString)
			if err != nil {
				// redis outage: keep serving on signature alone
				_ = c.Error(err)
			} else if revoked {
				utils.Unauthorized(c, "Token revoked")
				return
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextToken, tokenString)
		c.Set(ContextTokenExpiry, expiresAt)

		c.Next()
	}
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// UserID returns the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
