package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/keygate/core"
	"github.com/layer-3/keygate/service"
)

// SessionCookieName is the cookie the login handler sets alongside the
// bearer token response.
const SessionCookieName = "keygate_session"

// userAddressKey is the gin context key the auth middleware fills with
// the caller's verified address.
const userAddressKey = "userAddress"

// AuthMiddleware creates middleware that resolves the caller's identity
// from a session credential, taken from the Authorization header or the
// session cookie.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing credential"})
			return
		}

		address, err := authService.ResolveCaller(c.Request.Context(), service.SessionCredential{Token: token})
		if err != nil {
			switch {
			case errors.Is(err, core.ErrStoreUnavailable):
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
			case errors.Is(err, core.ErrSessionExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			}
			return
		}

		c.Set(userAddressKey, address)
		c.Next()
	}
}

// sessionToken extracts a session token from the request, preferring
// the Authorization header over the cookie.
func sessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
