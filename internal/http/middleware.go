package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sujalbistaa/mysite/internal/accounts"
	"github.com/sujalbistaa/mysite/internal/models"
)

const (
	userKey      = "user"
	requestIDKey = "request_id"
	realm        = `Basic realm="mysite", charset="UTF-8"`
)

// ModeratorAuthMiddleware requires HTTP Basic credentials of a moderator account.
func ModeratorAuthMiddleware(users *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", realm)
			c.String(http.StatusUnauthorized, "Unauthorized: moderator login required")
			c.Abort()
			return
		}

		user, err := users.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			c.Header("WWW-Authenticate", realm)
			c.String(http.StatusUnauthorized, "Unauthorized: invalid credentials")
			c.Abort()
			return
		}
		if !user.IsModerator {
			c.String(http.StatusForbidden, "Forbidden: moderators only")
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// OptionalModeratorMiddleware identifies a moderator when valid credentials
// are sent but never rejects the request.
func OptionalModeratorMiddleware(users *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if username, password, ok := c.Request.BasicAuth(); ok {
			if user, err := users.Authenticate(c.Request.Context(), username, password); err == nil && user.IsModerator {
				c.Set(userKey, user)
			}
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// RequestIDMiddleware tags each request with an X-Request-ID, reusing the client's if sent.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()

		if len(c.Errors) > 0 {
			log.Printf("request %s: %s", id, c.Errors.String())
		}
	}
}

// SecurityHeadersMiddleware adds basic, sensible security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")

		// Inline scripts/styles are used by the results page live updates.
		csp := "default-src 'self';"
		csp += " script-src 'self' 'unsafe-inline';"
		csp += " style-src 'self' 'unsafe-inline';"
		csp += " connect-src 'self' ws: wss:;"
		c.Header("Content-Security-Policy", csp)

		c.Next()
	}
}
