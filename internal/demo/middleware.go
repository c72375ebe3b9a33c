// Package demo makes a running instance safe to expose publicly by
// blocking every operation that would change the catalog.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/session"
)

// Middleware blocks write operations in demo mode.
// Read-only operations (GET) are always allowed.
type Middleware struct {
	enabled  bool
	sessions *session.Manager
}

// NewMiddleware creates a demo mode middleware. The session manager is used
// to flash an explanation when a blocked form submission is redirected; it
// may be nil, in which case the redirect carries no message.
func NewMiddleware(enabled bool, sessions *session.Manager) *Middleware {
	return &Middleware{enabled: enabled, sessions: sessions}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		// Read-only methods are always allowed
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// respondBlocked rejects the request with an explanation. API clients get a
// 403 with a JSON body; form submissions are flashed and sent back to the
// catalog page.
func (m *Middleware) respondBlocked(c *gin.Context) {
	message := "This action is disabled in demo mode."

	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     message,
			"demo_mode": true,
		})
		c.Abort()
		return
	}

	if m.sessions != nil {
		m.sessions.PutError(c.Request, message)
	}
	c.Redirect(http.StatusFound, "/home")
	c.Abort()
}

// ContextKey for storing demo mode state in request context.
const ContextKeyDemoMode = "demo_mode"

// InjectContext middleware adds the demo mode flag to the request context
// so templates can render the demo banner.
func (m *Middleware) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		c.Next()
	}
}

// FromContext reports whether the request is being served in demo mode.
func FromContext(c *gin.Context) bool {
	enabled, ok := c.Get(ContextKeyDemoMode)
	if !ok {
		return false
	}
	flag, ok := enabled.(bool)
	return ok && flag
}
