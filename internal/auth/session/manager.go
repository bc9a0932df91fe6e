package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orsta/orsta/internal/config"
)

const DefaultCookieName = "orsta_session"

// DefaultTTL is how long a session cookie stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Manager manages auth session cookies. The cookie value is the caller's
// access key; identity resolution happens against the user store.
type Manager struct {
	cookieName string
	secure     bool
	ttl        time.Duration
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cookieName: DefaultCookieName,
		secure:     cfg.AuthCookieSecure,
		ttl:        DefaultTTL,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// ReadToken pulls the access key from the session cookie or, failing that,
// an Authorization bearer header.
func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(m.cookieName); err == nil {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			return trimmed, true
		}
	}
	if auth := strings.TrimSpace(c.GetHeader("Authorization")); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			if trimmed := strings.TrimSpace(token); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

func (m *Manager) Set(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.cookieName, value, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
