package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/authz"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/session"
)

const (
	sessionKey   = "session"
	requestIDKey = "request_id"

	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
)

// GetSessionState returns the session state the middleware resolved for
// this request
func GetSessionState(c *gin.Context) (session.State, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return session.State{}, false
	}

	state, ok := value.(session.State)
	return state, ok
}

// requestIDMiddleware assigns a ULID to every request
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ulid.Make().String()
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("HTTP request")
	}
}

// sessionMiddleware resolves the credential cookie into a session snapshot
// for every request. The cookie is re-read each time, so a login or logout
// elsewhere is observed on this visitor's next navigation.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, s.resolver.Resolve(c.Request))
		c.Next()
	}
}

// requireRole gates a route group behind the authorizer. The local cookie
// decode is only a hint; the authorizer confirms the session against the
// API before any protected content is written.
func (s *Server) requireRole(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := s.authorizer.Authorize(c.Request.Context(), role, c.Request)
		if err != nil {
			// The visitor is gone (cancelled request); the stale result
			// is discarded without rendering or redirecting.
			c.Abort()
			return
		}

		switch decision.Kind {
		case authz.DecisionRender:
			c.Next()
		case authz.DecisionRedirect:
			c.Redirect(http.StatusFound, decision.Target)
			c.Abort()
		default:
			c.Abort()
		}
	}
}

// csrfMiddleware implements double-submit CSRF protection for the HTML
// forms. Safe methods ensure the token cookie exists; form posts must echo
// it back in a hidden field. The JSON endpoints under /api are exempt, they
// carry no state-changing forms.
func (s *Server) csrfMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		cookie, err := c.Request.Cookie(csrfCookieName)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if err != nil || cookie.Value == "" {
				token := uuid.NewString()
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					SameSite: http.SameSiteLaxMode,
				})
				c.Set(csrfCookieName, token)
			} else {
				c.Set(csrfCookieName, cookie.Value)
			}
			c.Next()

		default:
			field := c.PostForm(csrfFormField)
			if err != nil || cookie.Value == "" || field == "" ||
				subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(field)) != 1 {
				s.logger.Warn().
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(requestIDKey)).
					Msg("Rejected form post with missing or mismatched CSRF token")
				c.String(http.StatusForbidden, "invalid csrf token")
				c.Abort()
				return
			}
			c.Set(csrfCookieName, cookie.Value)
			c.Next()
		}
	}
}

// csrfToken returns the token the middleware established for this request
func csrfToken(c *gin.Context) string {
	return c.GetString(csrfCookieName)
}
