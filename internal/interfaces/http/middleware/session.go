package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/portal/backend/internal/infrastructure/auth"
	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/view"
	"go.uber.org/zap"
)

// SessionKey is the gin context key holding the request's Session
const SessionKey = "session"

// Session is the identity attached to a request. The zero value is an
// anonymous visitor.
type Session struct {
	UserID        uuid.UUID
	Username      string
	IsAdmin       bool
	Authenticated bool
	Claims        *auth.Claims
}

// Authenticator verifies a session token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// SessionLoader reads the session cookie and, when it verifies, attaches
// the identity to the request. Invalid or revoked cookies are cleared and
// the request continues anonymously.
func SessionLoader(authn Authenticator, cookies CookieConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := Session{}

		if token, err := c.Cookie(cookies.Name); err == nil && token != "" {
			claims, err := authn.Authenticate(c.Request.Context(), token)
			switch {
			case err == nil:
				session = sessionFromClaims(claims)
			case errors.Is(err, auth.ErrTokenRevoked), errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrInvalidToken):
				cookies.Clear(c)
			default:
				logger.Enrich(c.Request.Context(), log).Warn("Session verification failed", zap.Error(err))
				cookies.Clear(c)
			}
		}

		if session.Authenticated {
			c.Request = c.Request.WithContext(logger.WithUsername(c.Request.Context(), session.Username))
		}
		c.Set(SessionKey, session)
		c.Set(view.SessionDataKey, session)
		c.Next()
	}
}

func sessionFromClaims(claims *auth.Claims) Session {
	id, err := claims.UserUUID()
	if err != nil {
		return Session{}
	}
	return Session{
		UserID:        id,
		Username:      claims.Username,
		IsAdmin:       claims.IsAdmin,
		Authenticated: true,
		Claims:        claims,
	}
}

// GetSession returns the request's session, anonymous when none was loaded
func GetSession(c *gin.Context) Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Session{}
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// NewCookieConfig builds the cookie settings from session configuration
func NewCookieConfig(cfg config.SessionConfig) CookieConfig {
	sameSite := http.SameSiteLaxMode
	switch cfg.CookieSameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	return CookieConfig{
		Name:     cfg.CookieName,
		Domain:   cfg.CookieDomain,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite,
	}
}

// Set writes the session cookie valid for maxAge seconds
func (cc CookieConfig) Set(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(cc.SameSite)
	c.SetCookie(cc.Name, token, maxAge, "/", cc.Domain, cc.Secure, true)
}

// Clear expires the session cookie
func (cc CookieConfig) Clear(c *gin.Context) {
	c.SetSameSite(cc.SameSite)
	c.SetCookie(cc.Name, "", -1, "/", cc.Domain, cc.Secure, true)
}
