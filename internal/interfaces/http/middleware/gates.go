package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gate names reported to the GateRecorder
const (
	GateLogin = "login"
	GateAdmin = "admin"
)

// GateRecorder counts gate rejections
type GateRecorder interface {
	GateRejected(gate string)
}

// IsLoggedIn reports whether the session carries an authenticated identity
func IsLoggedIn(s Session) bool {
	return s.Authenticated
}

// IsAdmin reports whether the authenticated identity is an administrator
func IsAdmin(s Session) bool {
	return s.Authenticated && s.IsAdmin
}

// RequireLogin redirects anonymous visitors to /login
func RequireLogin(recorder GateRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsLoggedIn(GetSession(c)) {
			c.Next()
			return
		}
		if recorder != nil {
			recorder.GateRejected(GateLogin)
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RequireAdmin answers 403 unless the session belongs to an administrator.
// Anonymous visitors are rejected too.
func RequireAdmin(recorder GateRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAdmin(GetSession(c)) {
			c.Next()
			return
		}
		if recorder != nil {
			recorder.GateRejected(GateAdmin)
		}
		c.Abort()
		c.String(http.StatusForbidden, "Forbidden")
	}
}
