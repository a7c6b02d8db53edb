package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RedirectFallback is where disallowed targets are sent
const RedirectFallback = "/home"

var allowedRedirects = map[string]struct{}{
	"/home":      {},
	"/profile":   {},
	"/dashboard": {},
}

// IsAllowedURL reports whether target is exactly one of the allowed paths
func IsAllowedURL(target string) bool {
	_, ok := allowedRedirects[target]
	return ok
}

// HandleRedirect sends the browser to ?target= when it is allowed and to
// RedirectFallback otherwise
func HandleRedirect(c *gin.Context) {
	target := c.Query("target")
	if !IsAllowedURL(target) {
		target = RedirectFallback
	}
	c.Redirect(http.StatusFound, target)
}
