package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/portal/backend/internal/application/identity"
	"github.com/portal/backend/internal/domain/identity"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"github.com/portal/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// SessionHandler serves login, signup, logout and the dashboard
type SessionHandler struct {
	BaseHandler
	auth     *identityapp.AuthService
	profiles *identityapp.ProfileService
	cookies  middleware.CookieConfig
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(base BaseHandler, auth *identityapp.AuthService, profiles *identityapp.ProfileService, cookies middleware.CookieConfig) *SessionHandler {
	return &SessionHandler{BaseHandler: base, auth: auth, profiles: profiles, cookies: cookies}
}

// DisplayWelcomePage renders the dashboard, or sends anonymous visitors to login
func (h *SessionHandler) DisplayWelcomePage(c *gin.Context) {
	s := session(c)
	if !middleware.IsLoggedIn(s) {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.profiles.Get(c.Request.Context(), s.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		// account removed after the session was issued
		h.cookies.Clear(c)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Render(c, http.StatusOK, view.PageDashboard, gin.H{"firstName": user.FirstName})
}

// DisplayLoginPage renders the login form
func (h *SessionHandler) DisplayLoginPage(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageLogin, gin.H{"userName": "", "loginError": ""})
}

// HandleLoginRequest verifies credentials and starts a session. Failures
// always show the same message.
func (h *SessionHandler) HandleLoginRequest(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.loginFailed(c, form.UserName)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), identityapp.LoginInput{
		Username: form.UserName,
		Password: form.Password,
	})
	if errors.Is(err, identityapp.ErrInvalidCredentials) {
		h.loginFailed(c, form.UserName)
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.startSession(c, result)
	if result.User.IsAdmin {
		c.Redirect(http.StatusFound, "/benefits")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *SessionHandler) loginFailed(c *gin.Context, userName string) {
	h.Render(c, http.StatusUnauthorized, view.PageLogin, gin.H{
		"userName":   userName,
		"loginError": identityapp.ErrInvalidCredentials.Message,
	})
}

// DisplaySignupPage renders the signup form
func (h *SessionHandler) DisplaySignupPage(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageSignup, gin.H{})
}

// HandleSignup creates an account and signs the new user in
func (h *SessionHandler) HandleSignup(c *gin.Context) {
	var form dto.SignupForm
	bindErr := c.ShouldBind(&form)
	redisplay := gin.H{
		"userName":  form.UserName,
		"firstName": form.FirstName,
		"lastName":  form.LastName,
		"email":     form.Email,
	}
	if bindErr != nil {
		h.RenderWithError(c, view.PageSignup, middleware.BindingError(bindErr), redisplay)
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), identity.SignupInput{
		Username:  form.UserName,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  form.Password,
		Verify:    form.Verify,
	})
	if err != nil {
		h.RenderWithError(c, view.PageSignup, err, redisplay)
		return
	}

	h.startSession(c, result)
	c.Redirect(http.StatusFound, "/dashboard")
}

// DisplayLogoutPage revokes the session, clears the cookie and goes home
func (h *SessionHandler) DisplayLogoutPage(c *gin.Context) {
	if s := session(c); s.Claims != nil {
		if err := h.auth.Logout(c.Request.Context(), s.Claims); err != nil {
			logger.Enrich(c.Request.Context(), h.logger).Error("Failed to revoke session", zap.Error(err))
		}
	}
	h.cookies.Clear(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *SessionHandler) startSession(c *gin.Context, result *identityapp.LoginResult) {
	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	h.cookies.Set(c, result.Token, maxAge)
}
