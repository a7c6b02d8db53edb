package router

import (
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin"
	identityapp "github.com/portal/backend/internal/application/identity"
	retirementapp "github.com/portal/backend/internal/application/retirement"
	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/ratelimit"
	"github.com/portal/backend/internal/infrastructure/telemetry"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/handler"
	"github.com/portal/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Rate limit policy names
const (
	PolicyGlobal = "global"
	PolicyForm   = "form"
)

// unlimitedPaths are never counted by the global rate limit
var unlimitedPaths = []string{"/health", "/metrics"}

// Dependencies is everything the portal's HTTP surface needs
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Templates *template.Template
	Metrics   *telemetry.Metrics // nil disables /metrics
	Limiter   ratelimit.Limiter

	Auth          *identityapp.AuthService
	Profiles      *identityapp.ProfileService
	Benefits      *identityapp.BenefitsService
	Contributions *retirementapp.ContributionsService
	Allocations   *retirementapp.AllocationsService
	Memos         *retirementapp.MemoService
	Quotes        handler.QuoteFetcher

	DBCheck    handler.Check
	RedisCheck handler.Check // nil when Redis is not configured
}

// New builds the engine: global middleware, then the route table.
func New(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	engine := gin.New()
	engine.HandleMethodNotAllowed = false
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	engine.SetHTMLTemplate(deps.Templates)
	middleware.SetupValidator()

	renderer := view.NewRenderer(cfg.View.EnvironmentalScripts)
	cookies := middleware.NewCookieConfig(cfg.Session)

	var gateRecorder middleware.GateRecorder
	var limitRecorder middleware.RateLimitRecorder
	if deps.Metrics != nil {
		gateRecorder = deps.Metrics
		limitRecorder = deps.Metrics
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(deps.Logger),
		logger.GinMiddleware(deps.Logger),
	)
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"
	engine.Use(
		middleware.SecureWithConfig(security),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	formLimit := []gin.HandlerFunc{}
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.Unless(unlimitedPaths,
			middleware.RateLimit(deps.Limiter, PolicyGlobal, limitRecorder)))
		formLimit = append(formLimit, middleware.RateLimit(deps.Limiter, PolicyForm, limitRecorder))
	}

	engine.Use(middleware.SessionLoader(deps.Auth, cookies, deps.Logger))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.EnrichSpan())
	}
	engine.Use(middleware.ErrorHandler(renderer, deps.Logger))

	base := handler.NewBaseHandler(renderer, deps.Logger)
	sessionH := handler.NewSessionHandler(base, deps.Auth, deps.Profiles, cookies)
	profileH := handler.NewProfileHandler(base, deps.Profiles)
	contributionsH := handler.NewContributionsHandler(base, deps.Contributions)
	benefitsH := handler.NewBenefitsHandler(base, deps.Benefits)
	allocationsH := handler.NewAllocationsHandler(base, deps.Allocations)
	memosH := handler.NewMemosHandler(base, deps.Memos)
	researchH := handler.NewResearchHandler(base, deps.Quotes)
	tutorialH := handler.NewTutorialHandler(base)
	healthH := handler.NewHealthHandler(deps.DBCheck, deps.RedisCheck, deps.Logger)

	login := middleware.RequireLogin(gateRecorder)
	admin := middleware.RequireAdmin(gateRecorder)
	with := func(g ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(g, formLimit...)
	}

	table := NewRouteTable().
		GET("/", nil, sessionH.DisplayWelcomePage).
		GET("/login", nil, sessionH.DisplayLoginPage).
		POST("/login", with(), sessionH.HandleLoginRequest).
		GET("/signup", nil, sessionH.DisplaySignupPage).
		POST("/signup", with(), sessionH.HandleSignup).
		GET("/logout", nil, sessionH.DisplayLogoutPage).
		GET("/dashboard", gates(login), sessionH.DisplayWelcomePage).
		GET("/home", gates(login), sessionH.DisplayWelcomePage).
		GET("/profile", gates(login), profileH.DisplayProfile).
		POST("/profile", with(login), profileH.HandleProfileUpdate).
		GET("/contributions", gates(login), contributionsH.Display).
		POST("/contributions", with(login), contributionsH.HandleUpdate).
		GET("/benefits", gates(login), benefitsH.DisplayBenefits).
		POST("/benefits", with(login, admin), benefitsH.UpdateBenefits).
		GET("/allocations/:userId", gates(login), allocationsH.DisplayAllocations).
		GET("/memos", gates(login), memosH.DisplayMemos).
		POST("/memos", with(login), memosH.AddMemos).
		GET("/redirect", nil, handler.HandleRedirect).
		GET("/tutorial", nil, tutorialH.DisplayIndex).
		GET("/tutorial/:page", nil, tutorialH.DisplayPage).
		GET("/research", gates(login), researchH.DisplayResearch).
		GET("/health", nil, healthH.Health).
		NotFound(base.NotFound)

	if deps.Metrics != nil {
		table.GET("/metrics", nil, gin.WrapH(deps.Metrics.Handler()))
	}

	table.Setup(engine)
	return engine, nil
}
