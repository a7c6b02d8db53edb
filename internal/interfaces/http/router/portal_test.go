package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/portal/backend/internal/application/identity"
	retirementapp "github.com/portal/backend/internal/application/retirement"
	"github.com/portal/backend/internal/domain/identity"
	"github.com/portal/backend/internal/domain/retirement"
	"github.com/portal/backend/internal/infrastructure/auth"
	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/portal/backend/internal/infrastructure/persistence"
	"github.com/portal/backend/internal/infrastructure/ratelimit"
	"github.com/portal/backend/internal/infrastructure/research"
	"github.com/portal/backend/internal/infrastructure/telemetry"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Passw0rd1"

func init() {
	identity.PasswordCost = bcrypt.MinCost
}

type portal struct {
	engine   *gin.Engine
	cfg      *config.Config
	db       *persistence.Database
	users    *persistence.GormUserRepository
	admin    *identity.User
	user1    *identity.User
	user2    *identity.User
	upstream *httptest.Server
	hits     *atomic.Int64
	limiter  *ratelimit.MemoryLimiter
}

func newPortal(t *testing.T, tweak ...func(*config.Config)) *portal {
	t.Helper()

	hits := &atomic.Int64{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/aapl":
			_, _ = w.Write([]byte("AAPL 187.44 <b>+1.2%</b>"))
		case "/slow":
			time.Sleep(500 * time.Millisecond)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
	cfg.Research.Timeout = 200 * time.Millisecond
	cfg.Research.Symbols = map[string]string{
		"AAPL": upstream.URL + "/aapl",
		"FAIL": upstream.URL + "/fail",
		"SLOW": upstream.URL + "/slow",
	}
	cfg.View.EnvironmentalScripts = []string{`<script src="/env-marker.js"></script>`}
	for _, fn := range tweak {
		fn(cfg)
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	users := persistence.NewGormUserRepository(db.DB)
	allocs := persistence.NewGormAllocationRepository(db.DB)
	contributions := persistence.NewGormContributionsRepository(db.DB)
	memos := persistence.NewGormMemoRepository(db.DB)

	p := &portal{cfg: cfg, db: db, users: users, upstream: upstream, hits: hits}
	p.admin = seedUser(t, users, allocs, "admin", true)
	p.user1 = seedUser(t, users, allocs, "user1", false)
	p.user2 = seedUser(t, users, allocs, "user2", false)

	tmpl, err := view.Load()
	require.NoError(t, err)

	limiter := ratelimit.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	t.Cleanup(limiter.Stop)
	p.limiter = limiter
	metrics := telemetry.NewMetrics()
	log := zap.NewNop()

	authSvc := identityapp.NewAuthService(users, allocs,
		auth.NewSessionService(cfg.Session), auth.NewInMemoryRevocationStore(), metrics, log)

	engine, err := New(Dependencies{
		Config:        cfg,
		Logger:        log,
		Templates:     tmpl,
		Metrics:       metrics,
		Limiter:       limiter,
		Auth:          authSvc,
		Profiles:      identityapp.NewProfileService(users, log),
		Benefits:      identityapp.NewBenefitsService(users, log),
		Contributions: retirementapp.NewContributionsService(contributions, log),
		Allocations:   retirementapp.NewAllocationsService(allocs),
		Memos:         retirementapp.NewMemoService(memos, log),
		Quotes:        research.NewClient(cfg.Research, research.WithRecorder(metrics)),
		DBCheck:       db.Ping,
	})
	require.NoError(t, err)
	p.engine = engine
	return p
}

func seedUser(t *testing.T, users *persistence.GormUserRepository, allocs *persistence.GormAllocationRepository, name string, admin bool) *identity.User {
	t.Helper()
	in := identity.SignupInput{
		Username:  name,
		FirstName: strings.ToUpper(name[:1]) + name[1:],
		LastName:  "Tester",
		Password:  testPassword,
		Verify:    testPassword,
	}
	newUser := identity.NewUser
	if admin {
		newUser = identity.NewAdmin
	}
	u, err := newUser(in)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	require.NoError(t, allocs.Save(context.Background(), &retirement.Allocation{UserID: u.ID, Stocks: 40, Funds: 30, Bonds: 30}))
	return u
}

func (p *portal) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	req.RemoteAddr = "192.0.2.10:4321"
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	p.engine.ServeHTTP(w, req)
	return w
}

func (p *portal) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return p.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (p *portal) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req, cookie)
}

func (p *portal) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	w := p.post("/login", url.Values{"userName": {username}, "password": {testPassword}}, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	return sessionCookie(t, w, p.cfg.Session.CookieName)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", name)
	return nil
}

func TestPortal_LoginGate(t *testing.T) {
	p := newPortal(t)

	for _, path := range []string{"/", "/dashboard", "/profile", "/contributions", "/benefits",
		"/memos", "/research", "/allocations/" + p.user1.ID.String()} {
		w := p.get(path, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}

	w := p.post("/memos", url.Values{"memo": {"hi"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestPortal_Login(t *testing.T) {
	p := newPortal(t)

	t.Run("admin lands on benefits", func(t *testing.T) {
		w := p.post("/login", url.Values{"userName": {"admin"}, "password": {testPassword}}, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/benefits", w.Header().Get("Location"))

		cookie := sessionCookie(t, w, p.cfg.Session.CookieName)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("user lands on dashboard with their name", func(t *testing.T) {
		cookie := p.login(t, "user1")
		w := p.get("/dashboard", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Welcome, User1")
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		wrong := p.post("/login", url.Values{"userName": {"user1"}, "password": {"Wrong0ne"}}, nil)
		unknown := p.post("/login", url.Values{"userName": {"nobody"}, "password": {"Wrong0ne"}}, nil)

		for _, w := range []*httptest.ResponseRecorder{wrong, unknown} {
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid username and/or password")
			assert.Empty(t, w.Result().Cookies())
		}
	})
}

func TestPortal_AdminGate(t *testing.T) {
	p := newPortal(t)
	form := url.Values{"userId": {p.user2.ID.String()}, "benefitStartDate": {"2031-07-01"}}

	t.Run("anonymous is sent to login", func(t *testing.T) {
		w := p.post("/benefits", form, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("regular user is forbidden and nothing changes", func(t *testing.T) {
		w := p.post("/benefits", form, p.login(t, "user1"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Forbidden", w.Body.String())

		u, err := p.users.FindByID(context.Background(), p.user2.ID)
		require.NoError(t, err)
		assert.Nil(t, u.BenefitStartDate)
	})

	t.Run("admin updates the date", func(t *testing.T) {
		w := p.post("/benefits", form, p.login(t, "admin"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Benefit start date updated")

		u, err := p.users.FindByID(context.Background(), p.user2.ID)
		require.NoError(t, err)
		require.NotNil(t, u.BenefitStartDate)
		assert.Equal(t, "2031-07-01", u.BenefitStartDate.Format("2006-01-02"))
	})

	t.Run("admin with bad date gets 400", func(t *testing.T) {
		bad := url.Values{"userId": {p.user2.ID.String()}, "benefitStartDate": {"July 1st"}}
		w := p.post("/benefits", bad, p.login(t, "admin"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPortal_Redirect(t *testing.T) {
	p := newPortal(t)

	tests := map[string]string{
		"/profile":                 "/profile",
		"/dashboard":               "/dashboard",
		"/home":                    "/home",
		"https://evil.example.com": "/home",
		"//evil.example.com":       "/home",
		"/profile/../admin":        "/home",
		"/Profile":                 "/home",
		"":                         "/home",
	}
	for target, want := range tests {
		w := p.get("/redirect?target="+url.QueryEscape(target), nil)
		assert.Equal(t, http.StatusFound, w.Code, target)
		assert.Equal(t, want, w.Header().Get("Location"), target)
	}
}

func TestPortal_Tutorial(t *testing.T) {
	p := newPortal(t)

	w := p.get("/tutorial", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A1 - Injection")

	w = p.get("/tutorial/a3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A3 - Cross-Site Scripting")

	for _, path := range []string{"/tutorial/a4", "/tutorial/%2e%2e", "/tutorial/..%2F..%2Fetc%2Fpasswd"} {
		w := p.get(path, nil)
		assert.NotEqual(t, http.StatusOK, w.Code, path)
		assert.NotContains(t, w.Body.String(), "root:", path)
	}
	assert.Equal(t, http.StatusForbidden, p.get("/tutorial/a4", nil).Code)
}

func TestPortal_Research(t *testing.T) {
	p := newPortal(t)
	cookie := p.login(t, "user1")

	t.Run("no symbol renders the page", func(t *testing.T) {
		w := p.get("/research", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Stock Research")
		assert.Contains(t, w.Body.String(), `<script src="/env-marker.js"></script>`)
	})

	t.Run("unknown symbols never reach the network", func(t *testing.T) {
		before := p.hits.Load()
		for _, symbol := range []string{"EVIL", "aapl", "http://169.254.169.254/", "AAPL/../x"} {
			w := p.get("/research?symbol="+url.QueryEscape(symbol), cookie)
			assert.Equal(t, http.StatusBadRequest, w.Code, symbol)
			assert.Equal(t, "<h1>Invalid symbol provided.</h1>\n\n", w.Body.String(), symbol)
		}
		assert.Equal(t, before, p.hits.Load())
	})

	t.Run("known symbol streams the upstream body", func(t *testing.T) {
		w := p.get("/research?symbol=AAPL", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t,
			"<h1>The following is the stock information you requested.</h1>\n\n\n\nAAPL 187.44 <b>+1.2%</b>",
			w.Body.String())
	})

	for _, symbol := range []string{"FAIL", "SLOW"} {
		t.Run(symbol+" is a bad gateway", func(t *testing.T) {
			w := p.get("/research?symbol="+symbol, cookie)
			assert.Equal(t, http.StatusBadGateway, w.Code)
			assert.Equal(t, "<h1>Unable to retrieve stock information.</h1>\n\n", w.Body.String())
		})
	}
}

func TestPortal_Allocations(t *testing.T) {
	p := newPortal(t)
	user1 := p.login(t, "user1")

	w := p.get("/allocations/"+p.user1.ID.String(), user1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "40 %")

	w = p.get("/allocations/"+p.user1.ID.String()+"?threshold=50", user1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No allocations match.")

	w = p.get("/allocations/"+p.user1.ID.String()+"?threshold="+url.QueryEscape("1'; return 1 == '1"), user1)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = p.get("/allocations/"+p.user2.ID.String(), user1)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = p.get("/allocations/"+p.user2.ID.String(), p.login(t, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPortal_ProfileContributionsMemos(t *testing.T) {
	p := newPortal(t)
	cookie := p.login(t, "user1")

	t.Run("profile", func(t *testing.T) {
		w := p.post("/profile", url.Values{"firstName": {"Ann"}, "bankRouting": {"12345"}}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Bank Routing number does not comply")
		assert.Contains(t, w.Body.String(), `value="12345"`)

		w = p.post("/profile", url.Values{"firstName": {"Ann"}, "bankRouting": {"0198212#"}}, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Profile updated successfully")
	})

	t.Run("contributions", func(t *testing.T) {
		w := p.get("/contributions", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="2.00"`)

		w = p.post("/contributions", url.Values{"preTax": {"20"}, "afterTax": {"10"}, "roth": {"5"}}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Contribution percentages cannot exceed 30 %")

		w = p.post("/contributions", url.Values{"preTax": {"x"}, "afterTax": {"1"}, "roth": {"1"}}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid contribution percentages")

		w = p.post("/contributions", url.Values{"preTax": {"10"}, "afterTax": {"10"}, "roth": {"10"}}, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Total: 30.00")
	})

	t.Run("memos are escaped", func(t *testing.T) {
		w := p.post("/memos", url.Values{"memo": {"<script>alert(1)</script>"}}, cookie)
		assert.Equal(t, http.StatusFound, w.Code)

		w = p.get("/memos", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "&lt;script&gt;alert(1)&lt;/script&gt;")

		w = p.post("/memos", url.Values{"memo": {""}}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPortal_SignupAndLogout(t *testing.T) {
	p := newPortal(t)

	form := url.Values{
		"userName": {"newbie"}, "firstName": {"New"}, "lastName": {"Bie"},
		"password": {testPassword}, "verify": {testPassword},
	}
	w := p.post("/signup", form, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	cookie := sessionCookie(t, w, p.cfg.Session.CookieName)

	w = p.post("/signup", form, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "User name already in use")

	weak := url.Values{"userName": {"other"}, "password": {"short"}, "verify": {"short"}}
	assert.Equal(t, http.StatusBadRequest, p.post("/signup", weak, nil).Code)

	assert.Equal(t, http.StatusOK, p.get("/profile", cookie).Code)

	w = p.get("/logout", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// the old cookie is revoked even if the browser keeps it
	w = p.get("/profile", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestPortal_RateLimit(t *testing.T) {
	p := newPortal(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimitRequests = 3
	})

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, p.get("/login", nil).Code)
	}
	w := p.get("/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests, please try again later.", w.Body.String())

	// probes are not counted
	assert.Equal(t, http.StatusOK, p.get("/health", nil).Code)
}

func TestPortal_FormRateLimit(t *testing.T) {
	p := newPortal(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimitRequests = 3
	})
	bad := url.Values{"userName": {"user1"}, "password": {"wrong"}}

	// spend the form budget for this client; the global budget stays untouched
	for i := 0; i < 3; i++ {
		require.True(t, p.limiter.Allow(context.Background(), PolicyForm+":192.0.2.10").Allowed)
	}

	w := p.post("/login", bad, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests, please try again later.", w.Body.String())
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))

	// every mutating route shares the form budget
	assert.Equal(t, http.StatusTooManyRequests, p.post("/signup", url.Values{}, nil).Code)

	// reads only count against the global policy
	assert.Equal(t, http.StatusOK, p.get("/login", nil).Code)

	metrics := p.get("/metrics", nil).Body.String()
	assert.Contains(t, metrics, `portal_http_rate_limited_total{policy="form"} 2`)
	assert.NotContains(t, metrics, `portal_http_rate_limited_total{policy="global"}`)
}

func TestPortal_FormRateLimitAfterGates(t *testing.T) {
	p := newPortal(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimitRequests = 3
	})
	for i := 0; i < 3; i++ {
		p.limiter.Allow(context.Background(), PolicyForm+":192.0.2.10")
	}

	// anonymous writes are turned away by the login gate before the form limit
	w := p.post("/memos", url.Values{"memo": {"hi"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestPortal_RateLimitDisabled(t *testing.T) {
	p := newPortal(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimitEnabled = false
		cfg.HTTP.RateLimitRequests = 1
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, p.get("/login", nil).Code)
	}
}

func TestPortal_NotFoundAndErrors(t *testing.T) {
	p := newPortal(t)

	w := p.get("/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")

	assert.Equal(t, http.StatusNotFound, p.do(httptest.NewRequest(http.MethodDelete, "/login", nil), nil).Code)

	cookie := p.login(t, "user1")
	require.NoError(t, p.db.Close())

	w = p.get("/profile", cookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
	assert.NotContains(t, strings.ToLower(w.Body.String()), "sql")
}

func TestPortal_HealthAndMetrics(t *testing.T) {
	p := newPortal(t)

	w := p.get("/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"up"}`, w.Body.String())

	w = p.get("/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `portal_http_requests_total{method="GET",route="/health",status="200"} 1`)

	require.NoError(t, p.db.Close())
	w = p.get("/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"unhealthy"`)
}

func TestPortal_SecurityHeaders(t *testing.T) {
	p := newPortal(t)

	w := p.get("/login", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "100", w.Header().Get("RateLimit-Limit"))
}
