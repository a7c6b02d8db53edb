package view

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html templates/tutorial/*.html
var templateFS embed.FS

// Template names rendered by the handlers
const (
	PageLogin         = "login"
	PageSignup        = "signup"
	PageDashboard     = "dashboard"
	PageProfile       = "profile"
	PageContributions = "contributions"
	PageBenefits      = "benefits"
	PageAllocations   = "allocations"
	PageMemos         = "memos"
	PageResearch      = "research"
	PageError         = "error"
	PageNotFound      = "not-found"
)

// Load parses every embedded template with the portal function map
func Load() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templateFS,
		"templates/*.html",
		"templates/tutorial/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// FuncMap returns the helpers available inside templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"formatDecimal":  formatDecimal,
		"upper":          strings.ToUpper,
		"lower":          strings.ToLower,
		"trim":           strings.TrimSpace,
	}
}

// Renderer renders named templates with the environmental scripts and
// the caller's session added to the data of every page.
type Renderer struct {
	scripts template.HTML
}

// NewRenderer creates a Renderer. scripts come from operator configuration
// and are written into every page unescaped.
func NewRenderer(scripts []string) *Renderer {
	return &Renderer{scripts: template.HTML(strings.Join(scripts, "\n"))}
}

// HTML writes the named template with status
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["environmentalScripts"] = r.scripts
	if _, ok := data["session"]; !ok {
		if s, exists := c.Get(SessionDataKey); exists {
			data["session"] = s
		}
	}
	c.HTML(status, name, data)
}

// SessionDataKey is the gin context key whose value is exposed to
// templates as .session
const SessionDataKey = "view_session"

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func formatDecimal(v any, precision int) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.StringFixed(int32(precision))
	case *decimal.Decimal:
		if d == nil {
			return ""
		}
		return d.StringFixed(int32(precision))
	case int:
		return decimal.NewFromInt(int64(d)).StringFixed(int32(precision))
	case float64:
		return decimal.NewFromFloat(d).StringFixed(int32(precision))
	case string:
		parsed, err := decimal.NewFromString(d)
		if err != nil {
			return d
		}
		return parsed.StringFixed(int32(precision))
	default:
		return fmt.Sprint(v)
	}
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	default:
		return time.Time{}
	}
}
