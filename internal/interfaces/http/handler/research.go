package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/view"
	"go.uber.org/zap"
)

// Research page fragments. Bodies are written byte for byte.
const (
	researchInvalidSymbol = "<h1>Invalid symbol provided.</h1>\n\n"
	researchHeader        = "<h1>The following is the stock information you requested.</h1>\n\n"
	researchSeparator     = "\n\n"
	researchUnavailable   = "<h1>Unable to retrieve stock information.</h1>\n\n"
)

const htmlContentType = "text/html; charset=utf-8"

// QuoteFetcher resolves a symbol against the configured allow-list and
// opens the upstream quote
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) (io.ReadCloser, error)
	Symbols() []string
}

// ResearchHandler proxies stock quotes for allow-listed symbols
type ResearchHandler struct {
	BaseHandler
	quotes QuoteFetcher
}

// NewResearchHandler creates a new ResearchHandler
func NewResearchHandler(base BaseHandler, quotes QuoteFetcher) *ResearchHandler {
	return &ResearchHandler{BaseHandler: base, quotes: quotes}
}

// DisplayResearch renders the research page, or with ?symbol= streams the
// upstream quote behind a fixed header.
func (h *ResearchHandler) DisplayResearch(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		h.Render(c, http.StatusOK, view.PageResearch, gin.H{"symbols": h.quotes.Symbols()})
		return
	}

	ctx := c.Request.Context()
	body, err := h.quotes.Fetch(ctx, symbol)
	if errors.Is(err, shared.ErrInvalidInput) {
		c.Data(http.StatusBadRequest, htmlContentType, []byte(researchInvalidSymbol))
		return
	}
	if err != nil {
		logger.Enrich(ctx, h.logger).Warn("Stock lookup failed",
			zap.String("symbol", symbol),
			zap.Error(err))
		c.Data(http.StatusBadGateway, htmlContentType, []byte(researchUnavailable))
		return
	}
	defer body.Close()

	c.Header("Content-Type", htmlContentType)
	c.Status(http.StatusOK)
	if _, err := io.WriteString(c.Writer, researchHeader+researchSeparator); err != nil {
		return
	}
	if _, err := io.Copy(c.Writer, body); err != nil {
		// headers are already sent; the truncated body is all we can do
		logger.Enrich(ctx, h.logger).Warn("Stock response interrupted",
			zap.String("symbol", symbol),
			zap.Error(err))
	}
}
