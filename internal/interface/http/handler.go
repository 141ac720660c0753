package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/domain/faq"
)

const defaultRecent = 10

// Handler wires the HTTP transport to domain services.
type Handler struct {
	faqSvc   faq.Service
	adminSvc admin.Service
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, adminSvc admin.Service, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:   faqSvc,
		adminSvc: adminSvc,
		logger:   logger.With("component", "http.handler"),
	}
}

// SearchFAQ ranks stored FAQs against the query.
func (h *Handler) SearchFAQ(c *gin.Context) {
	var req faq.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.faqSvc.Search(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TrendingFAQ returns the most common search recommendations.
func (h *Handler) TrendingFAQ(c *gin.Context) {
	items, err := h.faqSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items})
}

// AdminLogin exchanges the admin password for a session token.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.adminSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddFAQ runs the duplicate-checked add flow. The body is always the structured outcome.
func (h *Handler) AddFAQ(c *gin.Context) {
	var req faq.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	claims, _ := getClaims(c)
	req.AddedBy = h.adminSvc.ResolveAddedBy(req.AddedBy,
		c.GetHeader("X-User-Name"), c.GetHeader("X-User-Email"), c.GetHeader("X-User-Id"), claims.User)

	resp := h.faqSvc.AddRecord(c.Request.Context(), req)
	c.JSON(statusForAdd(resp), resp)
}

// RecentFAQs lists the newest records.
func (h *Handler) RecentFAQs(c *gin.Context) {
	n, ok := intQuery(c, "n", defaultRecent)
	if !ok {
		return
	}
	records, err := h.faqSvc.Recent(c.Request.Context(), n)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"faqs": records, "count": len(records)})
}

// ExportFAQs streams a CSV export and reports where a copy was uploaded.
func (h *Handler) ExportFAQs(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	result, err := h.faqSvc.Export(c.Request.Context(), faq.ExportRequest{Limit: limit})
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(result.Key)))
	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	if result.Location != "" {
		c.Header("X-Export-Location", result.Location)
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", result.Data)
}

// InvalidateCache forces the next read to reload the corpus.
func (h *Handler) InvalidateCache(c *gin.Context) {
	h.faqSvc.InvalidateCache()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats summarises the corpus.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.faqSvc.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("%s must be an integer", name), err))
		return 0, false
	}
	return v, true
}

func statusForAdd(resp faq.AddResponse) int {
	if resp.Success {
		return http.StatusCreated
	}
	switch resp.Reason {
	case faq.ReasonDuplicateExact, faq.ReasonDuplicateFuzzy, faq.ReasonDuplicateSemantic:
		return http.StatusConflict
	case faq.ReasonStoreUnavailable:
		return http.StatusServiceUnavailable
	case faq.ReasonUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
