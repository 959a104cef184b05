// Package handler exposes the report engine over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/ledger"
	"solana-holder-lab/internal/report"
	"solana-holder-lab/internal/storage"
)

// ReportBuilder builds one report.
type ReportBuilder interface {
	Build(ctx context.Context, req report.Request) (*domain.Report, error)
}

// Handler serves reports and usage summaries.
type Handler struct {
	tracer  trace.Tracer
	reports ReportBuilder
	usage   storage.UsageEventStore
	log     zerolog.Logger
}

// New creates a handler. usage may be nil, which disables the usage routes.
func New(tracer trace.Tracer, reports ReportBuilder, usage storage.UsageEventStore, log zerolog.Logger) *Handler {
	return &Handler{tracer: tracer, reports: reports, usage: usage, log: log}
}

// RegisterRoutes mounts all routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.POST("/reports", h.CreateReport)
	api.GET("/reports/:mint", h.GetReport)
	if h.usage != nil {
		api.GET("/usage", h.UsageSummary)
		api.GET("/usage/:reportId", h.UsageByReport)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateReport builds a report from a JSON body {tokenMint, manualPrice?}.
func (h *Handler) CreateReport(c *gin.Context) {
	var req report.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	h.build(c, req)
}

// GetReport builds a report for the :mint path parameter and an optional price query.
func (h *Handler) GetReport(c *gin.Context) {
	req := report.Request{TokenMint: c.Param("mint")}
	if raw := c.Query("price"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price: " + raw})
			return
		}
		req.ManualPrice = &p
	}
	h.build(c, req)
}

func (h *Handler) build(c *gin.Context, req report.Request) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.build-report")
	defer span.End()
	span.SetAttributes(attribute.String("token.mint", req.TokenMint))

	rep, err := h.reports.Build(ctx, req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("mint", req.TokenMint).Msg("report request failed")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// statusFor maps a report error to an HTTP status. A mint with no holder
// accounts on any endpoint is reported as not found.
func statusFor(err error) int {
	var exhausted *ledger.ExhaustedError
	switch {
	case errors.Is(err, report.ErrInvalidMint):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &exhausted):
		for _, a := range exhausted.Attempts {
			if a.Err != nil {
				return http.StatusBadGateway
			}
		}
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UsageSummary aggregates usage events per service over [from, to] (unix ms).
// The window defaults to the last 24 hours.
func (h *Handler) UsageSummary(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.usage-summary")
	defer span.End()

	now := time.Now().UnixMilli()
	from, err := queryInt(c, "from", now-24*time.Hour.Milliseconds())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := queryInt(c, "to", now)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if from > to {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must not be after to"})
		return
	}

	summary, err := h.usage.SummarizeByService(ctx, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "services": summary})
}

// UsageByReport lists the usage events of one report.
func (h *Handler) UsageByReport(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.usage-by-report")
	defer span.End()

	id := strings.TrimSpace(c.Param("reportId"))
	events, err := h.usage.GetByReportID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(events) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no usage recorded for report " + id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reportId": id, "events": events})
}

func queryInt(c *gin.Context, key string, def int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key + ": " + raw)
	}
	return v, nil
}
