// Package api exposes the HTTP API: alert rule management, report runs and
// listings, Sentry issue ingestion, and release monitor control.
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
	"github.com/devnunu/sentry-crash-report/internal/notify"
	"github.com/devnunu/sentry-crash-report/internal/report"
	"github.com/devnunu/sentry-crash-report/internal/scheduler"
)

const (
	queryValueTrue  = "true"
	defaultPageSize = 50
	maxPageSize     = 200
)

// Controller wires repositories and pipeline components into HTTP handlers.
type Controller struct {
	alertRuleRepo repository.AlertRuleRepository
	reportRepo    repository.ReportRepository
	issueRepo     repository.IssueRepository
	generator     *report.Generator
	sched         *scheduler.Scheduler
	notifier      *notify.Notifier
	log           *zap.Logger
}

// NewController creates the API controller and registers all routes on e.
// notifier may be nil when no Slack webhook is configured.
func NewController(e *echo.Echo, alertRuleRepo repository.AlertRuleRepository, reportRepo repository.ReportRepository, issueRepo repository.IssueRepository, generator *report.Generator, sched *scheduler.Scheduler, notifier *notify.Notifier, log *zap.Logger) *Controller {
	c := &Controller{
		alertRuleRepo: alertRuleRepo,
		reportRepo:    reportRepo,
		issueRepo:     issueRepo,
		generator:     generator,
		sched:         sched,
		notifier:      notifier,
		log:           log,
	}
	c.registerRoutes(e)
	return c
}

func (c *Controller) registerRoutes(e *echo.Echo) {
	e.GET("/healthz", c.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	alerts := v1.Group("/alerts")
	alerts.GET("/schema", c.GetAlertSchema)
	alerts.GET("/rules", c.ListAlertRules)
	alerts.GET("/rules/:id", c.GetAlertRule)
	alerts.POST("/rules", c.CreateAlertRule)
	alerts.PUT("/rules/:id", c.UpdateAlertRule)
	alerts.PATCH("/rules/:id/toggle", c.ToggleAlertRule)
	alerts.DELETE("/rules/:id", c.DeleteAlertRule)
	alerts.POST("/rules/preview", c.PreviewAlertRule)
	alerts.POST("/rules/reset-defaults", c.ResetDefaultAlertRules)

	reports := v1.Group("/reports")
	reports.GET("", c.ListReports)
	reports.GET("/:report_id", c.GetReport)
	reports.GET("/:report_id/notifications", c.ListReportNotifications)
	reports.POST("/run", c.RunReport)

	v1.GET("/issues", c.ListIssues)
	v1.POST("/webhook/sentry", c.SentryWebhook)

	monitors := v1.Group("/monitors")
	monitors.GET("", c.ListMonitors)
	monitors.POST("", c.StartMonitor)
	monitors.DELETE("/:release", c.StopMonitor)
}

// Health is a liveness probe.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleError logs an internal error and returns a generic message so
// database details never leak into responses.
func (c *Controller) handleError(ctx echo.Context, err error, message string) error {
	c.log.Error(message, zap.Error(err), zap.String("path", ctx.Path()))
	return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": message})
}

// parseUintParam parses a uint route parameter.
func parseUintParam(ctx echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	return uint(v), err
}

// pagination reads limit/offset query parameters with bounds applied.
func pagination(ctx echo.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}
	if v, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
