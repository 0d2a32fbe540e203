package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
)

// ListReports returns reports newest first, optionally filtered.
func (c *Controller) ListReports(ctx echo.Context) error {
	limit, offset := pagination(ctx)
	filter := repository.ReportFilter{
		Category: ctx.QueryParam("category"),
		Status:   ctx.QueryParam("status"),
		Severity: ctx.QueryParam("severity"),
		Limit:    limit,
		Offset:   offset,
	}

	reports, total, err := c.reportRepo.ListReports(ctx.Request().Context(), filter)
	if err != nil {
		return c.handleError(ctx, err, "Failed to list reports")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"reports": reports,
		"total":   total,
	})
}

// GetReport returns one report by its public report ID.
func (c *Controller) GetReport(ctx echo.Context) error {
	rpt, err := c.reportRepo.GetReportByReportID(ctx.Request().Context(), ctx.Param("report_id"))
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Report not found"})
		}
		return c.handleError(ctx, err, "Failed to get report")
	}
	return ctx.JSON(http.StatusOK, rpt)
}

// ListReportNotifications returns the notification log for one report.
func (c *Controller) ListReportNotifications(ctx echo.Context) error {
	logs, err := c.reportRepo.ListNotificationLogs(ctx.Request().Context(), ctx.Param("report_id"))
	if err != nil {
		return c.handleError(ctx, err, "Failed to list notifications")
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"notifications": logs,
		"count":         len(logs),
	})
}

// RunReport triggers one report run synchronously and returns the finished
// report. Scheduled runs use the same generator; this endpoint exists for
// manual reruns and backfills.
func (c *Controller) RunReport(ctx echo.Context) error {
	var body struct {
		Category string `json:"category"`
		Release  string `json:"release"`
	}
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if !alerting.ValidCategory(body.Category) {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown report category"})
	}
	if body.Category == alerting.CategoryVersionMonitor && body.Release == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Release is required for version-monitor reports"})
	}

	rpt, err := c.generator.Run(ctx.Request().Context(), body.Category, body.Release)
	if err != nil {
		c.log.Error("manual report run failed",
			zap.String("category", body.Category),
			zap.Error(err))
		// The report row records the failure; return it with the error.
		if rpt != nil {
			return ctx.JSON(http.StatusBadGateway, map[string]any{
				"error":  "Report run failed",
				"report": rpt,
			})
		}
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "Report run failed"})
	}
	return ctx.JSON(http.StatusCreated, rpt)
}
