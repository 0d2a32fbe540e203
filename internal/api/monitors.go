package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListMonitors returns the active release monitors.
func (c *Controller) ListMonitors(ctx echo.Context) error {
	monitors := c.sched.ActiveMonitors()
	return ctx.JSON(http.StatusOK, map[string]any{
		"monitors": monitors,
		"count":    len(monitors),
	})
}

// StartMonitor begins a monitoring window for a release.
func (c *Controller) StartMonitor(ctx echo.Context) error {
	var body struct {
		Release string `json:"release"`
	}
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if body.Release == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Release is required"})
	}

	if err := c.sched.StartMonitor(body.Release); err != nil {
		return ctx.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusCreated, map[string]string{
		"release": body.Release,
		"status":  "monitoring",
	})
}

// StopMonitor ends a release monitor early.
func (c *Controller) StopMonitor(ctx echo.Context) error {
	release := ctx.Param("release")
	if !c.sched.StopMonitor(release) {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "No monitor for this release"})
	}
	return ctx.NoContent(http.StatusNoContent)
}
