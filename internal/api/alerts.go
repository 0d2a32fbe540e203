package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
)

// GetAlertSchema returns the metric and operator catalog for the rule
// editor UI.
func (c *Controller) GetAlertSchema(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, alerting.GetSchema())
}

// ListAlertRules returns alert rules, optionally filtered by category,
// severity, and enabled state.
func (c *Controller) ListAlertRules(ctx echo.Context) error {
	filter := repository.AlertRuleFilter{
		Category: ctx.QueryParam("category"),
		Severity: ctx.QueryParam("severity"),
	}
	if enabledParam := ctx.QueryParam("enabled"); enabledParam != "" {
		v := enabledParam == queryValueTrue
		filter.Enabled = &v
	}

	rules, err := c.alertRuleRepo.ListRules(ctx.Request().Context(), filter)
	if err != nil {
		return c.handleError(ctx, err, "Failed to list alert rules")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"rules": rules,
		"count": len(rules),
	})
}

// GetAlertRule returns one rule with its description attached.
func (c *Controller) GetAlertRule(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid rule ID"})
	}

	rule, err := c.alertRuleRepo.GetRule(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAlertRuleNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Alert rule not found"})
		}
		return c.handleError(ctx, err, "Failed to get alert rule")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"rule":        rule,
		"description": alerting.DescribeRule(rule),
	})
}

// CreateAlertRule validates and stores a new rule.
func (c *Controller) CreateAlertRule(ctx echo.Context) error {
	var rule entities.AlertRule
	if err := ctx.Bind(&rule); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := alerting.ValidateRule(&rule); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	alerting.NormalizeConditions(&rule)

	count, err := c.alertRuleRepo.CountRulesByName(ctx.Request().Context(), rule.Name)
	if err != nil {
		return c.handleError(ctx, err, "Failed to create alert rule")
	}
	if count > 0 {
		return ctx.JSON(http.StatusConflict, map[string]string{"error": "A rule with this name already exists"})
	}

	if err := c.alertRuleRepo.CreateRule(ctx.Request().Context(), &rule); err != nil {
		return c.handleError(ctx, err, "Failed to create alert rule")
	}

	c.log.Info("alert rule created",
		zap.String("name", rule.Name),
		zap.Uint("id", rule.ID))

	return ctx.JSON(http.StatusCreated, rule)
}

// UpdateAlertRule replaces an existing rule and its conditions.
func (c *Controller) UpdateAlertRule(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid rule ID"})
	}

	existing, err := c.alertRuleRepo.GetRule(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAlertRuleNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Alert rule not found"})
		}
		return c.handleError(ctx, err, "Failed to get alert rule")
	}

	var rule entities.AlertRule
	if err := ctx.Bind(&rule); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := alerting.ValidateRule(&rule); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	alerting.NormalizeConditions(&rule)

	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt

	if err := c.alertRuleRepo.UpdateRule(ctx.Request().Context(), &rule); err != nil {
		return c.handleError(ctx, err, "Failed to update alert rule")
	}

	return ctx.JSON(http.StatusOK, rule)
}

// ToggleAlertRule enables or disables a rule without touching its
// conditions.
func (c *Controller) ToggleAlertRule(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid rule ID"})
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := c.alertRuleRepo.ToggleRule(ctx.Request().Context(), id, body.Enabled); err != nil {
		if errors.Is(err, repository.ErrAlertRuleNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Alert rule not found"})
		}
		return c.handleError(ctx, err, "Failed to toggle alert rule")
	}

	return ctx.JSON(http.StatusOK, map[string]any{"id": id, "enabled": body.Enabled})
}

// DeleteAlertRule removes a rule and its conditions.
func (c *Controller) DeleteAlertRule(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid rule ID"})
	}

	if err := c.alertRuleRepo.DeleteRule(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrAlertRuleNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Alert rule not found"})
		}
		return c.handleError(ctx, err, "Failed to delete alert rule")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// PreviewAlertRule validates a rule draft and returns its human-readable
// description without saving anything. The editor calls this on every
// change so users see what a rule means before committing it.
func (c *Controller) PreviewAlertRule(ctx echo.Context) error {
	var rule entities.AlertRule
	if err := ctx.Bind(&rule); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := alerting.ValidateRule(&rule); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"description": alerting.DescribeRule(&rule),
	})
}

// ResetDefaultAlertRules re-seeds any missing built-in rules.
func (c *Controller) ResetDefaultAlertRules(ctx echo.Context) error {
	if err := alerting.SeedDefaultRules(ctx.Request().Context(), c.alertRuleRepo, c.log); err != nil {
		return c.handleError(ctx, err, "Failed to reset default rules")
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "defaults restored"})
}
