package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
)

// ListIssues returns ingested Sentry issues, optionally filtered.
func (c *Controller) ListIssues(ctx echo.Context) error {
	limit, offset := pagination(ctx)
	filter := repository.IssueFilter{
		Level:   ctx.QueryParam("level"),
		Status:  ctx.QueryParam("status"),
		Release: ctx.QueryParam("release"),
		Limit:   limit,
		Offset:  offset,
	}

	issues, total, err := c.issueRepo.ListIssues(ctx.Request().Context(), filter)
	if err != nil {
		return c.handleError(ctx, err, "Failed to list issues")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"issues": issues,
		"total":  total,
	})
}

// Importance thresholds for webhook-ingested issues. An error or fatal
// issue is important when it crosses either count or is a regression.
const (
	importantEventCount = 10
	importantUserCount  = 5
)

// isImportantIssue decides whether an ingested issue warrants an immediate
// Slack alert outside the report cycle.
func isImportantIssue(issue *entities.Issue) bool {
	if issue.Level != "error" && issue.Level != "fatal" {
		return false
	}
	if issue.EventCount >= importantEventCount || issue.UserCount >= importantUserCount {
		return true
	}
	return issue.IsRegression
}

// issueActions are the Sentry internal-integration actions this service
// handles; anything else is acknowledged and skipped.
var issueActions = map[string]bool{
	"created":    true,
	"resolved":   true,
	"unresolved": true,
	"assigned":   true,
	"ignored":    true,
}

// sentryWebhookPayload is the subset of Sentry's issue webhook body this
// service consumes.
type sentryWebhookPayload struct {
	Action string `json:"action"`
	Data   struct {
		Issue struct {
			ID           string `json:"id"`
			Title        string `json:"title"`
			Level        string `json:"level"`
			Status       string `json:"status"`
			Count        string `json:"count"`
			UserCount    int    `json:"userCount"`
			Permalink    string `json:"permalink"`
			FirstSeen    string `json:"firstSeen"`
			LastSeen     string `json:"lastSeen"`
			IsRegression bool   `json:"isRegression"`
			Release      string `json:"release"`
			Environment  string `json:"environment"`
		} `json:"issue"`
	} `json:"data"`
}

// SentryWebhook ingests an issue event pushed by a Sentry internal
// integration. Payloads are trusted as-is; the endpoint is expected to sit
// behind network-level access control.
func (c *Controller) SentryWebhook(ctx echo.Context) error {
	var payload sentryWebhookPayload
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid webhook payload"})
	}
	if !issueActions[payload.Action] {
		return ctx.JSON(http.StatusOK, map[string]string{
			"status": "skipped",
			"action": payload.Action,
		})
	}
	in := payload.Data.Issue
	if in.ID == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Webhook payload has no issue"})
	}

	eventCount, _ := strconv.Atoi(in.Count)
	issue := &entities.Issue{
		SentryIssueID: in.ID,
		Title:         in.Title,
		Level:         in.Level,
		Status:        in.Status,
		EventCount:    eventCount,
		UserCount:     in.UserCount,
		Release:       in.Release,
		Environment:   in.Environment,
		IsRegression:  in.IsRegression,
		SentryURL:     in.Permalink,
		FirstSeenAt:   parseSentryTime(in.FirstSeen),
		LastSeenAt:    parseSentryTime(in.LastSeen),
	}

	if err := c.issueRepo.UpsertIssue(ctx.Request().Context(), issue); err != nil {
		return c.handleError(ctx, err, "Failed to store issue")
	}

	c.log.Info("sentry issue ingested",
		zap.String("sentry_issue_id", issue.SentryIssueID),
		zap.String("action", payload.Action),
		zap.String("level", issue.Level))

	important := payload.Action == "created" && isImportantIssue(issue)
	if important {
		if err := c.notifier.SendIssueAlert(ctx.Request().Context(), issue); err != nil {
			c.log.Error("issue alert delivery failed",
				zap.String("sentry_issue_id", issue.SentryIssueID),
				zap.Error(err))
		}
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"important": important,
	})
}

// parseSentryTime parses Sentry's RFC3339 timestamps, returning the zero
// time for anything unparsable.
func parseSentryTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
