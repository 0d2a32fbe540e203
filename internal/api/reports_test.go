package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

func TestRunReport(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/reports/run", `{"category":"daily"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rpt entities.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rpt))
	assert.Equal(t, entities.ReportStatusDone, rpt.Status)
	assert.Equal(t, alerting.CategoryDaily, rpt.Category)
	assert.Equal(t, alerting.SeverityNormal, rpt.Severity)
	assert.NotEmpty(t, rpt.ReportID)
	assert.NotEmpty(t, rpt.Snapshot)
}

func TestRunReport_BadRequests(t *testing.T) {
	e, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		doJSON(e, http.MethodPost, "/api/v1/reports/run", `{"category":"hourly"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		doJSON(e, http.MethodPost, "/api/v1/reports/run", `{"category":"version-monitor"}`).Code)
}

func TestListAndGetReports(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/reports/run", `{"category":"daily"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var rpt entities.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rpt))

	rec = doJSON(e, http.MethodGet, "/api/v1/reports?category=daily", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Reports []entities.Report `json:"reports"`
		Total   int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)

	rec = doJSON(e, http.MethodGet, "/api/v1/reports/"+rpt.ReportID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound,
		doJSON(e, http.MethodGet, "/api/v1/reports/no-such-report", "").Code)
}

func TestListReportNotifications_Empty(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/reports/some-id/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Zero(t, got.Count)
}

func TestSentryWebhook(t *testing.T) {
	e, _ := newTestServer(t)

	payload := `{
		"action": "created",
		"data": {"issue": {
			"id": "555001",
			"title": "NullPointerException in CheckoutFlow",
			"level": "fatal",
			"status": "unresolved",
			"count": "42",
			"userCount": 17,
			"permalink": "https://sentry.example.com/issues/555001/",
			"firstSeen": "2026-08-29T10:00:00Z",
			"lastSeen": "2026-08-30T08:00:00Z",
			"isRegression": true,
			"release": "2.4.0"
		}}
	}`
	rec := doJSON(e, http.MethodPost, "/api/v1/webhook/sentry", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Status    string `json:"status"`
		Important bool   `json:"important"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Important, "fatal regression with high counts is important")

	rec = doJSON(e, http.MethodGet, "/api/v1/issues?level=fatal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Issues []entities.Issue `json:"issues"`
		Total  int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, "555001", list.Issues[0].SentryIssueID)
	assert.Equal(t, 42, list.Issues[0].EventCount)
	assert.True(t, list.Issues[0].IsRegression)
}

func TestSentryWebhook_UpsertsExisting(t *testing.T) {
	e, _ := newTestServer(t)

	payload := `{"action":"created","data":{"issue":{"id":"777","title":"crash","level":"error","count":"1","userCount":1}}}`
	require.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/api/v1/webhook/sentry", payload).Code)

	updated := `{"action":"unresolved","data":{"issue":{"id":"777","title":"crash","level":"error","count":"9","userCount":4}}}`
	require.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/api/v1/webhook/sentry", updated).Code)

	rec := doJSON(e, http.MethodGet, "/api/v1/issues", "")
	var list struct {
		Issues []entities.Issue `json:"issues"`
		Total  int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, int64(1), list.Total, "same Sentry issue never duplicates")
	assert.Equal(t, 9, list.Issues[0].EventCount)
}

func TestSentryWebhook_Invalid(t *testing.T) {
	e, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		doJSON(e, http.MethodPost, "/api/v1/webhook/sentry", `{"action":"created","data":{"issue":{}}}`).Code)
}

func TestSentryWebhook_UnhandledAction(t *testing.T) {
	e, _ := newTestServer(t)

	payload := `{"action":"installed","data":{"issue":{"id":"888","title":"noise","level":"error"}}}`
	rec := doJSON(e, http.MethodPost, "/api/v1/webhook/sentry", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "skipped", resp.Status)

	rec = doJSON(e, http.MethodGet, "/api/v1/issues", "")
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Zero(t, list.Total, "unhandled actions never store issues")
}

func TestMonitorLifecycle(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/monitors", `{"release":"2.4.0"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusConflict,
		doJSON(e, http.MethodPost, "/api/v1/monitors", `{"release":"2.4.0"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		doJSON(e, http.MethodPost, "/api/v1/monitors", `{}`).Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/monitors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusNoContent,
		doJSON(e, http.MethodDelete, "/api/v1/monitors/2.4.0", "").Code)
	assert.Equal(t, http.StatusNotFound,
		doJSON(e, http.MethodDelete, "/api/v1/monitors/2.4.0", "").Code)
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, doJSON(e, http.MethodGet, "/healthz", "").Code)
}
