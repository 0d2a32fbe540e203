package sentry

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(Options{
		BaseURL:     "https://sentry.example.com/api/0",
		Token:       "test-token",
		Org:         "acme",
		Project:     "mobile-app",
		ProjectID:   "42",
		Environment: "Production",
		Timeout:     5 * time.Second,
		CacheTTL:    time.Minute,
	})
}

func activateMock(t *testing.T, c *Client) {
	t.Helper()
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
}

func TestListIssues_SinglePage(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/projects/acme/mobile-app/issues/",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
			assert.Contains(t, req.URL.Query().Get("query"), "environment:Production")
			assert.NotEmpty(t, req.URL.Query().Get("start"))
			assert.NotEmpty(t, req.URL.Query().Get("end"))
			return httpmock.NewJsonResponse(http.StatusOK, []map[string]any{
				{"id": "1", "title": "NullPointerException", "level": "error", "count": "120", "userCount": 30},
				{"id": "2", "title": "OOM crash", "level": "fatal", "count": "15", "userCount": 7},
			})
		})

	issues, err := c.ListIssues(t.Context(), IssueQuery{
		Start: time.Now().Add(-24 * time.Hour),
		End:   time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "NullPointerException", issues[0].Title)
	assert.Equal(t, "fatal", issues[1].Level)
	assert.Equal(t, 7, issues[1].UserCount)
}

func TestListIssues_FollowsPaginationCursor(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/projects/acme/mobile-app/issues/",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				assert.Empty(t, req.URL.Query().Get("cursor"))
				resp, err := httpmock.NewJsonResponse(http.StatusOK, []map[string]any{
					{"id": "1", "title": "first page", "level": "error", "count": "1"},
				})
				if err != nil {
					return nil, err
				}
				resp.Header.Set("Link",
					`<https://sentry.example.com/prev>; rel="previous"; results="false"; cursor="0:0:1", `+
						`<https://sentry.example.com/next>; rel="next"; results="true"; cursor="100:1:0"`)
				return resp, nil
			}
			assert.Equal(t, "100:1:0", req.URL.Query().Get("cursor"))
			return httpmock.NewJsonResponse(http.StatusOK, []map[string]any{
				{"id": "2", "title": "second page", "level": "fatal", "count": "2"},
			})
		})

	issues, err := c.ListIssues(t.Context(), IssueQuery{Start: time.Now().Add(-time.Hour), End: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, issues, 2)
	assert.Equal(t, "second page", issues[1].Title)
}

func TestListIssues_ReleaseFilter(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/projects/acme/mobile-app/issues/",
		func(req *http.Request) (*http.Response, error) {
			assert.Contains(t, req.URL.Query().Get("query"), "release:1.2.3")
			return httpmock.NewJsonResponse(http.StatusOK, []map[string]any{})
		})

	_, err := c.ListIssues(t.Context(), IssueQuery{
		Start:   time.Now().Add(-time.Hour),
		End:     time.Now(),
		Release: "1.2.3",
	})
	require.NoError(t, err)
}

func TestListIssues_NewOnlyFiltersFirstSeen(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/projects/acme/mobile-app/issues/",
		func(req *http.Request) (*http.Response, error) {
			assert.Contains(t, req.URL.Query().Get("query"), "firstSeen:>=")
			return httpmock.NewJsonResponse(http.StatusOK, []map[string]any{})
		})

	_, err := c.ListIssues(t.Context(), IssueQuery{
		Start:   time.Now().Add(-time.Hour),
		End:     time.Now(),
		NewOnly: true,
	})
	require.NoError(t, err)
}

func TestListIssues_APIError(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/projects/acme/mobile-app/issues/",
		httpmock.NewStringResponder(http.StatusForbidden, `{"detail":"no access"}`))

	_, err := c.ListIssues(t.Context(), IssueQuery{Start: time.Now().Add(-time.Hour), End: time.Now()})
	assert.Error(t, err)
}

func TestCrashFreeRate(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/organizations/acme/sessions/",
		httpmock.NewStringResponder(http.StatusOK,
			`{"groups":[{"by":{},"totals":{"crash_free_rate(session)":0.9987}}]}`))

	rate, ok, err := c.CrashFreeRate(t.Context(), time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 99.87, rate, 0.0001, "0-1 fraction must be normalized to percentage points")
}

func TestCrashFreeRate_CachesWindow(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/organizations/acme/sessions/",
		func(*http.Request) (*http.Response, error) {
			calls++
			return httpmock.NewStringResponse(http.StatusOK,
				`{"groups":[{"totals":{"crash_free_rate(session)":0.99}}]}`), nil
		})

	start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	for range 3 {
		_, ok, err := c.CrashFreeRate(t.Context(), start, end)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, 1, calls, "repeated queries for the same window must be served from cache")
}

func TestCrashFreeRate_NoSessionData(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/organizations/acme/sessions/",
		httpmock.NewStringResponder(http.StatusOK, `{"groups":[]}`))

	_, ok, err := c.CrashFreeRate(t.Context(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextCursor(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"empty header", "", ""},
		{"no next rel", `<u>; rel="previous"; results="true"; cursor="0:0:1"`, ""},
		{"next with results", `<u>; rel="next"; results="true"; cursor="100:1:0"`, "100:1:0"},
		{"next without results", `<u>; rel="next"; results="false"; cursor="100:1:0"`, ""},
		{
			"both rels",
			`<u>; rel="previous"; results="false"; cursor="0:0:1", <u>; rel="next"; results="true"; cursor="200:2:0"`,
			"200:2:0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextCursor(tt.link))
		})
	}
}

func TestListIssues_MaxPagesBound(t *testing.T) {
	c := newTestClient()
	activateMock(t, c)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet,
		"https://sentry.example.com/api/0/projects/acme/mobile-app/issues/",
		func(*http.Request) (*http.Response, error) {
			calls++
			resp, err := httpmock.NewJsonResponse(http.StatusOK, []map[string]any{
				{"id": fmt.Sprintf("%d", calls), "title": "looping", "level": "error", "count": "1"},
			})
			if err != nil {
				return nil, err
			}
			resp.Header.Set("Link", `<u>; rel="next"; results="true"; cursor="`+fmt.Sprintf("%d", calls)+`"`)
			return resp, nil
		})

	issues, err := c.ListIssues(t.Context(), IssueQuery{Start: time.Now().Add(-time.Hour), End: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, maxIssuePages, calls)
	assert.Len(t, issues, maxIssuePages)
}
