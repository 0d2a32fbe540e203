// Package sentry is a read-only client for the Sentry REST API: issue
// listing and release-health session stats for the report pipelines.
package sentry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// maxIssuePages bounds cursor pagination per listing call.
	maxIssuePages = 10
	// issuePageSize is the Sentry API page limit.
	issuePageSize = 100
)

// Issue is one Sentry issue as returned by the project issues endpoint.
type Issue struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Level     string `json:"level"`
	Status    string `json:"status"`
	Count     string `json:"count"` // Sentry returns event counts as strings
	UserCount int    `json:"userCount"`
	Permalink string `json:"permalink"`
	FirstSeen string `json:"firstSeen"`
	LastSeen  string `json:"lastSeen"`
}

// IssueQuery selects the time window and optional release for issue listing.
// NewOnly restricts the listing to issues first seen inside the window;
// otherwise any issue with events in the window is returned.
type IssueQuery struct {
	Start   time.Time
	End     time.Time
	Release string
	NewOnly bool
}

// Client talks to the Sentry API for one org/project.
type Client struct {
	baseURL     string
	token       string
	org         string
	project     string
	projectID   string
	environment string
	httpClient  *http.Client
	cache       *gocache.Cache
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Token       string
	Org         string
	Project     string
	ProjectID   string
	Environment string
	Timeout     time.Duration
	CacheTTL    time.Duration
}

// NewClient creates a Sentry API client. Session stats responses are cached
// for CacheTTL since crash-free rates are queried by several pipelines for
// the same windows.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		baseURL:     opts.BaseURL,
		token:       opts.Token,
		org:         opts.Org,
		project:     opts.Project,
		projectID:   opts.ProjectID,
		environment: opts.Environment,
		httpClient:  &http.Client{Timeout: timeout},
		cache:       gocache.New(ttl, 2*ttl),
	}
}

// nextCursorRe extracts the pagination cursor from a Sentry Link header.
var nextCursorRe = regexp.MustCompile(`cursor="([^"]+)"`)

// ListIssues returns issues matching the query window, following
// pagination up to maxIssuePages.
func (c *Client) ListIssues(ctx context.Context, q IssueQuery) ([]Issue, error) {
	query := "environment:" + c.environment
	if q.Release != "" {
		query += " release:" + q.Release
	}
	if q.NewOnly {
		query += fmt.Sprintf(" firstSeen:>=%s firstSeen:<%s",
			q.Start.UTC().Format(time.RFC3339), q.End.UTC().Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("%s/projects/%s/%s/issues/", c.baseURL, c.org, c.project)

	var all []Issue
	cursor := ""
	for page := 0; page < maxIssuePages; page++ {
		params := url.Values{}
		params.Set("query", query)
		params.Set("limit", fmt.Sprintf("%d", issuePageSize))
		params.Set("sort", "date")
		params.Set("environment", c.environment)
		params.Set("start", q.Start.UTC().Format(time.RFC3339))
		params.Set("end", q.End.UTC().Format(time.RFC3339))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		body, header, err := c.get(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}

		var pageIssues []Issue
		if err := json.Unmarshal(body, &pageIssues); err != nil {
			return nil, fmt.Errorf("failed to decode issues response: %w", err)
		}
		if len(pageIssues) == 0 {
			break
		}
		all = append(all, pageIssues...)

		cursor = nextCursor(header.Get("Link"))
		if cursor == "" {
			break
		}
	}
	return all, nil
}

// nextCursor parses the rel="next" cursor out of a Link header, returning
// "" when there is no next page.
func nextCursor(link string) string {
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		if strings.Contains(part, `results="false"`) {
			return ""
		}
		if m := nextCursorRe.FindStringSubmatch(part); m != nil {
			return m[1]
		}
	}
	return ""
}

// CrashFreeRate returns the session crash-free rate for the window as
// percentage points (0-100). ok is false when Sentry has no session data
// for the window; callers should degrade to reporting without the rate.
func (c *Client) CrashFreeRate(ctx context.Context, start, end time.Time) (rate float64, ok bool, err error) {
	cacheKey := fmt.Sprintf("cfr:%d:%d", start.Unix(), end.Unix())
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(float64), true, nil
	}

	endpoint := fmt.Sprintf("%s/organizations/%s/sessions/", c.baseURL, c.org)
	params := url.Values{}
	params.Set("field", "crash_free_rate(session)")
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	params.Set("project", c.projectID)
	params.Set("environment", c.environment)
	params.Set("totals", "1")

	body, _, err := c.get(ctx, endpoint, params)
	if err != nil {
		return 0, false, err
	}

	// The sessions payload nests totals per group; parse loosely since the
	// shape varies with the requested fields.
	root, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return 0, false, fmt.Errorf("failed to decode sessions response: %w", err)
	}
	groups, err := root.GetObjectArray("groups")
	if err != nil {
		return 0, false, nil
	}
	for _, group := range groups {
		value, err := group.GetFloat64("totals", "crash_free_rate(session)")
		if err != nil {
			continue
		}
		// Sentry reports the rate as a 0-1 fraction; normalize to
		// percentage points.
		if value <= 1 {
			value *= 100
		}
		c.cache.Set(cacheKey, value, gocache.DefaultExpiration)
		return value, true, nil
	}
	return 0, false, nil
}

// get performs an authorized GET and returns the response body and headers.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build sentry request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("sentry request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sentry response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("sentry API returned %d for %s", resp.StatusCode, endpoint)
	}
	return body, resp.Header, nil
}
