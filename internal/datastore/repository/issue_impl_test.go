package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

func TestIssueRepository_UpsertInsertsThenUpdates(t *testing.T) {
	repo := NewIssueRepository(setupTestDB(t))
	ctx := t.Context()

	issue := &entities.Issue{
		SentryIssueID: "555001",
		Title:         "NullPointerException",
		Level:         "fatal",
		Status:        "unresolved",
		EventCount:    10,
		UserCount:     3,
		Release:       "2.4.0",
	}
	require.NoError(t, repo.UpsertIssue(ctx, issue))
	firstID := issue.ID
	require.NotZero(t, firstID)

	refreshed := &entities.Issue{
		SentryIssueID: "555001",
		Title:         "NullPointerException",
		Level:         "fatal",
		Status:        "resolved",
		EventCount:    25,
		UserCount:     8,
		Release:       "2.4.0",
	}
	require.NoError(t, repo.UpsertIssue(ctx, refreshed))
	assert.Equal(t, firstID, refreshed.ID, "upsert reuses the existing row")

	got, err := repo.GetIssueBySentryID(ctx, "555001")
	require.NoError(t, err)
	assert.Equal(t, 25, got.EventCount)
	assert.Equal(t, "resolved", got.Status)

	_, total, err := repo.ListIssues(ctx, IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestIssueRepository_GetNotFound(t *testing.T) {
	repo := NewIssueRepository(setupTestDB(t))

	_, err := repo.GetIssueBySentryID(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestIssueRepository_ListFilters(t *testing.T) {
	repo := NewIssueRepository(setupTestDB(t))
	ctx := t.Context()

	base := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	seed := []entities.Issue{
		{SentryIssueID: "1", Level: "fatal", Status: "unresolved", Release: "2.4.0", LastSeenAt: base.Add(2 * time.Hour)},
		{SentryIssueID: "2", Level: "error", Status: "unresolved", Release: "2.4.0", LastSeenAt: base.Add(time.Hour)},
		{SentryIssueID: "3", Level: "error", Status: "resolved", Release: "2.3.0", LastSeenAt: base},
	}
	for i := range seed {
		require.NoError(t, repo.UpsertIssue(ctx, &seed[i]))
	}

	fatals, total, err := repo.ListIssues(ctx, IssueFilter{Level: "fatal"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, fatals, 1)
	assert.Equal(t, "1", fatals[0].SentryIssueID)

	byRelease, total, err := repo.ListIssues(ctx, IssueFilter{Release: "2.4.0"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "1", byRelease[0].SentryIssueID, "most recently seen first")

	unresolved, _, err := repo.ListIssues(ctx, IssueFilter{Status: "unresolved", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, unresolved, 1)
}
