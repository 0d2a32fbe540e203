package repository

import (
	"context"
	"errors"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// ErrIssueNotFound is returned when an issue lookup matches nothing.
var ErrIssueNotFound = errors.New("issue not found")

// IssueRepository persists Sentry issues received via webhook or polling.
type IssueRepository interface {
	// UpsertIssue inserts the issue or, when an issue with the same Sentry
	// issue ID exists, updates its mutable fields.
	UpsertIssue(ctx context.Context, issue *entities.Issue) error
	GetIssueBySentryID(ctx context.Context, sentryIssueID string) (*entities.Issue, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]entities.Issue, int64, error)
}

// IssueFilter controls issue listing queries.
type IssueFilter struct {
	Level   string
	Status  string
	Release string
	Limit   int
	Offset  int
}
