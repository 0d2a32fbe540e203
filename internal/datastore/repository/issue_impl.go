package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
	"gorm.io/gorm"
)

// issueRepository implements IssueRepository.
type issueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

// UpsertIssue inserts or refreshes an issue keyed by its Sentry issue ID.
func (r *issueRepository) UpsertIssue(ctx context.Context, issue *entities.Issue) error {
	var existing entities.Issue
	err := r.db.WithContext(ctx).Where("sentry_issue_id = ?", issue.SentryIssueID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up issue %q: %w", issue.SentryIssueID, err)
	}

	issue.ID = existing.ID
	issue.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(issue).Error; err != nil {
		return fmt.Errorf("failed to update issue %q: %w", issue.SentryIssueID, err)
	}
	return nil
}

// GetIssueBySentryID returns the stored issue for a Sentry issue ID.
func (r *issueRepository) GetIssueBySentryID(ctx context.Context, sentryIssueID string) (*entities.Issue, error) {
	var issue entities.Issue
	if err := r.db.WithContext(ctx).Where("sentry_issue_id = ?", sentryIssueID).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue %q: %w", sentryIssueID, err)
	}
	return &issue, nil
}

// ListIssues returns issues matching the filter, most recently seen first.
func (r *issueRepository) ListIssues(ctx context.Context, filter IssueFilter) ([]entities.Issue, int64, error) {
	var issues []entities.Issue
	var total int64

	base := r.db.WithContext(ctx).Model(&entities.Issue{})
	if filter.Level != "" {
		base = base.Where("level = ?", filter.Level)
	}
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}
	if filter.Release != "" {
		// release is a reserved word in MySQL.
		base = base.Where("`release` = ?", filter.Release)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	query := base.Order("last_seen_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&issues).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, total, nil
}
