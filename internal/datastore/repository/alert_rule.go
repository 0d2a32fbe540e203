package repository

import (
	"context"
	"errors"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// ErrAlertRuleNotFound is returned when a rule lookup matches nothing.
var ErrAlertRuleNotFound = errors.New("alert rule not found")

// AlertRuleRepository handles alert rule CRUD. The evaluation engine reads
// the latest enabled rules per category at evaluation time; nothing is
// cached across report evaluations.
type AlertRuleRepository interface {
	ListRules(ctx context.Context, filter AlertRuleFilter) ([]entities.AlertRule, error)
	GetRule(ctx context.Context, id uint) (*entities.AlertRule, error)
	CreateRule(ctx context.Context, rule *entities.AlertRule) error
	UpdateRule(ctx context.Context, rule *entities.AlertRule) error
	DeleteRule(ctx context.Context, id uint) error
	ToggleRule(ctx context.Context, id uint, enabled bool) error

	// GetEnabledRules returns the enabled rules for one category, conditions
	// preloaded in stored position order.
	GetEnabledRules(ctx context.Context, category string) ([]entities.AlertRule, error)

	CountRulesByName(ctx context.Context, name string) (int64, error)
}

// AlertRuleFilter controls rule listing queries.
type AlertRuleFilter struct {
	Category string
	Severity string
	Enabled  *bool
}
