package alerting

import (
	"context"
	"fmt"

	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
	"github.com/devnunu/sentry-crash-report/internal/metrics"
	"go.uber.org/zap"
)

// Engine resolves report severities against the stored alert rules.
// It holds no mutable state: every evaluation lists the enabled rules for
// its category fresh from the repository, so concurrent evaluations for
// different categories need no coordination.
type Engine struct {
	repo repository.AlertRuleRepository
	log  *zap.Logger
}

// NewEngine creates a new alerting engine.
func NewEngine(repo repository.AlertRuleRepository, log *zap.Logger) *Engine {
	return &Engine{repo: repo, log: log}
}

// EvaluateCategory resolves the severity for one report snapshot: it lists
// the enabled rules for the category, evaluates critical rules before
// warning rules, and returns the verdict of the first match (SeverityNormal
// when nothing matches).
func (e *Engine) EvaluateCategory(ctx context.Context, category string, snapshot Snapshot) (Verdict, error) {
	if !ValidCategory(category) {
		return Verdict{}, fmt.Errorf("unknown alert category %q", category)
	}

	rules, err := e.repo.GetEnabledRules(ctx, category)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to load enabled rules for %s: %w", category, err)
	}
	metrics.RuleEvaluations.WithLabelValues(category).Add(float64(len(rules)))

	// Persisted rules referencing keys no longer in the registry indicate
	// registry drift. That is a programming error, not a runtime condition:
	// log it loudly instead of silently defaulting.
	for i := range rules {
		for j := range rules[i].Conditions {
			cond := &rules[i].Conditions[j]
			if _, ok := metricRegistry[cond.Metric]; !ok {
				e.log.Error("alert rule references unknown metric",
					zap.Uint("rule_id", rules[i].ID),
					zap.String("metric", cond.Metric))
			}
			if _, ok := operatorRegistry[cond.Operator]; !ok {
				e.log.Error("alert rule references unknown operator",
					zap.Uint("rule_id", rules[i].ID),
					zap.String("operator", cond.Operator))
			}
		}
	}

	verdict := ResolveSeverity(rules, snapshot)
	if verdict.Severity != SeverityNormal {
		metrics.AlertsFired.WithLabelValues(category, verdict.Severity).Inc()
		e.log.Info("alert rule matched",
			zap.String("category", category),
			zap.String("severity", verdict.Severity),
			zap.Uint("rule_id", verdict.Rule.ID),
			zap.String("rule_name", verdict.Rule.Name))
	}
	return verdict, nil
}

// SeedDefaultRules ensures all built-in default rules exist, checking by
// name so partial seeds from previous runs self-heal on restart.
func SeedDefaultRules(ctx context.Context, repo repository.AlertRuleRepository, log *zap.Logger) error {
	existing, err := repo.ListRules(ctx, repository.AlertRuleFilter{})
	if err != nil {
		return err
	}

	existingNames := make(map[string]struct{}, len(existing))
	for i := range existing {
		existingNames[existing[i].Name] = struct{}{}
	}

	defaults := DefaultRules()
	var created int
	for i := range defaults {
		if _, exists := existingNames[defaults[i].Name]; exists {
			continue
		}
		if err := repo.CreateRule(ctx, &defaults[i]); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.Info("seeded default alert rules", zap.Int("created", created))
	}
	return nil
}
