package alerting

import "sort"

// MetricInfo describes a metric available for condition building.
type MetricInfo struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Unit         string   `json:"unit"`
	ApplicableTo []string `json:"applicable_to"`
}

// OperatorInfo describes a comparison operator and its evaluation function.
type OperatorInfo struct {
	Key      string                                 `json:"key"`
	Label    string                                 `json:"label"`
	Symbol   string                                 `json:"symbol"`
	Evaluate func(observed, threshold float64) bool `json:"-"`
}

// metricRegistry is the compiled-in catalog of alertable metrics.
// Adding a metric is a single entry here; it is not user-editable.
var metricRegistry = map[string]MetricInfo{
	MetricTotalCrashes: {
		Key:          MetricTotalCrashes,
		Label:        "Total crash events",
		Unit:         UnitCount,
		ApplicableTo: []string{CategoryDaily, CategoryWeekly, CategoryVersionMonitor},
	},
	MetricTotalIssues: {
		Key:          MetricTotalIssues,
		Label:        "Crash issues",
		Unit:         UnitCount,
		ApplicableTo: []string{CategoryDaily, CategoryWeekly, CategoryVersionMonitor},
	},
	MetricAffectedUsers: {
		Key:          MetricAffectedUsers,
		Label:        "Affected users",
		Unit:         UnitCount,
		ApplicableTo: []string{CategoryDaily, CategoryWeekly, CategoryVersionMonitor},
	},
	MetricNewIssueCount: {
		Key:          MetricNewIssueCount,
		Label:        "New issues",
		Unit:         UnitCount,
		ApplicableTo: []string{CategoryDaily, CategoryWeekly, CategoryVersionMonitor},
	},
	MetricCrashFreeRateDrop: {
		Key:          MetricCrashFreeRateDrop,
		Label:        "Crash-free rate drop",
		Unit:         UnitPercent,
		ApplicableTo: []string{CategoryDaily, CategoryWeekly},
	},
	MetricSurgeMultiplier: {
		Key:          MetricSurgeMultiplier,
		Label:        "Crash surge over baseline",
		Unit:         UnitPercent,
		ApplicableTo: []string{CategoryWeekly, CategoryVersionMonitor},
	},
}

// operatorRegistry maps operator keys to display metadata and predicates.
// Every predicate is total over all real numbers: crash_free_rate_drop and
// surge_multiplier can be negative (an improvement), and no operator panics.
// Equality is exact numeric equality with no epsilon; callers supplying
// percentage deltas should pre-round to the precision they intend to match on.
var operatorRegistry = map[string]OperatorInfo{
	OperatorGreaterOrEqual: {
		Key:      OperatorGreaterOrEqual,
		Label:    "greater or equal",
		Symbol:   ">=",
		Evaluate: func(observed, threshold float64) bool { return observed >= threshold },
	},
	OperatorGreaterThan: {
		Key:      OperatorGreaterThan,
		Label:    "greater than",
		Symbol:   ">",
		Evaluate: func(observed, threshold float64) bool { return observed > threshold },
	},
	OperatorLessOrEqual: {
		Key:      OperatorLessOrEqual,
		Label:    "less or equal",
		Symbol:   "<=",
		Evaluate: func(observed, threshold float64) bool { return observed <= threshold },
	},
	OperatorLessThan: {
		Key:      OperatorLessThan,
		Label:    "less than",
		Symbol:   "<",
		Evaluate: func(observed, threshold float64) bool { return observed < threshold },
	},
	OperatorEqual: {
		Key:      OperatorEqual,
		Label:    "equal to",
		Symbol:   "=",
		Evaluate: func(observed, threshold float64) bool { return observed == threshold },
	},
}

// MetricByKey looks up a metric registry entry.
func MetricByKey(key string) (MetricInfo, bool) {
	m, ok := metricRegistry[key]
	return m, ok
}

// OperatorByKey looks up an operator registry entry.
func OperatorByKey(key string) (OperatorInfo, bool) {
	o, ok := operatorRegistry[key]
	return o, ok
}

// MetricApplicable reports whether the metric exists and is valid for the
// given category.
func MetricApplicable(key, category string) bool {
	m, ok := metricRegistry[key]
	if !ok {
		return false
	}
	for _, c := range m.ApplicableTo {
		if c == category {
			return true
		}
	}
	return false
}

// SnapshotKeys returns the snapshot's metric keys in registry display
// order. Keys absent from the registry are appended sorted so drifted
// snapshots still render completely.
func SnapshotKeys(snapshot Snapshot) []string {
	keys := make([]string, 0, len(snapshot))
	seen := make(map[string]bool, len(snapshot))
	for _, key := range metricOrder {
		if _, ok := snapshot[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var extra []string
	for key := range snapshot {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// CategoryLabel returns the display label for a category key, or the key
// itself when unknown.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// Schema describes the full catalog of categories, metrics, and operators
// for the rule editor UI.
type Schema struct {
	Categories []CategorySchema `json:"categories"`
	Operators  []OperatorInfo   `json:"operators"`
}

// CategorySchema describes one report category and its applicable metrics.
type CategorySchema struct {
	Name    string       `json:"name"`
	Label   string       `json:"label"`
	Metrics []MetricInfo `json:"metrics"`
}

// categoryLabels maps category keys to display labels.
var categoryLabels = map[string]string{
	CategoryDaily:          "Daily Report",
	CategoryWeekly:         "Weekly Report",
	CategoryVersionMonitor: "Version Monitor",
}

// metricOrder fixes the display order of metrics within a category.
var metricOrder = []string{
	MetricTotalCrashes,
	MetricTotalIssues,
	MetricAffectedUsers,
	MetricNewIssueCount,
	MetricCrashFreeRateDrop,
	MetricSurgeMultiplier,
}

// operatorOrder fixes the display order of operators.
var operatorOrder = []string{
	OperatorGreaterOrEqual,
	OperatorGreaterThan,
	OperatorLessOrEqual,
	OperatorLessThan,
	OperatorEqual,
}

// GetSchema returns the full alerting schema for the UI.
func GetSchema() Schema {
	schema := Schema{}
	for _, cat := range Categories() {
		cs := CategorySchema{Name: cat, Label: categoryLabels[cat]}
		for _, key := range metricOrder {
			if MetricApplicable(key, cat) {
				cs.Metrics = append(cs.Metrics, metricRegistry[key])
			}
		}
		schema.Categories = append(schema.Categories, cs)
	}
	for _, key := range operatorOrder {
		schema.Operators = append(schema.Operators, operatorRegistry[key])
	}
	return schema
}
