package entities

import "time"

// AlertRule defines a user-configurable severity rule for one report category.
// A rule matches when its threshold conditions, combined with AND or OR logic,
// hold against a report's metric snapshot.
type AlertRule struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	Name              string           `gorm:"size:255;not null" json:"name"`
	Category          string           `gorm:"size:50;not null;index" json:"category"`
	Severity          string           `gorm:"size:20;not null;index" json:"severity"`
	Enabled           bool             `gorm:"not null;index" json:"enabled"`
	ConditionOperator string           `gorm:"size:10;not null;default:'AND'" json:"condition_operator"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	Conditions        []AlertCondition `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"conditions"`
}

// TableName returns the table name for GORM.
func (AlertRule) TableName() string {
	return "alert_rules"
}
