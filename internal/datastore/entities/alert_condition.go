package entities

// AlertCondition defines a single metric/operator/threshold comparison
// within an alert rule. Position mirrors the slice index and is recomputed
// on every save; it fixes display and description order only.
type AlertCondition struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	RuleID    uint    `gorm:"not null;index" json:"rule_id"`
	Metric    string  `gorm:"size:100;not null" json:"metric"`
	Operator  string  `gorm:"size:20;not null" json:"operator"`
	Threshold float64 `gorm:"not null" json:"threshold"`
	Position  int     `gorm:"default:0" json:"position"`
}

// TableName returns the table name for GORM.
func (AlertCondition) TableName() string {
	return "alert_conditions"
}
