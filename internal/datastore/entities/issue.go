package entities

import "time"

// Issue mirrors a Sentry issue received via webhook or API polling.
type Issue struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SentryIssueID string    `gorm:"size:255;uniqueIndex;not null" json:"sentry_issue_id"`
	Title         string    `gorm:"type:text;default:''" json:"title"`
	Level         string    `gorm:"size:50;default:''" json:"level"` // error, fatal, warning, info
	Status        string    `gorm:"size:50;default:'unresolved'" json:"status"`
	EventCount    int       `gorm:"default:0" json:"event_count"`
	UserCount     int       `gorm:"default:0" json:"user_count"`
	Release       string    `gorm:"size:255;default:''" json:"release"`
	Environment   string    `gorm:"size:100;default:''" json:"environment"`
	IsRegression  bool      `gorm:"default:false" json:"is_regression"`
	SentryURL     string    `gorm:"type:text;default:''" json:"sentry_url"`
	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Issue) TableName() string {
	return "issues"
}
