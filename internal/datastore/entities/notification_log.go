package entities

import "time"

// NotificationLog records each Slack notification sent for a report or issue.
type NotificationLog struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ReportID string    `gorm:"size:64;default:'';index" json:"report_id"`
	IssueID  uint      `gorm:"default:0;index" json:"issue_id,omitempty"`
	Severity string    `gorm:"size:20;default:''" json:"severity"`
	Channel  string    `gorm:"size:50;not null" json:"channel"` // slack
	Body     string    `gorm:"type:text;default:''" json:"body"`
	SentAt   time.Time `gorm:"not null;index" json:"sent_at"`
	Success  bool      `gorm:"not null" json:"success"`
}

// TableName returns the table name for GORM.
func (NotificationLog) TableName() string {
	return "notification_logs"
}
