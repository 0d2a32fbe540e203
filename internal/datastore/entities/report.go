package entities

import "time"

// Report statuses track the generation pipeline for one report execution.
const (
	ReportStatusQueued  = "queued"
	ReportStatusRunning = "running"
	ReportStatusDone    = "done"
	ReportStatusError   = "error"
)

// Report stores one generated crash report: the aggregated metric snapshot,
// the severity verdict from rule evaluation, and the optional AI summary.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReportID   string    `gorm:"size:64;uniqueIndex;not null" json:"report_id"`
	Category   string    `gorm:"size:50;not null;index" json:"category"`
	FromDate   string    `gorm:"size:20;not null" json:"from_date"` // YYYY-MM-DD
	ToDate     string    `gorm:"size:20;not null" json:"to_date"`   // YYYY-MM-DD
	Release    string    `gorm:"size:255;default:''" json:"release,omitempty"`
	Status     string    `gorm:"size:20;not null;default:'queued';index" json:"status"`
	Severity   string    `gorm:"size:20;default:''" json:"severity"`
	RuleID     uint      `gorm:"default:0" json:"rule_id,omitempty"`
	RuleName   string    `gorm:"size:255;default:''" json:"rule_name,omitempty"`
	Snapshot   string    `gorm:"type:text;default:''" json:"snapshot"`  // metric key → value JSON
	Breakdown  string    `gorm:"type:text;default:''" json:"breakdown"` // per-condition results JSON
	Title      string    `gorm:"type:text;default:''" json:"title"`
	Summary    string    `gorm:"type:text;default:''" json:"summary"`
	ErrorText  string    `gorm:"type:text;default:''" json:"error_text,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// TableName returns the table name for GORM.
func (Report) TableName() string {
	return "reports"
}
