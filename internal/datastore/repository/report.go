package repository

import (
	"context"
	"errors"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// ErrReportNotFound is returned when a report lookup matches nothing.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository persists generated crash reports and notification logs.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *entities.Report) error
	UpdateReport(ctx context.Context, report *entities.Report) error
	GetReport(ctx context.Context, id uint) (*entities.Report, error)
	GetReportByReportID(ctx context.Context, reportID string) (*entities.Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]entities.Report, int64, error)

	SaveNotificationLog(ctx context.Context, log *entities.NotificationLog) error
	ListNotificationLogs(ctx context.Context, reportID string) ([]entities.NotificationLog, error)
}

// ReportFilter controls report listing queries.
type ReportFilter struct {
	Category string
	Status   string
	Severity string
	Limit    int
	Offset   int
}
