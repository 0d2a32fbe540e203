package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
	"gorm.io/gorm"
)

// reportRepository implements ReportRepository.
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// CreateReport inserts a new report row.
func (r *reportRepository) CreateReport(ctx context.Context, report *entities.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// UpdateReport saves the full report row.
func (r *reportRepository) UpdateReport(ctx context.Context, report *entities.Report) error {
	if report.ID == 0 {
		return fmt.Errorf("failed to update report: missing report ID")
	}
	if err := r.db.WithContext(ctx).Save(report).Error; err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return nil
}

// GetReport returns a report by primary key.
func (r *reportRepository) GetReport(ctx context.Context, id uint) (*entities.Report, error) {
	var report entities.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report %d: %w", id, err)
	}
	return &report, nil
}

// GetReportByReportID returns a report by its external report ID.
func (r *reportRepository) GetReportByReportID(ctx context.Context, reportID string) (*entities.Report, error) {
	var report entities.Report
	if err := r.db.WithContext(ctx).Where("report_id = ?", reportID).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report %q: %w", reportID, err)
	}
	return &report, nil
}

// ListReports returns reports matching the filter with pagination, newest first.
func (r *reportRepository) ListReports(ctx context.Context, filter ReportFilter) ([]entities.Report, int64, error) {
	var reports []entities.Report
	var total int64

	base := r.db.WithContext(ctx).Model(&entities.Report{})
	if filter.Category != "" {
		base = base.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		base = base.Where("severity = ?", filter.Severity)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	query := base.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, total, nil
}

// SaveNotificationLog records one notification delivery attempt.
func (r *reportRepository) SaveNotificationLog(ctx context.Context, log *entities.NotificationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to save notification log: %w", err)
	}
	return nil
}

// ListNotificationLogs returns delivery records for one report, newest first.
func (r *reportRepository) ListNotificationLogs(ctx context.Context, reportID string) ([]entities.NotificationLog, error) {
	var logs []entities.NotificationLog
	if err := r.db.WithContext(ctx).Where("report_id = ?", reportID).Order("sent_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list notification logs: %w", err)
	}
	return logs, nil
}
