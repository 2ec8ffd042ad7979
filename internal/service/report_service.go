package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
	"github.com/resolveit/complaints-api/pkg/export"
)

const dashboardCacheKey = "reports:dashboard"

type reportRepository interface {
	CountByColumn(ctx context.Context, column string, filter models.ReportFilter) ([]models.StatsPoint, error)
	Totals(ctx context.Context, filter models.ReportFilter) (total, open, resolved, escalated int, err error)
	OfficerPerformance(ctx context.Context, filter models.ReportFilter) ([]models.OfficerStatsPoint, error)
	DailyTrend(ctx context.Context, filter models.ReportFilter) ([]models.TrendPoint, error)
}

type reportComplaintStore interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
}

// ReportService aggregates dashboard statistics and renders exports. The
// unfiltered dashboard payload is cached briefly in Redis because it backs
// the landing page.
type ReportService struct {
	repo       reportRepository
	complaints reportComplaintStore
	cache      statsCache
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	cacheTTL   time.Duration
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(
	repo reportRepository,
	complaints reportComplaintStore,
	cache statsCache,
	cacheTTL time.Duration,
	metrics *MetricsService,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &ReportService{
		repo:       repo,
		complaints: complaints,
		cache:      cache,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		cacheTTL:   cacheTTL,
		metrics:    metrics,
		logger:     logger,
	}
}

// Dashboard builds the aggregate dashboard payload.
func (s *ReportService) Dashboard(ctx context.Context, filter models.ReportFilter) (*models.DashboardStats, error) {
	cacheable := filter == (models.ReportFilter{})
	if cacheable && s.cache != nil {
		var cached models.DashboardStats
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}

	total, open, resolved, escalated, err := s.repo.Totals(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute totals")
	}
	byStatus, err := s.repo.CountByColumn(ctx, "status", filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute status distribution")
	}
	byCategory, err := s.repo.CountByColumn(ctx, "category", filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute category distribution")
	}
	byUrgency, err := s.repo.CountByColumn(ctx, "urgency", filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute urgency distribution")
	}
	officers, err := s.repo.OfficerPerformance(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute officer performance")
	}
	trend, err := s.repo.DailyTrend(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute trend")
	}

	stats := &models.DashboardStats{
		TotalComplaints:    total,
		OpenComplaints:     open,
		ResolvedComplaints: resolved,
		EscalatedCount:     escalated,
		ByStatus:           byStatus,
		ByCategory:         byCategory,
		ByUrgency:          byUrgency,
		OfficerPerformance: officers,
		Trend:              trend,
		GeneratedAt:        time.Now().UTC(),
	}

	if cacheable && s.cache != nil {
		_ = s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL)
	}
	return stats, nil
}

// ExportCSV renders the filtered complaint list as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, filter models.ComplaintFilter) ([]byte, error) {
	dataset, err := s.complaintDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
	}
	return payload, nil
}

// ExportPDF renders the filtered complaint list as a tabular PDF.
func (s *ReportService) ExportPDF(ctx context.Context, filter models.ComplaintFilter) ([]byte, error) {
	dataset, err := s.complaintDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*dataset, "Complaints Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
	}
	return payload, nil
}

func (s *ReportService) complaintDataset(ctx context.Context, filter models.ComplaintFilter) (*export.Dataset, error) {
	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints for export")
	}

	dataset := &export.Dataset{
		Headers: []string{"ID", "Category", "Urgency", "Status", "Escalated", "Submitted", "Deadline", "Version"},
		Rows:    make([]map[string]string, 0, len(complaints)),
	}
	for _, c := range complaints {
		deadline := ""
		if c.Deadline != nil {
			deadline = c.Deadline.Format("2006-01-02 15:04")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":        c.ID,
			"Category":  string(c.Category),
			"Urgency":   string(c.Urgency),
			"Status":    string(c.Status),
			"Escalated": fmt.Sprintf("%t", c.IsEscalated),
			"Submitted": c.CreatedAt.Format("2006-01-02 15:04"),
			"Deadline":  deadline,
			"Version":   strconv.FormatInt(c.Version, 10),
		})
	}
	return dataset, nil
}

// InvalidateDashboard drops the cached dashboard payload.
func (s *ReportService) InvalidateDashboard(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, dashboardCacheKey)
	}
}
