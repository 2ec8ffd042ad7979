package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/resolveit/complaints-api/internal/models"
)

// ReportRepository runs aggregate queries for dashboard statistics.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type bucketRow struct {
	Label string `db:"label"`
	Count int    `db:"count"`
}

// CountByColumn groups complaints matching the filter by the given column.
// The column name comes from a fixed caller-side set, never from user input.
func (r *ReportRepository) CountByColumn(ctx context.Context, column string, filter models.ReportFilter) ([]models.StatsPoint, error) {
	where, args := buildReportWhere(filter)
	query := fmt.Sprintf(`SELECT %s AS label, COUNT(*) AS count FROM complaints %s GROUP BY %s ORDER BY count DESC`, column, where, column)

	var rows []bucketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count complaints by %s: %w", column, err)
	}

	total := 0
	for _, row := range rows {
		total += row.Count
	}
	points := make([]models.StatsPoint, len(rows))
	for i, row := range rows {
		pct := 0.0
		if total > 0 {
			pct = float64(row.Count) * 100 / float64(total)
		}
		points[i] = models.StatsPoint{Label: row.Label, Count: row.Count, Percentage: pct}
	}
	return points, nil
}

// Totals returns overall, open, resolved and escalated complaint counts.
func (r *ReportRepository) Totals(ctx context.Context, filter models.ReportFilter) (total, open, resolved, escalated int, err error) {
	where, args := buildReportWhere(filter)
	query := fmt.Sprintf(`SELECT
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE status NOT IN ('RESOLVED', 'CLOSED')) AS open,
	COUNT(*) FILTER (WHERE status = 'RESOLVED') AS resolved,
	COUNT(*) FILTER (WHERE is_escalated = true) AS escalated
	FROM complaints %s`, where)

	row := struct {
		Total     int `db:"total"`
		Open      int `db:"open"`
		Resolved  int `db:"resolved"`
		Escalated int `db:"escalated"`
	}{}
	if err = r.db.GetContext(ctx, &row, query, args...); err != nil {
		err = fmt.Errorf("complaint totals: %w", err)
		return
	}
	return row.Total, row.Open, row.Resolved, row.Escalated, nil
}

// OfficerPerformance summarises assigned vs resolved counts per officer.
func (r *ReportRepository) OfficerPerformance(ctx context.Context, filter models.ReportFilter) ([]models.OfficerStatsPoint, error) {
	where, args := buildPrefixedReportWhere(filter, "c.")
	clause := "WHERE"
	if where != "" {
		clause = where + " AND"
	}
	query := fmt.Sprintf(`SELECT u.id AS officer_id, u.full_name AS officer_name,
	COUNT(c.id) AS assigned,
	COUNT(c.id) FILTER (WHERE c.status = 'RESOLVED') AS resolved
	FROM complaints c JOIN users u ON u.id = c.assigned_to
	%s c.assigned_to IS NOT NULL
	GROUP BY u.id, u.full_name ORDER BY resolved DESC`, clause)

	rows := []struct {
		OfficerID   string `db:"officer_id"`
		OfficerName string `db:"officer_name"`
		Assigned    int    `db:"assigned"`
		Resolved    int    `db:"resolved"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("officer performance: %w", err)
	}

	points := make([]models.OfficerStatsPoint, len(rows))
	for i, row := range rows {
		rate := 0.0
		if row.Assigned > 0 {
			rate = float64(row.Resolved) / float64(row.Assigned)
		}
		points[i] = models.OfficerStatsPoint{
			OfficerID:      row.OfficerID,
			OfficerName:    row.OfficerName,
			Assigned:       row.Assigned,
			Resolved:       row.Resolved,
			ResolutionRate: rate,
		}
	}
	return points, nil
}

// DailyTrend returns per-day submitted and resolved counts.
func (r *ReportRepository) DailyTrend(ctx context.Context, filter models.ReportFilter) ([]models.TrendPoint, error) {
	where, args := buildReportWhere(filter)
	query := fmt.Sprintf(`SELECT
	to_char(created_at::date, 'YYYY-MM-DD') AS date,
	COUNT(*) AS submitted,
	COUNT(*) FILTER (WHERE status = 'RESOLVED') AS resolved
	FROM complaints %s GROUP BY created_at::date ORDER BY created_at::date ASC`, where)

	rows := []struct {
		Date      string `db:"date"`
		Submitted int    `db:"submitted"`
		Resolved  int    `db:"resolved"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}

	points := make([]models.TrendPoint, len(rows))
	for i, row := range rows {
		points[i] = models.TrendPoint{Date: row.Date, Submitted: row.Submitted, Resolved: row.Resolved}
	}
	return points, nil
}

func buildReportWhere(filter models.ReportFilter) (string, []interface{}) {
	return buildPrefixedReportWhere(filter, "")
}

func buildPrefixedReportWhere(filter models.ReportFilter, prefix string) (string, []interface{}) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("%screated_at >= $%d", prefix, len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("%screated_at <= $%d", prefix, len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("%sstatus = $%d", prefix, len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("%scategory = $%d", prefix, len(args)))
	}
	if filter.Urgency != nil {
		args = append(args, *filter.Urgency)
		conditions = append(conditions, fmt.Sprintf("%surgency = $%d", prefix, len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}
