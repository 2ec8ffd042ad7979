package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

const complaintColumns = `id, category, description, urgency, anonymous, submitter_id,
	status, assigned_to, deadline, is_escalated, escalated_to, escalated_at,
	escalation_source, escalation_reason, escalation_priority, attachment_path,
	version, created_at, updated_at, status_changed_at`

// ComplaintRepository persists complaint records with optimistic concurrency.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a new complaint row at version 1.
func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.StatusNew
	}
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now
	c.StatusChangedAt = now

	const query = `INSERT INTO complaints
	(id, category, description, urgency, anonymous, submitter_id, status, assigned_to,
	 deadline, is_escalated, escalated_to, escalated_at, escalation_source,
	 escalation_reason, escalation_priority, attachment_path, version, created_at,
	 updated_at, status_changed_at)
	VALUES (:id, :category, :description, :urgency, :anonymous, :submitter_id, :status,
	 :assigned_to, :deadline, :is_escalated, :escalated_to, :escalated_at,
	 :escalation_source, :escalation_reason, :escalation_priority, :attachment_path,
	 :version, :created_at, :updated_at, :status_changed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// GetByID fetches a complaint by identifier.
func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id = $1`, complaintColumns)
	var c models.Complaint
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, fmt.Errorf("get complaint %s: %w", id, err)
	}
	return &c, nil
}

// List returns complaints matching the filter, newest first.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(`SELECT ` + complaintColumns + ` FROM complaints`)

	conditions := make([]string, 0, 6)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Urgency != nil {
		args = append(args, *filter.Urgency)
		conditions = append(conditions, fmt.Sprintf("urgency = $%d", len(args)))
	}
	if filter.SubmitterID != "" {
		args = append(args, filter.SubmitterID)
		conditions = append(conditions, fmt.Sprintf("submitter_id = $%d AND anonymous = false", len(args)))
	}
	if filter.AssignedToID != "" {
		args = append(args, filter.AssignedToID)
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if filter.Escalated != nil {
		args = append(args, *filter.Escalated)
		conditions = append(conditions, fmt.Sprintf("is_escalated = $%d", len(args)))
	}
	if filter.Unresolved {
		args = append(args, models.StatusResolved, models.StatusClosed)
		conditions = append(conditions, fmt.Sprintf("status NOT IN ($%d, $%d)", len(args)-1, len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, nil
}

// ListSweepCandidates snapshots every non-terminal, non-escalated complaint
// for a policy engine pass.
func (r *ComplaintRepository) ListSweepCandidates(ctx context.Context) ([]models.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints
	WHERE is_escalated = false AND status NOT IN ($1, $2)
	ORDER BY created_at ASC`, complaintColumns)

	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, models.StatusResolved, models.StatusClosed); err != nil {
		return nil, fmt.Errorf("list sweep candidates: %w", err)
	}
	return complaints, nil
}

// UpdateWithTimeline writes the complaint and appends one timeline entry in a
// single transaction, guarded by the version the caller read. The stored
// version advances by one; a concurrent writer that already advanced it makes
// this call fail with a conflict and no timeline entry is written.
func (r *ComplaintRepository) UpdateWithTimeline(ctx context.Context, c *models.Complaint, event *models.TimelineEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complaint update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	readVersion := c.Version
	c.UpdatedAt = time.Now().UTC()
	c.Version = readVersion + 1

	const update = `UPDATE complaints SET
	status = :status, assigned_to = :assigned_to, deadline = :deadline,
	is_escalated = :is_escalated, escalated_to = :escalated_to, escalated_at = :escalated_at,
	escalation_source = :escalation_source, escalation_reason = :escalation_reason,
	escalation_priority = :escalation_priority, version = :version,
	updated_at = :updated_at, status_changed_at = :status_changed_at
	WHERE id = :id AND version = :read_version`

	params := map[string]interface{}{
		"id":                  c.ID,
		"status":              c.Status,
		"assigned_to":         c.AssignedToID,
		"deadline":            c.Deadline,
		"is_escalated":        c.IsEscalated,
		"escalated_to":        c.EscalatedToID,
		"escalated_at":        c.EscalatedAt,
		"escalation_source":   c.EscalationSource,
		"escalation_reason":   c.EscalationReason,
		"escalation_priority": c.EscalationPriority,
		"version":             c.Version,
		"updated_at":          c.UpdatedAt,
		"status_changed_at":   c.StatusChangedAt,
		"read_version":        readVersion,
	}

	result, err := tx.NamedExecContext(ctx, update, params)
	if err != nil {
		c.Version = readVersion
		return fmt.Errorf("update complaint %s: %w", c.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		c.Version = readVersion
		return fmt.Errorf("update complaint %s: %w", c.ID, err)
	}
	if affected == 0 {
		c.Version = readVersion
		return appErrors.Clone(appErrors.ErrConflict, "complaint was modified concurrently")
	}

	if event != nil {
		if err := insertTimelineTx(ctx, tx, event); err != nil {
			c.Version = readVersion
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		c.Version = readVersion
		return fmt.Errorf("commit complaint update: %w", err)
	}
	return nil
}

// CountEscalated returns the total number of escalated complaints.
func (r *ComplaintRepository) CountEscalated(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM complaints WHERE is_escalated = true`); err != nil {
		return 0, fmt.Errorf("count escalated: %w", err)
	}
	return count, nil
}

// CountEscalatedSince returns how many complaints escalated after the cutoff.
func (r *ComplaintRepository) CountEscalatedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	const query = `SELECT COUNT(*) FROM complaints WHERE is_escalated = true AND escalated_at > $1`
	if err := r.db.GetContext(ctx, &count, query, cutoff); err != nil {
		return 0, fmt.Errorf("count escalated since %s: %w", cutoff, err)
	}
	return count, nil
}
