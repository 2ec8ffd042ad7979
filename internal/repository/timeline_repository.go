package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/resolveit/complaints-api/internal/models"
)

const timelineInsert = `INSERT INTO complaint_timeline
	(id, complaint_id, actor, action, comment, is_internal_note, created_at)
	VALUES (:id, :complaint_id, :actor, :action, :comment, :is_internal_note, :created_at)`

// TimelineRepository reads and appends complaint timeline entries. The table
// is append-only; there are no update or delete paths.
type TimelineRepository struct {
	db *sqlx.DB
}

// NewTimelineRepository constructs the repository.
func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// Append inserts a standalone timeline entry outside a complaint transaction,
// used for notes that do not mutate the complaint row.
func (r *TimelineRepository) Append(ctx context.Context, event *models.TimelineEvent) error {
	prepareTimelineEvent(event)
	if _, err := r.db.NamedExecContext(ctx, timelineInsert, event); err != nil {
		return fmt.Errorf("append timeline entry: %w", err)
	}
	return nil
}

// ListByComplaint returns the ordered timeline, oldest first. Internal notes
// are filtered out unless includeInternal is set.
func (r *TimelineRepository) ListByComplaint(ctx context.Context, complaintID string, includeInternal bool) ([]models.TimelineEvent, error) {
	query := `SELECT id, complaint_id, actor, action, comment, is_internal_note, created_at
	FROM complaint_timeline WHERE complaint_id = $1`
	if !includeInternal {
		query += ` AND is_internal_note = false`
	}
	query += ` ORDER BY created_at ASC`

	var events []models.TimelineEvent
	if err := r.db.SelectContext(ctx, &events, query, complaintID); err != nil {
		return nil, fmt.Errorf("list timeline for %s: %w", complaintID, err)
	}
	return events, nil
}

// insertTimelineTx appends an entry inside an open complaint transaction.
func insertTimelineTx(ctx context.Context, tx *sqlx.Tx, event *models.TimelineEvent) error {
	prepareTimelineEvent(event)
	if _, err := tx.NamedExecContext(ctx, timelineInsert, event); err != nil {
		return fmt.Errorf("append timeline entry: %w", err)
	}
	return nil
}

func prepareTimelineEvent(event *models.TimelineEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Actor == "" {
		event.Actor = models.SystemActor
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
}
