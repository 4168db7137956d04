package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// ScheduleItemRepository persists tasks, events and recurring class sessions.
type ScheduleItemRepository struct {
	db sqlx.ExtContext
}

// NewScheduleItemRepository constructs a schedule item repository.
func NewScheduleItemRepository(db sqlx.ExtContext) *ScheduleItemRepository {
	return &ScheduleItemRepository{db: db}
}

const scheduleItemColumns = `id, name, description, category, kind, start_at, end_at, due_at, weekday_mask, start_minute, end_minute, location, classroom_id, group_id, time_slot_id, created_at`

// Create inserts the item and its participants.
func (r *ScheduleItemRepository) Create(ctx context.Context, item *models.ScheduleItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_items (` + scheduleItemColumns + `)
		VALUES (:id, :name, :description, :category, :kind, :start_at, :end_at, :due_at, :weekday_mask, :start_minute, :end_minute, :location, :classroom_id, :group_id, :time_slot_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, item); err != nil {
		return fmt.Errorf("create schedule item: %w", err)
	}

	const participantQuery = `INSERT INTO schedule_item_participants (schedule_item_id, account_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, accountID := range item.Participants {
		if err := link(ctx, r.db, "add schedule item participant", participantQuery, item.ID, accountID); err != nil {
			return err
		}
	}
	return nil
}

// ListByClassroom returns the classroom's items, optionally restricted to kinds.
func (r *ScheduleItemRepository) ListByClassroom(ctx context.Context, classroomID string, kinds ...models.ScheduleKind) ([]models.ScheduleItem, error) {
	query := `SELECT ` + scheduleItemColumns + ` FROM schedule_items WHERE classroom_id = ?`
	args := []interface{}{classroomID}
	if len(kinds) > 0 {
		var err error
		query, args, err = sqlx.In(query+` AND kind IN (?)`, classroomID, kinds)
		if err != nil {
			return nil, fmt.Errorf("build schedule item query: %w", err)
		}
	}
	query = r.db.Rebind(query + ` ORDER BY COALESCE(end_at, due_at, created_at)`)

	var items []models.ScheduleItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule items: %w", err)
	}
	return items, nil
}
