package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// TimeSlotRepository stores weekly meeting windows.
type TimeSlotRepository struct {
	db sqlx.ExtContext
}

// NewTimeSlotRepository constructs a time slot repository.
func NewTimeSlotRepository(db sqlx.ExtContext) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// Create persists a time slot. Slots have no natural key.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO time_slots (id, weekday_mask, start_minute, end_minute, created_at) VALUES (:id, :weekday_mask, :start_minute, :end_minute, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}
