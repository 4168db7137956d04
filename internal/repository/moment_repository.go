package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// MomentRepository reads classroom moments.
type MomentRepository struct {
	db sqlx.ExtContext
}

// NewMomentRepository constructs a moment repository.
func NewMomentRepository(db sqlx.ExtContext) *MomentRepository {
	return &MomentRepository{db: db}
}

// ListRecentByClassroom returns up to limit live moments, newest first.
func (r *MomentRepository) ListRecentByClassroom(ctx context.Context, classroomID string, limit int) ([]models.Moment, error) {
	const query = `SELECT id, classroom_id, creator_id, content, deleted, created_at FROM moments
		WHERE classroom_id = $1 AND deleted = FALSE ORDER BY created_at DESC LIMIT $2`
	var moments []models.Moment
	if err := sqlx.SelectContext(ctx, r.db, &moments, query, classroomID, limit); err != nil {
		return nil, fmt.Errorf("list moments: %w", err)
	}
	return moments, nil
}
