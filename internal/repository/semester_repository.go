package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// SemesterRepository manages persistence for semesters.
type SemesterRepository struct {
	db sqlx.ExtContext
}

// NewSemesterRepository constructs a semester repository.
func NewSemesterRepository(db sqlx.ExtContext) *SemesterRepository {
	return &SemesterRepository{db: db}
}

const semesterColumns = `id, name, start_date, end_date, created_at`

// FindByName returns the semester with the given name or sql.ErrNoRows.
func (r *SemesterRepository) FindByName(ctx context.Context, name string) (*models.Semester, error) {
	var semester models.Semester
	if err := sqlx.GetContext(ctx, r.db, &semester, `SELECT `+semesterColumns+` FROM semesters WHERE name = $1`, name); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindByID returns a semester by id or sql.ErrNoRows.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	var semester models.Semester
	if err := sqlx.GetContext(ctx, r.db, &semester, `SELECT `+semesterColumns+` FROM semesters WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// Create inserts a semester unless the name already exists.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO semesters (id, name, start_date, end_date, created_at) VALUES (:id, :name, :start_date, :end_date, :created_at) ON CONFLICT (name) DO NOTHING`
	return insertOnce(ctx, r.db, "create semester", query, semester)
}
