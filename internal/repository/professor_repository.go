package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// ProfessorRepository manages professors and their major affiliations.
type ProfessorRepository struct {
	db sqlx.ExtContext
}

// NewProfessorRepository constructs a professor repository.
func NewProfessorRepository(db sqlx.ExtContext) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// FindByName looks a professor up by the normalised natural key.
func (r *ProfessorRepository) FindByName(ctx context.Context, firstName, lastName string) (*models.Professor, error) {
	const query = `SELECT id, first_name, last_name, email, office, created_at FROM professors WHERE first_name = $1 AND last_name = $2`
	var professor models.Professor
	if err := sqlx.GetContext(ctx, r.db, &professor, query, firstName, lastName); err != nil {
		return nil, err
	}
	return &professor, nil
}

// Create inserts a professor unless the name is taken.
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	if professor.CreatedAt.IsZero() {
		professor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO professors (id, first_name, last_name, email, office, created_at)
		VALUES (:id, :first_name, :last_name, :email, :office, :created_at) ON CONFLICT (first_name, last_name) DO NOTHING`
	return insertOnce(ctx, r.db, "create professor", query, professor)
}

// ListMajorIDs returns the majors a professor is affiliated with.
func (r *ProfessorRepository) ListMajorIDs(ctx context.Context, professorID string) ([]string, error) {
	const query = `SELECT major_id FROM professor_majors WHERE professor_id = $1 ORDER BY major_id`
	var ids []string
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor majors: %w", err)
	}
	return ids, nil
}

// AddMajor links a professor to a major; an existing link is left as is.
func (r *ProfessorRepository) AddMajor(ctx context.Context, professorID, majorID string) error {
	const query = `INSERT INTO professor_majors (professor_id, major_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	return link(ctx, r.db, "link professor major", query, professorID, majorID)
}
