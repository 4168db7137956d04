package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// MajorRepository manages persistence for majors.
type MajorRepository struct {
	db sqlx.ExtContext
}

// NewMajorRepository constructs a major repository over a DB or transaction.
func NewMajorRepository(db sqlx.ExtContext) *MajorRepository {
	return &MajorRepository{db: db}
}

// FindByShortCode returns the major with the given short code or sql.ErrNoRows.
func (r *MajorRepository) FindByShortCode(ctx context.Context, code string) (*models.Major, error) {
	const query = `SELECT id, short_code, full_name, created_at FROM majors WHERE short_code = $1`
	var major models.Major
	if err := sqlx.GetContext(ctx, r.db, &major, query, code); err != nil {
		return nil, err
	}
	return &major, nil
}

// Create inserts a major unless its short code already exists.
func (r *MajorRepository) Create(ctx context.Context, major *models.Major) error {
	if major.ID == "" {
		major.ID = uuid.NewString()
	}
	if major.CreatedAt.IsZero() {
		major.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO majors (id, short_code, full_name, created_at) VALUES (:id, :short_code, :full_name, :created_at) ON CONFLICT (short_code) DO NOTHING`
	return insertOnce(ctx, r.db, "create major", query, major)
}

// List returns all majors ordered by short code.
func (r *MajorRepository) List(ctx context.Context) ([]models.Major, error) {
	const query = `SELECT id, short_code, full_name, created_at FROM majors ORDER BY short_code`
	var majors []models.Major
	if err := sqlx.SelectContext(ctx, r.db, &majors, query); err != nil {
		return nil, fmt.Errorf("list majors: %w", err)
	}
	return majors, nil
}
