package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// ClassroomRepository manages classrooms and their instructor relation.
type ClassroomRepository struct {
	db sqlx.ExtContext
}

// NewClassroomRepository constructs a classroom repository.
func NewClassroomRepository(db sqlx.ExtContext) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

const classroomColumns = `id, class_code, semester_id, class_number, class_name, description, section, credit, location, time_slot_id, major_id, created_at`

const classroomDetailSelect = `SELECT c.id, c.class_code, c.semester_id, c.class_number, c.class_name, c.description, c.section, c.credit, c.location,
	c.time_slot_id, c.major_id, c.created_at, m.short_code AS major_short_code, s.name AS semester_name,
	t.weekday_mask, t.start_minute, t.end_minute,
	COALESCE(string_agg(p.first_name || ' ' || p.last_name, ', ' ORDER BY p.last_name, p.first_name), '') AS professors
FROM classrooms c
JOIN majors m ON m.id = c.major_id
JOIN semesters s ON s.id = c.semester_id
LEFT JOIN time_slots t ON t.id = c.time_slot_id
LEFT JOIN classroom_professors cp ON cp.classroom_id = c.id
LEFT JOIN professors p ON p.id = cp.professor_id`

const classroomDetailGroup = ` GROUP BY c.id, m.short_code, s.name, t.weekday_mask, t.start_minute, t.end_minute`

// FindByCode returns the classroom identified by its natural key or sql.ErrNoRows.
func (r *ClassroomRepository) FindByCode(ctx context.Context, classCode, semesterID string) (*models.Classroom, error) {
	query := `SELECT ` + classroomColumns + ` FROM classrooms WHERE class_code = $1 AND semester_id = $2`
	var classroom models.Classroom
	if err := sqlx.GetContext(ctx, r.db, &classroom, query, classCode, semesterID); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// Create inserts a classroom unless (class_code, semester_id) already exists.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classrooms (id, class_code, semester_id, class_number, class_name, description, section, credit, location, time_slot_id, major_id, created_at)
		VALUES (:id, :class_code, :semester_id, :class_number, :class_name, :description, :section, :credit, :location, :time_slot_id, :major_id, :created_at)
		ON CONFLICT (class_code, semester_id) DO NOTHING`
	return insertOnce(ctx, r.db, "create classroom", query, classroom)
}

// AddProfessor attaches an instructor to a classroom; an existing link is kept.
func (r *ClassroomRepository) AddProfessor(ctx context.Context, classroomID, professorID string) error {
	const query = `INSERT INTO classroom_professors (classroom_id, professor_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	return link(ctx, r.db, "link classroom professor", query, classroomID, professorID)
}

// FindDetailByID returns a classroom joined with its major, semester, slot and instructors.
func (r *ClassroomRepository) FindDetailByID(ctx context.Context, id string) (*models.ClassroomDetail, error) {
	query := classroomDetailSelect + ` WHERE c.id = $1` + classroomDetailGroup
	var detail models.ClassroomDetail
	if err := sqlx.GetContext(ctx, r.db, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Search returns classroom details matching the filter, ordered by class code.
func (r *ClassroomRepository) Search(ctx context.Context, filter models.ClassroomFilter) ([]models.ClassroomDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.SemesterID != "" {
		args = append(args, filter.SemesterID)
		conditions = append(conditions, fmt.Sprintf("c.semester_id = $%d", len(args)))
	}
	if filter.ClassCode != "" {
		args = append(args, filter.ClassCode)
		conditions = append(conditions, fmt.Sprintf("c.class_code = $%d", len(args)))
	}
	if filter.MajorShortCode != "" {
		args = append(args, strings.ToUpper(filter.MajorShortCode))
		conditions = append(conditions, fmt.Sprintf("m.short_code = $%d", len(args)))
	}
	if filter.ClassNumber != "" {
		args = append(args, filter.ClassNumber)
		conditions = append(conditions, fmt.Sprintf("c.class_number = $%d", len(args)))
	}

	query := classroomDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += classroomDetailGroup + " ORDER BY c.class_code"

	var details []models.ClassroomDetail
	if err := sqlx.SelectContext(ctx, r.db, &details, query, args...); err != nil {
		return nil, fmt.Errorf("search classrooms: %w", err)
	}
	return details, nil
}
