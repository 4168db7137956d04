package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/classgotcha-api/internal/models"
	"github.com/noah-isme/classgotcha-api/internal/repository"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

// EntityResolver is an idempotent get-or-create layer over the catalog stores.
// Existing entities are returned untouched; relation edges are additive.
type EntityResolver struct {
	repos repository.CatalogRepositories
}

// NewEntityResolver binds a resolver to a set of stores, usually one transaction.
func NewEntityResolver(repos repository.CatalogRepositories) *EntityResolver {
	return &EntityResolver{repos: repos}
}

// getOrCreate looks up by natural key, creates when absent, and after a
// uniqueness violation looks up exactly once more.
func getOrCreate[T any](find func() (*T, error), create func() (*T, error)) (*T, bool, error) {
	existing, err := find()
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	created, err := create()
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, appErrors.ErrUniqueConstraintViolation) {
		return nil, false, err
	}

	existing, retryErr := find()
	if retryErr != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// NormalizeProfessorName upper-cases and trims a name part.
func NormalizeProfessorName(part string) string {
	return strings.ToUpper(strings.TrimSpace(part))
}

// ResolveMajor returns the major with shortCode, creating it when absent.
func (r *EntityResolver) ResolveMajor(ctx context.Context, shortCode, fullName string) (*models.Major, bool, error) {
	shortCode = strings.ToUpper(strings.TrimSpace(shortCode))
	if shortCode == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "major short code is required")
	}
	major, created, err := getOrCreate(
		func() (*models.Major, error) { return r.repos.Majors.FindByShortCode(ctx, shortCode) },
		func() (*models.Major, error) {
			m := &models.Major{ShortCode: shortCode, FullName: fullName}
			return m, r.repos.Majors.Create(ctx, m)
		},
	)
	if err != nil {
		return nil, false, fmt.Errorf("resolve major %s: %w", shortCode, err)
	}
	return major, created, nil
}

// ResolveSemester returns the semester named name, creating it when absent.
func (r *EntityResolver) ResolveSemester(ctx context.Context, name string) (*models.Semester, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "semester name is required")
	}
	semester, created, err := getOrCreate(
		func() (*models.Semester, error) { return r.repos.Semesters.FindByName(ctx, name) },
		func() (*models.Semester, error) {
			s := &models.Semester{Name: name}
			return s, r.repos.Semesters.Create(ctx, s)
		},
	)
	if err != nil {
		return nil, false, fmt.Errorf("resolve semester %s: %w", name, err)
	}
	return semester, created, nil
}

// ResolveProfessor matches by upper-cased first and last name only.
func (r *EntityResolver) ResolveProfessor(ctx context.Context, candidate models.Professor) (*models.Professor, bool, error) {
	candidate.FirstName = NormalizeProfessorName(candidate.FirstName)
	candidate.LastName = NormalizeProfessorName(candidate.LastName)
	if candidate.FirstName == "" || candidate.LastName == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "professor first and last name are required")
	}
	candidate.ID = ""
	professor, created, err := getOrCreate(
		func() (*models.Professor, error) {
			return r.repos.Professors.FindByName(ctx, candidate.FirstName, candidate.LastName)
		},
		func() (*models.Professor, error) {
			p := candidate
			return &p, r.repos.Professors.Create(ctx, &p)
		},
	)
	if err != nil {
		return nil, false, fmt.Errorf("resolve professor %s: %w", candidate.FullName(), err)
	}
	return professor, created, nil
}

// AffiliateProfessor adds majorID to the professor's majors and reports
// whether the set grew.
func (r *EntityResolver) AffiliateProfessor(ctx context.Context, professorID, majorID string) (bool, error) {
	current, err := r.repos.Professors.ListMajorIDs(ctx, professorID)
	if err != nil {
		return false, err
	}
	for _, id := range current {
		if id == majorID {
			return false, nil
		}
	}
	if err := r.repos.Professors.AddMajor(ctx, professorID, majorID); err != nil {
		return false, err
	}
	return true, nil
}

// FindClassroom looks a classroom up by (class_code, semester) and returns nil when absent.
func (r *EntityResolver) FindClassroom(ctx context.Context, classCode, semesterID string) (*models.Classroom, error) {
	classroom, err := r.repos.Classrooms.FindByCode(ctx, classCode, semesterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find classroom %s: %w", classCode, err)
	}
	return classroom, nil
}

// ResolveClassroom returns the classroom keyed by (class_code, semester),
// creating it from candidate when absent.
func (r *EntityResolver) ResolveClassroom(ctx context.Context, candidate models.Classroom) (*models.Classroom, bool, error) {
	candidate.ClassCode = strings.TrimSpace(candidate.ClassCode)
	if candidate.ClassCode == "" || candidate.SemesterID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "class code and semester are required")
	}
	candidate.ID = ""
	classroom, created, err := getOrCreate(
		func() (*models.Classroom, error) {
			return r.repos.Classrooms.FindByCode(ctx, candidate.ClassCode, candidate.SemesterID)
		},
		func() (*models.Classroom, error) {
			c := candidate
			return &c, r.repos.Classrooms.Create(ctx, &c)
		},
	)
	if err != nil {
		return nil, false, fmt.Errorf("resolve classroom %s: %w", candidate.ClassCode, err)
	}
	return classroom, created, nil
}

// AttachProfessor adds the professor to the classroom's instructor set.
func (r *EntityResolver) AttachProfessor(ctx context.Context, classroomID, professorID string) error {
	return r.repos.Classrooms.AddProfessor(ctx, classroomID, professorID)
}
