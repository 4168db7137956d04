package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// MajorStore is the persistence surface for majors.
type MajorStore interface {
	FindByShortCode(ctx context.Context, code string) (*models.Major, error)
	Create(ctx context.Context, major *models.Major) error
}

// SemesterStore is the persistence surface for semesters.
type SemesterStore interface {
	FindByName(ctx context.Context, name string) (*models.Semester, error)
	Create(ctx context.Context, semester *models.Semester) error
}

// ProfessorStore is the persistence surface for professors.
type ProfessorStore interface {
	FindByName(ctx context.Context, firstName, lastName string) (*models.Professor, error)
	Create(ctx context.Context, professor *models.Professor) error
	ListMajorIDs(ctx context.Context, professorID string) ([]string, error)
	AddMajor(ctx context.Context, professorID, majorID string) error
}

// ClassroomStore is the persistence surface for classrooms.
type ClassroomStore interface {
	FindByCode(ctx context.Context, classCode, semesterID string) (*models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	AddProfessor(ctx context.Context, classroomID, professorID string) error
}

// TimeSlotStore is the persistence surface for weekly meeting windows.
type TimeSlotStore interface {
	Create(ctx context.Context, slot *models.TimeSlot) error
}

// ScheduleItemStore is the persistence surface for schedule items.
type ScheduleItemStore interface {
	Create(ctx context.Context, item *models.ScheduleItem) error
}

// ChatRoomStore is the persistence surface for chat rooms.
type ChatRoomStore interface {
	Create(ctx context.Context, room *models.ChatRoom) error
}

// CatalogRepositories groups the stores an ingestion step writes through.
type CatalogRepositories struct {
	Majors        MajorStore
	Semesters     SemesterStore
	Professors    ProfessorStore
	Classrooms    ClassroomStore
	TimeSlots     TimeSlotStore
	ScheduleItems ScheduleItemStore
	ChatRooms     ChatRoomStore
}

// CatalogTxManager runs fn against stores bound to one transaction.
type CatalogTxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos CatalogRepositories) error) error
}

// NewCatalogRepositories binds every catalog store to exec.
func NewCatalogRepositories(exec sqlx.ExtContext) CatalogRepositories {
	return CatalogRepositories{
		Majors:        NewMajorRepository(exec),
		Semesters:     NewSemesterRepository(exec),
		Professors:    NewProfessorRepository(exec),
		Classrooms:    NewClassroomRepository(exec),
		TimeSlots:     NewTimeSlotRepository(exec),
		ScheduleItems: NewScheduleItemRepository(exec),
		ChatRooms:     NewChatRoomRepository(exec),
	}
}

// PostgresCatalogTxManager implements CatalogTxManager over sqlx.
type PostgresCatalogTxManager struct {
	db *sqlx.DB
}

// NewPostgresCatalogTxManager constructs the transaction manager.
func NewPostgresCatalogTxManager(db *sqlx.DB) *PostgresCatalogTxManager {
	return &PostgresCatalogTxManager{db: db}
}

// WithTx commits when fn succeeds and rolls back otherwise.
func (m *PostgresCatalogTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos CatalogRepositories) error) error {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}

	if err := fn(ctx, NewCatalogRepositories(tx)); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("rollback catalog tx: %v (cause: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog tx: %w", err)
	}
	return nil
}
