package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
	"github.com/noah-isme/classgotcha-api/pkg/export"
)

// Catalog export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// CatalogExport is a rendered catalog file.
type CatalogExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CatalogExportService renders a semester's classrooms as CSV or PDF.
type CatalogExportService struct {
	classrooms classroomSearcher
	semesters  semesterReader
	logger     *zap.Logger
	now        func() time.Time
}

// NewCatalogExportService constructs an export service.
func NewCatalogExportService(classrooms classroomSearcher, semesters semesterReader, logger *zap.Logger) *CatalogExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogExportService{classrooms: classrooms, semesters: semesters, logger: logger, now: time.Now}
}

// Export renders every classroom of semesterName in format.
func (s *CatalogExportService) Export(ctx context.Context, semesterName, format string) (*CatalogExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	semester, err := s.semesters.FindByName(ctx, semesterName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	classrooms, err := s.classrooms.Search(ctx, models.ClassroomFilter{SemesterID: semester.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}

	table := catalogTable(semester.Name, classrooms)
	slug := strings.ToLower(strings.ReplaceAll(semester.Name, " ", "-"))

	var body []byte
	contentType := "text/csv"
	if format == ExportFormatPDF {
		contentType = "application/pdf"
		body, err = export.RenderPDF(table, s.now())
	} else {
		body, err = export.RenderCSV(table)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render catalog")
	}

	s.logger.Info("catalog exported", zap.String("semester", semester.Name), zap.String("format", format), zap.Int("classrooms", len(classrooms)))
	return &CatalogExport{
		Filename:    fmt.Sprintf("catalog-%s.%s", slug, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func catalogTable(semesterName string, classrooms []models.ClassroomDetail) export.Table {
	table := export.Table{
		Title: semesterName + " course catalog",
		Columns: []export.Column{
			{Title: "Code", Width: 1},
			{Title: "Course", Width: 1.2},
			{Title: "Title", Width: 3},
			{Title: "Section", Width: 0.8},
			{Title: "Credit", Width: 0.7},
			{Title: "Meets", Width: 2},
			{Title: "Room", Width: 1.2},
			{Title: "Instructors", Width: 2.5},
		},
		Rows: make([][]string, 0, len(classrooms)),
	}
	for _, c := range classrooms {
		meets := ""
		if window := ClassroomWindow(&c); window != nil {
			meets = window.String()
		}
		table.Rows = append(table.Rows, []string{
			c.ClassCode,
			strings.TrimSpace(c.MajorShortCode + " " + c.ClassNumber),
			c.ClassName,
			c.Section,
			c.Credit,
			meets,
			c.Location,
			c.Professors,
		})
	}
	return table
}
