package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/classgotcha-api/internal/dto"
	"github.com/noah-isme/classgotcha-api/internal/models"
	"github.com/noah-isme/classgotcha-api/internal/service"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
	"github.com/noah-isme/classgotcha-api/pkg/response"
)

type catalogIngester interface {
	Ingest(ctx context.Context, raw []byte, semesterName string) (*models.IngestionSummary, error)
}

type catalogExporter interface {
	Export(ctx context.Context, semesterName, format string) (*service.CatalogExport, error)
}

// CatalogHandler exposes catalog import and export endpoints.
type CatalogHandler struct {
	ingester  catalogIngester
	exporter  catalogExporter
	validate  *validator.Validate
	maxUpload int64
}

// NewCatalogHandler constructs a catalog handler. maxUpload caps the import body size in bytes.
func NewCatalogHandler(ingester catalogIngester, exporter catalogExporter, validate *validator.Validate, maxUpload int64) *CatalogHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogHandler{ingester: ingester, exporter: exporter, validate: validate, maxUpload: maxUpload}
}

// Import godoc
// @Summary Import a course catalog batch
// @Description Accepts a JSON array or object of course records either as the raw body or as a multipart "file". Every record is committed or rejected on its own.
// @Tags Catalog
// @Accept json,multipart/form-data
// @Produce json
// @Param semester query string false "Semester name (defaults to the configured semester)"
// @Param file formData file false "Catalog JSON file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalog/imports [post]
func (h *CatalogHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import query"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import query"))
		return
	}

	raw, err := h.readBatch(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.ingester.Ingest(c.Request.Context(), raw, req.Semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Ingestion(c, summary)
}

func (h *CatalogHandler) readBatch(c *gin.Context) ([]byte, error) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	// Only multipart bodies carry a "file" part; any other body is the batch itself.
	var src io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "multipart upload requires a file part")
		}
		if err != nil {
			return nil, uploadError(err)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
		}
		defer file.Close()
		src = file
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, uploadError(err)
	}
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "catalog body is required")
	}
	return raw, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Wrap(err, "PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge, fmt.Sprintf("catalog exceeds %d bytes", tooLarge.Limit))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read catalog upload")
}

// Export godoc
// @Summary Export a semester catalog
// @Tags Catalog
// @Produce text/csv,application/pdf
// @Param semester query string true "Semester name"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /catalog/exports [get]
func (h *CatalogHandler) Export(c *gin.Context) {
	semester := c.Query("semester")
	if semester == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester is required"))
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), semester, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
