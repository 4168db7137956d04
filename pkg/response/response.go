package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Ingestion sends a catalog import summary. The record counts are repeated in
// meta so clients can spot a partially applied batch without walking failures.
func Ingestion(c *gin.Context, summary *models.IngestionSummary) {
	if summary == nil {
		summary = &models.IngestionSummary{Failures: []models.IngestionFailure{}}
	}
	JSON(c, http.StatusOK, summary, nil, map[string]interface{}{
		"semester":  summary.Semester,
		"total":     summary.Total,
		"processed": summary.Processed,
		"failed":    summary.Failed,
		"partial":   summary.Failed > 0 && summary.Processed > 0,
	})
}

// Feed sends one page of a cumulative feed, where page n carries the newest
// n*pageSize entries. has_more is set while the page came back full.
func Feed(c *gin.Context, data interface{}, count, page, pageSize int) {
	limit := page * pageSize
	JSON(c, http.StatusOK, data, &models.Pagination{
		Page:       page,
		PageSize:   limit,
		TotalCount: count,
	}, map[string]interface{}{"has_more": limit > 0 && count >= limit})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}
