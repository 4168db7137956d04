package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/classgotcha-api/internal/dto"
	"github.com/noah-isme/classgotcha-api/internal/models"
	"github.com/noah-isme/classgotcha-api/internal/service"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
	"github.com/noah-isme/classgotcha-api/pkg/response"
)

type classroomService interface {
	Majors(ctx context.Context) ([]models.Major, error)
	Search(ctx context.Context, query, semesterName string) ([]models.ClassroomDetail, error)
	Get(ctx context.Context, id string) (*models.ClassroomDetail, error)
	Sessions(ctx context.Context, classroomID string, from, to time.Time) ([]service.ClassSession, error)
	Calendar(ctx context.Context, classroomID string) (string, error)
}

const defaultSessionRange = 7 * 24 * time.Hour

// ClassroomHandler exposes read endpoints over the imported catalog.
type ClassroomHandler struct {
	service  classroomService
	validate *validator.Validate
	now      func() time.Time
}

// NewClassroomHandler builds a classroom handler.
func NewClassroomHandler(svc classroomService, validate *validator.Validate) *ClassroomHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ClassroomHandler{service: svc, validate: validate, now: time.Now}
}

// Majors godoc
// @Summary List majors
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /majors [get]
func (h *ClassroomHandler) Majors(c *gin.Context) {
	majors, err := h.service.Majors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, majors, nil)
}

// Search godoc
// @Summary Search classrooms
// @Description "30262" matches a class code, "csci 104" matches major and class number.
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body dto.ClassroomSearchRequest true "Search payload"
// @Success 200 {object} response.Envelope
// @Router /classrooms/search [post]
func (h *ClassroomHandler) Search(c *gin.Context) {
	var req dto.ClassroomSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "query is required"))
		return
	}
	results, err := h.service.Search(c.Request.Context(), req.Query, req.Semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Get godoc
// @Summary Get classroom
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Sessions godoc
// @Summary List class sessions
// @Description Expands the weekly meeting into sessions between from and to (RFC3339, default: the next 7 days).
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Param from query string false "Range start (RFC3339)"
// @Param to query string false "Range end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/sessions [get]
func (h *ClassroomHandler) Sessions(c *gin.Context) {
	from := h.now()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be RFC3339"))
			return
		}
		from = parsed
	}
	to := from.Add(defaultSessionRange)
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be RFC3339"))
			return
		}
		to = parsed
	}

	sessions, err := h.service.Sessions(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Calendar godoc
// @Summary Export classroom calendar
// @Tags Classrooms
// @Produce text/calendar
// @Param id path string true "Classroom ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /classrooms/{id}/calendar.ics [get]
func (h *ClassroomHandler) Calendar(c *gin.Context) {
	id := c.Param("id")
	body, err := h.service.Calendar(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"classroom-%s.ics\"", id))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
