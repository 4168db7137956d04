package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classgotcha-api/internal/dto"
	"github.com/noah-isme/classgotcha-api/internal/models"
	"github.com/noah-isme/classgotcha-api/internal/service"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
	"github.com/noah-isme/classgotcha-api/pkg/response"
)

type taskService interface {
	Create(ctx context.Context, classroomID string, req dto.CreateTaskRequest) (*models.ScheduleItem, error)
	List(ctx context.Context, classroomID string) ([]models.ScheduleItem, error)
}

type momentFeed interface {
	RecentMoments(ctx context.Context, classroomID string, page int) ([]service.MomentView, error)
}

// FeedHandler exposes the classroom task and moment feeds.
type FeedHandler struct {
	tasks   taskService
	moments momentFeed
}

// NewFeedHandler constructs a feed handler.
func NewFeedHandler(tasks taskService, moments momentFeed) *FeedHandler {
	return &FeedHandler{tasks: tasks, moments: moments}
}

// CreateTask godoc
// @Summary Schedule a classroom task or event
// @Description Exactly one shape is honoured, in order: due_datetime (task), due_date (event during class time), start and end (event).
// @Tags Feed
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body dto.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classrooms/{id}/tasks [post]
func (h *FeedHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}
	item, err := h.tasks.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// ListTasks godoc
// @Summary List active classroom tasks
// @Tags Feed
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/tasks [get]
func (h *FeedHandler) ListTasks(c *gin.Context) {
	items, err := h.tasks.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Moments godoc
// @Summary List recent classroom moments
// @Tags Feed
// @Produce json
// @Param id path string true "Classroom ID"
// @Param page query int false "Page (each page adds 20 moments)"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/moments [get]
func (h *FeedHandler) Moments(c *gin.Context) {
	page := 1
	if parsed, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = parsed
	}
	if page < 1 {
		page = 1
	}
	moments, err := h.moments.RecentMoments(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Feed(c, moments, len(moments), page, service.MomentsPageSize)
}
