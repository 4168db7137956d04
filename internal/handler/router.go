package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Catalog    *CatalogHandler
	Classrooms *ClassroomHandler
	Feed       *FeedHandler
	Metrics    *MetricsHandler
}

// Register mounts the API routes on group.
func (h Handlers) Register(group *gin.RouterGroup) {
	if h.Catalog != nil {
		group.POST("/catalog/imports", h.Catalog.Import)
		group.GET("/catalog/exports", h.Catalog.Export)
	}
	if h.Classrooms != nil {
		group.GET("/majors", h.Classrooms.Majors)
		group.POST("/classrooms/search", h.Classrooms.Search)
		group.GET("/classrooms/:id", h.Classrooms.Get)
		group.GET("/classrooms/:id/sessions", h.Classrooms.Sessions)
		group.GET("/classrooms/:id/calendar.ics", h.Classrooms.Calendar)
	}
	if h.Feed != nil {
		group.GET("/classrooms/:id/tasks", h.Feed.ListTasks)
		group.POST("/classrooms/:id/tasks", h.Feed.CreateTask)
		group.GET("/classrooms/:id/moments", h.Feed.Moments)
	}
	if h.Metrics != nil {
		group.GET("/metrics/summary", h.Metrics.Summary)
	}
}
