package handler

import "github.com/gin-gonic/gin"

// RegisterTimetableRoutes mounts the board endpoints under group.
func RegisterTimetableRoutes(group *gin.RouterGroup, h *TimetableHandler) {
	timetable := group.Group("/timetable")
	timetable.GET("/layout", h.Layout)
	timetable.GET("/cells/:day/:period/droppable", h.Droppable)

	boards := timetable.Group("/boards")
	boards.POST("", h.Create)
	boards.GET("/:id", h.Get)
	boards.DELETE("/:id", h.Delete)
	boards.GET("/:id/cells/:day/:period", h.Cell)
	boards.GET("/:id/empty-cells", h.EmptyCells)
	boards.POST("/:id/moves", h.Move)
	boards.POST("/:id/reset", h.Reset)
	boards.GET("/:id/export", h.Export)
}

// RegisterOpsRoutes mounts health, readiness and metrics endpoints on the engine root.
func RegisterOpsRoutes(r gin.IRoutes, h *MetricsHandler, metricsEnabled bool) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	if metricsEnabled {
		r.GET("/metrics", h.Prometheus)
	}
}
