package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/admin/drivers")

	// === Admin Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
		group.PUT("/:id/image", h.UploadImage)
		group.POST("/:id/calendar", h.SyncCalendar)
		group.GET("/:id/schedule.ics", h.ScheduleICS)
		group.GET("/:id/tripsheet.pdf", h.TripSheet)
	}
}
