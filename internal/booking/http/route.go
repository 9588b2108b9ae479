package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	public := g.Group("/bookings")
	{
		public.POST("", h.Create)
		public.POST("/express", h.CreateExpress)
	}
	g.POST("/portal/:slug/bookings", h.CreatePortal)

	// === Admin Routes ===
	admin := g.Group("/admin/bookings")
	admin.Use(authMiddleware)
	{
		admin.GET("", h.List)
		admin.POST("", h.AdminCreate)
		admin.GET("/:id", h.Get)
		admin.PATCH("/:id", h.Update)
		admin.POST("/:id/confirm", h.Confirm)
		admin.POST("/:id/cancel", h.Cancel)
		admin.POST("/:id/calendar", h.ResyncCalendar)
	}
}
