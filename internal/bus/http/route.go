package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	public := g.Group("/buses")
	{
		public.GET("", h.List)
		public.GET("/:id", h.Get)
	}

	// === Admin Routes ===
	// No delete: buses stay referenced by historical bookings.
	admin := g.Group("/admin/buses")
	admin.Use(authMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.PUT("/:id/image", h.UploadImage)
	}
}
