package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	// === Public Routes ===
	// Authenticated by the payload signature.
	g.POST("/webhooks/payment", h.Receive)
}
