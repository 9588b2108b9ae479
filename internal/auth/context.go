package auth

import "github.com/gin-gonic/gin"

const adminEmailKey = "adminEmail"

// GetAdminEmail returns the authenticated admin's email or empty string.
func GetAdminEmail(c *gin.Context) string {
	if v, ok := c.Get(adminEmailKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
