package api

import (
	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/auth"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

// RequireAdmin ensures the token still belongs to the configured admin, so
// rotating ADMIN_EMAIL revokes older tokens.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(admins Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := admins.Lookup(c.Request.Context(), auth.GetAdminEmail(c)); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
