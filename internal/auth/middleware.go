package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

var (
	errMissingHeader = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "missing Authorization header")
	errHeaderFormat  = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "invalid Authorization header format")
	errInvalidToken  = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "invalid or expired token")
)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>.
// EventSource clients cannot set headers, so GET requests may pass the token as ?access_token=.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			response.Error(c, errInvalidToken)
			c.Abort()
			return
		}

		c.Set(adminEmailKey, claims.Email)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if c.Request.Method == http.MethodGet {
			if t := c.Query("access_token"); t != "" {
				return t, nil
			}
		}
		return "", errMissingHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errHeaderFormat
	}
	return parts[1], nil
}
