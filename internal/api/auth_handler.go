package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/auth"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

// Authenticator is implemented by auth.AdminAuthenticator.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Admin, error)
	Lookup(ctx context.Context, email string) (*auth.Admin, error)
}

type AuthHandler struct {
	admins     Authenticator
	jwtManager *auth.JWTManager
}

func NewAuthHandler(admins Authenticator, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		admins:     admins,
		jwtManager: jwtManager,
	}
}

//
// POST /v1/auth/login
//

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	a, err := h.admins.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateAccessToken(a.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Admin:       NewAdminResponse(a),
	})
}

//
// GET /v1/me
//

func (h *AuthHandler) Me(c *gin.Context) {
	a, err := h.admins.Lookup(c.Request.Context(), auth.GetAdminEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{Admin: NewAdminResponse(a)})
}
