package api

import (
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/auth"
)

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminResponse is the shape of admin data returned in API responses.
type AdminResponse struct {
	Email string `json:"email"`
}

// LoginResponse is the response for POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Admin       AdminResponse `json:"admin"`
}

// MeResponse is the response for GET /v1/me.
type MeResponse struct {
	Admin AdminResponse `json:"admin"`
}

func NewAdminResponse(a *auth.Admin) AdminResponse {
	return AdminResponse{Email: a.Email}
}
