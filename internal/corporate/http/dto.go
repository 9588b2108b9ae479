package http

import (
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/corporate"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
)

type CorporateClientResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	LogoURL        string    `json:"logo_url,omitempty"`
	DefaultPickup  string    `json:"default_pickup,omitempty"`
	DefaultDropoff string    `json:"default_dropoff,omitempty"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewResponse(c *corporate.CorporateClient) CorporateClientResponse {
	return CorporateClientResponse{
		ID:             c.ID,
		Name:           c.Name,
		Slug:           c.Slug,
		LogoURL:        c.LogoURL,
		DefaultPickup:  c.DefaultPickup,
		DefaultDropoff: c.DefaultDropoff,
		Status:         string(c.Status),
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// PortalResponse is the public view of a partner portal. Internal notes are left out.
type PortalResponse struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	LogoURL        string `json:"logo_url,omitempty"`
	DefaultPickup  string `json:"default_pickup,omitempty"`
	DefaultDropoff string `json:"default_dropoff,omitempty"`
}

func NewPortalResponse(c *corporate.CorporateClient) PortalResponse {
	return PortalResponse{
		Name:           c.Name,
		Slug:           c.Slug,
		LogoURL:        c.LogoURL,
		DefaultPickup:  c.DefaultPickup,
		DefaultDropoff: c.DefaultDropoff,
	}
}

type ListRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

type PrimaryContactBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type CreateRequest struct {
	Name           string              `json:"name" binding:"required"`
	Slug           string              `json:"slug"`
	LogoURL        string              `json:"logo_url"`
	DefaultPickup  string              `json:"default_pickup"`
	DefaultDropoff string              `json:"default_dropoff"`
	Notes          string              `json:"notes"`
	PrimaryContact *PrimaryContactBody `json:"primary_contact"`
}

type CreateResponse struct {
	CorporateClientResponse
	PrimaryContactID string `json:"primary_contact_id,omitempty"`
}

type UpdateRequest struct {
	Name           *string `json:"name"`
	Slug           *string `json:"slug"`
	LogoURL        *string `json:"logo_url"`
	DefaultPickup  *string `json:"default_pickup"`
	DefaultDropoff *string `json:"default_dropoff"`
	Status         *string `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes          *string `json:"notes"`
}

type SlugRequest struct {
	Slug string `uri:"slug" binding:"required"`
}
