package http

import (
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
)

// ContactTag is the short form embedded in other responses.
type ContactTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ContactResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	CorporateClientID string    `json:"corporate_client_id,omitempty"`
	CompanyName       string    `json:"company_name,omitempty"`
	Source            string    `json:"source,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewResponse(c *contact.Contact) ContactResponse {
	return ContactResponse{
		ID:                c.ID,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		CorporateClientID: c.CorporateClientID,
		CompanyName:       c.CompanyName,
		Source:            c.Source,
		Notes:             c.Notes,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

type ListContactsRequest struct {
	request.ListParams
	Search            string `form:"q"`
	CorporateClientID string `form:"corporate_client_id" binding:"omitempty,uuid"`
}

type CreateRequest struct {
	Name              string `json:"name" binding:"required"`
	Email             string `json:"email" binding:"omitempty,email"`
	Phone             string `json:"phone"`
	CorporateClientID string `json:"corporate_client_id" binding:"omitempty,uuid"`
	Source            string `json:"source"`
	Notes             string `json:"notes"`
}

// UpdateRequest is shared with the booking update endpoint, which carries contact fields too.
type UpdateRequest struct {
	Name              *string `json:"name"`
	Email             *string `json:"email" binding:"omitempty,email"`
	Phone             *string `json:"phone"`
	CorporateClientID *string `json:"corporate_client_id" binding:"omitempty,uuid|eq="`
	Source            *string `json:"source"`
	Notes             *string `json:"notes"`
}

func (r *UpdateRequest) ToDomain() contact.UpdateRequest {
	if r == nil {
		return contact.UpdateRequest{}
	}
	return contact.UpdateRequest{
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		CorporateClientID: r.CorporateClientID,
		Source:            r.Source,
		Notes:             r.Notes,
	}
}
