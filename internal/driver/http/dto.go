package http

import (
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

// DriverTag is the short form embedded in booking responses.
type DriverTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CalendarResponse struct {
	ID        string     `json:"id,omitempty"`
	Status    string     `json:"status,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type DriverResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Phone     string           `json:"phone,omitempty"`
	Email     string           `json:"email,omitempty"`
	Status    string           `json:"status"`
	ImageURL  string           `json:"image_url,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Calendar  CalendarResponse `json:"calendar"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewResponse(d *driver.Driver) DriverResponse {
	return DriverResponse{
		ID:       d.ID,
		Name:     d.Name,
		Phone:    d.Phone,
		Email:    d.Email,
		Status:   string(d.Status),
		ImageURL: d.ImageURL,
		Notes:    d.Notes,
		Calendar: CalendarResponse{
			ID:        d.CalendarID,
			Status:    string(d.CalendarStatus),
			Error:     d.CalendarError,
			CreatedAt: d.CalendarCreatedAt,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// DriverOutcomeResponse is returned when a driver write also touched the calendar provider.
type DriverOutcomeResponse struct {
	Driver      DriverResponse    `json:"driver"`
	SyncWarning *response.Warning `json:"sync_warning,omitempty"`
}

type ListDriversRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=active on_leave inactive"`
	Search string `form:"q"`
}

type CreateRequest struct {
	Name   string `json:"name" binding:"required"`
	Phone  string `json:"phone"`
	Email  string `json:"email" binding:"omitempty,email"`
	Status string `json:"status" binding:"omitempty,oneof=active on_leave inactive"`
	Notes  string `json:"notes"`
}

type UpdateRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Status *string `json:"status" binding:"omitempty,oneof=active on_leave inactive"`
	Notes  *string `json:"notes"`
}

// ScheduleRequest selects the days to export. Dates are YYYY-MM-DD in the business timezone; to is inclusive.
type ScheduleRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
