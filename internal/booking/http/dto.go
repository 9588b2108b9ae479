package http

import (
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	bushttp "github.com/nekogravitycat/partybus-booking-backend/internal/bus/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	contacthttp "github.com/nekogravitycat/partybus-booking-backend/internal/contact/http"
	driverhttp "github.com/nekogravitycat/partybus-booking-backend/internal/driver/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

type CalendarEventResponse struct {
	EventID    string     `json:"event_id,omitempty"`
	SyncStatus string     `json:"sync_status,omitempty"`
	LastSync   *time.Time `json:"last_sync,omitempty"`
	// StaleEventID is a replaced event still waiting to be removed.
	StaleEventID string `json:"stale_event_id,omitempty"`
}

type BookingResponse struct {
	ID                string                 `json:"id"`
	Bus               bushttp.BusTag         `json:"bus"`
	Driver            *driverhttp.DriverTag  `json:"driver,omitempty"`
	Contact           contacthttp.ContactTag `json:"contact"`
	CorporateClientID string                 `json:"corporate_client_id,omitempty"`
	StartTime         time.Time              `json:"start_time"`
	EndTime           time.Time              `json:"end_time"`
	PickupLocation    string                 `json:"pickup_location"`
	DropoffLocation   string                 `json:"dropoff_location"`
	PassengerCount    int                    `json:"passenger_count"`
	Status            string                 `json:"status"`
	BookingType       string                 `json:"booking_type"`
	BookingSource     string                 `json:"booking_source"`
	Occasion          string                 `json:"occasion,omitempty"`
	QuoteAmount       *int64                 `json:"quote_amount,omitempty"`
	PaymentStatus     string                 `json:"payment_status"`
	PaymentReference  string                 `json:"payment_reference,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	Calendar          CalendarEventResponse  `json:"calendar"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func NewResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                b.ID,
		Bus:               bushttp.BusTag{ID: b.BusID, Name: b.BusName},
		Contact:           contacthttp.ContactTag{ID: b.ContactID, Name: b.ContactName},
		CorporateClientID: b.CorporateClientID,
		StartTime:         b.StartTime,
		EndTime:           b.EndTime,
		PickupLocation:    b.PickupLocation,
		DropoffLocation:   b.DropoffLocation,
		PassengerCount:    b.PassengerCount,
		Status:            string(b.Status),
		BookingType:       string(b.BookingType),
		BookingSource:     string(b.BookingSource),
		Occasion:          b.Occasion,
		QuoteAmount:       b.QuoteAmount,
		PaymentStatus:     string(b.PaymentStatus),
		PaymentReference:  b.PaymentReference,
		Notes:             b.Notes,
		Calendar: CalendarEventResponse{
			EventID:      b.CalendarEventID,
			SyncStatus:   string(b.EventSyncStatus),
			LastSync:     b.EventLastSync,
			StaleEventID: b.StaleEventID,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.DriverID != "" {
		resp.Driver = &driverhttp.DriverTag{ID: b.DriverID, Name: b.DriverName}
	}
	return resp
}

// PublicBookingResponse is what an anonymous requester gets back.
type PublicBookingResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func NewPublicResponse(b *booking.Booking) PublicBookingResponse {
	return PublicBookingResponse{
		ID:        b.ID,
		Status:    string(b.Status),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

// OutcomeResponse separates a committed ledger change from a calendar problem that followed it.
type OutcomeResponse struct {
	Booking     BookingResponse   `json:"booking"`
	SyncWarning *response.Warning `json:"sync_warning,omitempty"`
}

func NewOutcomeResponse(o *booking.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Booking:     NewResponse(o.Booking),
		SyncWarning: response.NewWarning(o.SyncWarning, "/v1/admin/bookings/"+o.Booking.ID+"/calendar"),
	}
}

type ContactDetails struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

func (c ContactDetails) ToDomain(source string) contact.Details {
	return contact.Details{Name: c.Name, Email: c.Email, Phone: c.Phone, Source: source}
}

type CreateRequest struct {
	BusID           string         `json:"bus_id" binding:"required,uuid"`
	StartTime       time.Time      `json:"start_time" binding:"required"`
	EndTime         time.Time      `json:"end_time" binding:"required,gtfield=StartTime"`
	PickupLocation  string         `json:"pickup_location"`
	DropoffLocation string         `json:"dropoff_location"`
	PassengerCount  int            `json:"passenger_count" binding:"required,min=1"`
	Occasion        string         `json:"occasion"`
	Notes           string         `json:"notes"`
	Contact         ContactDetails `json:"contact"`
}

func (r CreateRequest) ToDraft(source booking.Source) booking.Draft {
	return booking.Draft{
		BusID:           r.BusID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		PickupLocation:  r.PickupLocation,
		DropoffLocation: r.DropoffLocation,
		PassengerCount:  r.PassengerCount,
		BookingSource:   source,
		Occasion:        r.Occasion,
		Notes:           r.Notes,
	}
}

// AdminCreateRequest is a booking entered by staff, e.g. from a phone call.
type AdminCreateRequest struct {
	CreateRequest
	BookingSource string `json:"booking_source" binding:"omitempty,oneof=web_quote partner_portal admin_manual other"`
	QuoteAmount   *int64 `json:"quote_amount" binding:"omitempty,gte=0"`
}

type ExpressRequest struct {
	BusID          string    `json:"bus_id" binding:"required,uuid"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	PassengerCount int       `json:"passenger_count" binding:"required,min=1"`
	Contact        struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
		Phone string `json:"phone" binding:"required"`
	} `json:"contact"`
}

type ListBookingsRequest struct {
	request.ListParams
	BusID             string     `form:"bus_id" binding:"omitempty,uuid"`
	DriverID          string     `form:"driver_id" binding:"omitempty,uuid"`
	ContactID         string     `form:"contact_id" binding:"omitempty,uuid"`
	CorporateClientID string     `form:"corporate_client_id" binding:"omitempty,uuid"`
	Status            string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	From              *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To                *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type ConfirmRequest struct {
	DriverID string `json:"driver_id" binding:"required,uuid"`
}

type UpdateRequest struct {
	DriverID         *string                    `json:"driver_id" binding:"omitempty,uuid|eq="`
	StartTime        *time.Time                 `json:"start_time"`
	EndTime          *time.Time                 `json:"end_time"`
	PickupLocation   *string                    `json:"pickup_location"`
	DropoffLocation  *string                    `json:"dropoff_location"`
	PassengerCount   *int                       `json:"passenger_count" binding:"omitempty,min=1"`
	BookingSource    *string                    `json:"booking_source" binding:"omitempty,oneof=web_quote partner_portal admin_manual other"`
	Occasion         *string                    `json:"occasion"`
	QuoteAmount      *int64                     `json:"quote_amount" binding:"omitempty,gte=0"`
	PaymentStatus    *string                    `json:"payment_status" binding:"omitempty,oneof=unpaid deposit_paid paid_in_full refunded"`
	PaymentReference *string                    `json:"payment_reference"`
	Notes            *string                    `json:"notes"`
	Contact          *contacthttp.UpdateRequest `json:"contact"`
}

func (r UpdateRequest) ToDomain() booking.UpdateRequest {
	return booking.UpdateRequest{
		DriverID:         r.DriverID,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		PickupLocation:   r.PickupLocation,
		DropoffLocation:  r.DropoffLocation,
		PassengerCount:   r.PassengerCount,
		BookingSource:    r.BookingSource,
		Occasion:         r.Occasion,
		QuoteAmount:      r.QuoteAmount,
		PaymentStatus:    r.PaymentStatus,
		PaymentReference: r.PaymentReference,
		Notes:            r.Notes,
	}
}
