package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, apperror.KindNotFound, "booking not found")
	ErrBusNotFound    = apperror.New(http.StatusNotFound, apperror.KindNotFound, "bus not found")
	ErrDriverNotFound = apperror.New(http.StatusNotFound, apperror.KindNotFound, "driver not found")

	ErrVehicleConflict = apperror.New(http.StatusConflict, apperror.KindVehicleConflict, "the bus is already booked for this time slot")
	ErrDriverConflict  = apperror.New(http.StatusConflict, apperror.KindDriverConflict, "the driver is already scheduled for this time slot")

	ErrMissingBus            = apperror.New(http.StatusBadRequest, apperror.KindValidation, "bus is required")
	ErrMissingTime           = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start and end time are required")
	ErrInvalidTimeRange      = apperror.New(http.StatusBadRequest, apperror.KindValidation, "end time must be after start time")
	ErrInvalidPassengerCount = apperror.New(http.StatusBadRequest, apperror.KindValidation, "passenger count must be at least 1")
	ErrCapacityExceeded      = apperror.New(http.StatusBadRequest, apperror.KindValidation, "passenger count exceeds bus capacity")
	ErrDriverRequired        = apperror.New(http.StatusBadRequest, apperror.KindValidation, "a driver is required to confirm a booking")
	ErrInvalidTransition     = apperror.New(http.StatusBadRequest, apperror.KindValidation, "invalid status transition")
	ErrInvalidSource         = apperror.New(http.StatusBadRequest, apperror.KindValidation, "invalid booking source")
	ErrInvalidPaymentStatus  = apperror.New(http.StatusBadRequest, apperror.KindValidation, "invalid payment status")
	ErrInvalidQuote          = apperror.New(http.StatusBadRequest, apperror.KindValidation, "quote amount cannot be negative")
	ErrIncompleteContact     = apperror.New(http.StatusBadRequest, apperror.KindValidation, "name, email and phone are required")
	ErrNotSyncable           = apperror.New(http.StatusBadRequest, apperror.KindValidation, "only confirmed bookings with a driver can be synced")
)

// Status is the booking lifecycle state. Cancelled is terminal and nothing returns to pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// CanTransition reports whether the ledger allows moving from s to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

type Type string

const (
	TypeStandard Type = "standard"
	TypeExpress  Type = "express-1hr"
)

// ExpressDuration is the fixed length of an express booking.
const ExpressDuration = time.Hour

// ExpressPlaceholder fills the locations of express bookings, which only collect a start time.
const ExpressPlaceholder = "Express Booking"

type Source string

const (
	SourceWebQuote      Source = "web_quote"
	SourcePartnerPortal Source = "partner_portal"
	SourceAdminManual   Source = "admin_manual"
	SourceOther         Source = "other"
)

func (s Source) Valid() bool {
	switch s {
	case SourceWebQuote, SourcePartnerPortal, SourceAdminManual, SourceOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentPaidInFull  PaymentStatus = "paid_in_full"
	PaymentRefunded    PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentDepositPaid, PaymentPaidInFull, PaymentRefunded:
		return true
	}
	return false
}

// SyncStatus records the last calendar operation on the booking's event.
type SyncStatus string

const (
	SyncNone    SyncStatus = ""
	SyncOK      SyncStatus = "ok"
	SyncDeleted SyncStatus = "deleted"
	SyncError   SyncStatus = "error"
)

type Booking struct {
	ID      string
	BusID   string
	BusName string
	// DriverID is empty until a driver is assigned.
	DriverID          string
	DriverName        string
	ContactID         string
	ContactName       string
	ContactEmail      string
	ContactPhone      string
	CorporateClientID string

	StartTime       time.Time
	EndTime         time.Time
	PickupLocation  string
	DropoffLocation string
	PassengerCount  int

	Status           Status
	BookingType      Type
	BookingSource    Source
	Occasion         string
	QuoteAmount      *int64 // cents
	PaymentStatus    PaymentStatus
	PaymentReference string
	Notes            string

	CalendarEventID string
	EventSyncStatus SyncStatus
	EventLastSync   *time.Time
	// StaleEventID is an earlier event that could not be removed after the
	// booking moved. It lives on StaleEventDriverID's calendar.
	StaleEventID       string
	StaleEventDriverID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCalendarEvent reports whether a remote event may still exist for the booking.
func (b *Booking) HasCalendarEvent() bool {
	return b.CalendarEventID != "" && b.EventSyncStatus != SyncDeleted
}

type Filter struct {
	BusID             string
	DriverID          string
	ContactID         string
	CorporateClientID string
	Status            string
	From              *time.Time // bookings ending after this time
	To                *time.Time // bookings starting before this time
	Page              int
	PageSize          int
	SortOrder         string
}
