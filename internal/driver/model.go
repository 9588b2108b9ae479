package driver

import (
	"context"
	"net/http"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, apperror.KindNotFound, "driver not found")
	ErrEmptyName     = apperror.New(http.StatusBadRequest, apperror.KindValidation, "name cannot be empty")
	ErrInvalidStatus = apperror.New(http.StatusBadRequest, apperror.KindValidation, "status must be active, on_leave or inactive")
	ErrInvalidEmail  = apperror.New(http.StatusBadRequest, apperror.KindValidation, "email is not valid")
	ErrInvalidRange  = apperror.New(http.StatusBadRequest, apperror.KindValidation, "schedule range end must be after start")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusOnLeave  Status = "on_leave"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusInactive:
		return true
	}
	return false
}

// CalendarStatus is the health of the driver's external calendar.
type CalendarStatus string

const (
	CalendarNone  CalendarStatus = ""
	CalendarOK    CalendarStatus = "ok"
	CalendarError CalendarStatus = "error"
)

type Driver struct {
	ID       string
	Name     string
	Phone    string
	Email    string
	Status   Status
	ImageURL string
	Notes    string

	// CalendarID is set once the driver's external calendar has been provisioned.
	CalendarID        string
	CalendarStatus    CalendarStatus
	CalendarError     string
	CalendarCreatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Synced reports whether the driver can receive calendar events.
func (d *Driver) Synced() bool {
	return d.CalendarID != ""
}

type Filter struct {
	Status    string
	Search    string
	Page      int
	PageSize  int
	SortOrder string
}

// Trip is one confirmed booking as seen from the driver's seat.
type Trip struct {
	BookingID       string
	BusName         string
	ClientName      string
	ClientPhone     string
	PickupLocation  string
	DropoffLocation string
	PassengerCount  int
	Notes           string
	Start           time.Time
	End             time.Time
}

// TripSource lists a driver's confirmed trips overlapping [from, to), ordered by start.
// A zero from or to leaves that side of the range open.
type TripSource interface {
	DriverTrips(ctx context.Context, driverID string, from, to time.Time) ([]Trip, error)
}
