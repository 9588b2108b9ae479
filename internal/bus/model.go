package bus

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, apperror.KindNotFound, "bus not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, apperror.KindValidation, "name cannot be empty")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, apperror.KindValidation, "capacity must be greater than zero")
	ErrInvalidStatus   = apperror.New(http.StatusBadRequest, apperror.KindValidation, "status must be active, maintenance or inactive")
	ErrInvalidPrice    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "starting price cannot be negative")
)

// Status is advisory: the conflict checker does not look at it.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// Bus is a bookable vehicle. Buses are never deleted.
type Bus struct {
	ID       string
	Name     string
	Capacity int
	Status   Status
	// Color is a presentation tag for schedule views.
	Color    string
	Features []string
	// StartingPrice is in cents.
	StartingPrice int64
	ImageURL      string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Filter struct {
	Status    string
	Page      int
	PageSize  int
	SortOrder string
}
