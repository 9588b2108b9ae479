package contact

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, apperror.KindNotFound, "contact not found")
	ErrEmptyName        = apperror.New(http.StatusBadRequest, apperror.KindValidation, "name cannot be empty")
	ErrEmptyEmail       = apperror.New(http.StatusBadRequest, apperror.KindValidation, "email cannot be empty")
	ErrEmailAlreadyUsed = apperror.New(http.StatusConflict, apperror.KindValidation, "email already belongs to another contact")
	ErrCorporateMissing = apperror.New(http.StatusBadRequest, apperror.KindValidation, "corporate client does not exist")
)

// Contact is the identity behind one or more booking requests.
type Contact struct {
	ID                string
	Name              string
	Email             string
	Phone             string
	CorporateClientID string
	// CompanyName is read from the linked corporate client.
	CompanyName string
	Source      string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Details are the requester fields collected by booking forms.
type Details struct {
	Name   string
	Email  string
	Phone  string
	Source string
}

// CorporateInfo links a newly created contact to a partner.
type CorporateInfo struct {
	ID   string
	Name string
}

// Filter defines parameters for listing contacts.
type Filter struct {
	Search            string
	CorporateClientID string
	Page              int
	PageSize          int
	SortOrder         string
}
