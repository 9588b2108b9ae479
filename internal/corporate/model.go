package corporate

import (
	"net/http"
	"regexp"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, apperror.KindNotFound, "corporate client not found")
	ErrEmptyName    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "name cannot be empty")
	ErrInvalidSlug  = apperror.New(http.StatusBadRequest, apperror.KindValidation, "slug must be lowercase letters, digits and single dashes")
	ErrSlugTaken    = apperror.New(http.StatusConflict, apperror.KindValidation, "slug already in use")
	ErrInvalidState = apperror.New(http.StatusBadRequest, apperror.KindValidation, "status must be active or inactive")
	ErrInactive     = apperror.New(http.StatusNotFound, apperror.KindNotFound, "booking portal is not available")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CorporateClient is a partner organisation with its own booking portal.
type CorporateClient struct {
	ID             string
	Name           string
	Slug           string
	LogoURL        string
	DefaultPickup  string
	DefaultDropoff string
	Status         Status
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Filter struct {
	Status    string
	Page      int
	PageSize  int
	SortOrder string
}
