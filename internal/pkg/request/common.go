package request

import (
	"net/http"
	"strings"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

var ErrInvalidSortOrder = apperror.New(http.StatusBadRequest, apperror.KindValidation, "sort_order must be asc or desc")

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Validate performs custom validation for ByIDRequest.
func (r *ByIDRequest) Validate() error {
	return nil
}

// ListParams holds the shared paging and ordering query parameters.
type ListParams struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"min=1,max=200"`
	SortOrder string `form:"sort_order"`
}

// Normalize upper-cases the sort order and rejects anything but ASC/DESC.
func (p *ListParams) Normalize(defaultOrder string) error {
	if p.SortOrder == "" {
		p.SortOrder = defaultOrder
		return nil
	}
	p.SortOrder = strings.ToUpper(p.SortOrder)
	if p.SortOrder != "ASC" && p.SortOrder != "DESC" {
		return ErrInvalidSortOrder
	}
	return nil
}
