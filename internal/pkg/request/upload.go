package request

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

// DefaultImageField is the multipart field photo uploads use.
const DefaultImageField = "image"

// OpenUpload returns the uploaded file in field. The caller closes it.
func OpenUpload(c *gin.Context, field string) (multipart.File, error) {
	if field == "" {
		field = DefaultImageField
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, apperror.Wrap(err, http.StatusBadRequest, apperror.KindValidation, field+" is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload failed: %w", err)
	}
	return f, nil
}
