package response

import (
	"errors"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

// Warning describes a secondary failure that did not undo the primary mutation.
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Retry   string `json:"retry,omitempty"`
}

// NewWarning converts a side-effect error into a Warning, or nil when err is nil.
// retryPath tells the operator where to retry the failed step.
func NewWarning(err error, retryPath string) *Warning {
	if err == nil {
		return nil
	}
	w := &Warning{
		Kind:    string(apperror.KindOf(err)),
		Message: err.Error(),
		Retry:   retryPath,
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		w.Kind = string(apperror.KindSyncFailed)
	}
	return w
}
