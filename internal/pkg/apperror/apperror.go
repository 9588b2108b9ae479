package apperror

import "errors"

// Kind classifies an error for callers that need to react to the category
// rather than the exact sentinel (e.g. "any conflict" or "any calendar failure").
type Kind string

const (
	KindInternal           Kind = "internal"
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindVehicleConflict    Kind = "vehicle_conflict"
	KindDriverConflict     Kind = "driver_conflict"
	KindProvisioningFailed Kind = "provisioning_failed"
	KindSyncFailed         Kind = "sync_failed"
	KindUnauthorized       Kind = "unauthorized"
)

// AppError is a custom error type that includes an HTTP status code, a kind and an optional cause.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Error taxonomy bucket
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code, kind and message.
func New(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithMessage derives an error from a sentinel with a more specific message.
// The result still matches the sentinel through errors.Is.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: message,
		Err:     e,
	}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
