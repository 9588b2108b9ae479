// Package calendarsync mirrors confirmed bookings into per-driver external calendars.
package calendarsync

import (
	"context"
	"errors"
	"time"
)

// ErrRemoteNotFound is returned by providers when the calendar object is already gone.
var ErrRemoteNotFound = errors.New("remote calendar object not found")

// Event is one trip on a driver's calendar.
type Event struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Timezone    string
	ColorID     string

	PopupReminderMinutes int64
	EmailReminderMinutes int64
}

// Provider is an external calendar backend.
type Provider interface {
	// CreateCalendar creates a calendar and gives granteeEmail write access to it.
	CreateCalendar(ctx context.Context, summary, timezone, granteeEmail string) (string, error)
	CreateEvent(ctx context.Context, calendarID string, e Event) (string, error)
	// DeleteEvent returns ErrRemoteNotFound when the event does not exist.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Preflighter is implemented by providers that can verify their setup before provisioning.
type Preflighter interface {
	Preflight(ctx context.Context) error
}
