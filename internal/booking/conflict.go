package booking

import (
	"context"
	"time"
)

// Resource is a schedule that confirmed bookings must not double-book.
type Resource string

const (
	ResourceVehicle Resource = "vehicle"
	ResourceDriver  Resource = "driver"
)

// Overlaps reports whether [s1, e1) and [s2, e2) share an instant.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// ScheduleReader loads confirmed bookings of one resource. Implemented by Repository.
type ScheduleReader interface {
	// ListConfirmed returns confirmed bookings of the resource that may intersect [from, to).
	// Zero bounds are open. Results are ordered by start time.
	ListConfirmed(ctx context.Context, resource Resource, resourceID string, from, to time.Time) ([]*Booking, error)
}

// ConflictChecker finds confirmed bookings that would overlap a proposed interval.
// On its own it is only advisory; callers run it inside a serializable transaction
// together with the write it guards.
type ConflictChecker struct {
	schedules ScheduleReader
}

func NewConflictChecker(schedules ScheduleReader) *ConflictChecker {
	return &ConflictChecker{schedules: schedules}
}

// FindConflict returns the first confirmed booking of the resource, other than
// excludeID, that overlaps [start, end), or nil. An empty resourceID never conflicts.
func (c *ConflictChecker) FindConflict(ctx context.Context, resource Resource, resourceID, excludeID string, start, end time.Time) (*Booking, error) {
	if resourceID == "" {
		return nil, nil
	}

	confirmed, err := c.schedules.ListConfirmed(ctx, resource, resourceID, start, end)
	if err != nil {
		return nil, err
	}
	for _, b := range confirmed {
		if b.ID == excludeID || b.Status != StatusConfirmed {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return b, nil
		}
	}
	return nil, nil
}

// HasConflict reports whether FindConflict would return a booking.
func (c *ConflictChecker) HasConflict(ctx context.Context, resource Resource, resourceID, excludeID string, start, end time.Time) (bool, error) {
	b, err := c.FindConflict(ctx, resource, resourceID, excludeID, start, end)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}
