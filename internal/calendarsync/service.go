package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	"github.com/nekogravitycat/partybus-booking-backend/internal/config"
	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	"github.com/nekogravitycat/partybus-booking-backend/internal/metrics"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/retry"
	"github.com/sirupsen/logrus"
)

var (
	ErrProvisioningFailed = apperror.New(http.StatusBadGateway, apperror.KindProvisioningFailed, "calendar provisioning failed")
	ErrSyncFailed         = apperror.New(http.StatusBadGateway, apperror.KindSyncFailed, "calendar sync failed")
	ErrDriverNotSynced    = apperror.New(http.StatusConflict, apperror.KindSyncFailed, "the driver has no synced calendar")
	ErrMissingEmail       = apperror.New(http.StatusBadRequest, apperror.KindValidation, "the driver needs an email address to share a calendar")
)

// DriverStore is the part of driver.Service the adapter reads and flags.
type DriverStore interface {
	GetByID(ctx context.Context, id string) (*driver.Driver, error)
	SetCalendar(ctx context.Context, id, calendarID string) error
	MarkCalendarError(ctx context.Context, id, message string) error
}

// EventStore records sync metadata on bookings. Implemented by booking.Repository.
type EventStore interface {
	SetCalendarEvent(ctx context.Context, bookingID, eventID string, status booking.SyncStatus, at time.Time) error
}

type Service struct {
	provider Provider
	drivers  DriverStore
	events   EventStore
	cfg      config.CalendarConfig
	metrics  *metrics.Metrics
	log      *logrus.Logger

	// provisionMu keeps concurrent provisioning of one driver from creating two calendars.
	provisionMu sync.Mutex

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(provider Provider, drivers DriverStore, events EventStore, cfg config.CalendarConfig, m *metrics.Metrics, log *logrus.Logger) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Service{
		provider: provider,
		drivers:  drivers,
		events:   events,
		cfg:      cfg,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// ProvisionCalendar creates and shares the driver's calendar unless it already has one.
func (s *Service) ProvisionCalendar(ctx context.Context, driverID string) (string, error) {
	s.provisionMu.Lock()
	defer s.provisionMu.Unlock()

	d, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return "", err
	}
	if d.Synced() {
		return d.CalendarID, nil
	}
	if d.Email == "" {
		return "", ErrMissingEmail
	}

	entry := s.log.WithField("driver_id", d.ID)

	if p, ok := s.provider.(Preflighter); ok {
		if err := p.Preflight(ctx); err != nil {
			return "", s.provisionFailed(ctx, entry, d.ID, err)
		}
	}

	calendarID, err := s.provider.CreateCalendar(ctx, s.cfg.CalendarPrefix+d.Name, s.cfg.Timezone, d.Email)
	if err != nil {
		return "", s.provisionFailed(ctx, entry, d.ID, err)
	}
	s.metrics.SyncAttempt("provision", "ok")

	if err := s.drivers.SetCalendar(ctx, d.ID, calendarID); err != nil {
		return "", fmt.Errorf("record calendar %s for driver %s: %w", calendarID, d.ID, err)
	}
	entry.WithField("calendar_id", calendarID).Info("driver calendar provisioned")
	return calendarID, nil
}

func (s *Service) provisionFailed(ctx context.Context, entry *logrus.Entry, driverID string, cause error) error {
	s.metrics.SyncAttempt("provision", "error")
	msg := remoteMessage(cause)
	entry.WithError(cause).Error("driver calendar provisioning failed")
	s.flagDriver(ctx, driverID, msg)
	return ErrProvisioningFailed.WithMessage("calendar provisioning failed: " + msg)
}

// AddEvent inserts trip into the calendar, retrying with a linearly growing
// delay. The driver is flagged when every attempt fails.
func (s *Service) AddEvent(ctx context.Context, driverID, calendarID string, trip driver.Trip) (string, error) {
	event := s.eventFor(trip)
	entry := s.log.WithFields(logrus.Fields{"driver_id": driverID, "booking_id": trip.BookingID})

	var eventID string
	policy := retry.Policy{
		Attempts: s.cfg.MaxAttempts,
		Delay:    retry.Linear(s.cfg.BackoffStep.Duration),
		Sleep:    s.sleep,
	}
	err := retry.Do(ctx, policy, func(attempt int) error {
		id, err := s.provider.CreateEvent(ctx, calendarID, event)
		if err != nil {
			s.metrics.SyncAttempt("create_event", "error")
			entry.WithError(err).WithField("attempt", attempt).Warn("calendar event insert failed")
			return err
		}
		s.metrics.SyncAttempt("create_event", "ok")
		eventID = id
		return nil
	})
	if err != nil {
		msg := remoteMessage(err)
		entry.WithError(err).Error("calendar event insert gave up")
		s.flagDriver(ctx, driverID, msg)
		return "", ErrSyncFailed.WithMessage("calendar event insert failed: " + msg)
	}
	return eventID, nil
}

// RemoveEvent deletes an event. An event that is already gone counts as removed.
func (s *Service) RemoveEvent(ctx context.Context, driverID, calendarID, eventID string) error {
	entry := s.log.WithFields(logrus.Fields{"driver_id": driverID, "event_id": eventID})

	err := s.provider.DeleteEvent(ctx, calendarID, eventID)
	switch {
	case err == nil:
		s.metrics.SyncAttempt("delete_event", "ok")
		return nil
	case errors.Is(err, ErrRemoteNotFound):
		s.metrics.SyncAttempt("delete_event", "gone")
		entry.Warn("calendar event was already deleted")
		return nil
	}

	s.metrics.SyncAttempt("delete_event", "error")
	msg := remoteMessage(err)
	entry.WithError(err).Error("calendar event delete failed")
	s.flagDriver(ctx, driverID, msg)
	return ErrSyncFailed.WithMessage("calendar event delete failed: " + msg)
}

// SyncBooking puts b on its driver's calendar and records the outcome on b.
func (s *Service) SyncBooking(ctx context.Context, b *booking.Booking) error {
	d, err := s.drivers.GetByID(ctx, b.DriverID)
	if err != nil {
		return err
	}
	if !d.Synced() {
		s.record(ctx, b, "", booking.SyncError)
		return ErrDriverNotSynced.WithMessage(fmt.Sprintf("%s has no synced calendar; sync the driver first", d.Name))
	}

	eventID, err := s.AddEvent(ctx, d.ID, d.CalendarID, booking.TripOf(b))
	if err != nil {
		s.record(ctx, b, "", booking.SyncError)
		return err
	}
	b.CalendarEventID = eventID
	return s.record(ctx, b, eventID, booking.SyncOK)
}

// UnsyncBooking removes b's event from the calendar of the driver it was synced for.
func (s *Service) UnsyncBooking(ctx context.Context, b *booking.Booking) error {
	if !b.HasCalendarEvent() {
		return nil
	}
	d, err := s.drivers.GetByID(ctx, b.DriverID)
	if err != nil {
		return err
	}
	if !d.Synced() {
		return ErrDriverNotSynced.WithMessage(fmt.Sprintf("%s has no synced calendar; remove event %s by hand", d.Name, b.CalendarEventID))
	}

	if err := s.RemoveEvent(ctx, d.ID, d.CalendarID, b.CalendarEventID); err != nil {
		s.record(ctx, b, "", booking.SyncError)
		return err
	}
	return s.record(ctx, b, "", booking.SyncDeleted)
}

// RemoveStaleEvent deletes an event left behind by a reschedule. The booking's
// own sync status is not touched.
func (s *Service) RemoveStaleEvent(ctx context.Context, driverID, eventID string) error {
	d, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if !d.Synced() {
		return ErrDriverNotSynced.WithMessage(fmt.Sprintf("%s has no synced calendar; remove event %s by hand", d.Name, eventID))
	}
	return s.RemoveEvent(ctx, d.ID, d.CalendarID, eventID)
}

func (s *Service) record(ctx context.Context, b *booking.Booking, eventID string, status booking.SyncStatus) error {
	at := s.now()
	b.EventSyncStatus = status
	b.EventLastSync = &at
	if err := s.events.SetCalendarEvent(ctx, b.ID, eventID, status, at); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Error("record calendar sync status failed")
		return fmt.Errorf("record calendar sync status: %w", err)
	}
	return nil
}

func (s *Service) flagDriver(ctx context.Context, driverID, msg string) {
	if err := s.drivers.MarkCalendarError(ctx, driverID, msg); err != nil {
		s.log.WithError(err).WithField("driver_id", driverID).Error("flag driver calendar error failed")
	}
}

func (s *Service) eventFor(t driver.Trip) Event {
	passengers := "-"
	if t.PassengerCount > 0 {
		passengers = strconv.Itoa(t.PassengerCount)
	}
	lines := []string{
		"Client: " + orDash(t.ClientName),
		"Phone: " + orDash(t.ClientPhone),
		"Pickup: " + orDash(t.PickupLocation),
		"Dropoff: " + orDash(t.DropoffLocation),
		"Passengers: " + passengers,
	}
	if t.Notes != "" {
		lines = append(lines, "Notes: "+t.Notes)
	}

	return Event{
		Summary:              "Trip: " + orDash(t.BusName),
		Description:          strings.Join(lines, "\n"),
		Location:             t.PickupLocation,
		Start:                t.Start,
		End:                  t.End,
		Timezone:             s.cfg.Timezone,
		ColorID:              s.cfg.EventColorID,
		PopupReminderMinutes: s.cfg.ReminderPopupMinutes,
		EmailReminderMinutes: s.cfg.ReminderEmailMinutes,
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
