package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/bus"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	"github.com/nekogravitycat/partybus-booking-backend/internal/metrics"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// TxManager runs fn atomically. Implemented by db.TxManager.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// DoSerializable must re-run fn when the store reports a serialization failure.
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// BusLookup is implemented by bus.Service.
type BusLookup interface {
	GetByID(ctx context.Context, id string) (*bus.Bus, error)
}

// DriverLookup is implemented by driver.Service.
type DriverLookup interface {
	GetByID(ctx context.Context, id string) (*driver.Driver, error)
}

// ContactResolver is the part of contact.Service the ledger writes through.
type ContactResolver interface {
	Resolve(ctx context.Context, details contact.Details, corporate *contact.CorporateInfo) (string, error)
	ApplyUpdates(ctx context.Context, id string, req contact.UpdateRequest) error
}

// CalendarSyncer mirrors confirmed bookings into the driver's external calendar.
// Implementations record the result on the booking they are given.
type CalendarSyncer interface {
	SyncBooking(ctx context.Context, b *Booking) error
	UnsyncBooking(ctx context.Context, b *Booking) error
	// RemoveStaleEvent deletes an event the booking no longer owns from driverID's calendar.
	RemoveStaleEvent(ctx context.Context, driverID, eventID string) error
}

// Outcome is the result of a ledger mutation with a calendar side effect.
// SyncWarning is set when the mutation committed but the calendar could not follow.
type Outcome struct {
	Booking     *Booking
	SyncWarning error
}

// Draft holds the booking fields of a quote request.
type Draft struct {
	BusID           string
	StartTime       time.Time
	EndTime         time.Time
	PickupLocation  string
	DropoffLocation string
	PassengerCount  int
	BookingSource   Source
	Occasion        string
	QuoteAmount     *int64
	Notes           string
}

// ExpressDraft is a one-hour booking paid up front. Every contact field is required.
type ExpressDraft struct {
	BusID          string
	StartTime      time.Time
	PassengerCount int
	Contact        contact.Details
}

// UpdateRequest carries optional field updates. The bus, status and contact are not updatable.
// An empty DriverID unassigns the driver.
type UpdateRequest struct {
	DriverID         *string
	StartTime        *time.Time
	EndTime          *time.Time
	PickupLocation   *string
	DropoffLocation  *string
	PassengerCount   *int
	BookingSource    *string
	Occasion         *string
	QuoteAmount      *int64
	PaymentStatus    *string
	PaymentReference *string
	Notes            *string
}

func (r UpdateRequest) changesSchedule() bool {
	return r.DriverID != nil || r.StartTime != nil || r.EndTime != nil
}

type Service interface {
	// Create resolves the contact and stores a pending, unpaid booking. Pending
	// bookings may overlap anything.
	Create(ctx context.Context, draft Draft, details contact.Details, corporate *contact.CorporateInfo) (*Booking, error)
	CreateExpress(ctx context.Context, draft ExpressDraft) (*Booking, error)
	// CheckCapacity rejects passenger counts above the bus capacity.
	CheckCapacity(ctx context.Context, busID string, passengers int) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Confirm assigns the driver and confirms a pending booking when neither the
	// bus nor the driver has an overlapping confirmed booking.
	Confirm(ctx context.Context, id, driverID string) (*Outcome, error)
	// ConfirmPaid confirms a pending booking after payment, without a driver.
	ConfirmPaid(ctx context.Context, id, paymentReference string) (*Outcome, error)
	// Update writes booking and contact fields together after re-running the conflict checks.
	Update(ctx context.Context, id string, req UpdateRequest, contactReq contact.UpdateRequest) (*Outcome, error)
	// Cancel is idempotent. The remote event is removed after the status change commits.
	Cancel(ctx context.Context, id string) (*Outcome, error)
	// ResyncCalendar retries the calendar sync of a confirmed booking.
	ResyncCalendar(ctx context.Context, id string) (*Booking, error)

	FindPendingExpress(ctx context.Context, contactID string, since time.Time) (*Booking, error)
	DriverTrips(ctx context.Context, driverID string, from, to time.Time) ([]driver.Trip, error)
}

type service struct {
	repo     Repository
	checker  *ConflictChecker
	tx       TxManager
	buses    BusLookup
	drivers  DriverLookup
	contacts ContactResolver
	calendar CalendarSyncer
	metrics  *metrics.Metrics
	log      *logrus.Logger
	loc      *time.Location
}

type Deps struct {
	Repo     Repository
	Tx       TxManager
	Buses    BusLookup
	Drivers  DriverLookup
	Contacts ContactResolver
	// Calendar may be nil when calendar sync is disabled.
	Calendar CalendarSyncer
	Metrics  *metrics.Metrics
	Log      *logrus.Logger
	// Location formats times in conflict messages.
	Location *time.Location
}

func NewService(d Deps) Service {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &service{
		repo:     d.Repo,
		checker:  NewConflictChecker(d.Repo),
		tx:       d.Tx,
		buses:    d.Buses,
		drivers:  d.Drivers,
		contacts: d.Contacts,
		calendar: d.Calendar,
		metrics:  d.Metrics,
		log:      log,
		loc:      loc,
	}
}

func (s *service) Create(ctx context.Context, draft Draft, details contact.Details, corporate *contact.CorporateInfo) (*Booking, error) {
	if err := validateDraft(draft.BusID, draft.StartTime, draft.EndTime, draft.PassengerCount); err != nil {
		return nil, s.fail("create", err)
	}
	if draft.BookingSource == "" {
		draft.BookingSource = SourceWebQuote
	}
	if !draft.BookingSource.Valid() {
		return nil, s.fail("create", ErrInvalidSource)
	}
	if draft.QuoteAmount != nil && *draft.QuoteAmount < 0 {
		return nil, s.fail("create", ErrInvalidQuote)
	}

	b := &Booking{
		BusID:           draft.BusID,
		StartTime:       draft.StartTime,
		EndTime:         draft.EndTime,
		PickupLocation:  strings.TrimSpace(draft.PickupLocation),
		DropoffLocation: strings.TrimSpace(draft.DropoffLocation),
		PassengerCount:  draft.PassengerCount,
		Status:          StatusPending,
		BookingType:     TypeStandard,
		BookingSource:   draft.BookingSource,
		Occasion:        draft.Occasion,
		QuoteAmount:     draft.QuoteAmount,
		PaymentStatus:   PaymentUnpaid,
		Notes:           draft.Notes,
	}
	if corporate != nil {
		b.CorporateClientID = corporate.ID
	}

	return s.insert(ctx, "create", b, details, corporate)
}

func (s *service) CreateExpress(ctx context.Context, draft ExpressDraft) (*Booking, error) {
	c := draft.Contact
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Phone) == "" {
		return nil, s.fail("create_express", ErrIncompleteContact)
	}
	end := draft.StartTime.Add(ExpressDuration)
	if draft.StartTime.IsZero() {
		end = time.Time{}
	}
	if err := validateDraft(draft.BusID, draft.StartTime, end, draft.PassengerCount); err != nil {
		return nil, s.fail("create_express", err)
	}

	b := &Booking{
		BusID:           draft.BusID,
		StartTime:       draft.StartTime,
		EndTime:         end,
		PickupLocation:  ExpressPlaceholder,
		DropoffLocation: ExpressPlaceholder,
		PassengerCount:  draft.PassengerCount,
		Status:          StatusPending,
		BookingType:     TypeExpress,
		BookingSource:   SourceWebQuote,
		PaymentStatus:   PaymentUnpaid,
	}
	return s.insert(ctx, "create_express", b, c, nil)
}

// insert resolves the contact and stores b in one transaction.
func (s *service) insert(ctx context.Context, op string, b *Booking, details contact.Details, corporate *contact.CorporateInfo) (*Booking, error) {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		contactID, err := s.contacts.Resolve(ctx, details, corporate)
		if err != nil {
			return err
		}
		b.ContactID = contactID
		return s.repo.Create(ctx, b)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transition(op, "ok")
	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"bus_id":     b.BusID,
		"contact_id": b.ContactID,
		"type":       b.BookingType,
	}).Info("booking request created")

	return s.reload(ctx, b), nil
}

func (s *service) CheckCapacity(ctx context.Context, busID string, passengers int) error {
	bs, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		if errors.Is(err, bus.ErrNotFound) {
			return ErrBusNotFound
		}
		return err
	}
	if passengers > bs.Capacity {
		return ErrCapacityExceeded.WithMessage(fmt.Sprintf("%s seats at most %d passengers", bs.Name, bs.Capacity))
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Confirm(ctx context.Context, id, driverID string) (*Outcome, error) {
	if driverID == "" {
		return nil, s.fail("confirm", ErrDriverRequired)
	}

	var confirmed *Booking
	err := s.tx.DoSerializable(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransition(StatusConfirmed) {
			return ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot confirm a %s booking", b.Status))
		}

		d, err := s.lookupDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, b, d, b.StartTime, b.EndTime); err != nil {
			return err
		}

		b.DriverID = d.ID
		b.DriverName = d.Name
		b.Status = StatusConfirmed
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		confirmed = b
		return nil
	})
	if err != nil {
		return nil, s.fail("confirm", err)
	}

	s.metrics.Transition("confirm", "ok")
	s.log.WithFields(logrus.Fields{"booking_id": id, "driver_id": driverID}).Info("booking confirmed")

	return &Outcome{Booking: confirmed, SyncWarning: s.sync(ctx, confirmed)}, nil
}

func (s *service) ConfirmPaid(ctx context.Context, id, paymentReference string) (*Outcome, error) {
	var confirmed *Booking
	err := s.tx.DoSerializable(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransition(StatusConfirmed) {
			return ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot confirm a %s booking", b.Status))
		}
		if err := s.checkConflicts(ctx, b, nil, b.StartTime, b.EndTime); err != nil {
			return err
		}

		b.Status = StatusConfirmed
		b.PaymentStatus = PaymentPaidInFull
		b.PaymentReference = paymentReference
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		confirmed = b
		return nil
	})
	if err != nil {
		return nil, s.fail("confirm_paid", err)
	}

	s.metrics.Transition("confirm_paid", "ok")
	s.log.WithFields(logrus.Fields{"booking_id": id, "payment_reference": paymentReference}).Info("booking confirmed by payment")

	return &Outcome{Booking: confirmed}, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, contactReq contact.UpdateRequest) (*Outcome, error) {
	var before, after *Booking
	err := s.tx.DoSerializable(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		old := *b

		if err := applyUpdate(b, req); err != nil {
			return err
		}

		var d *driver.Driver
		if req.DriverID != nil && b.DriverID != "" {
			if d, err = s.lookupDriver(ctx, b.DriverID); err != nil {
				return err
			}
			b.DriverName = d.Name
		} else if b.DriverID != "" {
			d = &driver.Driver{ID: b.DriverID, Name: b.DriverName}
		} else {
			b.DriverName = ""
		}

		// A confirmed booking must keep both schedules free of overlaps. A pending
		// one is only checked when it is being moved, so edits such as notes never conflict.
		if b.Status == StatusConfirmed || (b.Status == StatusPending && req.changesSchedule()) {
			if err := s.checkConflicts(ctx, b, d, b.StartTime, b.EndTime); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		if !contactReq.IsEmpty() {
			if err := s.contacts.ApplyUpdates(ctx, b.ContactID, contactReq); err != nil {
				return err
			}
		}

		before, after = &old, b
		return nil
	})
	if err != nil {
		return nil, s.fail("update", err)
	}

	s.metrics.Transition("update", "ok")
	s.log.WithField("booking_id", id).Info("booking updated")

	out := &Outcome{Booking: after}
	if after.Status == StatusConfirmed && scheduleMoved(before, after) {
		var warnings []error
		if after.StaleEventID != "" && s.calendar != nil {
			warnings = append(warnings, s.removeStale(ctx, after))
		}
		if before.DriverID != "" && before.HasCalendarEvent() {
			if err := s.unsync(ctx, before); err != nil {
				warnings = append(warnings, s.keepStale(ctx, after, before, err))
			}
			after.CalendarEventID = ""
			after.EventSyncStatus = before.EventSyncStatus
		}
		if after.DriverID != "" {
			warnings = append(warnings, s.sync(ctx, after))
		}
		out.SyncWarning = errors.Join(warnings...)
	}
	if !contactReq.IsEmpty() {
		out.Booking = s.reload(ctx, after)
	}
	return out, nil
}

func (s *service) Cancel(ctx context.Context, id string) (*Outcome, error) {
	var previous Status
	var cancelled *Booking
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous = b.Status
		cancelled = b
		if b.Status == StatusCancelled {
			return nil
		}

		b.Status = StatusCancelled
		return s.repo.Update(ctx, b)
	})
	if err != nil {
		return nil, s.fail("cancel", err)
	}

	out := &Outcome{Booking: cancelled}
	if previous == StatusCancelled {
		return out, nil
	}

	s.metrics.Transition("cancel", "ok")
	s.log.WithFields(logrus.Fields{"booking_id": id, "previous_status": previous}).Info("booking cancelled")

	var warnings []error
	if cancelled.DriverID != "" && cancelled.HasCalendarEvent() {
		warnings = append(warnings, s.unsync(ctx, cancelled))
	}
	if cancelled.StaleEventID != "" && s.calendar != nil {
		warnings = append(warnings, s.removeStale(ctx, cancelled))
	}
	out.SyncWarning = errors.Join(warnings...)
	return out, nil
}

func (s *service) ResyncCalendar(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current := b.CalendarEventID != "" && b.EventSyncStatus == SyncOK
	if b.StaleEventID == "" {
		if b.Status != StatusConfirmed || b.DriverID == "" {
			return nil, ErrNotSyncable
		}
		if current {
			return b, nil
		}
	}
	if s.calendar == nil {
		return nil, ErrNotSyncable.WithMessage("calendar sync is disabled")
	}

	if b.StaleEventID != "" {
		if err := s.removeStale(ctx, b); err != nil {
			return nil, err
		}
	}
	if b.Status != StatusConfirmed || b.DriverID == "" || current {
		return b, nil
	}
	if err := s.calendar.SyncBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) FindPendingExpress(ctx context.Context, contactID string, since time.Time) (*Booking, error) {
	return s.repo.FindRecentPendingExpress(ctx, contactID, since)
}

func (s *service) DriverTrips(ctx context.Context, driverID string, from, to time.Time) ([]driver.Trip, error) {
	bookings, err := s.repo.ListConfirmed(ctx, ResourceDriver, driverID, from, to)
	if err != nil {
		return nil, err
	}

	trips := make([]driver.Trip, 0, len(bookings))
	for _, b := range bookings {
		trips = append(trips, TripOf(b))
	}
	return trips, nil
}

// TripOf describes b from the driver's point of view.
func TripOf(b *Booking) driver.Trip {
	return driver.Trip{
		BookingID:       b.ID,
		BusName:         b.BusName,
		ClientName:      b.ContactName,
		ClientPhone:     b.ContactPhone,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		PassengerCount:  b.PassengerCount,
		Notes:           b.Notes,
		Start:           b.StartTime,
		End:             b.EndTime,
	}
}

// checkConflicts rejects [start, end) when the bus, or d when given, already has
// an overlapping confirmed booking other than b itself.
func (s *service) checkConflicts(ctx context.Context, b *Booking, d *driver.Driver, start, end time.Time) error {
	clash, err := s.checker.FindConflict(ctx, ResourceVehicle, b.BusID, b.ID, start, end)
	if err != nil {
		return err
	}
	if clash != nil {
		s.metrics.Conflict(string(ResourceVehicle))
		return ErrVehicleConflict.WithMessage(fmt.Sprintf("%s is already booked from %s", nameOr(b.BusName, "the bus"), s.span(clash)))
	}

	if d == nil {
		return nil
	}
	clash, err = s.checker.FindConflict(ctx, ResourceDriver, d.ID, b.ID, start, end)
	if err != nil {
		return err
	}
	if clash != nil {
		s.metrics.Conflict(string(ResourceDriver))
		return ErrDriverConflict.WithMessage(fmt.Sprintf("%s is already scheduled from %s", nameOr(d.Name, "the driver"), s.span(clash)))
	}
	return nil
}

func (s *service) span(b *Booking) string {
	start := b.StartTime.In(s.loc)
	end := b.EndTime.In(s.loc)
	if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
		return fmt.Sprintf("%s to %s", start.Format("Jan 2 15:04"), end.Format("15:04 MST"))
	}
	return fmt.Sprintf("%s to %s", start.Format("Jan 2 15:04"), end.Format("Jan 2 15:04 MST"))
}

func (s *service) lookupDriver(ctx context.Context, id string) (*driver.Driver, error) {
	d, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return d, nil
}

// sync pushes b to the calendar and returns the failure as a warning.
func (s *service) sync(ctx context.Context, b *Booking) error {
	if s.calendar == nil || b.DriverID == "" {
		return nil
	}
	if err := s.calendar.SyncBooking(ctx, b); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"driver_id":  b.DriverID,
		}).Warn("calendar sync failed; booking state kept")
		return err
	}
	return nil
}

func (s *service) unsync(ctx context.Context, b *Booking) error {
	if s.calendar == nil {
		return nil
	}
	if err := s.calendar.UnsyncBooking(ctx, b); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"driver_id":  b.DriverID,
			"event_id":   b.CalendarEventID,
		}).Warn("calendar event removal failed; booking state kept")
		return err
	}
	return nil
}

// keepStale records before's event on after when removing it failed, so
// ResyncCalendar and Cancel can delete it later.
func (s *service) keepStale(ctx context.Context, after, before *Booking, cause error) error {
	warning := fmt.Errorf("event %s is still on driver %s's calendar: %w", before.CalendarEventID, before.DriverID, cause)
	if after.StaleEventID != "" {
		s.log.WithFields(logrus.Fields{
			"booking_id": after.ID,
			"driver_id":  after.StaleEventDriverID,
			"event_id":   after.StaleEventID,
		}).Error("stale calendar event replaced before removal; delete it by hand")
	}
	if err := s.repo.SetStaleEvent(ctx, after.ID, before.CalendarEventID, before.DriverID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": after.ID,
			"event_id":   before.CalendarEventID,
		}).Error("record stale calendar event failed")
		return errors.Join(warning, err)
	}
	after.StaleEventID, after.StaleEventDriverID = before.CalendarEventID, before.DriverID
	return warning
}

func (s *service) removeStale(ctx context.Context, b *Booking) error {
	entry := s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"driver_id":  b.StaleEventDriverID,
		"event_id":   b.StaleEventID,
	})
	if err := s.calendar.RemoveStaleEvent(ctx, b.StaleEventDriverID, b.StaleEventID); err != nil {
		entry.WithError(err).Warn("stale calendar event removal failed")
		return err
	}
	if err := s.repo.SetStaleEvent(ctx, b.ID, "", ""); err != nil {
		return err
	}
	entry.Info("stale calendar event removed")
	b.StaleEventID, b.StaleEventDriverID = "", ""
	return nil
}

// reload re-reads b for the joined names, falling back to b on error.
func (s *service) reload(ctx context.Context, b *Booking) *Booking {
	fresh, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("reload booking failed")
		return b
	}
	return fresh
}

func (s *service) fail(op string, err error) error {
	kind := apperror.KindOf(err)
	s.metrics.Transition(op, string(kind))
	entry := s.log.WithError(err).WithField("operation", op)
	if kind == apperror.KindInternal {
		entry.Error("booking ledger operation failed")
	} else {
		entry.Info("booking ledger operation rejected")
	}
	return err
}

func validateDraft(busID string, start, end time.Time, passengers int) error {
	if busID == "" {
		return ErrMissingBus
	}
	if start.IsZero() || end.IsZero() {
		return ErrMissingTime
	}
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	if passengers < 1 {
		return ErrInvalidPassengerCount
	}
	return nil
}

func applyUpdate(b *Booking, req UpdateRequest) error {
	if req.DriverID != nil {
		b.DriverID = *req.DriverID
	}
	if req.StartTime != nil {
		b.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		b.EndTime = *req.EndTime
	}
	if !b.EndTime.After(b.StartTime) {
		return ErrInvalidTimeRange
	}
	if req.PickupLocation != nil {
		b.PickupLocation = strings.TrimSpace(*req.PickupLocation)
	}
	if req.DropoffLocation != nil {
		b.DropoffLocation = strings.TrimSpace(*req.DropoffLocation)
	}
	if req.PassengerCount != nil {
		if *req.PassengerCount < 1 {
			return ErrInvalidPassengerCount
		}
		b.PassengerCount = *req.PassengerCount
	}
	if req.BookingSource != nil {
		src := Source(*req.BookingSource)
		if !src.Valid() {
			return ErrInvalidSource
		}
		b.BookingSource = src
	}
	if req.Occasion != nil {
		b.Occasion = *req.Occasion
	}
	if req.QuoteAmount != nil {
		if *req.QuoteAmount < 0 {
			return ErrInvalidQuote
		}
		amount := *req.QuoteAmount
		b.QuoteAmount = &amount
	}
	if req.PaymentStatus != nil {
		ps := PaymentStatus(*req.PaymentStatus)
		if !ps.Valid() {
			return ErrInvalidPaymentStatus
		}
		b.PaymentStatus = ps
	}
	if req.PaymentReference != nil {
		b.PaymentReference = *req.PaymentReference
	}
	if req.Notes != nil {
		b.Notes = *req.Notes
	}
	return nil
}

func scheduleMoved(before, after *Booking) bool {
	return before.DriverID != after.DriverID ||
		!before.StartTime.Equal(after.StartTime) ||
		!before.EndTime.Equal(after.EndTime)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
