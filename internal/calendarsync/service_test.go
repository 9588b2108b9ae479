package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	"github.com/nekogravitycat/partybus-booking-backend/internal/config"
	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	"github.com/nekogravitycat/partybus-booking-backend/internal/logger"
	"github.com/nekogravitycat/partybus-booking-backend/internal/metrics"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeProvider struct {
	mu sync.Mutex

	calendars   int
	grantee     string
	summary     string
	events      map[string]Event
	deleted     []string
	createCalls int

	preflightErr error
	calendarErr  error
	// eventFailures makes the first n CreateEvent calls fail.
	eventFailures int
	eventErr      error
	deleteErr     error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: map[string]Event{}}
}

func (p *fakeProvider) Preflight(context.Context) error {
	return p.preflightErr
}

func (p *fakeProvider) CreateCalendar(_ context.Context, summary, _ string, grantee string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calendarErr != nil {
		return "", p.calendarErr
	}
	p.calendars++
	p.summary = summary
	p.grantee = grantee
	return fmt.Sprintf("cal-%d", p.calendars), nil
}

func (p *fakeProvider) CreateEvent(_ context.Context, _ string, e Event) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	if p.createCalls <= p.eventFailures {
		return "", p.eventErr
	}
	id := fmt.Sprintf("evt-%d", p.createCalls)
	p.events[id] = e
	return id, nil
}

func (p *fakeProvider) DeleteEvent(_ context.Context, _ string, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	if _, ok := p.events[eventID]; !ok {
		return ErrRemoteNotFound
	}
	delete(p.events, eventID)
	p.deleted = append(p.deleted, eventID)
	return nil
}

type fakeDrivers struct {
	drivers map[string]*driver.Driver
}

func (f *fakeDrivers) GetByID(_ context.Context, id string) (*driver.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, driver.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDrivers) SetCalendar(_ context.Context, id, calendarID string) error {
	d := f.drivers[id]
	d.CalendarID = calendarID
	d.CalendarStatus = driver.CalendarOK
	d.CalendarError = ""
	return nil
}

func (f *fakeDrivers) MarkCalendarError(_ context.Context, id, message string) error {
	d := f.drivers[id]
	d.CalendarStatus = driver.CalendarError
	d.CalendarError = message
	return nil
}

type syncRecord struct {
	eventID string
	status  booking.SyncStatus
}

type fakeEvents struct {
	records map[string][]syncRecord
}

func (f *fakeEvents) SetCalendarEvent(_ context.Context, bookingID, eventID string, status booking.SyncStatus, _ time.Time) error {
	f.records[bookingID] = append(f.records[bookingID], syncRecord{eventID, status})
	return nil
}

type fixture struct {
	provider *fakeProvider
	drivers  *fakeDrivers
	events   *fakeEvents
	metrics  *metrics.Metrics
	waits    []time.Duration
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		provider: newFakeProvider(),
		drivers: &fakeDrivers{drivers: map[string]*driver.Driver{
			"d1": {ID: "d1", Name: "Sam", Email: "sam@example.com"},
			"d2": {ID: "d2", Name: "Alex", Email: "alex@example.com", CalendarID: "cal-existing", CalendarStatus: driver.CalendarOK},
			"d3": {ID: "d3", Name: "Pat"},
		}},
		events:  &fakeEvents{records: map[string][]syncRecord{}},
		metrics: metrics.New(),
	}
	cfg := config.DefaultFeatureConfig().Calendar
	f.svc = NewService(f.provider, f.drivers, f.events, cfg, f.metrics, logger.Discard())
	f.svc.sleep = func(_ context.Context, d time.Duration) error {
		f.waits = append(f.waits, d)
		return nil
	}
	f.svc.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func confirmedBooking(driverID string) *booking.Booking {
	return &booking.Booking{
		ID:              "bk-1",
		BusID:           "v1",
		BusName:         "Limo Coach",
		DriverID:        driverID,
		ContactName:     "Jane Doe",
		ContactPhone:    "555-0100",
		PickupLocation:  "Downtown",
		DropoffLocation: "Airport",
		PassengerCount:  12,
		Status:          booking.StatusConfirmed,
		StartTime:       time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC),
		EndTime:         time.Date(2024, 7, 1, 22, 0, 0, 0, time.UTC),
	}
}

func TestProvisionCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.ProvisionCalendar(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "cal-1", id)
	assert.Equal(t, "sam@example.com", f.provider.grantee)
	assert.Equal(t, "Party Bus - Sam", f.provider.summary)
	assert.Equal(t, "cal-1", f.drivers.drivers["d1"].CalendarID)
	assert.Equal(t, driver.CalendarOK, f.drivers.drivers["d1"].CalendarStatus)

	again, err := f.svc.ProvisionCalendar(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, f.provider.calendars)
}

func TestProvisionCalendar_ConcurrentCallsCreateOne(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.ProvisionCalendar(context.Background(), "d1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.provider.calendars)
}

func TestProvisionCalendar_Failures(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ProvisionCalendar(context.Background(), "d3")
		assert.ErrorIs(t, err, ErrMissingEmail)
		assert.Zero(t, f.provider.calendars)
	})

	t.Run("api disabled", func(t *testing.T) {
		f := newFixture(t)
		f.provider.preflightErr = errors.New(disabledChecklist("demo-project"))
		_, err := f.svc.ProvisionCalendar(context.Background(), "d1")
		require.ErrorIs(t, err, ErrProvisioningFailed)
		assert.Contains(t, err.Error(), "Click ENABLE")
		assert.Zero(t, f.provider.calendars)
		assert.Equal(t, driver.CalendarError, f.drivers.drivers["d1"].CalendarStatus)
	})

	t.Run("upstream message preferred", func(t *testing.T) {
		f := newFixture(t)
		f.provider.calendarErr = fmt.Errorf("insert: %w", &googleapi.Error{Code: http.StatusForbidden, Message: "Not Authorized to access this resource/api"})
		_, err := f.svc.ProvisionCalendar(context.Background(), "d1")
		require.ErrorIs(t, err, ErrProvisioningFailed)
		assert.Equal(t, apperror.KindProvisioningFailed, apperror.KindOf(err))
		assert.Equal(t, "calendar provisioning failed: Not Authorized to access this resource/api", err.Error())
		assert.Equal(t, "Not Authorized to access this resource/api", f.drivers.drivers["d1"].CalendarError)
	})
}

func TestSyncBooking(t *testing.T) {
	f := newFixture(t)
	b := confirmedBooking("d2")

	require.NoError(t, f.svc.SyncBooking(context.Background(), b))
	assert.Equal(t, "evt-1", b.CalendarEventID)
	assert.Equal(t, booking.SyncOK, b.EventSyncStatus)
	require.NotNil(t, b.EventLastSync)
	assert.Equal(t, []syncRecord{{"evt-1", booking.SyncOK}}, f.events.records["bk-1"])

	e := f.provider.events["evt-1"]
	assert.Equal(t, "Trip: Limo Coach", e.Summary)
	assert.Equal(t, "Downtown", e.Location)
	assert.Equal(t, "America/Edmonton", e.Timezone)
	assert.Equal(t, "2", e.ColorID)
	assert.Equal(t, int64(30), e.PopupReminderMinutes)
	assert.Equal(t, int64(60), e.EmailReminderMinutes)
	assert.True(t, strings.HasPrefix(e.Description, "Client: Jane Doe\nPhone: 555-0100\n"))
	assert.Contains(t, e.Description, "Passengers: 12")
	assert.Empty(t, f.waits)
}

func TestSyncBooking_DriverWithoutCalendar(t *testing.T) {
	f := newFixture(t)
	b := confirmedBooking("d1")

	err := f.svc.SyncBooking(context.Background(), b)
	require.ErrorIs(t, err, ErrDriverNotSynced)
	assert.Contains(t, err.Error(), "Sam has no synced calendar")
	assert.Zero(t, f.provider.createCalls)
	assert.Equal(t, booking.SyncError, b.EventSyncStatus)
}

func TestAddEvent_RecoversWithinAttempts(t *testing.T) {
	f := newFixture(t)
	f.provider.eventFailures = 2
	f.provider.eventErr = errors.New("backend error")

	id, err := f.svc.AddEvent(context.Background(), "d2", "cal-existing", driver.Trip{BookingID: "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, "evt-3", id)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.waits)
	assert.Equal(t, driver.CalendarOK, f.drivers.drivers["d2"].CalendarStatus)
}

func TestAddEvent_GivesUpAndFlagsDriver(t *testing.T) {
	f := newFixture(t)
	f.provider.eventFailures = 10
	f.provider.eventErr = &googleapi.Error{Code: http.StatusServiceUnavailable, Message: "Backend Error"}
	b := confirmedBooking("d2")

	err := f.svc.SyncBooking(context.Background(), b)
	require.ErrorIs(t, err, ErrSyncFailed)
	assert.Equal(t, "calendar event insert failed: Backend Error", err.Error())
	assert.Equal(t, 3, f.provider.createCalls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.waits)

	d := f.drivers.drivers["d2"]
	assert.Equal(t, driver.CalendarError, d.CalendarStatus)
	assert.Equal(t, "Backend Error", d.CalendarError)
	assert.Equal(t, booking.SyncError, b.EventSyncStatus)
	assert.Empty(t, b.CalendarEventID)

	n, err := testutil.GatherAndCount(f.metrics.Registry(), "partybus_calendar_sync_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUnsyncBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := confirmedBooking("d2")
	require.NoError(t, f.svc.SyncBooking(ctx, b))

	require.NoError(t, f.svc.UnsyncBooking(ctx, b))
	assert.Equal(t, []string{"evt-1"}, f.provider.deleted)
	assert.Equal(t, booking.SyncDeleted, b.EventSyncStatus)
	assert.False(t, b.HasCalendarEvent())

	// Nothing left to remove.
	require.NoError(t, f.svc.UnsyncBooking(ctx, b))
	assert.Len(t, f.provider.deleted, 1)
}

func TestUnsyncBooking_AlreadyGoneIsSuccess(t *testing.T) {
	f := newFixture(t)
	b := confirmedBooking("d2")
	b.CalendarEventID = "evt-removed-by-hand"
	b.EventSyncStatus = booking.SyncOK

	require.NoError(t, f.svc.UnsyncBooking(context.Background(), b))
	assert.Equal(t, booking.SyncDeleted, b.EventSyncStatus)
	assert.Equal(t, driver.CalendarOK, f.drivers.drivers["d2"].CalendarStatus)
}

func TestRemoveStaleEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := confirmedBooking("d2")
	require.NoError(t, f.svc.SyncBooking(ctx, b))
	before := len(f.events.records["bk-1"])

	require.NoError(t, f.svc.RemoveStaleEvent(ctx, "d2", "evt-1"))
	assert.Equal(t, []string{"evt-1"}, f.provider.deleted)
	assert.Len(t, f.events.records["bk-1"], before)

	err := f.svc.RemoveStaleEvent(ctx, "d3", "evt-1")
	assert.ErrorIs(t, err, ErrDriverNotSynced)
}

func TestRemoveEvent_Failure(t *testing.T) {
	f := newFixture(t)
	f.provider.deleteErr = &googleapi.Error{Code: http.StatusForbidden, Message: "Forbidden"}

	err := f.svc.RemoveEvent(context.Background(), "d2", "cal-existing", "evt-9")
	require.ErrorIs(t, err, ErrSyncFailed)
	assert.Equal(t, "Forbidden", f.drivers.drivers["d2"].CalendarError)
}

func TestRemoteMessage(t *testing.T) {
	assert.Equal(t, "quota", remoteMessage(&googleapi.Error{Code: 403, Message: "quota"}))
	assert.Equal(t, "plain", remoteMessage(errors.New("plain")))
	assert.Contains(t, remoteMessage(errors.New("")), "service account")
	assert.Empty(t, remoteMessage(nil))
}

func TestIsGone(t *testing.T) {
	assert.True(t, isGone(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, isGone(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusGone})))
	assert.False(t, isGone(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isGone(errors.New("boom")))
}
