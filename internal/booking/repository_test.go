package booking_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	"github.com/nekogravitycat/partybus-booking-backend/internal/bus"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	"github.com/nekogravitycat/partybus-booking-backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DB_DSN and resets the schema, or skips the test.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE public.bookings, public.drivers, public.buses, public.contacts, public.corporate_clients CASCADE")
	require.NoError(t, err)
	return pool
}

type ledger struct {
	svc     booking.Service
	repo    booking.Repository
	buses   bus.Service
	drivers driver.Service
}

func newLedger(t *testing.T) *ledger {
	pool := testPool(t)
	repo := booking.NewPgxRepository(pool)
	buses := bus.NewService(bus.NewPgxRepository(pool), nil)
	drivers := driver.NewService(driver.NewPgxRepository(pool), nil)
	return &ledger{
		repo:    repo,
		buses:   buses,
		drivers: drivers,
		svc: booking.NewService(booking.Deps{
			Repo:     repo,
			Tx:       db.NewTxManager(pool),
			Buses:    buses,
			Drivers:  drivers,
			Contacts: contact.NewService(contact.NewPgxRepository(pool)),
			Log:      logger.Discard(),
		}),
	}
}

func at(h int) time.Time {
	return time.Date(2030, 5, 17, h, 0, 0, 0, time.UTC)
}

func (l *ledger) quote(t *testing.T, busID string, start, end time.Time) *booking.Booking {
	t.Helper()
	b, err := l.svc.Create(context.Background(), booking.Draft{
		BusID:          busID,
		StartTime:      start,
		EndTime:        end,
		PassengerCount: 4,
	}, contact.Details{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100"}, nil)
	require.NoError(t, err)
	return b
}

func TestPgxLedger_ConfirmConflicts(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	coach, err := l.buses.Create(ctx, bus.CreateRequest{Name: "Limo Coach", Capacity: 20})
	require.NoError(t, err)
	d1, err := l.drivers.Create(ctx, driver.CreateRequest{Name: "Sam"})
	require.NoError(t, err)
	d2, err := l.drivers.Create(ctx, driver.CreateRequest{Name: "Alex"})
	require.NoError(t, err)

	a := l.quote(t, coach.ID, at(18), at(22))
	b := l.quote(t, coach.ID, at(21), at(23))
	c := l.quote(t, coach.ID, at(22), at(23))
	assert.Equal(t, "Limo Coach", a.BusName)
	assert.Equal(t, "Jane Doe", a.ContactName)

	_, err = l.svc.Confirm(ctx, a.ID, d1.ID)
	require.NoError(t, err)

	_, err = l.svc.Confirm(ctx, b.ID, d2.ID)
	require.ErrorIs(t, err, booking.ErrVehicleConflict)

	out, err := l.svc.Confirm(ctx, c.ID, d1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", out.Booking.DriverName)

	trips, err := l.svc.DriverTrips(ctx, d1.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, a.ID, trips[0].BookingID)
	assert.Equal(t, c.ID, trips[1].BookingID)
}

// Writing an overlapping confirmed row directly still fails on the exclusion constraint.
func TestPgxRepository_ExclusionConstraintMapsToConflict(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	coach, err := l.buses.Create(ctx, bus.CreateRequest{Name: "Limo Coach", Capacity: 20})
	require.NoError(t, err)
	sam, err := l.drivers.Create(ctx, driver.CreateRequest{Name: "Sam"})
	require.NoError(t, err)

	first := l.quote(t, coach.ID, at(10), at(12))
	second := l.quote(t, coach.ID, at(11), at(13))

	first.Status = booking.StatusConfirmed
	require.NoError(t, l.repo.Update(ctx, first))

	second.Status = booking.StatusConfirmed
	assert.ErrorIs(t, l.repo.Update(ctx, second), booking.ErrVehicleConflict)

	other, err := l.buses.Create(ctx, bus.CreateRequest{Name: "Party Cruiser", Capacity: 30})
	require.NoError(t, err)
	third := l.quote(t, other.ID, at(11), at(13))
	first.DriverID = sam.ID
	require.NoError(t, l.repo.Update(ctx, first))
	third.Status = booking.StatusConfirmed
	third.DriverID = sam.ID
	assert.ErrorIs(t, l.repo.Update(ctx, third), booking.ErrDriverConflict)
}

func TestPgxLedger_ConcurrentConfirmOnlyOneWins(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	coach, err := l.buses.Create(ctx, bus.CreateRequest{Name: "Limo Coach", Capacity: 20})
	require.NoError(t, err)

	const n = 3
	ids := make([]string, n)
	drivers := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = l.quote(t, coach.ID, at(18), at(22)).ID
		d, err := l.drivers.Create(ctx, driver.CreateRequest{Name: "Driver"})
		require.NoError(t, err)
		drivers[i] = d.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.svc.Confirm(ctx, ids[i], drivers[i])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, booking.ErrVehicleConflict)
	}
	assert.Equal(t, 1, wins)

	confirmed, total, err := l.svc.List(ctx, booking.Filter{Status: string(booking.StatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, confirmed, 1)
}

func TestPgxRepository_SetCalendarEventAndExpressLookup(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	coach, err := l.buses.Create(ctx, bus.CreateRequest{Name: "Limo Coach", Capacity: 20})
	require.NoError(t, err)

	b, err := l.svc.CreateExpress(ctx, booking.ExpressDraft{
		BusID:          coach.ID,
		StartTime:      at(20),
		PassengerCount: 2,
		Contact:        contact.Details{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100"},
	})
	require.NoError(t, err)
	assert.True(t, b.EndTime.Equal(at(21)))

	found, err := l.svc.FindPendingExpress(ctx, b.ContactID, at(19))
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, l.repo.SetCalendarEvent(ctx, b.ID, "evt-1", booking.SyncOK, now))
	require.NoError(t, l.repo.SetCalendarEvent(ctx, b.ID, "", booking.SyncDeleted, now))

	stored, err := l.svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", stored.CalendarEventID)
	assert.Equal(t, booking.SyncDeleted, stored.EventSyncStatus)
	assert.False(t, stored.HasCalendarEvent())

	assert.ErrorIs(t, l.repo.SetCalendarEvent(ctx, "00000000-0000-0000-0000-000000000000", "x", booking.SyncOK, now), booking.ErrNotFound)

	driverID := "11111111-1111-1111-1111-111111111111"
	require.NoError(t, l.repo.SetStaleEvent(ctx, b.ID, "evt-old", driverID))
	stored, err = l.svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-old", stored.StaleEventID)
	assert.Equal(t, driverID, stored.StaleEventDriverID)

	require.NoError(t, l.repo.SetStaleEvent(ctx, b.ID, "", ""))
	stored, err = l.svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.StaleEventID)
	assert.Empty(t, stored.StaleEventDriverID)
}
