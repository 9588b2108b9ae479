package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	"github.com/nekogravitycat/partybus-booking-backend/internal/config"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContacts map[string]*contact.Contact

func (f fakeContacts) FindByEmail(_ context.Context, email string) (*contact.Contact, error) {
	if c, ok := f[email]; ok {
		return c, nil
	}
	return nil, contact.ErrNotFound
}

type fakeBookings struct {
	pending    map[string]*booking.Booking // by contact id
	since      time.Time
	confirmed  []string
	references []string
	confirmErr error
}

func (f *fakeBookings) FindPendingExpress(_ context.Context, contactID string, since time.Time) (*booking.Booking, error) {
	f.since = since
	b, ok := f.pending[contactID]
	if !ok || b.StartTime.Before(since) {
		return nil, booking.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) ConfirmPaid(_ context.Context, id, ref string) (*booking.Outcome, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	f.confirmed = append(f.confirmed, id)
	f.references = append(f.references, ref)
	return &booking.Outcome{Booking: &booking.Booking{ID: id, Status: booking.StatusConfirmed}}, nil
}

var now = time.Date(2024, 7, 1, 20, 2, 0, 0, time.UTC)

func newTestService(bookings *fakeBookings) *Service {
	contacts := fakeContacts{"jane@example.com": {ID: "c1", Email: "jane@example.com"}}
	s := NewService(contacts, bookings, config.DefaultFeatureConfig().Payment, logger.Discard())
	s.now = func() time.Time { return now }
	return s
}

func completed(email string, amount int64, currency string) Notification {
	var n Notification
	n.Type = EventPaymentUpdated
	n.EventID = "evt-1"
	n.Data.Object.Payment = Payment{
		ID:                "pay-1",
		Status:            StatusCompleted,
		BuyerEmailAddress: email,
		AmountMoney:       Money{Amount: amount, Currency: currency},
	}
	return n
}

func TestProcess_ConfirmsMatchingExpressBooking(t *testing.T) {
	bookings := &fakeBookings{pending: map[string]*booking.Booking{
		"c1": {ID: "bk-1", StartTime: now.Add(-2 * time.Minute), BookingType: booking.TypeExpress},
	}}
	s := newTestService(bookings)

	result, err := s.Process(context.Background(), completed("jane@example.com", 30000, "CAD"))
	require.NoError(t, err)
	assert.Equal(t, ResultConfirmed, result)
	assert.Equal(t, []string{"bk-1"}, bookings.confirmed)
	assert.Equal(t, []string{"pay-1"}, bookings.references)
	assert.Equal(t, now.Add(-5*time.Minute), bookings.since)
}

func TestProcess_Ignored(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
	}{
		{"wrong amount", completed("jane@example.com", 29999, "CAD")},
		{"wrong currency", completed("jane@example.com", 30000, "USD")},
		{"no email", completed("", 30000, "CAD")},
		{"not completed", func() Notification {
			n := completed("jane@example.com", 30000, "CAD")
			n.Data.Object.Payment.Status = "APPROVED"
			return n
		}()},
		{"other event type", func() Notification {
			n := completed("jane@example.com", 30000, "CAD")
			n.Type = "refund.updated"
			return n
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &fakeBookings{pending: map[string]*booking.Booking{"c1": {ID: "bk-1", StartTime: now}}}
			result, err := newTestService(bookings).Process(context.Background(), tt.n)
			require.NoError(t, err)
			assert.Equal(t, ResultIgnored, result)
			assert.Empty(t, bookings.confirmed)
		})
	}
}

func TestProcess_UnknownContact(t *testing.T) {
	bookings := &fakeBookings{}
	result, err := newTestService(bookings).Process(context.Background(), completed("nobody@example.com", 30000, "CAD"))
	require.NoError(t, err)
	assert.Equal(t, ResultNoContact, result)
}

func TestProcess_BookingOutsideWindow(t *testing.T) {
	bookings := &fakeBookings{pending: map[string]*booking.Booking{
		"c1": {ID: "bk-old", StartTime: now.Add(-10 * time.Minute)},
	}}
	result, err := newTestService(bookings).Process(context.Background(), completed("jane@example.com", 30000, "CAD"))
	require.NoError(t, err)
	assert.Equal(t, ResultNoBooking, result)
	assert.Empty(t, bookings.confirmed)
}

func TestProcess_ConflictIsReportedNotRetried(t *testing.T) {
	bookings := &fakeBookings{
		pending:    map[string]*booking.Booking{"c1": {ID: "bk-1", StartTime: now}},
		confirmErr: booking.ErrVehicleConflict,
	}
	result, err := newTestService(bookings).Process(context.Background(), completed("jane@example.com", 30000, "CAD"))
	require.NoError(t, err)
	assert.Equal(t, ResultRejected, result)
}

func TestProcess_StoreFailureIsReturned(t *testing.T) {
	boom := errors.New("connection reset")
	bookings := &fakeBookings{
		pending:    map[string]*booking.Booking{"c1": {ID: "bk-1", StartTime: now}},
		confirmErr: boom,
	}
	_, err := newTestService(bookings).Process(context.Background(), completed("jane@example.com", 30000, "CAD"))
	assert.ErrorIs(t, err, boom)
}

func TestVerify(t *testing.T) {
	body := []byte(`{"type":"payment.updated"}`)
	sig := Sign("secret", "https://example.com/v1/webhooks/payment", body)

	assert.True(t, Verify("secret", "https://example.com/v1/webhooks/payment", body, sig))
	assert.False(t, Verify("other", "https://example.com/v1/webhooks/payment", body, sig))
	assert.False(t, Verify("secret", "https://example.com/elsewhere", body, sig))
	assert.False(t, Verify("secret", "https://example.com/v1/webhooks/payment", append(body, ' '), sig))
	assert.False(t, Verify("secret", "https://example.com/v1/webhooks/payment", body, ""))
}
