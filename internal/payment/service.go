package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	"github.com/nekogravitycat/partybus-booking-backend/internal/config"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// Result says what a notification led to.
type Result string

const (
	ResultConfirmed Result = "confirmed"
	ResultIgnored   Result = "ignored"
	ResultNoContact Result = "no_contact"
	ResultNoBooking Result = "no_booking"
	ResultRejected  Result = "rejected"
)

// ContactFinder is implemented by contact.Service.
type ContactFinder interface {
	FindByEmail(ctx context.Context, email string) (*contact.Contact, error)
}

// BookingConfirmer is implemented by booking.Service.
type BookingConfirmer interface {
	FindPendingExpress(ctx context.Context, contactID string, since time.Time) (*booking.Booking, error)
	ConfirmPaid(ctx context.Context, id, paymentReference string) (*booking.Outcome, error)
}

type Service struct {
	contacts ContactFinder
	bookings BookingConfirmer
	cfg      config.PaymentConfig
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(contacts ContactFinder, bookings BookingConfirmer, cfg config.PaymentConfig, log *logrus.Logger) *Service {
	return &Service{contacts: contacts, bookings: bookings, cfg: cfg, log: log, now: time.Now}
}

// Process matches a completed payment of the express price to the payer's most
// recent pending express booking and confirms it. Only store failures are
// returned as errors; everything else is reported through the Result.
func (s *Service) Process(ctx context.Context, n Notification) (Result, error) {
	p := n.Data.Object.Payment
	entry := s.log.WithFields(logrus.Fields{
		"event_id":   n.EventID,
		"payment_id": p.ID,
		"type":       n.Type,
	})

	if n.Type != EventPaymentUpdated || p.Status != StatusCompleted {
		entry.WithField("status", p.Status).Debug("payment notification ignored")
		return ResultIgnored, nil
	}

	email := strings.TrimSpace(p.BuyerEmailAddress)
	if email == "" || p.AmountMoney.Amount != s.cfg.ExpectedAmount || !strings.EqualFold(p.AmountMoney.Currency, s.cfg.ExpectedCurrency) {
		entry.WithFields(logrus.Fields{
			"amount":   p.AmountMoney.Amount,
			"currency": p.AmountMoney.Currency,
		}).Info("completed payment does not match the express booking price")
		return ResultIgnored, nil
	}
	entry = entry.WithField("email", email)

	c, err := s.contacts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			entry.Warn("payment received but no contact has this email")
			return ResultNoContact, nil
		}
		return "", err
	}

	since := s.now().Add(-s.cfg.MatchWindow.Duration)
	b, err := s.bookings.FindPendingExpress(ctx, c.ID, since)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			entry.WithField("contact_id", c.ID).Warn("payment received but no pending express booking matches")
			return ResultNoBooking, nil
		}
		return "", err
	}

	if _, err := s.bookings.ConfirmPaid(ctx, b.ID, p.ID); err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			entry.WithError(err).WithField("booking_id", b.ID).Error("paid express booking could not be confirmed; refund or rebook by hand")
			return ResultRejected, nil
		}
		return "", err
	}

	entry.WithField("booking_id", b.ID).Info("express booking confirmed by payment")
	return ResultConfirmed, nil
}
