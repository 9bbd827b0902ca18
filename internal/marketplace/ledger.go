package marketplace

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

// BookingLedger turns a simulated payment into a booking row and lists
// the session user's bookings.
//
// Only concurrent payments are rejected.  Two payments made one after
// the other create two bookings; no idempotency key is sent to the store.
type BookingLedger struct {
	gate    *SessionGate
	catalog *CatalogReader
	store   Store
	rate    int64
	log     *logrus.Entry

	paying atomic.Bool
}

func NewBookingLedger(cfg Config, gate *SessionGate, catalog *CatalogReader, store Store) *BookingLedger {
	if gate == nil || catalog == nil || store == nil {
		panic("nil dependency passed to NewBookingLedger")
	}
	return &BookingLedger{
		gate:    gate,
		catalog: catalog,
		store:   store,
		rate:    cfg.PlaceholderRate,
		log:     logger.WithComponent("ledger"),
	}
}

// Pay books talentID at its listed price for the session user.
func (l *BookingLedger) Pay(ctx context.Context, talentID uint64) (model.Booking, error) {
	if !l.paying.CompareAndSwap(false, true) {
		return model.Booking{}, ErrPaymentInFlight
	}
	defer l.paying.Store(false)

	s, err := l.gate.RequireSession()
	if err != nil {
		return model.Booking{}, err
	}
	p, ok := l.catalog.GetTalent(talentID)
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: talent %d not in listing", ErrInvalidTalent, talentID)
	}
	price, ok := p.Price()
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: talent %d has no price", ErrInvalidTalent, talentID)
	}

	b, err := l.store.InsertBooking(ctx, BookingInput{
		ClientID: s.UserID,
		TalentID: talentID,
		Amount:   price,
		Status:   model.BookingStatusPaid,
	})
	if errors.Is(err, ErrUnauthenticated) {
		l.log.WithField("client_id", s.UserID).Warn("session ended before booking was written")
		return model.Booking{}, err
	}
	if err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"client_id": s.UserID,
			"talent_id": talentID,
		}).Error("insert booking failed")
		return model.Booking{}, fmt.Errorf("%w: %v", ErrStoreWriteFailed, err)
	}
	l.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"client_id":  b.ClientID,
		"talent_id":  b.TalentID,
		"amount":     b.Amount,
	}).Info("booking created")
	return b, nil
}

// MyBookings lists the session user's bookings, newest first.
func (l *BookingLedger) MyBookings(ctx context.Context) []model.BookingView {
	s, ok := l.gate.Current()
	if !ok {
		return []model.BookingView{}
	}
	items, err := l.store.ListBookingsByClient(ctx, s.UserID)
	if err != nil {
		l.log.WithError(err).WithField("client_id", s.UserID).Warn("list bookings failed")
		return []model.BookingView{}
	}
	if items == nil {
		items = []model.BookingView{}
	}
	return items
}

// PlaceholderBalance is the dashboard estimate: booking count times the
// configured rate.  It is not derived from booking amounts.
func (l *BookingLedger) PlaceholderBalance(bookings []model.BookingView) int64 {
	return int64(len(bookings)) * l.rate
}
