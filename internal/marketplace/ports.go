// Package marketplace is the booking-and-messaging core of the talent
// marketplace client.  It owns the session gate, the catalog, chat
// threads, the booking ledger and the screen state machine, and talks to
// the outside world only through IdentityProvider and Store.
package marketplace

import (
	"context"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

// IdentityProvider issues and validates sessions.  Subscribe handlers
// receive the new session and whether one is present; they may be
// invoked from any goroutine.
type IdentityProvider interface {
	CurrentSession(ctx context.Context) (model.Session, bool, error)
	Subscribe(handler func(model.Session, bool)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

// BookingInput is the row written by a successful payment.
type BookingInput struct {
	ClientID uint64
	TalentID uint64
	Amount   int64
	Status   string
}

// MessageInput is the row written by a send.
type MessageInput struct {
	SenderID   uint64
	ReceiverID uint64
	Content    string
}

// Store is the structured store holding profiles, bookings and messages.
// Identifiers and timestamps of inserted rows are assigned by the store.
type Store interface {
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	InsertBooking(ctx context.Context, in BookingInput) (model.Booking, error)
	ListBookingsByClient(ctx context.Context, clientID uint64) ([]model.BookingView, error)
	InsertMessage(ctx context.Context, in MessageInput) (model.Message, error)
	ListThread(ctx context.Context, key model.ThreadKey) ([]model.Message, error)
}

// Config holds the core's tunables.
type Config struct {
	// PlaceholderRate is multiplied by the booking count to produce the
	// dashboard balance estimate.  It is not a ledger balance.
	PlaceholderRate int64
}
