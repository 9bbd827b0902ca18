package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/talent-marketplace/internal/model"
	"github.com/iliyamo/talent-marketplace/internal/queue"
	"github.com/iliyamo/talent-marketplace/internal/repository"
)

// BookingStore is implemented by repository.BookingRepo.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ListByClient(ctx context.Context, clientID uint64) ([]model.BookingView, error)
}

// BookingEvents is implemented by service.BookingPublisher.
type BookingEvents interface {
	PublishBookingPaid(ctx context.Context, ev queue.BookingPaidEvent) error
}

// BookingHandler records simulated payments as bookings.  All methods
// assume JWT authentication and role validation ran in middleware.
// Events may be nil, in which case nothing is published.
type BookingHandler struct {
	Profiles ProfileReader
	Bookings BookingStore
	Events   BookingEvents
}

func NewBookingHandler(profiles ProfileReader, bookings BookingStore, events BookingEvents) *BookingHandler {
	if profiles == nil || bookings == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Profiles: profiles, Bookings: bookings, Events: events}
}

type createBookingReq struct {
	TalentID uint64 `json:"talent_id"`
	Amount   int64  `json:"amount"`
}

// CreateBooking handles POST /v1/bookings.  The amount sent by the client
// must equal the talent's current price; the server never invents one.
// Returns 201 with the stored booking, 404 for an unknown talent, 422
// when the talent has no price and 409 when the price has changed.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil || req.TalentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "talent_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, req.TalentID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "talent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	price, ok := p.Price()
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "talent has no price"})
	}
	if req.Amount != price {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":         repository.ErrConflict.Error(),
			"current_price": price,
		})
	}

	b := model.Booking{
		ClientID: userID,
		TalentID: p.ID,
		Amount:   price,
		Status:   model.BookingStatusPaid,
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		c.Logger().Errorf("create booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	h.publish(queue.BookingPaidEvent{
		BookingID:  b.ID,
		ClientID:   b.ClientID,
		TalentID:   b.TalentID,
		TalentName: p.FullName,
		Amount:     b.Amount,
		Status:     b.Status,
		PaidAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, b)
}

// publish sends the event in the background; a broker outage never
// fails the request.
func (h *BookingHandler) publish(ev queue.BookingPaidEvent) {
	if h.Events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Events.PublishBookingPaid(ctx, ev)
	}()
}

// ListMyBookings handles GET /v1/my-bookings, newest first.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Bookings.ListByClient(ctx, userID)
	if err != nil {
		c.Logger().Errorf("list bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bookings"})
	}
	return c.JSON(http.StatusOK, newList(items))
}
