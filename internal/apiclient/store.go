package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iliyamo/talent-marketplace/internal/marketplace"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

func (c *Client) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var out list[model.Profile]
	if err := c.do(ctx, http.MethodGet, "/v1/talents", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// InsertBooking records a paid booking.  The server takes the client id
// from the access token, so in.ClientID must be the session user.
func (c *Client) InsertBooking(ctx context.Context, in marketplace.BookingInput) (model.Booking, error) {
	if err := c.checkUser(ctx, in.ClientID); err != nil {
		return model.Booking{}, err
	}
	var out model.Booking
	body := map[string]interface{}{"talent_id": in.TalentID, "amount": in.Amount}
	if err := c.authorized(ctx, http.MethodPost, "/v1/bookings", body, &out); err != nil {
		return model.Booking{}, err
	}
	return out, nil
}

func (c *Client) ListBookingsByClient(ctx context.Context, clientID uint64) ([]model.BookingView, error) {
	if err := c.checkUser(ctx, clientID); err != nil {
		return nil, err
	}
	var out list[model.BookingView]
	if err := c.authorized(ctx, http.MethodGet, "/v1/my-bookings", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) InsertMessage(ctx context.Context, in marketplace.MessageInput) (model.Message, error) {
	if err := c.checkUser(ctx, in.SenderID); err != nil {
		return model.Message{}, err
	}
	var out model.Message
	path := "/v1/threads/" + strconv.FormatUint(in.ReceiverID, 10) + "/messages"
	if err := c.authorized(ctx, http.MethodPost, path, map[string]string{"content": in.Content}, &out); err != nil {
		return model.Message{}, err
	}
	return out, nil
}

// ListThread reads the conversation identified by key.  The session user
// must be one of its participants.
func (c *Client) ListThread(ctx context.Context, key model.ThreadKey) ([]model.Message, error) {
	s, ok, err := c.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSession
	}
	var peer uint64
	switch s.UserID {
	case key.Low:
		peer = key.High
	case key.High:
		peer = key.Low
	default:
		return nil, fmt.Errorf("user %d is not part of thread %d/%d", s.UserID, key.Low, key.High)
	}
	var out list[model.Message]
	path := "/v1/threads/" + strconv.FormatUint(peer, 10) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, s.AccessToken, nil, &out); err != nil {
		return nil, c.rejected(err)
	}
	return out.Items, nil
}

func (c *Client) checkUser(ctx context.Context, userID uint64) error {
	s, ok, err := c.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	if s.UserID != userID {
		return fmt.Errorf("session user %d cannot act as user %d", s.UserID, userID)
	}
	return nil
}
