package model

import "time"

// BookingStatusPaid is the only status produced by the simulated payment.
const BookingStatusPaid = "paid"

// Booking records a completed (simulated) payment by a client for a
// talent's service.  Amount is copied from the profile's price at the
// time of payment and is never re-derived.  Bookings are immutable.
//
// Fields:
//  ID        – primary key identifier (server assigned).
//  ClientID  – user who paid.
//  TalentID  – profile that was booked.
//  Amount    – price paid in yen.
//  Status    – always "paid".
//  CreatedAt – creation timestamp (server assigned).
type Booking struct {
    ID        uint64    `json:"id"`         // bookings.id
    ClientID  uint64    `json:"client_id"`  // bookings.client_id
    TalentID  uint64    `json:"talent_id"`  // bookings.talent_id
    Amount    int64     `json:"amount"`     // bookings.amount
    Status    string    `json:"status"`     // bookings.status
    CreatedAt time.Time `json:"created_at"` // bookings.created_at
}

// BookingView is a booking joined with the booked talent's display name.
// TalentName is for display only and is nil when the profile is gone.
type BookingView struct {
    Booking
    TalentName *string `json:"talent_name,omitempty"`
}
