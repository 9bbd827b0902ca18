// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into an audit log.
package queue

// BookingPaidEvent is published after a simulated payment has been stored
// as a booking.  It carries enough for the audit log without querying the
// primary database.
type BookingPaidEvent struct {
    BookingID  uint64 `json:"booking_id"`
    ClientID   uint64 `json:"client_id"`
    TalentID   uint64 `json:"talent_id"`
    TalentName string `json:"talent_name"`
    Amount     int64  `json:"amount"`
    Status     string `json:"status"`
    PaidAt     string `json:"paid_at"`
}
