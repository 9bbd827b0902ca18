package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

// BookingRepo provides insert and listing operations for bookings.  A
// booking is a single row written once per successful (simulated)
// payment; rows are never updated.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts the booking and populates the generated ID and the
// server-assigned created_at on the provided record.  The insert and the
// read-back share one transaction, so any failure leaves no row behind.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO bookings (client_id, talent_id, amount, status) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, b.ClientID, b.TalentID, b.Amount, b.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	// Query back the row to pick up defaults
	var row model.Booking
	const sel = `SELECT id, client_id, talent_id, amount, status, created_at FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, uint64(id)).Scan(
		&row.ID, &row.ClientID, &row.TalentID, &row.Amount, &row.Status, &row.CreatedAt,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	*b = row
	return nil
}

// ListByClient returns the client's bookings, newest first, joined with
// the booked talent's display name.  When the profile no longer exists
// the name is nil.
func (r *BookingRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.BookingView, error) {
	const q = `SELECT b.id, b.client_id, b.talent_id, b.amount, b.status, b.created_at, p.full_name
	           FROM bookings b
	           LEFT JOIN profiles p ON p.id = b.talent_id
	           WHERE b.client_id = ?
	           ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BookingView, 0)
	for rows.Next() {
		var (
			v    model.BookingView
			name sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.ClientID, &v.TalentID, &v.Amount, &v.Status, &v.CreatedAt, &name); err != nil {
			return nil, err
		}
		v.TalentName = nullStringPtr(name)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
