package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

// MessageRepo stores chat messages.  Messages are append-only.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and fills in its ID and created_at.  Both
// statements run in one transaction; on error nothing is stored.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO messages (sender_id, receiver_id, content) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, m.SenderID, m.ReceiverID, m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	var created time.Time
	const sel = `SELECT created_at FROM messages WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, uint64(id)).Scan(&created); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt = created
	return nil
}

// ListThread returns every message exchanged between the two
// participants of key, in either direction, oldest first.  Ties on
// created_at are broken by id so the order is total.
func (r *MessageRepo) ListThread(ctx context.Context, key model.ThreadKey) ([]model.Message, error) {
	const q = `SELECT id, sender_id, receiver_id, content, created_at
	           FROM messages
	           WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	           ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, key.Low, key.High, key.High, key.Low)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
