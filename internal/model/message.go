package model

import "time"

// Message is a single chat message between two users.  Messages are
// created on send and never mutated or deleted.
//
// Fields:
//  ID         – primary key identifier.
//  SenderID   – author of the message.
//  ReceiverID – addressee of the message.
//  Content    – non-empty text.
//  CreatedAt  – creation timestamp (server assigned).
type Message struct {
    ID         uint64    `json:"id"`          // messages.id
    SenderID   uint64    `json:"sender_id"`   // messages.sender_id
    ReceiverID uint64    `json:"receiver_id"` // messages.receiver_id
    Content    string    `json:"content"`     // messages.content
    CreatedAt  time.Time `json:"created_at"`  // messages.created_at
}

// ThreadKey identifies the conversation between two participants
// independent of direction.  Low is always <= High.
type ThreadKey struct {
    Low  uint64
    High uint64
}

// NewThreadKey builds the key for the conversation between a and b.
func NewThreadKey(a, b uint64) ThreadKey {
    if a > b {
        a, b = b, a
    }
    return ThreadKey{Low: a, High: b}
}
