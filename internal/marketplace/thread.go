package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

// MessageThread reads and writes the conversation between the session
// user and a talent.  The store's ordering is authoritative: after a
// write the thread is pulled again instead of being patched locally.
type MessageThread struct {
	gate  *SessionGate
	store Store
	log   *logrus.Entry
}

func NewMessageThread(gate *SessionGate, store Store) *MessageThread {
	if gate == nil || store == nil {
		panic("nil dependency passed to NewMessageThread")
	}
	return &MessageThread{gate: gate, store: store, log: logger.WithComponent("thread")}
}

// LoadThread returns the messages exchanged with talentID in both
// directions, oldest first.
func (t *MessageThread) LoadThread(ctx context.Context, talentID uint64) []model.Message {
	s, ok := t.gate.Current()
	if !ok {
		return []model.Message{}
	}
	msgs, err := t.store.ListThread(ctx, model.NewThreadKey(s.UserID, talentID))
	if err != nil {
		t.log.WithError(err).WithField("talent_id", talentID).Warn("load thread failed")
		return []model.Message{}
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs
}

// Send writes text as a message from the session user to talentID and
// returns the refreshed thread.
func (t *MessageThread) Send(ctx context.Context, talentID uint64, text string) ([]model.Message, error) {
	s, err := t.gate.RequireSession()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	in := MessageInput{SenderID: s.UserID, ReceiverID: talentID, Content: text}
	_, err = t.store.InsertMessage(ctx, in)
	if errors.Is(err, ErrUnauthenticated) {
		t.log.WithField("sender_id", s.UserID).Warn("session ended before message was written")
		return nil, err
	}
	if err != nil {
		t.log.WithError(err).WithFields(logrus.Fields{
			"sender_id":   s.UserID,
			"receiver_id": talentID,
		}).Error("insert message failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreWriteFailed, err)
	}
	return t.LoadThread(ctx, talentID), nil
}
