package marketplace

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

// memIdentity is an in-memory IdentityProvider.
type memIdentity struct {
	mu        sync.Mutex
	session   *model.Session
	lookupErr error
	subs      map[int]func(model.Session, bool)
	next      int
}

func newMemIdentity() *memIdentity {
	return &memIdentity{subs: make(map[int]func(model.Session, bool))}
}

func (m *memIdentity) CurrentSession(ctx context.Context) (model.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return model.Session{}, false, m.lookupErr
	}
	if m.session == nil {
		return model.Session{}, false, nil
	}
	return *m.session, true, nil
}

func (m *memIdentity) Subscribe(h func(model.Session, bool)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = h
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *memIdentity) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (m *memIdentity) notify(s model.Session, ok bool) {
	m.mu.Lock()
	hs := make([]func(model.Session, bool), 0, len(m.subs))
	for _, h := range m.subs {
		hs = append(hs, h)
	}
	m.mu.Unlock()
	for _, h := range hs {
		h(s, ok)
	}
}

func (m *memIdentity) SignIn(userID uint64) model.Session {
	s := model.Session{UserID: userID, Role: model.RoleClient, AccessToken: "access", ExpiresAt: time.Now().Add(time.Hour)}
	m.mu.Lock()
	m.session = &s
	m.mu.Unlock()
	m.notify(s, true)
	return s
}

// seed sets a session without notifying, as if restored from storage.
func (m *memIdentity) seed(userID uint64) {
	m.mu.Lock()
	m.session = &model.Session{UserID: userID, Role: model.RoleClient}
	m.mu.Unlock()
}

func (m *memIdentity) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	m.notify(model.Session{}, false)
	return nil
}

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory Store that assigns ids and strictly
// increasing timestamps on insert.
type memStore struct {
	mu       sync.Mutex
	clock    time.Time
	nextID   uint64
	profiles []model.Profile
	bookings []model.Booking
	messages []model.Message

	failReads    bool
	failWrites   bool
	writeErr     error
	profileCalls int
	bookingCalls int
	threadCalls  int
	insertHook   func()
	listBookHook func()
}

func newMemStore(profiles ...model.Profile) *memStore {
	return &memStore{
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		profiles: profiles,
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	s.nextID++
	return s.clock
}

func (s *memStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileCalls++
	if s.failReads {
		return nil, errStoreDown
	}
	return cloneProfiles(s.profiles), nil
}

func (s *memStore) InsertBooking(ctx context.Context, in BookingInput) (model.Booking, error) {
	if s.insertHook != nil {
		s.insertHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return model.Booking{}, s.writeErr
	}
	if s.failWrites {
		return model.Booking{}, errStoreDown
	}
	at := s.tick()
	b := model.Booking{ID: s.nextID, ClientID: in.ClientID, TalentID: in.TalentID, Amount: in.Amount, Status: in.Status, CreatedAt: at}
	s.bookings = append(s.bookings, b)
	return b, nil
}

func (s *memStore) ListBookingsByClient(ctx context.Context, clientID uint64) ([]model.BookingView, error) {
	if s.listBookHook != nil {
		s.listBookHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookingCalls++
	if s.failReads {
		return nil, errStoreDown
	}
	var out []model.BookingView
	for _, b := range s.bookings {
		if b.ClientID != clientID {
			continue
		}
		v := model.BookingView{Booking: b}
		for _, p := range s.profiles {
			if p.ID == b.TalentID {
				name := p.FullName
				v.TalentName = &name
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) InsertMessage(ctx context.Context, in MessageInput) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return model.Message{}, s.writeErr
	}
	if s.failWrites {
		return model.Message{}, errStoreDown
	}
	at := s.tick()
	m := model.Message{ID: s.nextID, SenderID: in.SenderID, ReceiverID: in.ReceiverID, Content: in.Content, CreatedAt: at}
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *memStore) ListThread(ctx context.Context, key model.ThreadKey) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threadCalls++
	if s.failReads {
		return nil, errStoreDown
	}
	var out []model.Message
	for _, m := range s.messages {
		if model.NewThreadKey(m.SenderID, m.ReceiverID) == key {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func price(v int64) *int64 { return &v }

func talent(id uint64, name string, p *int64) model.Profile {
	return model.Profile{ID: id, FullName: name, Category: "singer", PricePerProject: p}
}
