// Package memstore is an in-memory implementation of the repositories.
// The server uses it when STORE_DRIVER=memory; tests use it as a fake
// backend.  All types are safe for concurrent use.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/talent-marketplace/internal/model"
	"github.com/iliyamo/talent-marketplace/internal/repository"
	"github.com/iliyamo/talent-marketplace/internal/utils"
)

// Store holds every table.  Timestamps come from Now, which tests may
// replace; ids are assigned sequentially per table.
type Store struct {
	mu  sync.Mutex
	Now func() time.Time

	users    map[uint64]model.User
	tokens   map[string]model.RefreshToken
	profiles map[uint64]model.Profile
	bookings []model.Booking
	messages []model.Message
	seq      map[string]uint64
}

func New() *Store {
	return &Store{
		Now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[uint64]model.User),
		tokens:   make(map[string]model.RefreshToken),
		profiles: make(map[uint64]model.Profile),
		seq:      make(map[string]uint64),
	}
}

func (s *Store) next(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

// nextUserID skips ids taken by seeded talent accounts.
func (s *Store) nextUserID() uint64 {
	for {
		id := s.next("users")
		if _, taken := s.users[id]; !taken {
			return id
		}
	}
}

// Users returns the users table view.
func (s *Store) Users() *Users { return &Users{s} }

// Tokens returns the refresh_tokens table view.
func (s *Store) Tokens() *Tokens { return &Tokens{s} }

// Profiles returns the profiles table view.
func (s *Store) Profiles() *Profiles { return &Profiles{s} }

// Bookings returns the bookings table view.
func (s *Store) Bookings() *Bookings { return &Bookings{s} }

// Messages returns the messages table view.
func (s *Store) Messages() *Messages { return &Messages{s} }

// ---- users ----

type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	now := s.Now()
	id := s.nextUserID()
	s.users[id] = model.User{ID: id, Email: email, PasswordHash: hash, Role: role, IsActive: true, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == email {
			return existing, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (u *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return existing, nil
}

// ---- refresh tokens ----

type Tokens struct{ s *Store }

func (t *Tokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = model.RefreshToken{ID: s.next("refresh_tokens"), UserID: userID, TokenHash: tokenHash, ExpiresAt: exp, CreatedAt: s.Now()}
	return nil
}

func (t *Tokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[tokenHash]
	if !ok || rt.RevokedAt != nil || !rt.ExpiresAt.After(s.Now()) {
		return 0, repository.ErrRefreshInvalid
	}
	return rt.UserID, nil
}

func (t *Tokens) RevokeByHash(_ context.Context, tokenHash string) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.tokens[tokenHash]; ok && rt.RevokedAt == nil {
		now := s.Now()
		rt.RevokedAt = &now
		s.tokens[tokenHash] = rt
	}
	return nil
}

func (t *Tokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	for h, rt := range s.tokens {
		if rt.UserID == userID && rt.RevokedAt == nil {
			rt.RevokedAt = &now
			s.tokens[h] = rt
		}
	}
	return nil
}

// ---- profiles ----

type Profiles struct{ s *Store }

// Put inserts or replaces a profile.  Profiles are managed outside the
// API, so this is the only way to write one.
func (p *Profiles) Put(profile model.Profile) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
}

func (p *Profiles) ListAll(_ context.Context) ([]model.Profile, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *Profiles) GetByID(_ context.Context, id uint64) (model.Profile, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, repository.ErrProfileNotFound
	}
	return profile, nil
}

// ---- bookings ----

type Bookings struct{ s *Store }

func (b *Bookings) Create(_ context.Context, booking *model.Booking) error {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	booking.ID = s.next("bookings")
	booking.CreatedAt = s.Now()
	s.bookings = append(s.bookings, *booking)
	return nil
}

func (b *Bookings) ListByClient(_ context.Context, clientID uint64) ([]model.BookingView, error) {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.BookingView{}
	for _, booking := range s.bookings {
		if booking.ClientID != clientID {
			continue
		}
		v := model.BookingView{Booking: booking}
		if p, ok := s.profiles[booking.TalentID]; ok {
			name := p.FullName
			v.TalentName = &name
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ---- messages ----

type Messages struct{ s *Store }

func (m *Messages) Create(_ context.Context, msg *model.Message) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.next("messages")
	msg.CreatedAt = s.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (m *Messages) ListThread(_ context.Context, key model.ThreadKey) ([]model.Message, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Message{}
	for _, msg := range s.messages {
		if model.NewThreadKey(msg.SenderID, msg.ReceiverID) == key {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// seedProfile is one entry of a profile seed file.  Email names the
// talent's account; it defaults to talent-<id>@seed.invalid.
type seedProfile struct {
	model.Profile
	Email string `json:"email"`
}

// LoadProfiles reads a JSON array of profiles from r and stores them
// together with a TALENT user row per profile, the same id on both, as
// the profiles foreign key requires in MySQL.  Seeded accounts have no
// password and cannot sign in.  Nothing is stored when any entry is
// invalid.  It returns the number of profiles loaded.
func (p *Profiles) LoadProfiles(r io.Reader) (int, error) {
	var seeds []seedProfile
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return 0, fmt.Errorf("decode profiles: %w", err)
	}

	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()

	emails := make(map[string]uint64, len(s.users)+len(seeds))
	for _, u := range s.users {
		emails[u.Email] = u.ID
	}
	accounts := make([]model.User, 0, len(seeds))
	for _, seed := range seeds {
		id := seed.ID
		if id == 0 {
			return 0, fmt.Errorf("profile %q has no id", seed.FullName)
		}
		if v, ok := seed.Price(); ok && v < 0 {
			return 0, fmt.Errorf("profile %d has a negative price", id)
		}
		if u, ok := s.users[id]; ok {
			if u.Role != model.RoleTalent {
				return 0, fmt.Errorf("profile %d: user %d is not a talent", id, id)
			}
			continue
		}
		email := strings.ToLower(strings.TrimSpace(seed.Email))
		if email == "" {
			email = fmt.Sprintf("talent-%d@seed.invalid", id)
		}
		if owner, ok := emails[email]; ok && owner != id {
			return 0, fmt.Errorf("profile %d: email %s already in use", id, email)
		}
		emails[email] = id
		accounts = append(accounts, model.User{ID: id, Email: email, Role: model.RoleTalent, IsActive: true})
	}

	now := s.Now()
	for _, u := range accounts {
		u.CreatedAt, u.UpdatedAt = now, now
		s.users[u.ID] = u
	}
	for _, seed := range seeds {
		s.profiles[seed.ID] = seed.Profile
	}
	return len(seeds), nil
}
