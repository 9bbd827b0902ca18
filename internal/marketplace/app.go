package marketplace

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

// Notices shown to the user after an operation.
const (
	NoticePaid          = "payment completed (simulated)"
	NoticePayFailed     = "payment failed, please try again"
	NoticeSendFailed    = "message could not be sent"
	NoticeEmptyMessage  = "message is empty"
	NoticeSignInToPay   = "sign in to book this talent"
	NoticeSignInToChat  = "sign in to send messages"
	NoticeTalentMissing = "this talent is no longer available"
)

// App is the surface a presentation layer drives.  It owns the screen
// machine and the data bound to each screen, and routes every action
// through the session gate, catalog, thread and ledger.
//
// Loads run without the lock held.  Each load captures the navigation
// generation when it starts and its result is discarded if the user has
// navigated since.
type App struct {
	gate    *SessionGate
	catalog *CatalogReader
	thread  *MessageThread
	ledger  *BookingLedger
	log     *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	machine  *Machine
	gen      uint64
	talents  []model.Profile
	messages []model.Message
	bookings []model.BookingView
	notice   string
	unsub    func()
}

func NewApp(cfg Config, identity IdentityProvider, store Store) *App {
	gate := NewSessionGate(identity)
	catalog := NewCatalogReader(store)
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		gate:     gate,
		catalog:  catalog,
		thread:   NewMessageThread(gate, store),
		ledger:   NewBookingLedger(cfg, gate, catalog, store),
		log:      logger.WithComponent("app"),
		ctx:      ctx,
		cancel:   cancel,
		machine:  NewMachine(),
		talents:  []model.Profile{},
		messages: []model.Message{},
		bookings: []model.BookingView{},
	}
}

// Start resolves the initial session and shows the listing.
func (a *App) Start(ctx context.Context) {
	a.gate.Start(ctx)
	unsub := a.gate.OnChange(a.onSessionChange)

	a.mu.Lock()
	a.unsub = unsub
	if a.machine.State().Screen == ScreenLoading {
		_ = a.machine.Navigate(ScreenListing)
	}
	gen := a.bump()
	st := a.machine.State()
	a.mu.Unlock()

	a.load(ctx, st, gen)
}

// Close releases every subscription and cancels loads triggered by
// session changes.
func (a *App) Close() {
	a.mu.Lock()
	unsub := a.unsub
	a.unsub = nil
	a.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	a.gate.Close()
	a.cancel()
}

// bump starts a new navigation generation.  Caller holds a.mu.
func (a *App) bump() uint64 {
	a.gen++
	return a.gen
}

func (a *App) load(ctx context.Context, st ScreenState, gen uint64) {
	switch st.Screen {
	case ScreenListing:
		talents := a.catalog.ListTalents(ctx)
		a.mu.Lock()
		if a.gen == gen {
			a.talents = talents
		}
		a.mu.Unlock()
	case ScreenChat:
		msgs := a.thread.LoadThread(ctx, st.Selected.ID)
		a.mu.Lock()
		if a.gen == gen {
			a.messages = msgs
		}
		a.mu.Unlock()
	case ScreenDashboard:
		bookings := a.ledger.MyBookings(ctx)
		a.mu.Lock()
		if a.gen == gen {
			a.bookings = bookings
		}
		a.mu.Unlock()
	}
}

func (a *App) onSessionChange(_ model.Session, ok bool) {
	a.mu.Lock()
	st := a.machine.State()
	switch {
	case ok && st.Screen == ScreenAuth:
		a.machine.Reset()
	case !ok && (st.Screen == ScreenDashboard || st.Screen == ScreenChat):
		a.machine.Reset()
	}
	if !ok {
		a.bookings = []model.BookingView{}
		a.messages = []model.Message{}
	}
	gen := a.bump()
	st = a.machine.State()
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{"signed_in": ok, "screen": st.Screen}).Debug("reloading after session change")
	a.load(a.ctx, st, gen)
}

// Navigate moves to screen and runs its load.
func (a *App) Navigate(ctx context.Context, screen Screen) error {
	if a.gate.Loading() {
		return ErrLoading
	}
	a.mu.Lock()
	if err := a.machine.Navigate(screen); err != nil {
		a.mu.Unlock()
		return err
	}
	a.notice = ""
	gen := a.bump()
	st := a.machine.State()
	a.mu.Unlock()

	a.load(ctx, st, gen)
	return nil
}

// SelectTalent opens the detail screen for id.  A talent that is not in
// the current listing sends the user back to a freshly loaded listing.
func (a *App) SelectTalent(ctx context.Context, id uint64) error {
	if a.gate.Loading() {
		return ErrLoading
	}
	p, ok := a.catalog.GetTalent(id)

	a.mu.Lock()
	if !ok {
		a.machine.Reset()
		a.notice = NoticeTalentMissing
		gen := a.bump()
		st := a.machine.State()
		a.mu.Unlock()
		a.load(ctx, st, gen)
		return ErrInvalidTalent
	}
	if err := a.machine.Open(p); err != nil {
		a.mu.Unlock()
		return err
	}
	a.notice = ""
	a.bump()
	a.mu.Unlock()
	return nil
}

// SetDraft replaces the chat draft.
func (a *App) SetDraft(text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.machine.SetDraft(text)
}

// SendMessage sends the chat draft to the selected talent.
func (a *App) SendMessage(ctx context.Context) error {
	a.mu.Lock()
	st := a.machine.State()
	if st.Screen != ScreenChat {
		a.mu.Unlock()
		return ErrWrongScreen
	}
	gen := a.gen
	a.mu.Unlock()

	msgs, err := a.thread.Send(ctx, st.Selected.ID, st.Draft)

	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case err == nil:
		if a.gen == gen {
			a.messages = msgs
			_ = a.machine.SetDraft("")
		}
	case errors.Is(err, ErrUnauthenticated):
		a.machine.RedirectToAuth()
		a.notice = NoticeSignInToChat
		a.bump()
	case errors.Is(err, ErrEmptyContent):
		a.notice = NoticeEmptyMessage
	case errors.Is(err, ErrStoreWriteFailed):
		a.notice = NoticeSendFailed
	}
	return err
}

// Pay books the talent shown on the detail screen.  On success the
// dashboard is shown with the new booking.
func (a *App) Pay(ctx context.Context) error {
	a.mu.Lock()
	st := a.machine.State()
	if st.Screen != ScreenDetail {
		a.mu.Unlock()
		return ErrWrongScreen
	}
	gen := a.gen
	a.mu.Unlock()

	_, err := a.ledger.Pay(ctx, st.Selected.ID)

	a.mu.Lock()
	switch {
	case err == nil:
		a.notice = NoticePaid
		if a.gen != gen {
			a.mu.Unlock()
			return nil
		}
		_ = a.machine.PaymentSucceeded()
	case errors.Is(err, ErrUnauthenticated):
		a.machine.RedirectToAuth()
		a.notice = NoticeSignInToPay
		a.bump()
		a.mu.Unlock()
		return err
	case errors.Is(err, ErrInvalidTalent):
		a.machine.Reset()
		a.notice = NoticeTalentMissing
	case errors.Is(err, ErrStoreWriteFailed):
		a.notice = NoticePayFailed
		a.mu.Unlock()
		return err
	default:
		a.mu.Unlock()
		return err
	}
	next := a.bump()
	after := a.machine.State()
	a.mu.Unlock()

	a.load(ctx, after, next)
	return err
}

// SignOut ends the session and returns to the listing.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.gate.SignOut(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	a.machine.Reset()
	a.notice = ""
	a.bookings = []model.BookingView{}
	a.messages = []model.Message{}
	gen := a.bump()
	st := a.machine.State()
	a.mu.Unlock()

	a.load(ctx, st, gen)
	return nil
}

func (a *App) State() ScreenState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.machine.State()
}

func (a *App) Talents() []model.Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneProfiles(a.talents)
}

func (a *App) Thread() []model.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

func (a *App) Bookings() []model.BookingView {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.BookingView, len(a.bookings))
	copy(out, a.bookings)
	return out
}

// Balance is the placeholder estimate for the bookings on the dashboard.
func (a *App) Balance() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.PlaceholderBalance(a.bookings)
}

func (a *App) Notice() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notice
}

func (a *App) SignedIn() bool {
	_, ok := a.gate.Current()
	return ok
}
