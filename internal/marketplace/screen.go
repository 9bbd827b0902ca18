package marketplace

import (
	"fmt"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

// Screen names a page of the client.
type Screen string

const (
	ScreenLoading   Screen = "loading"
	ScreenListing   Screen = "listing"
	ScreenDetail    Screen = "detail"
	ScreenChat      Screen = "chat"
	ScreenDashboard Screen = "dashboard"
	ScreenAuth      Screen = "auth"
)

// ScreenState is the current page plus the data it is bound to.
// Selected is set on detail and chat only.
type ScreenState struct {
	Screen   Screen
	Selected *model.Profile
	Draft    string
}

// user-initiated transitions
var transitions = map[Screen][]Screen{
	ScreenLoading:   {ScreenListing, ScreenAuth},
	ScreenListing:   {ScreenListing, ScreenDetail, ScreenDashboard, ScreenAuth},
	ScreenDetail:    {ScreenListing, ScreenChat},
	ScreenChat:      {ScreenDetail},
	ScreenDashboard: {ScreenDashboard, ScreenListing},
	ScreenAuth:      {ScreenListing},
}

// Machine is the screen state machine.  It is not safe for concurrent
// use; App serialises access to it.
type Machine struct {
	state ScreenState
}

func NewMachine() *Machine {
	return &Machine{state: ScreenState{Screen: ScreenLoading}}
}

// State returns a copy of the current state.
func (m *Machine) State() ScreenState {
	st := m.state
	if st.Selected != nil {
		p := *st.Selected
		st.Selected = &p
	}
	return st
}

func allowed(from, to Screen) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Navigate moves to another screen.  Detail and chat keep the current
// selection and fail with ErrInvalidTalent when there is none; every
// other screen drops it.
func (m *Machine) Navigate(to Screen) error {
	from := m.state.Screen
	if !allowed(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	switch to {
	case ScreenDetail, ScreenChat:
		if m.state.Selected == nil {
			return ErrInvalidTalent
		}
		if to == ScreenDetail {
			m.state.Draft = ""
		}
	default:
		m.state.Selected = nil
		m.state.Draft = ""
	}
	m.state.Screen = to
	return nil
}

// Open shows p on the detail screen.
func (m *Machine) Open(p model.Profile) error {
	if !allowed(m.state.Screen, ScreenDetail) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state.Screen, ScreenDetail)
	}
	m.state = ScreenState{Screen: ScreenDetail, Selected: &p}
	return nil
}

// SetDraft replaces the chat draft.
func (m *Machine) SetDraft(text string) error {
	if m.state.Screen != ScreenChat {
		return ErrWrongScreen
	}
	m.state.Draft = text
	return nil
}

// PaymentSucceeded moves from detail to the dashboard.
func (m *Machine) PaymentSucceeded() error {
	if m.state.Screen != ScreenDetail {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state.Screen, ScreenDashboard)
	}
	m.state = ScreenState{Screen: ScreenDashboard}
	return nil
}

// RedirectToAuth handles an unauthenticated mutation.
func (m *Machine) RedirectToAuth() {
	m.state = ScreenState{Screen: ScreenAuth}
}

// Reset returns to the listing from any screen.  Used after sign-out
// and when a selection can no longer be resolved.
func (m *Machine) Reset() {
	m.state = ScreenState{Screen: ScreenListing}
}
