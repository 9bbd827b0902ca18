package marketplace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

func startApp(t *testing.T, idp *memIdentity, store *memStore) *App {
	t.Helper()
	app := NewApp(Config{PlaceholderRate: 1000}, idp, store)
	app.Start(context.Background())
	t.Cleanup(app.Close)
	return app
}

func TestAppStartsOnListing(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)), talent(2, "Ren", nil))
	app := NewApp(Config{}, newMemIdentity(), store)
	t.Cleanup(app.Close)

	assert.Equal(t, ScreenLoading, app.State().Screen)
	assert.ErrorIs(t, app.Navigate(context.Background(), ScreenListing), ErrLoading)

	app.Start(context.Background())
	assert.Equal(t, ScreenListing, app.State().Screen)
	assert.Len(t, app.Talents(), 2)
	assert.False(t, app.SignedIn())
}

func TestAppRefetchesOnEveryEntry(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)))
	idp := newMemIdentity()
	idp.seed(10)
	app := startApp(t, idp, store)
	ctx := context.Background()
	require.Equal(t, 1, store.profileCalls)

	require.NoError(t, app.SelectTalent(ctx, 1))
	store.mu.Lock()
	store.profiles[0].FullName = "Aiko S."
	store.mu.Unlock()

	require.NoError(t, app.Navigate(ctx, ScreenListing))
	assert.Equal(t, 2, store.profileCalls)
	assert.Equal(t, "Aiko S.", app.Talents()[0].FullName)

	require.NoError(t, app.Navigate(ctx, ScreenDashboard))
	require.NoError(t, app.Navigate(ctx, ScreenListing))
	require.NoError(t, app.Navigate(ctx, ScreenDashboard))
	assert.Equal(t, 2, store.bookingCalls)
	assert.Equal(t, 3, store.profileCalls)
}

func TestAppPayFlow(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)))
	idp := newMemIdentity()
	idp.seed(10)
	app := startApp(t, idp, store)
	ctx := context.Background()

	require.NoError(t, app.SelectTalent(ctx, 1))
	require.NoError(t, app.Pay(ctx))

	assert.Equal(t, ScreenDashboard, app.State().Screen)
	assert.Equal(t, NoticePaid, app.Notice())
	bookings := app.Bookings()
	require.Len(t, bookings, 1)
	assert.Equal(t, uint64(10), bookings[0].ClientID)
	assert.Equal(t, int64(50000), bookings[0].Amount)
	assert.Equal(t, model.BookingStatusPaid, bookings[0].Status)
	assert.Equal(t, int64(1000), app.Balance())
}

func TestAppPayUnauthenticatedRedirects(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)))
	app := startApp(t, newMemIdentity(), store)
	ctx := context.Background()

	require.NoError(t, app.SelectTalent(ctx, 1))
	assert.ErrorIs(t, app.Pay(ctx), ErrUnauthenticated)
	assert.Equal(t, ScreenAuth, app.State().Screen)
	assert.Zero(t, store.bookingCount())
}

func TestAppPayUnknownPriceReturnsToListing(t *testing.T) {
	store := newMemStore(talent(1, "Ren", nil))
	idp := newMemIdentity()
	idp.seed(10)
	app := startApp(t, idp, store)
	ctx := context.Background()

	require.NoError(t, app.SelectTalent(ctx, 1))
	assert.ErrorIs(t, app.Pay(ctx), ErrInvalidTalent)
	assert.Equal(t, ScreenListing, app.State().Screen)
	assert.Zero(t, store.bookingCount())
}

func TestAppPayStoreFailureStaysOnDetail(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)))
	idp := newMemIdentity()
	idp.seed(10)
	app := startApp(t, idp, store)
	ctx := context.Background()
	require.NoError(t, app.SelectTalent(ctx, 1))

	store.failWrites = true
	assert.ErrorIs(t, app.Pay(ctx), ErrStoreWriteFailed)
	assert.Equal(t, ScreenDetail, app.State().Screen)
	assert.Equal(t, NoticePayFailed, app.Notice())
}

func TestAppPaySessionLostAtWriteRedirects(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)))
	idp := newMemIdentity()
	idp.seed(10)
	app := startApp(t, idp, store)
	ctx := context.Background()
	require.NoError(t, app.SelectTalent(ctx, 1))

	store.writeErr = ErrUnauthenticated
	assert.ErrorIs(t, app.Pay(ctx), ErrUnauthenticated)
	assert.Equal(t, ScreenAuth, app.State().Screen)
	assert.Equal(t, NoticeSignInToPay, app.Notice())
}

func TestAppSelectUnknownTalent(t *testing.T) {
	app := startApp(t, newMemIdentity(), newMemStore(talent(1, "Aiko", price(1))))

	assert.ErrorIs(t, app.SelectTalent(context.Background(), 42), ErrInvalidTalent)
	assert.Equal(t, ScreenListing, app.State().Screen)
	assert.Equal(t, NoticeTalentMissing, app.Notice())
}

func TestAppChat(t *testing.T) {
	store := newMemStore(talent(2, "Aiko", price(50000)))
	idp := newMemIdentity()
	idp.seed(1)
	app := startApp(t, idp, store)
	ctx := context.Background()

	require.NoError(t, app.SelectTalent(ctx, 2))
	require.NoError(t, app.Navigate(ctx, ScreenChat))

	require.NoError(t, app.SetDraft("   "))
	assert.ErrorIs(t, app.SendMessage(ctx), ErrEmptyContent)
	assert.Equal(t, "   ", app.State().Draft)
	assert.Zero(t, store.messageCount())

	require.NoError(t, app.SetDraft("Hello"))
	require.NoError(t, app.SendMessage(ctx))
	require.NoError(t, app.SetDraft("When are you free?"))
	require.NoError(t, app.SendMessage(ctx))

	msgs := app.Thread()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, "When are you free?", msgs[1].Content)
	assert.Empty(t, app.State().Draft)
}

func TestAppChatUnauthenticatedRedirects(t *testing.T) {
	store := newMemStore(talent(2, "Aiko", price(50000)))
	app := startApp(t, newMemIdentity(), store)
	ctx := context.Background()

	require.NoError(t, app.SelectTalent(ctx, 2))
	require.NoError(t, app.Navigate(ctx, ScreenChat))
	require.NoError(t, app.SetDraft("Hello"))

	assert.ErrorIs(t, app.SendMessage(ctx), ErrUnauthenticated)
	assert.Equal(t, ScreenAuth, app.State().Screen)
	assert.Zero(t, store.messageCount())
}

func TestAppChatSessionLostAtWriteRedirects(t *testing.T) {
	store := newMemStore(talent(2, "Aiko", price(50000)))
	idp := newMemIdentity()
	idp.seed(1)
	app := startApp(t, idp, store)
	ctx := context.Background()
	require.NoError(t, app.SelectTalent(ctx, 2))
	require.NoError(t, app.Navigate(ctx, ScreenChat))
	require.NoError(t, app.SetDraft("Hello"))

	store.writeErr = ErrUnauthenticated
	assert.ErrorIs(t, app.SendMessage(ctx), ErrUnauthenticated)
	assert.Equal(t, ScreenAuth, app.State().Screen)
	assert.Equal(t, NoticeSignInToChat, app.Notice())
}

func TestAppSessionChanges(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)))
	idp := newMemIdentity()
	app := startApp(t, idp, store)
	ctx := context.Background()

	require.NoError(t, app.Navigate(ctx, ScreenAuth))
	idp.SignIn(10)
	assert.Equal(t, ScreenListing, app.State().Screen)
	assert.True(t, app.SignedIn())

	require.NoError(t, app.Navigate(ctx, ScreenDashboard))
	require.NoError(t, app.SignOut(ctx))
	assert.Equal(t, ScreenListing, app.State().Screen)
	assert.False(t, app.SignedIn())
	assert.Empty(t, app.Bookings())
}

func TestAppDropsSupersededLoad(t *testing.T) {
	store := newMemStore(talent(1, "Aiko", price(50000)))
	idp := newMemIdentity()
	idp.seed(10)
	app := startApp(t, idp, store)
	ctx := context.Background()

	require.NoError(t, app.SelectTalent(ctx, 1))
	require.NoError(t, app.Pay(ctx))
	require.NoError(t, app.Navigate(ctx, ScreenListing))

	require.Len(t, app.Bookings(), 1)
	_, err := store.InsertBooking(ctx, BookingInput{ClientID: 10, TalentID: 1, Amount: 50000, Status: model.BookingStatusPaid})
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.listBookHook = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	done := make(chan error, 1)
	go func() { done <- app.Navigate(ctx, ScreenDashboard) }()
	<-entered
	require.NoError(t, app.Navigate(ctx, ScreenListing))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, ScreenListing, app.State().Screen)
	assert.Len(t, app.Bookings(), 1)
}
