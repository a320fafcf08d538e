package wishlist_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/infrastructure/database/memory"
	"github.com/your-org/giftlist-backend/internal/pkg/auth"
)

const (
	ownerID    uint = 1
	aliceID    uint = 2
	bobID      uint = 3
	carolID    uint = 4
	strangerID uint = 99
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []wishlist.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event wishlist.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) last() wishlist.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

func (n *recordingNotifier) verbs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	verbs := make([]string, 0, len(n.events))
	for _, e := range n.events {
		verbs = append(verbs, e.Entry.Verb)
	}
	return verbs
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	clock    *fakeClock
	notifier *recordingNotifier
	svc      *wishlist.Services
}

func newFixture(t *testing.T, opts ...wishlist.Option) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    memory.NewStore(),
		clock:    &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
	}

	base := []wishlist.Option{
		wishlist.WithClock(f.clock.Now),
		wishlist.WithNotifier(f.notifier),
		wishlist.WithLogger(logger),
		wishlist.WithPasswordHasher(auth.NewPasswordManager(bcrypt.MinCost)),
		wishlist.WithShareBaseURL("https://gifts.example.com"),
	}
	f.svc = wishlist.NewServices(f.store, append(base, opts...)...)
	return f
}

func (f *fixture) createWishlist(owner uint, collaborative bool) *wishlist.Wishlist {
	f.t.Helper()
	w, err := f.svc.Wishlists.Create(f.ctx, owner, &wishlist.CreateWishlistRequest{
		Name:            "Birthday",
		IsCollaborative: collaborative,
	})
	require.NoError(f.t, err)
	return w
}

func (f *fixture) addItem(wishlistID, caller uint, title string, price float64) *wishlist.Item {
	f.t.Helper()
	item, err := f.svc.Items.Add(f.ctx, wishlistID, caller, &wishlist.AddItemRequest{Title: title, Price: price})
	require.NoError(f.t, err)
	return item
}

func (f *fixture) addCollaborator(wishlistID, userID uint, role wishlist.Role) *wishlist.Collaborator {
	f.t.Helper()
	c, err := f.svc.Collaborators.Add(f.ctx, wishlistID, ownerID, &wishlist.AddCollaboratorRequest{UserID: userID, Role: role})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) item(wishlistID, itemID uint) *wishlist.Item {
	f.t.Helper()
	item, err := f.store.GetItem(f.ctx, wishlistID, itemID)
	require.NoError(f.t, err)
	return item
}

func principal(id uint, email string) wishlist.Principal {
	return wishlist.Principal{UserID: id, Email: email}
}

func member(id uint) wishlist.ClaimAccess {
	return wishlist.ClaimAccess{UserID: id}
}
