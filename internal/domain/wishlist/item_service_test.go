package wishlist_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

func TestAddItemRequiresContributor(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	f.addCollaborator(w.ID, aliceID, wishlist.RoleViewer)
	f.addCollaborator(w.ID, bobID, wishlist.RoleContributor)

	_, err := f.svc.Items.Add(f.ctx, w.ID, aliceID, &wishlist.AddItemRequest{Title: "Kettle"})
	assert.ErrorIs(t, err, wishlist.ErrForbidden)

	_, err = f.svc.Items.Add(f.ctx, w.ID, strangerID, &wishlist.AddItemRequest{Title: "Kettle"})
	assert.ErrorIs(t, err, wishlist.ErrForbidden)

	_, err = f.svc.Items.Add(f.ctx, w.ID, bobID, &wishlist.AddItemRequest{Title: "Kettle"})
	assert.NoError(t, err)
}

func TestAddItemNormalizesInput(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)

	item, err := f.svc.Items.Add(f.ctx, w.ID, ownerID, &wishlist.AddItemRequest{
		Title: " Book ",
		Price: 12.5,
		Tags:  []string{"Reading", "reading", " ", "gift"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Book", item.Title)
	assert.Equal(t, "USD", item.Currency)
	assert.Equal(t, wishlist.PriorityMedium, item.Priority)
	assert.Equal(t, wishlist.ItemStatusAvailable, item.Status)
	assert.Equal(t, []string{"reading", "gift"}, item.Tags)

	tests := []struct {
		name string
		req  wishlist.AddItemRequest
	}{
		{"negative price", wishlist.AddItemRequest{Title: "x", Price: -1}},
		{"missing title", wishlist.AddItemRequest{Title: "  "}},
		{"bad currency", wishlist.AddItemRequest{Title: "x", Currency: "EURO"}},
		{"bad priority", wishlist.AddItemRequest{Title: "x", Priority: "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Items.Add(f.ctx, w.ID, ownerID, &tt.req)
			assert.ErrorIs(t, err, wishlist.ErrValidation)
		})
	}
}

func TestAddItemRejectsDuplicateTitles(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)
	f.addItem(w.ID, ownerID, "Kettle", 30)

	_, err := f.svc.Items.Add(f.ctx, w.ID, ownerID, &wishlist.AddItemRequest{Title: " kettle"})
	assert.ErrorIs(t, err, wishlist.ErrConflict)

	allow := true
	_, err = f.svc.Wishlists.Update(f.ctx, w.ID, ownerID, &wishlist.UpdateWishlistRequest{
		Settings: &wishlist.SettingsPatch{AllowDuplicates: &allow},
	})
	require.NoError(t, err)

	_, err = f.svc.Items.Add(f.ctx, w.ID, ownerID, &wishlist.AddItemRequest{Title: "Kettle"})
	assert.NoError(t, err)
}

func TestUpdateItem(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)
	f.addItem(w.ID, ownerID, "Toaster", 25)

	title := "Electric kettle"
	price := 45.0
	priority := wishlist.PriorityHigh
	updated, err := f.svc.Items.Update(f.ctx, w.ID, item.ID, ownerID, &wishlist.UpdateItemRequest{
		Title:    &title,
		Price:    &price,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, "Electric kettle", updated.Title)
	assert.InDelta(t, 45, updated.Price, 0.001)
	assert.Equal(t, wishlist.PriorityHigh, updated.Priority)
	assert.Equal(t, wishlist.ItemStatusAvailable, updated.Status)

	clash := "toaster"
	_, err = f.svc.Items.Update(f.ctx, w.ID, item.ID, ownerID, &wishlist.UpdateItemRequest{Title: &clash})
	assert.ErrorIs(t, err, wishlist.ErrConflict)

	negative := -3.0
	_, err = f.svc.Items.Update(f.ctx, w.ID, item.ID, ownerID, &wishlist.UpdateItemRequest{Price: &negative})
	assert.ErrorIs(t, err, wishlist.ErrValidation)

	_, err = f.svc.Items.Update(f.ctx, w.ID, item.ID+100, ownerID, &wishlist.UpdateItemRequest{Title: &title})
	assert.ErrorIs(t, err, wishlist.ErrNotFound)
}

func TestDeleteItemRemovesComments(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)
	_, err := f.svc.Comments.Add(f.ctx, item.ID, principal(ownerID, ""), &wishlist.AddCommentRequest{Message: "blue please"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Items.Delete(f.ctx, w.ID, item.ID, ownerID))

	_, err = f.store.FindItem(f.ctx, item.ID)
	assert.ErrorIs(t, err, wishlist.ErrNotFound)
	comments, err := f.store.ListComments(f.ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, f.svc.Items.Delete(f.ctx, w.ID, item.ID, ownerID), wishlist.ErrNotFound)
}

func TestReserveThenPurchase(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	f.addCollaborator(w.ID, aliceID, wishlist.RoleViewer)
	f.addCollaborator(w.ID, bobID, wishlist.RoleViewer)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)

	reserved, err := f.svc.Items.Reserve(f.ctx, w.ID, item.ID, member(aliceID))
	require.NoError(t, err)
	assert.Equal(t, wishlist.ItemStatusReserved, reserved.Status)
	require.NotNil(t, reserved.ReservedBy)
	assert.Equal(t, aliceID, *reserved.ReservedBy)
	assert.Equal(t, f.clock.Now(), *reserved.ReservedAt)

	_, err = f.svc.Items.Reserve(f.ctx, w.ID, item.ID, member(bobID))
	assert.ErrorIs(t, err, wishlist.ErrConflict)
	_, err = f.svc.Items.Purchase(f.ctx, w.ID, item.ID, member(bobID))
	assert.ErrorIs(t, err, wishlist.ErrConflict)

	f.clock.Advance(time.Hour)
	purchased, err := f.svc.Items.Purchase(f.ctx, w.ID, item.ID, member(aliceID))
	require.NoError(t, err)
	assert.Equal(t, wishlist.ItemStatusPurchased, purchased.Status)
	assert.Nil(t, purchased.ReservedBy)
	assert.Nil(t, purchased.ReservedAt)
	require.NotNil(t, purchased.PurchasedBy)
	assert.Equal(t, aliceID, *purchased.PurchasedBy)
	assert.Equal(t, f.clock.Now(), *purchased.PurchasedAt)

	stored := f.item(w.ID, item.ID)
	assert.Equal(t, wishlist.ItemStatusPurchased, stored.Status)

	_, err = f.svc.Items.Purchase(f.ctx, w.ID, item.ID, member(aliceID))
	assert.ErrorIs(t, err, wishlist.ErrConflict)
	_, err = f.svc.Items.Release(f.ctx, w.ID, item.ID, member(aliceID))
	assert.ErrorIs(t, err, wishlist.ErrConflict)

	assert.Contains(t, f.notifier.verbs(), wishlist.VerbReserved)
	assert.Contains(t, f.notifier.verbs(), wishlist.VerbPurchased)
}

func TestPurchaseAvailableItemDirectly(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	f.addCollaborator(w.ID, aliceID, wishlist.RoleViewer)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)

	purchased, err := f.svc.Items.Purchase(f.ctx, w.ID, item.ID, member(aliceID))
	require.NoError(t, err)
	assert.Equal(t, wishlist.ItemStatusPurchased, purchased.Status)
	assert.Nil(t, purchased.ReservedBy)
}

func TestClaimRequiresMembershipOrShare(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)

	_, err := f.svc.Items.Reserve(f.ctx, w.ID, item.ID, member(strangerID))
	assert.ErrorIs(t, err, wishlist.ErrForbidden)

	_, err = f.svc.Items.Reserve(f.ctx, w.ID, item.ID, wishlist.ClaimAccess{})
	assert.ErrorIs(t, err, wishlist.ErrUnauthorized)

	assert.Equal(t, wishlist.ItemStatusAvailable, f.item(w.ID, item.ID).Status, "failed claims leave the item untouched")
}

func TestClaimThroughShareLink(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)
	other := f.createWishlist(ownerID, false)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)

	expires := f.clock.Now().Add(time.Hour)
	share, err := f.svc.Shares.Create(f.ctx, w.ID, ownerID, &wishlist.CreateShareRequest{
		ShareType: wishlist.ShareTypePrivate,
		Password:  "abc",
		ExpiresAt: &expires,
	})
	require.NoError(t, err)
	otherShare, err := f.svc.Shares.Create(f.ctx, other.ID, ownerID, &wishlist.CreateShareRequest{ShareType: wishlist.ShareTypePublic})
	require.NoError(t, err)

	code := share.Share.ShareCode

	_, err = f.svc.Items.Reserve(f.ctx, w.ID, item.ID, wishlist.ClaimAccess{UserID: strangerID, ShareCode: code, SharePassword: "nope"})
	assert.ErrorIs(t, err, wishlist.ErrUnauthorized)

	_, err = f.svc.Items.Reserve(f.ctx, w.ID, item.ID, wishlist.ClaimAccess{UserID: strangerID, ShareCode: otherShare.Share.ShareCode})
	assert.ErrorIs(t, err, wishlist.ErrForbidden)

	_, err = f.svc.Items.Reserve(f.ctx, w.ID, item.ID, wishlist.ClaimAccess{UserID: strangerID, ShareCode: "unknown"})
	assert.ErrorIs(t, err, wishlist.ErrForbidden)

	reserved, err := f.svc.Items.Reserve(f.ctx, w.ID, item.ID, wishlist.ClaimAccess{UserID: strangerID, ShareCode: code, SharePassword: "abc"})
	require.NoError(t, err)
	assert.Equal(t, strangerID, *reserved.ReservedBy)

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.Items.Release(f.ctx, w.ID, item.ID, wishlist.ClaimAccess{UserID: strangerID, ShareCode: code, SharePassword: "abc"})
	assert.ErrorIs(t, err, wishlist.ErrExpired)
}

func TestClaimThroughShareLinkNeedsPurchasesAllowed(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)
	share, err := f.svc.Shares.Create(f.ctx, w.ID, ownerID, &wishlist.CreateShareRequest{ShareType: wishlist.ShareTypePublic})
	require.NoError(t, err)

	off := false
	_, err = f.svc.Wishlists.Update(f.ctx, w.ID, ownerID, &wishlist.UpdateWishlistRequest{
		Settings: &wishlist.SettingsPatch{AllowPurchases: &off},
	})
	require.NoError(t, err)

	_, err = f.svc.Items.Purchase(f.ctx, w.ID, item.ID, wishlist.ClaimAccess{UserID: strangerID, ShareCode: share.Share.ShareCode})
	assert.ErrorIs(t, err, wishlist.ErrForbidden)
}

func TestRelease(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	f.addCollaborator(w.ID, aliceID, wishlist.RoleContributor)
	f.addCollaborator(w.ID, bobID, wishlist.RoleContributor)
	f.addCollaborator(w.ID, carolID, wishlist.RoleAdmin)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)

	_, err := f.svc.Items.Release(f.ctx, w.ID, item.ID, member(aliceID))
	assert.ErrorIs(t, err, wishlist.ErrConflict)

	_, err = f.svc.Items.Reserve(f.ctx, w.ID, item.ID, member(aliceID))
	require.NoError(t, err)

	_, err = f.svc.Items.Release(f.ctx, w.ID, item.ID, member(bobID))
	assert.ErrorIs(t, err, wishlist.ErrForbidden)

	released, err := f.svc.Items.Release(f.ctx, w.ID, item.ID, member(aliceID))
	require.NoError(t, err)
	assert.Equal(t, wishlist.ItemStatusAvailable, released.Status)
	assert.Nil(t, released.ReservedBy)

	_, err = f.svc.Items.Reserve(f.ctx, w.ID, item.ID, member(bobID))
	require.NoError(t, err)
	_, err = f.svc.Items.Release(f.ctx, w.ID, item.ID, member(carolID))
	assert.NoError(t, err, "admins may release anybody's reservation")
}

func TestConcurrentReserveHasOneWinner(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)

	const contenders = 16
	for i := 0; i < contenders; i++ {
		f.addCollaborator(w.ID, uint(100+i), wishlist.RoleViewer)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			<-start
			_, err := f.svc.Items.Reserve(f.ctx, w.ID, item.ID, member(userID))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, wishlist.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uint(100 + i))
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, contenders-1, conflicts)

	stored := f.item(w.ID, item.ID)
	assert.Equal(t, wishlist.ItemStatusReserved, stored.Status)
	assert.Nil(t, stored.PurchasedBy)
}

func TestListItemsVisibility(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)
	f.addItem(w.ID, ownerID, "A", 1)
	f.addItem(w.ID, ownerID, "B", 2)

	items, err := f.svc.Items.List(f.ctx, w.ID, ownerID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)

	_, err = f.svc.Items.List(f.ctx, w.ID, strangerID)
	assert.ErrorIs(t, err, wishlist.ErrForbidden)
}
