// Package memory provides an in-process wishlist.Store used for development
// and tests. Each transaction buffers its writes in an overlay and publishes
// them under one write lock, so readers never observe half a mutation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

// Store is a concurrency-safe in-memory wishlist.Store
type Store struct {
	mu    sync.RWMutex
	locks sync.Map // wishlist id -> *sync.Mutex

	wishlists     *table[wishlist.Wishlist]
	items         *table[wishlist.Item]
	collaborators *table[wishlist.Collaborator]
	invitations   *table[wishlist.Invitation]
	shares        *table[wishlist.Share]
	comments      *table[wishlist.Comment]
	activity      *table[wishlist.ActivityEntry]
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		wishlists:     newTable(func(w *wishlist.Wishlist) *uint { return &w.ID }),
		items:         newTable(func(i *wishlist.Item) *uint { return &i.ID }),
		collaborators: newTable(func(c *wishlist.Collaborator) *uint { return &c.ID }),
		invitations:   newTable(func(i *wishlist.Invitation) *uint { return &i.ID }),
		shares:        newTable(func(s *wishlist.Share) *uint { return &s.ID }),
		comments:      newTable(func(c *wishlist.Comment) *uint { return &c.ID }),
		activity:      newTable(func(a *wishlist.ActivityEntry) *uint { return &a.ID }),
	}
}

func (s *Store) lockFor(id uint) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Store) newView() *view {
	return &view{
		store:         s,
		wishlists:     newOverlay(s.wishlists),
		items:         newOverlay(s.items),
		collaborators: newOverlay(s.collaborators),
		invitations:   newOverlay(s.invitations),
		shares:        newOverlay(s.shares),
		comments:      newOverlay(s.comments),
		activity:      newOverlay(s.activity),
	}
}

// CreateWishlist implements wishlist.Store
func (s *Store) CreateWishlist(ctx context.Context, w *wishlist.Wishlist, fn wishlist.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.ID = s.wishlists.nextID()
	mu := s.lockFor(w.ID)
	mu.Lock()
	defer mu.Unlock()

	tx := s.newView()
	tx.wishlists.put(*w)
	if fn != nil {
		locked := *w
		if err := fn(tx, &locked); err != nil {
			w.ID = 0
			return err
		}
	}
	tx.commit()
	return nil
}

// WithWishlist implements wishlist.Store
func (s *Store) WithWishlist(ctx context.Context, wishlistID uint, fn wishlist.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mu := s.lockFor(wishlistID)
	mu.Lock()
	defer mu.Unlock()

	tx := s.newView()
	w, err := tx.GetWishlist(ctx, wishlistID)
	if err != nil {
		return err
	}
	if err := fn(tx, w); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// IncrementShareViews implements wishlist.Store
func (s *Store) IncrementShareViews(_ context.Context, shareID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	share, ok := s.shares.rows[shareID]
	if !ok {
		return 0, fmt.Errorf("%w: share %d", wishlist.ErrNotFound, shareID)
	}
	share.ViewCount++
	s.shares.rows[shareID] = share
	return share.ViewCount, nil
}

// Read side outside a transaction: every call sees the committed state.

func (s *Store) GetWishlist(ctx context.Context, id uint) (*wishlist.Wishlist, error) {
	return s.newView().GetWishlist(ctx, id)
}

func (s *Store) ListWishlistsByOwner(ctx context.Context, ownerID uint) ([]wishlist.Wishlist, error) {
	return s.newView().ListWishlistsByOwner(ctx, ownerID)
}

func (s *Store) ListWishlistsByCollaborator(ctx context.Context, userID uint) ([]wishlist.Wishlist, error) {
	return s.newView().ListWishlistsByCollaborator(ctx, userID)
}

func (s *Store) GetItem(ctx context.Context, wishlistID, itemID uint) (*wishlist.Item, error) {
	return s.newView().GetItem(ctx, wishlistID, itemID)
}

func (s *Store) FindItem(ctx context.Context, itemID uint) (*wishlist.Item, error) {
	return s.newView().FindItem(ctx, itemID)
}

func (s *Store) ListItems(ctx context.Context, wishlistID uint) ([]wishlist.Item, error) {
	return s.newView().ListItems(ctx, wishlistID)
}

func (s *Store) GetCollaborator(ctx context.Context, wishlistID, collaboratorID uint) (*wishlist.Collaborator, error) {
	return s.newView().GetCollaborator(ctx, wishlistID, collaboratorID)
}

func (s *Store) FindCollaborator(ctx context.Context, wishlistID, userID uint) (*wishlist.Collaborator, error) {
	return s.newView().FindCollaborator(ctx, wishlistID, userID)
}

func (s *Store) ListCollaborators(ctx context.Context, wishlistID uint) ([]wishlist.Collaborator, error) {
	return s.newView().ListCollaborators(ctx, wishlistID)
}

func (s *Store) GetInvitation(ctx context.Context, id uint) (*wishlist.Invitation, error) {
	return s.newView().GetInvitation(ctx, id)
}

func (s *Store) ListInvitations(ctx context.Context, wishlistID uint) ([]wishlist.Invitation, error) {
	return s.newView().ListInvitations(ctx, wishlistID)
}

func (s *Store) ListInvitationsByEmail(ctx context.Context, email string) ([]wishlist.Invitation, error) {
	return s.newView().ListInvitationsByEmail(ctx, email)
}

func (s *Store) GetShareByCode(ctx context.Context, code string) (*wishlist.Share, error) {
	return s.newView().GetShareByCode(ctx, code)
}

func (s *Store) ListShares(ctx context.Context, wishlistID uint) ([]wishlist.Share, error) {
	return s.newView().ListShares(ctx, wishlistID)
}

func (s *Store) GetComment(ctx context.Context, itemID, commentID uint) (*wishlist.Comment, error) {
	return s.newView().GetComment(ctx, itemID, commentID)
}

func (s *Store) ListComments(ctx context.Context, itemID uint) ([]wishlist.Comment, error) {
	return s.newView().ListComments(ctx, itemID)
}

func (s *Store) ListActivity(ctx context.Context, wishlistID uint, limit int) ([]wishlist.ActivityEntry, error) {
	return s.newView().ListActivity(ctx, wishlistID, limit)
}

// view implements wishlist.Tx. Outside a transaction it is created fresh for
// each read and never written to.
type view struct {
	store *Store

	wishlists     *overlay[wishlist.Wishlist]
	items         *overlay[wishlist.Item]
	collaborators *overlay[wishlist.Collaborator]
	invitations   *overlay[wishlist.Invitation]
	shares        *overlay[wishlist.Share]
	comments      *overlay[wishlist.Comment]
	activity      *overlay[wishlist.ActivityEntry]
}

func (v *view) rlock() func() {
	v.store.mu.RLock()
	return v.store.mu.RUnlock
}

func (v *view) commit() {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	v.wishlists.commit()
	v.items.commit()
	v.collaborators.commit()
	v.invitations.commit()
	v.shares.commit()
	v.comments.commit()
	v.activity.commit()
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%w: %s %d", wishlist.ErrNotFound, what, id)
}

func cloneItem(item wishlist.Item) wishlist.Item {
	if item.Tags != nil {
		item.Tags = append([]string(nil), item.Tags...)
	}
	return item
}

func (v *view) GetWishlist(_ context.Context, id uint) (*wishlist.Wishlist, error) {
	defer v.rlock()()
	w, ok := v.wishlists.get(id)
	if !ok {
		return nil, notFound("wishlist", id)
	}
	return &w, nil
}

func (v *view) ListWishlistsByOwner(_ context.Context, ownerID uint) ([]wishlist.Wishlist, error) {
	defer v.rlock()()
	return v.wishlists.list(func(w *wishlist.Wishlist) bool { return w.OwnerID == ownerID }), nil
}

func (v *view) ListWishlistsByCollaborator(_ context.Context, userID uint) ([]wishlist.Wishlist, error) {
	defer v.rlock()()
	ids := make(map[uint]bool)
	for _, c := range v.collaborators.list(func(c *wishlist.Collaborator) bool { return c.UserID == userID }) {
		ids[c.WishlistID] = true
	}
	return v.wishlists.list(func(w *wishlist.Wishlist) bool { return ids[w.ID] }), nil
}

func (v *view) GetItem(_ context.Context, wishlistID, itemID uint) (*wishlist.Item, error) {
	defer v.rlock()()
	item, ok := v.items.get(itemID)
	if !ok || item.WishlistID != wishlistID {
		return nil, notFound("item", itemID)
	}
	item = cloneItem(item)
	return &item, nil
}

func (v *view) FindItem(_ context.Context, itemID uint) (*wishlist.Item, error) {
	defer v.rlock()()
	item, ok := v.items.get(itemID)
	if !ok {
		return nil, notFound("item", itemID)
	}
	item = cloneItem(item)
	return &item, nil
}

func (v *view) ListItems(_ context.Context, wishlistID uint) ([]wishlist.Item, error) {
	defer v.rlock()()
	items := v.items.list(func(i *wishlist.Item) bool { return i.WishlistID == wishlistID })
	for i := range items {
		items[i] = cloneItem(items[i])
	}
	return items, nil
}

func (v *view) GetCollaborator(_ context.Context, wishlistID, collaboratorID uint) (*wishlist.Collaborator, error) {
	defer v.rlock()()
	c, ok := v.collaborators.get(collaboratorID)
	if !ok || c.WishlistID != wishlistID {
		return nil, notFound("collaborator", collaboratorID)
	}
	return &c, nil
}

func (v *view) FindCollaborator(_ context.Context, wishlistID, userID uint) (*wishlist.Collaborator, error) {
	defer v.rlock()()
	found := v.collaborators.list(func(c *wishlist.Collaborator) bool {
		return c.WishlistID == wishlistID && c.UserID == userID
	})
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: user %d on wishlist %d", wishlist.ErrNotFound, userID, wishlistID)
	}
	return &found[0], nil
}

func (v *view) ListCollaborators(_ context.Context, wishlistID uint) ([]wishlist.Collaborator, error) {
	defer v.rlock()()
	return v.collaborators.list(func(c *wishlist.Collaborator) bool { return c.WishlistID == wishlistID }), nil
}

func (v *view) GetInvitation(_ context.Context, id uint) (*wishlist.Invitation, error) {
	defer v.rlock()()
	inv, ok := v.invitations.get(id)
	if !ok {
		return nil, notFound("invitation", id)
	}
	return &inv, nil
}

func (v *view) ListInvitations(_ context.Context, wishlistID uint) ([]wishlist.Invitation, error) {
	defer v.rlock()()
	return v.invitations.list(func(i *wishlist.Invitation) bool { return i.WishlistID == wishlistID }), nil
}

func (v *view) ListInvitationsByEmail(_ context.Context, email string) ([]wishlist.Invitation, error) {
	defer v.rlock()()
	return v.invitations.list(func(i *wishlist.Invitation) bool { return i.Email == email }), nil
}

func (v *view) GetShareByCode(_ context.Context, code string) (*wishlist.Share, error) {
	defer v.rlock()()
	found := v.shares.list(func(s *wishlist.Share) bool { return s.ShareCode == code })
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: share %q", wishlist.ErrNotFound, code)
	}
	return &found[0], nil
}

func (v *view) ListShares(_ context.Context, wishlistID uint) ([]wishlist.Share, error) {
	defer v.rlock()()
	return v.shares.list(func(s *wishlist.Share) bool { return s.WishlistID == wishlistID }), nil
}

func (v *view) GetComment(_ context.Context, itemID, commentID uint) (*wishlist.Comment, error) {
	defer v.rlock()()
	c, ok := v.comments.get(commentID)
	if !ok || c.ItemID != itemID {
		return nil, notFound("comment", commentID)
	}
	return &c, nil
}

func (v *view) ListComments(_ context.Context, itemID uint) ([]wishlist.Comment, error) {
	defer v.rlock()()
	return v.comments.list(func(c *wishlist.Comment) bool { return c.ItemID == itemID }), nil
}

func (v *view) ListActivity(_ context.Context, wishlistID uint, limit int) ([]wishlist.ActivityEntry, error) {
	defer v.rlock()()
	entries := v.activity.list(func(a *wishlist.ActivityEntry) bool { return a.WishlistID == wishlistID })
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Write side. Writes only touch the transaction's overlay.

func (v *view) UpdateWishlist(_ context.Context, w *wishlist.Wishlist) error {
	v.wishlists.put(*w)
	return nil
}

func (v *view) DeleteWishlist(_ context.Context, id uint) error {
	defer v.rlock()()
	if _, ok := v.wishlists.get(id); !ok {
		return notFound("wishlist", id)
	}
	v.items.removeWhere(func(i *wishlist.Item) bool { return i.WishlistID == id })
	v.comments.removeWhere(func(c *wishlist.Comment) bool { return c.WishlistID == id })
	v.collaborators.removeWhere(func(c *wishlist.Collaborator) bool { return c.WishlistID == id })
	v.invitations.removeWhere(func(i *wishlist.Invitation) bool { return i.WishlistID == id })
	v.shares.removeWhere(func(s *wishlist.Share) bool { return s.WishlistID == id })
	v.activity.removeWhere(func(a *wishlist.ActivityEntry) bool { return a.WishlistID == id })
	v.wishlists.remove(id)
	return nil
}

func (v *view) CreateItem(_ context.Context, item *wishlist.Item) error {
	stored := cloneItem(*item)
	v.items.insert(&stored)
	item.ID = stored.ID
	return nil
}

func (v *view) SaveItem(_ context.Context, item *wishlist.Item) error {
	v.items.put(cloneItem(*item))
	return nil
}

func (v *view) DeleteItem(_ context.Context, wishlistID, itemID uint) error {
	defer v.rlock()()
	item, ok := v.items.get(itemID)
	if !ok || item.WishlistID != wishlistID {
		return notFound("item", itemID)
	}
	v.comments.removeWhere(func(c *wishlist.Comment) bool { return c.ItemID == itemID })
	v.items.remove(itemID)
	return nil
}

func (v *view) CreateCollaborator(_ context.Context, c *wishlist.Collaborator) error {
	defer v.rlock()()
	dup := v.collaborators.list(func(existing *wishlist.Collaborator) bool {
		return existing.WishlistID == c.WishlistID && existing.UserID == c.UserID
	})
	if len(dup) > 0 {
		return fmt.Errorf("%w: user %d already collaborates on wishlist %d", wishlist.ErrConflict, c.UserID, c.WishlistID)
	}
	v.collaborators.insert(c)
	return nil
}

func (v *view) SaveCollaborator(_ context.Context, c *wishlist.Collaborator) error {
	v.collaborators.put(*c)
	return nil
}

func (v *view) DeleteCollaborator(_ context.Context, wishlistID, collaboratorID uint) error {
	defer v.rlock()()
	c, ok := v.collaborators.get(collaboratorID)
	if !ok || c.WishlistID != wishlistID {
		return notFound("collaborator", collaboratorID)
	}
	v.collaborators.remove(collaboratorID)
	return nil
}

func (v *view) CreateInvitation(_ context.Context, inv *wishlist.Invitation) error {
	v.invitations.insert(inv)
	return nil
}

func (v *view) SaveInvitation(_ context.Context, inv *wishlist.Invitation) error {
	v.invitations.put(*inv)
	return nil
}

func (v *view) CreateShare(_ context.Context, share *wishlist.Share) error {
	defer v.rlock()()
	dup := v.shares.list(func(s *wishlist.Share) bool { return s.ShareCode == share.ShareCode })
	if len(dup) > 0 {
		return fmt.Errorf("%w: share code already in use", wishlist.ErrConflict)
	}
	v.shares.insert(share)
	return nil
}

func (v *view) DeleteShare(_ context.Context, wishlistID, shareID uint) error {
	defer v.rlock()()
	share, ok := v.shares.get(shareID)
	if !ok || share.WishlistID != wishlistID {
		return notFound("share", shareID)
	}
	v.shares.remove(shareID)
	return nil
}

func (v *view) CreateComment(_ context.Context, comment *wishlist.Comment) error {
	v.comments.insert(comment)
	return nil
}

func (v *view) DeleteComment(_ context.Context, itemID, commentID uint) error {
	defer v.rlock()()
	c, ok := v.comments.get(commentID)
	if !ok || c.ItemID != itemID {
		return notFound("comment", commentID)
	}
	v.comments.remove(commentID)
	return nil
}

func (v *view) AppendActivity(_ context.Context, entry *wishlist.ActivityEntry) error {
	v.activity.insert(entry)
	return nil
}

var (
	_ wishlist.Store = (*Store)(nil)
	_ wishlist.Tx    = (*view)(nil)
)
