// internal/infrastructure/database/postgres/wishlist_store.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistStore is the gorm-backed wishlist.Store. Structural changes hold a
// row lock on the wishlist for the length of their transaction.
type WishlistStore struct {
	db *gorm.DB
	*txStore
}

// NewWishlistStore creates a store on top of db
func NewWishlistStore(db *gorm.DB) *WishlistStore {
	return &WishlistStore{db: db, txStore: &txStore{db: db}}
}

// CreateWishlist implements wishlist.Store
func (s *WishlistStore) CreateWishlist(ctx context.Context, w *wishlist.Wishlist, fn wishlist.TxFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return translateError(err, "wishlist", w.Name)
		}
		if fn == nil {
			return nil
		}
		locked := *w
		return fn(&txStore{db: tx}, &locked)
	})
}

// WithWishlist implements wishlist.Store
func (s *WishlistStore) WithWishlist(ctx context.Context, wishlistID uint, fn wishlist.TxFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w wishlist.Wishlist
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, wishlistID).Error
		if err != nil {
			return translateError(err, "wishlist", wishlistID)
		}
		return fn(&txStore{db: tx}, &w)
	})
}

// IncrementShareViews implements wishlist.Store
func (s *WishlistStore) IncrementShareViews(ctx context.Context, shareID uint) (int64, error) {
	share := wishlist.Share{ID: shareID}
	result := s.db.WithContext(ctx).
		Model(&share).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "view_count"}}}).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return 0, translateError(result.Error, "share", shareID)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: share %d", wishlist.ErrNotFound, shareID)
	}
	return share.ViewCount, nil
}

// txStore implements wishlist.Tx on a gorm handle, which is either the
// pool or an open transaction
type txStore struct {
	db *gorm.DB
}

func translateError(err error, entity string, key interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s %v", wishlist.ErrNotFound, entity, key)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s %v already exists", wishlist.ErrConflict, entity, key)
	default:
		return fmt.Errorf("database error on %s: %w", entity, err)
	}
}

func (t *txStore) first(ctx context.Context, dest interface{}, entity string, key interface{}, query string, args ...interface{}) error {
	err := t.db.WithContext(ctx).Where(query, args...).First(dest).Error
	return translateError(err, entity, key)
}

func (t *txStore) GetWishlist(ctx context.Context, id uint) (*wishlist.Wishlist, error) {
	var w wishlist.Wishlist
	if err := t.first(ctx, &w, "wishlist", id, "id = ?", id); err != nil {
		return nil, err
	}
	return &w, nil
}

func (t *txStore) ListWishlistsByOwner(ctx context.Context, ownerID uint) ([]wishlist.Wishlist, error) {
	var lists []wishlist.Wishlist
	err := t.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&lists).Error
	return lists, translateError(err, "wishlist", ownerID)
}

func (t *txStore) ListWishlistsByCollaborator(ctx context.Context, userID uint) ([]wishlist.Wishlist, error) {
	db := t.db.WithContext(ctx)
	memberships := db.Model(&wishlist.Collaborator{}).Select("wishlist_id").Where("user_id = ?", userID)

	var lists []wishlist.Wishlist
	err := db.Where("id IN (?)", memberships).Order("id").Find(&lists).Error
	return lists, translateError(err, "wishlist", userID)
}

func (t *txStore) GetItem(ctx context.Context, wishlistID, itemID uint) (*wishlist.Item, error) {
	var item wishlist.Item
	if err := t.first(ctx, &item, "item", itemID, "wishlist_id = ? AND id = ?", wishlistID, itemID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *txStore) FindItem(ctx context.Context, itemID uint) (*wishlist.Item, error) {
	var item wishlist.Item
	if err := t.first(ctx, &item, "item", itemID, "id = ?", itemID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *txStore) ListItems(ctx context.Context, wishlistID uint) ([]wishlist.Item, error) {
	var items []wishlist.Item
	err := t.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Order("id").Find(&items).Error
	return items, translateError(err, "item", wishlistID)
}

func (t *txStore) GetCollaborator(ctx context.Context, wishlistID, collaboratorID uint) (*wishlist.Collaborator, error) {
	var c wishlist.Collaborator
	if err := t.first(ctx, &c, "collaborator", collaboratorID, "wishlist_id = ? AND id = ?", wishlistID, collaboratorID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *txStore) FindCollaborator(ctx context.Context, wishlistID, userID uint) (*wishlist.Collaborator, error) {
	var c wishlist.Collaborator
	if err := t.first(ctx, &c, "collaborator for user", userID, "wishlist_id = ? AND user_id = ?", wishlistID, userID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *txStore) ListCollaborators(ctx context.Context, wishlistID uint) ([]wishlist.Collaborator, error) {
	var collaborators []wishlist.Collaborator
	err := t.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Order("id").Find(&collaborators).Error
	return collaborators, translateError(err, "collaborator", wishlistID)
}

func (t *txStore) GetInvitation(ctx context.Context, id uint) (*wishlist.Invitation, error) {
	var inv wishlist.Invitation
	if err := t.first(ctx, &inv, "invitation", id, "id = ?", id); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (t *txStore) ListInvitations(ctx context.Context, wishlistID uint) ([]wishlist.Invitation, error) {
	var invitations []wishlist.Invitation
	err := t.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Order("id").Find(&invitations).Error
	return invitations, translateError(err, "invitation", wishlistID)
}

func (t *txStore) ListInvitationsByEmail(ctx context.Context, email string) ([]wishlist.Invitation, error) {
	var invitations []wishlist.Invitation
	err := t.db.WithContext(ctx).Where("email = ?", email).Order("id").Find(&invitations).Error
	return invitations, translateError(err, "invitation", email)
}

func (t *txStore) GetShareByCode(ctx context.Context, code string) (*wishlist.Share, error) {
	var share wishlist.Share
	if err := t.first(ctx, &share, "share", code, "share_code = ?", code); err != nil {
		return nil, err
	}
	return &share, nil
}

func (t *txStore) ListShares(ctx context.Context, wishlistID uint) ([]wishlist.Share, error) {
	var shares []wishlist.Share
	err := t.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Order("id").Find(&shares).Error
	return shares, translateError(err, "share", wishlistID)
}

func (t *txStore) GetComment(ctx context.Context, itemID, commentID uint) (*wishlist.Comment, error) {
	var c wishlist.Comment
	if err := t.first(ctx, &c, "comment", commentID, "item_id = ? AND id = ?", itemID, commentID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *txStore) ListComments(ctx context.Context, itemID uint) ([]wishlist.Comment, error) {
	var comments []wishlist.Comment
	err := t.db.WithContext(ctx).Where("item_id = ?", itemID).Order("created_at, id").Find(&comments).Error
	return comments, translateError(err, "comment", itemID)
}

func (t *txStore) ListActivity(ctx context.Context, wishlistID uint, limit int) ([]wishlist.ActivityEntry, error) {
	var entries []wishlist.ActivityEntry
	query := t.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, translateError(err, "activity", wishlistID)
}

func (t *txStore) UpdateWishlist(ctx context.Context, w *wishlist.Wishlist) error {
	return translateError(t.db.WithContext(ctx).Save(w).Error, "wishlist", w.ID)
}

// DeleteWishlist removes dependents before the wishlist row. It must run
// inside WithWishlist so a failure rolls the whole cascade back.
func (t *txStore) DeleteWishlist(ctx context.Context, id uint) error {
	db := t.db.WithContext(ctx)

	dependents := []interface{}{
		&wishlist.Comment{},
		&wishlist.Item{},
		&wishlist.Collaborator{},
		&wishlist.Invitation{},
		&wishlist.Share{},
		&wishlist.ActivityEntry{},
	}
	for _, model := range dependents {
		if err := db.Where("wishlist_id = ?", id).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete %T rows of wishlist %d: %w", model, id, err)
		}
	}

	result := db.Delete(&wishlist.Wishlist{}, id)
	if result.Error != nil {
		return translateError(result.Error, "wishlist", id)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: wishlist %d", wishlist.ErrNotFound, id)
	}
	return nil
}

func (t *txStore) CreateItem(ctx context.Context, item *wishlist.Item) error {
	return translateError(t.db.WithContext(ctx).Create(item).Error, "item", item.Title)
}

func (t *txStore) SaveItem(ctx context.Context, item *wishlist.Item) error {
	return translateError(t.db.WithContext(ctx).Save(item).Error, "item", item.ID)
}

func (t *txStore) DeleteItem(ctx context.Context, wishlistID, itemID uint) error {
	db := t.db.WithContext(ctx)
	if err := db.Where("item_id = ?", itemID).Delete(&wishlist.Comment{}).Error; err != nil {
		return translateError(err, "comment", itemID)
	}
	return deleteOne(db.Where("wishlist_id = ? AND id = ?", wishlistID, itemID), &wishlist.Item{}, "item", itemID)
}

func (t *txStore) CreateCollaborator(ctx context.Context, c *wishlist.Collaborator) error {
	return translateError(t.db.WithContext(ctx).Create(c).Error, "collaborator for user", c.UserID)
}

func (t *txStore) SaveCollaborator(ctx context.Context, c *wishlist.Collaborator) error {
	return translateError(t.db.WithContext(ctx).Save(c).Error, "collaborator", c.ID)
}

func (t *txStore) DeleteCollaborator(ctx context.Context, wishlistID, collaboratorID uint) error {
	db := t.db.WithContext(ctx).Where("wishlist_id = ? AND id = ?", wishlistID, collaboratorID)
	return deleteOne(db, &wishlist.Collaborator{}, "collaborator", collaboratorID)
}

func (t *txStore) CreateInvitation(ctx context.Context, inv *wishlist.Invitation) error {
	return translateError(t.db.WithContext(ctx).Create(inv).Error, "invitation", inv.Email)
}

func (t *txStore) SaveInvitation(ctx context.Context, inv *wishlist.Invitation) error {
	return translateError(t.db.WithContext(ctx).Save(inv).Error, "invitation", inv.ID)
}

func (t *txStore) CreateShare(ctx context.Context, share *wishlist.Share) error {
	return translateError(t.db.WithContext(ctx).Create(share).Error, "share", share.ShareType)
}

func (t *txStore) DeleteShare(ctx context.Context, wishlistID, shareID uint) error {
	db := t.db.WithContext(ctx).Where("wishlist_id = ? AND id = ?", wishlistID, shareID)
	return deleteOne(db, &wishlist.Share{}, "share", shareID)
}

func (t *txStore) CreateComment(ctx context.Context, comment *wishlist.Comment) error {
	return translateError(t.db.WithContext(ctx).Create(comment).Error, "comment", comment.ItemID)
}

func (t *txStore) DeleteComment(ctx context.Context, itemID, commentID uint) error {
	db := t.db.WithContext(ctx).Where("item_id = ? AND id = ?", itemID, commentID)
	return deleteOne(db, &wishlist.Comment{}, "comment", commentID)
}

func (t *txStore) AppendActivity(ctx context.Context, entry *wishlist.ActivityEntry) error {
	return translateError(t.db.WithContext(ctx).Create(entry).Error, "activity", entry.Verb)
}

func deleteOne(db *gorm.DB, model interface{}, entity string, id uint) error {
	result := db.Delete(model)
	if result.Error != nil {
		return translateError(result.Error, entity, id)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %d", wishlist.ErrNotFound, entity, id)
	}
	return nil
}

var (
	_ wishlist.Store = (*WishlistStore)(nil)
	_ wishlist.Tx    = (*txStore)(nil)
)
