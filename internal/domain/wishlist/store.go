package wishlist

import "context"

// Reader is the read side shared by a Store and its transactions. Lookups of
// missing rows return an error wrapping ErrNotFound.
type Reader interface {
	GetWishlist(ctx context.Context, id uint) (*Wishlist, error)
	ListWishlistsByOwner(ctx context.Context, ownerID uint) ([]Wishlist, error)
	ListWishlistsByCollaborator(ctx context.Context, userID uint) ([]Wishlist, error)

	GetItem(ctx context.Context, wishlistID, itemID uint) (*Item, error)
	FindItem(ctx context.Context, itemID uint) (*Item, error)
	ListItems(ctx context.Context, wishlistID uint) ([]Item, error)

	GetCollaborator(ctx context.Context, wishlistID, collaboratorID uint) (*Collaborator, error)
	FindCollaborator(ctx context.Context, wishlistID, userID uint) (*Collaborator, error)
	ListCollaborators(ctx context.Context, wishlistID uint) ([]Collaborator, error)

	GetInvitation(ctx context.Context, id uint) (*Invitation, error)
	ListInvitations(ctx context.Context, wishlistID uint) ([]Invitation, error)
	ListInvitationsByEmail(ctx context.Context, email string) ([]Invitation, error)

	GetShareByCode(ctx context.Context, code string) (*Share, error)
	ListShares(ctx context.Context, wishlistID uint) ([]Share, error)

	GetComment(ctx context.Context, itemID, commentID uint) (*Comment, error)
	ListComments(ctx context.Context, itemID uint) ([]Comment, error)

	// ListActivity returns at most limit entries, newest first
	ListActivity(ctx context.Context, wishlistID uint, limit int) ([]ActivityEntry, error)
}

// Tx is a unit of work scoped to one locked wishlist. Writes become visible
// to other readers only when the surrounding transaction commits, and are
// discarded entirely when it fails.
type Tx interface {
	Reader

	UpdateWishlist(ctx context.Context, w *Wishlist) error
	// DeleteWishlist removes the wishlist together with its items, comments,
	// collaborators, invitations, shares and activity
	DeleteWishlist(ctx context.Context, id uint) error

	CreateItem(ctx context.Context, item *Item) error
	SaveItem(ctx context.Context, item *Item) error
	// DeleteItem removes the item and its comments
	DeleteItem(ctx context.Context, wishlistID, itemID uint) error

	CreateCollaborator(ctx context.Context, c *Collaborator) error
	SaveCollaborator(ctx context.Context, c *Collaborator) error
	DeleteCollaborator(ctx context.Context, wishlistID, collaboratorID uint) error

	CreateInvitation(ctx context.Context, inv *Invitation) error
	SaveInvitation(ctx context.Context, inv *Invitation) error

	CreateShare(ctx context.Context, share *Share) error
	DeleteShare(ctx context.Context, wishlistID, shareID uint) error

	CreateComment(ctx context.Context, comment *Comment) error
	DeleteComment(ctx context.Context, itemID, commentID uint) error

	AppendActivity(ctx context.Context, entry *ActivityEntry) error
}

// TxFunc runs inside a wishlist transaction. w is the locked wishlist as
// read inside the transaction.
type TxFunc func(tx Tx, w *Wishlist) error

// Store persists the wishlist aggregate
type Store interface {
	Reader

	// CreateWishlist inserts w, assigning its ID, then runs fn (if not nil)
	// in the same transaction
	CreateWishlist(ctx context.Context, w *Wishlist, fn TxFunc) error

	// WithWishlist locks the wishlist for the duration of fn. It fails with
	// ErrNotFound when the wishlist does not exist (or no longer exists once
	// the lock is acquired). Structural changes to a wishlist are serialized
	// through here.
	WithWishlist(ctx context.Context, wishlistID uint, fn TxFunc) error

	// IncrementShareViews bumps the share's view counter and returns the new value
	IncrementShareViews(ctx context.Context, shareID uint) (int64, error)
}
