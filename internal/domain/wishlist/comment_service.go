package wishlist

import (
	"context"
	"fmt"
)

// CommentService manages comments left on items
type CommentService struct {
	*core
}

// AddCommentRequest represents add comment request
type AddCommentRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// List returns the comments of an item, oldest first
func (s *CommentService) List(ctx context.Context, itemID, callerID uint) ([]Comment, error) {
	item, err := s.store.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	w, err := s.store.GetWishlist(ctx, item.WishlistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireView(ctx, s.store, w, callerID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, itemID)
}

// Add posts a comment on an item. Members only, and only while the wishlist
// allows comments.
func (s *CommentService) Add(ctx context.Context, itemID uint, author Principal, req *AddCommentRequest) (*Comment, error) {
	message, err := requiredText("message", req.Message, maxCommentLength)
	if err != nil {
		return nil, err
	}

	item, err := s.store.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var (
		comment *Comment
		event   *Event
	)
	err = s.store.WithWishlist(ctx, item.WishlistID, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, author.UserID, RoleViewer); err != nil {
			return err
		}
		if !w.Settings.AllowComments {
			return fmt.Errorf("%w: comments are disabled on wishlist %d", ErrForbidden, w.ID)
		}
		if _, err := tx.GetItem(ctx, w.ID, itemID); err != nil {
			return err
		}

		comment = &Comment{
			WishlistID: w.ID,
			ItemID:     itemID,
			AuthorID:   author.UserID,
			AuthorName: truncate(author.DisplayName(), maxNameLength),
			Message:    message,
			CreatedAt:  s.clock(),
		}
		if err := tx.CreateComment(ctx, comment); err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}

		var err error
		event, err = s.record(ctx, tx, w, author.UserID, VerbCommented, TargetComment, comment.ID, truncate(message, 100))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return comment, nil
}

// Delete removes a comment; only its author may delete it
func (s *CommentService) Delete(ctx context.Context, itemID, commentID, callerID uint) error {
	item, err := s.store.FindItem(ctx, itemID)
	if err != nil {
		return err
	}

	var event *Event
	err = s.store.WithWishlist(ctx, item.WishlistID, func(tx Tx, w *Wishlist) error {
		comment, err := tx.GetComment(ctx, itemID, commentID)
		if err != nil {
			return err
		}
		if comment.AuthorID != callerID {
			return fmt.Errorf("%w: only the author can delete comment %d", ErrForbidden, comment.ID)
		}

		if err := tx.DeleteComment(ctx, itemID, comment.ID); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		event, err = s.record(ctx, tx, w, callerID, VerbCommentDeleted, TargetComment, comment.ID, "")
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, event)
	return nil
}
