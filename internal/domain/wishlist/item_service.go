package wishlist

import (
	"context"
	"fmt"
)

// ItemService owns wishlist items and their available → reserved → purchased lifecycle
type ItemService struct {
	*core
}

// AddItemRequest represents add item request
type AddItemRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description"`
	URL         string   `json:"url" binding:"omitempty,url"`
	ImageURL    string   `json:"image_url" binding:"omitempty,url"`
	Price       float64  `json:"price" binding:"min=0"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
	Category    string   `json:"category" binding:"max=100"`
	Priority    Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Tags        []string `json:"tags" binding:"max=20"`
}

// UpdateItemRequest represents update item request; status is not updatable here
type UpdateItemRequest struct {
	Title       *string   `json:"title" binding:"omitempty,max=200"`
	Description *string   `json:"description"`
	URL         *string   `json:"url" binding:"omitempty,url"`
	ImageURL    *string   `json:"image_url" binding:"omitempty,url"`
	Price       *float64  `json:"price" binding:"omitempty,min=0"`
	Currency    *string   `json:"currency" binding:"omitempty,len=3"`
	Category    *string   `json:"category" binding:"omitempty,max=100"`
	Priority    *Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Tags        []string  `json:"tags" binding:"max=20"`
}

// List returns the items of a wishlist visible to callerID
func (s *ItemService) List(ctx context.Context, wishlistID, callerID uint) ([]Item, error) {
	w, err := s.store.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireView(ctx, s.store, w, callerID); err != nil {
		return nil, err
	}
	return s.store.ListItems(ctx, wishlistID)
}

// Add adds an item to the wishlist; contributor role or above
func (s *ItemService) Add(ctx context.Context, wishlistID, callerID uint, req *AddItemRequest) (*Item, error) {
	title, err := requiredText("title", req.Title, maxNameLength)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	priority, err := normalizePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	var (
		item  *Item
		event *Event
	)
	err = s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, callerID, RoleContributor); err != nil {
			return err
		}

		if !w.Settings.AllowDuplicates {
			existing, err := tx.ListItems(ctx, w.ID)
			if err != nil {
				return fmt.Errorf("failed to list items: %w", err)
			}
			for i := range existing {
				if sameTitle(existing[i].Title, title) {
					return fmt.Errorf("%w: item %q already exists in wishlist", ErrConflict, title)
				}
			}
		}

		now := s.clock()
		item = &Item{
			WishlistID:  w.ID,
			Title:       title,
			Description: req.Description,
			URL:         req.URL,
			ImageURL:    req.ImageURL,
			Price:       req.Price,
			Currency:    currency,
			Category:    req.Category,
			Priority:    priority,
			Status:      ItemStatusAvailable,
			Tags:        tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}

		var err error
		event, err = s.record(ctx, tx, w, callerID, VerbAdded, TargetItem, item.ID, item.Title)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return item, nil
}

// Update edits descriptive fields of an item; contributor role or above
func (s *ItemService) Update(ctx context.Context, wishlistID, itemID, callerID uint, req *UpdateItemRequest) (*Item, error) {
	var (
		item  *Item
		event *Event
	)
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, callerID, RoleContributor); err != nil {
			return err
		}

		var err error
		item, err = tx.GetItem(ctx, w.ID, itemID)
		if err != nil {
			return err
		}

		if req.Title != nil {
			title, err := requiredText("title", *req.Title, maxNameLength)
			if err != nil {
				return err
			}
			if !w.Settings.AllowDuplicates && !sameTitle(title, item.Title) {
				existing, err := tx.ListItems(ctx, w.ID)
				if err != nil {
					return fmt.Errorf("failed to list items: %w", err)
				}
				for i := range existing {
					if existing[i].ID != item.ID && sameTitle(existing[i].Title, title) {
						return fmt.Errorf("%w: item %q already exists in wishlist", ErrConflict, title)
					}
				}
			}
			item.Title = title
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.URL != nil {
			item.URL = *req.URL
		}
		if req.ImageURL != nil {
			item.ImageURL = *req.ImageURL
		}
		if req.Price != nil {
			if err := validatePrice(*req.Price); err != nil {
				return err
			}
			item.Price = *req.Price
		}
		if req.Currency != nil {
			currency, err := normalizeCurrency(*req.Currency)
			if err != nil {
				return err
			}
			item.Currency = currency
		}
		if req.Category != nil {
			item.Category = *req.Category
		}
		if req.Priority != nil {
			priority, err := normalizePriority(*req.Priority)
			if err != nil {
				return err
			}
			item.Priority = priority
		}
		if req.Tags != nil {
			tags, err := normalizeTags(req.Tags)
			if err != nil {
				return err
			}
			item.Tags = tags
		}
		item.UpdatedAt = s.clock()

		if err := tx.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		event, err = s.record(ctx, tx, w, callerID, VerbItemUpdated, TargetItem, item.ID, item.Title)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return item, nil
}

// Delete removes an item and its comments; contributor role or above
func (s *ItemService) Delete(ctx context.Context, wishlistID, itemID, callerID uint) error {
	var event *Event
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, callerID, RoleContributor); err != nil {
			return err
		}

		item, err := tx.GetItem(ctx, w.ID, itemID)
		if err != nil {
			return err
		}
		if err := tx.DeleteItem(ctx, w.ID, item.ID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}

		event, err = s.record(ctx, tx, w, callerID, VerbRemoved, TargetItem, item.ID, item.Title)
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, event)
	return nil
}

// Reserve claims an available item for the caller. The check-and-set runs
// under the wishlist lock, so of two concurrent reservations exactly one
// wins and the other gets ErrConflict.
func (s *ItemService) Reserve(ctx context.Context, wishlistID, itemID uint, access ClaimAccess) (*Item, error) {
	return s.claim(ctx, wishlistID, itemID, access, VerbReserved, func(item *Item) error {
		return item.Reserve(access.UserID, s.clock())
	})
}

// Purchase marks an item bought by the caller. Valid from available, or from
// reserved when the caller holds the reservation. Irreversible.
func (s *ItemService) Purchase(ctx context.Context, wishlistID, itemID uint, access ClaimAccess) (*Item, error) {
	return s.claim(ctx, wishlistID, itemID, access, VerbPurchased, func(item *Item) error {
		return item.Purchase(access.UserID, s.clock())
	})
}

// Release gives up a reservation. The reserving user may always release;
// anybody else needs admin role or above.
func (s *ItemService) Release(ctx context.Context, wishlistID, itemID uint, access ClaimAccess) (*Item, error) {
	var (
		item  *Item
		event *Event
	)
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		var err error
		item, err = tx.GetItem(ctx, w.ID, itemID)
		if err != nil {
			return err
		}
		if item.Status != ItemStatusReserved {
			return fmt.Errorf("%w: item %d is %s, not reserved", ErrConflict, item.ID, item.Status)
		}

		ownReservation := access.UserID != 0 && item.ReservedBy != nil && *item.ReservedBy == access.UserID
		if ownReservation {
			if err := s.authorizeClaim(ctx, tx, w, access); err != nil {
				return err
			}
		} else if _, err := s.requireRole(ctx, tx, w, access.UserID, RoleAdmin); err != nil {
			return err
		}

		if err := item.Release(); err != nil {
			return err
		}
		item.UpdatedAt = s.clock()
		if err := tx.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("failed to release item: %w", err)
		}

		event, err = s.record(ctx, tx, w, access.UserID, VerbReleased, TargetItem, item.ID, item.Title)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return item, nil
}

// claim runs a status transition: the transition is validated against the
// item's current state before the caller's capability, so a claimed item
// answers ErrConflict to everybody.
func (s *ItemService) claim(ctx context.Context, wishlistID, itemID uint, access ClaimAccess, verb string, transition func(*Item) error) (*Item, error) {
	var (
		item  *Item
		event *Event
	)
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		var err error
		item, err = tx.GetItem(ctx, w.ID, itemID)
		if err != nil {
			return err
		}

		if err := transition(item); err != nil {
			return err
		}
		if err := s.authorizeClaim(ctx, tx, w, access); err != nil {
			return err
		}

		item.UpdatedAt = s.clock()
		if err := tx.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("failed to %s item: %w", verb, err)
		}

		event, err = s.record(ctx, tx, w, access.UserID, verb, TargetItem, item.ID, item.Title)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return item, nil
}
