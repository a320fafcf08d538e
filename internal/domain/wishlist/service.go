package wishlist

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Service handles wishlist lifecycle: creation, lookup, update and cascading delete
type Service struct {
	*core
}

// CreateWishlistRequest represents create wishlist request
type CreateWishlistRequest struct {
	Name            string    `json:"name" binding:"required,max=200"`
	Description     string    `json:"description"`
	IsPublic        bool      `json:"is_public"`
	IsCollaborative bool      `json:"is_collaborative"`
	Settings        *Settings `json:"settings"`
}

// SettingsPatch represents a partial settings update
type SettingsPatch struct {
	AllowComments   *bool `json:"allow_comments"`
	AllowPurchases  *bool `json:"allow_purchases"`
	ShowPrices      *bool `json:"show_prices"`
	AllowDuplicates *bool `json:"allow_duplicates"`
}

// UpdateWishlistRequest represents update wishlist request; nil fields are left untouched
type UpdateWishlistRequest struct {
	Name            *string        `json:"name" binding:"omitempty,max=200"`
	Description     *string        `json:"description"`
	IsPublic        *bool          `json:"is_public"`
	IsCollaborative *bool          `json:"is_collaborative"`
	Settings        *SettingsPatch `json:"settings"`
}

// WishlistDetail is a wishlist with its items and, for members, its collaborators
type WishlistDetail struct {
	Wishlist      Wishlist       `json:"wishlist"`
	Items         []Item         `json:"items"`
	Collaborators []Collaborator `json:"collaborators,omitempty"`
	Role          Role           `json:"role,omitempty"`
}

// WishlistStats summarizes a wishlist
type WishlistStats struct {
	TotalItems         int     `json:"total_items"`
	AvailableItems     int     `json:"available_items"`
	ReservedItems      int     `json:"reserved_items"`
	PurchasedItems     int     `json:"purchased_items"`
	TotalValue         float64 `json:"total_value"`
	ReservedValue      float64 `json:"reserved_value"`
	PurchasedValue     float64 `json:"purchased_value"`
	Collaborators      int     `json:"collaborators"`
	PendingInvitations int     `json:"pending_invitations"`
	ActiveShares       int     `json:"active_shares"`
	ShareViews         int64   `json:"share_views"`
}

// Create creates a wishlist owned by ownerID
func (s *Service) Create(ctx context.Context, ownerID uint, req *CreateWishlistRequest) (*Wishlist, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	name, err := requiredText("name", req.Name, maxNameLength)
	if err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	now := s.clock()
	w := &Wishlist{
		OwnerID:         ownerID,
		Name:            name,
		Description:     req.Description,
		IsPublic:        req.IsPublic,
		IsCollaborative: req.IsCollaborative,
		Settings:        settings,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var event *Event
	err = s.store.CreateWishlist(ctx, w, func(tx Tx, created *Wishlist) error {
		var err error
		event, err = s.record(ctx, tx, created, ownerID, VerbCreated, TargetWishlist, created.ID, created.Name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}

	s.publish(ctx, event)
	return w, nil
}

// Get returns a wishlist visible to callerID
func (s *Service) Get(ctx context.Context, id, callerID uint) (*Wishlist, error) {
	w, err := s.store.GetWishlist(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireView(ctx, s.store, w, callerID); err != nil {
		return nil, err
	}
	return w, nil
}

// Detail returns the wishlist with its items. Collaborator identities are
// only included for members.
func (s *Service) Detail(ctx context.Context, id, callerID uint) (*WishlistDetail, error) {
	w, err := s.store.GetWishlist(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.requireView(ctx, s.store, w, callerID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	detail := &WishlistDetail{Wishlist: *w, Items: items, Role: role}
	if role.AtLeast(RoleViewer) {
		collaborators, err := s.store.ListCollaborators(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to list collaborators: %w", err)
		}
		detail.Collaborators = collaborators
	}
	return detail, nil
}

// ListForUser returns the wishlists owned by userID
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Wishlist, error) {
	return s.store.ListWishlistsByOwner(ctx, userID)
}

// ListSharedWithUser returns the wishlists userID collaborates on
func (s *Service) ListSharedWithUser(ctx context.Context, userID uint) ([]Wishlist, error) {
	return s.store.ListWishlistsByCollaborator(ctx, userID)
}

// Update applies req to the wishlist; owner or admin only
func (s *Service) Update(ctx context.Context, id, callerID uint, req *UpdateWishlistRequest) (*Wishlist, error) {
	var (
		updated *Wishlist
		event   *Event
	)
	err := s.store.WithWishlist(ctx, id, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, callerID, RoleAdmin); err != nil {
			return err
		}

		if req.Name != nil {
			name, err := requiredText("name", *req.Name, maxNameLength)
			if err != nil {
				return err
			}
			w.Name = name
		}
		if req.Description != nil {
			w.Description = *req.Description
		}
		if req.IsPublic != nil {
			w.IsPublic = *req.IsPublic
		}
		// Turning collaboration off only closes the door to new members;
		// existing collaborators keep their roles.
		if req.IsCollaborative != nil {
			w.IsCollaborative = *req.IsCollaborative
		}
		if p := req.Settings; p != nil {
			if p.AllowComments != nil {
				w.Settings.AllowComments = *p.AllowComments
			}
			if p.AllowPurchases != nil {
				w.Settings.AllowPurchases = *p.AllowPurchases
			}
			if p.ShowPrices != nil {
				w.Settings.ShowPrices = *p.ShowPrices
			}
			if p.AllowDuplicates != nil {
				w.Settings.AllowDuplicates = *p.AllowDuplicates
			}
		}
		w.UpdatedAt = s.clock()

		if err := tx.UpdateWishlist(ctx, w); err != nil {
			return fmt.Errorf("failed to update wishlist: %w", err)
		}

		var err error
		event, err = s.record(ctx, tx, w, callerID, VerbUpdated, TargetWishlist, w.ID, w.Name)
		updated = w
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return updated, nil
}

// Delete removes the wishlist and everything it owns in one transaction.
// Owner or admin only.
func (s *Service) Delete(ctx context.Context, id, callerID uint) error {
	var event *Event
	err := s.store.WithWishlist(ctx, id, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, callerID, RoleAdmin); err != nil {
			return err
		}

		recipients, err := s.recipients(ctx, tx, w, callerID)
		if err != nil {
			return err
		}

		if err := tx.DeleteWishlist(ctx, w.ID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"wishlist_id": w.ID,
				"actor_id":    callerID,
			}).WithError(err).Error("Wishlist cascade delete failed, rolling back")
			return fmt.Errorf("failed to delete wishlist: %w", err)
		}

		event = &Event{
			Entry: ActivityEntry{
				WishlistID: w.ID,
				ActorID:    callerID,
				Verb:       VerbDeleted,
				TargetType: TargetWishlist,
				TargetID:   w.ID,
				Detail:     w.Name,
				CreatedAt:  s.clock(),
			},
			Recipients: recipients,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, event)
	return nil
}

// Stats summarizes items, membership and sharing of a wishlist; members only
func (s *Service) Stats(ctx context.Context, id, callerID uint) (*WishlistStats, error) {
	w, err := s.store.GetWishlist(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, s.store, w, callerID, RoleViewer); err != nil {
		return nil, err
	}

	items, err := s.store.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	collaborators, err := s.store.ListCollaborators(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	invitations, err := s.store.ListInvitations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	shares, err := s.store.ListShares(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	stats := &WishlistStats{
		TotalItems:    len(items),
		Collaborators: len(collaborators),
	}
	for _, item := range items {
		stats.TotalValue += item.Price
		switch item.Status {
		case ItemStatusAvailable:
			stats.AvailableItems++
		case ItemStatusReserved:
			stats.ReservedItems++
			stats.ReservedValue += item.Price
		case ItemStatusPurchased:
			stats.PurchasedItems++
			stats.PurchasedValue += item.Price
		}
	}

	now := s.clock()
	for i := range invitations {
		if invitations[i].EffectiveStatus(now) == InvitationStatusPending {
			stats.PendingInvitations++
		}
	}
	for i := range shares {
		stats.ShareViews += shares[i].ViewCount
		if !shares[i].Expired(now) {
			stats.ActiveShares++
		}
	}
	return stats, nil
}
