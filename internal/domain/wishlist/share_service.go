package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ShareService issues, resolves and revokes share links
type ShareService struct {
	*core
}

// CreateShareRequest represents create share link request
type CreateShareRequest struct {
	ShareType ShareType  `json:"share_type" binding:"required,oneof=public private collaborative"`
	Password  string     `json:"password" binding:"omitempty,max=72"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ShareResult is a freshly created share with its URL
type ShareResult struct {
	Share    *Share `json:"share"`
	ShareURL string `json:"share_url"`
}

// PublicItem is the view of an item exposed through a share link. It never
// says who reserved or purchased the item.
type PublicItem struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url"`
	Price       float64    `json:"price"`
	Currency    string     `json:"currency"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      ItemStatus `json:"status"`
	Tags        []string   `json:"tags"`
}

// PublicWishlist is the read-only projection returned when resolving a share
type PublicWishlist struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Settings    Settings     `json:"settings"`
	ShareType   ShareType    `json:"share_type"`
	ViewCount   int64        `json:"view_count"`
	Items       []PublicItem `json:"items"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Create issues a share link of the requested type, replacing any previous
// link of that type. Owner or admin only.
func (s *ShareService) Create(ctx context.Context, wishlistID, callerID uint, req *CreateShareRequest) (*ShareResult, error) {
	if !req.ShareType.Valid() {
		return nil, fmt.Errorf("%w: share type must be public, private or collaborative", ErrValidation)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.clock()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrValidation)
	}

	var hash string
	if req.Password != "" {
		var err error
		hash, err = s.hasher.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	var (
		share *Share
		event *Event
	)
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, callerID, RoleAdmin); err != nil {
			return err
		}

		existing, err := tx.ListShares(ctx, w.ID)
		if err != nil {
			return fmt.Errorf("failed to list shares: %w", err)
		}
		for i := range existing {
			if existing[i].ShareType == req.ShareType {
				if err := tx.DeleteShare(ctx, w.ID, existing[i].ID); err != nil {
					return fmt.Errorf("failed to replace share: %w", err)
				}
			}
		}

		code, err := s.uniqueShareCode(ctx, tx)
		if err != nil {
			return err
		}

		share = &Share{
			WishlistID:   w.ID,
			ShareType:    req.ShareType,
			ShareCode:    code,
			PasswordHash: hash,
			CreatedBy:    callerID,
			CreatedAt:    s.clock(),
		}
		if req.ExpiresAt != nil {
			expiresAt := req.ExpiresAt.UTC()
			share.ExpiresAt = &expiresAt
		}
		if err := tx.CreateShare(ctx, share); err != nil {
			return fmt.Errorf("failed to create share: %w", err)
		}

		event, err = s.record(ctx, tx, w, callerID, VerbShared, TargetShare, share.ID, string(share.ShareType))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return &ShareResult{Share: share, ShareURL: s.ShareURL(share.ShareCode)}, nil
}

// ShareURL builds the public URL of a share code
func (s *ShareService) ShareURL(code string) string {
	return strings.TrimRight(s.shareBaseURL, "/") + "/wishlists/public/" + code
}

// Resolve opens a share link. Checks run in a fixed order: unknown code,
// expiry, then password. Only a successful resolve counts as a view.
func (s *ShareService) Resolve(ctx context.Context, code, password string) (*PublicWishlist, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: share code is required", ErrNotFound)
	}

	share, err := s.store.GetShareByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.checkShare(share, password); err != nil {
		return nil, err
	}

	w, err := s.store.GetWishlist(ctx, share.WishlistID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	views, err := s.store.IncrementShareViews(ctx, share.ID)
	if err != nil {
		return nil, err
	}

	return project(w, share.ShareType, views, items), nil
}

// Revoke deletes the wishlist's share of the given type, or every share when
// shareType is empty. Owner or admin only.
func (s *ShareService) Revoke(ctx context.Context, wishlistID, callerID uint, shareType ShareType) error {
	if shareType != "" && !shareType.Valid() {
		return fmt.Errorf("%w: share type must be public, private or collaborative", ErrValidation)
	}

	var events []*Event
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		if _, err := s.requireRole(ctx, tx, w, callerID, RoleAdmin); err != nil {
			return err
		}

		shares, err := tx.ListShares(ctx, w.ID)
		if err != nil {
			return fmt.Errorf("failed to list shares: %w", err)
		}

		for i := range shares {
			if shareType != "" && shares[i].ShareType != shareType {
				continue
			}
			if err := tx.DeleteShare(ctx, w.ID, shares[i].ID); err != nil {
				return fmt.Errorf("failed to revoke share: %w", err)
			}
			event, err := s.record(ctx, tx, w, callerID, VerbUnshared, TargetShare, shares[i].ID, string(shares[i].ShareType))
			if err != nil {
				return err
			}
			events = append(events, event)
		}

		if len(events) == 0 {
			return fmt.Errorf("%w: no share to revoke on wishlist %d", ErrNotFound, w.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events...)
	return nil
}

// List returns the shares of a wishlist; owner or admin only
func (s *ShareService) List(ctx context.Context, wishlistID, callerID uint) ([]Share, error) {
	w, err := s.store.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, s.store, w, callerID, RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.ListShares(ctx, wishlistID)
}

func (s *ShareService) uniqueShareCode(ctx context.Context, r Reader) (string, error) {
	for attempt := 0; attempt < maxShareCodeAttempts; attempt++ {
		code, err := s.newShareCode()
		if err != nil {
			return "", err
		}
		_, err = r.GetShareByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check share code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate a unique share code after %d attempts", maxShareCodeAttempts)
}

func project(w *Wishlist, shareType ShareType, views int64, items []Item) *PublicWishlist {
	out := &PublicWishlist{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Settings:    w.Settings,
		ShareType:   shareType,
		ViewCount:   views,
		Items:       make([]PublicItem, 0, len(items)),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for _, item := range items {
		pi := PublicItem{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			ImageURL:    item.ImageURL,
			Price:       item.Price,
			Currency:    item.Currency,
			Category:    item.Category,
			Priority:    item.Priority,
			Status:      item.Status,
			Tags:        item.Tags,
		}
		if !w.Settings.ShowPrices {
			pi.Price = 0
		}
		out.Items = append(out.Items, pi)
	}
	return out
}
