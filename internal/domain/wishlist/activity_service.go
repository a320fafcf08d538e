package wishlist

import "context"

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityService reads the append-only activity log. Entries are written by
// the mutating services inside their own transactions.
type ActivityService struct {
	*core
}

// ListRecent returns up to limit entries, newest first; members only
func (s *ActivityService) ListRecent(ctx context.Context, wishlistID, callerID uint, limit int) ([]ActivityEntry, error) {
	w, err := s.store.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, s.store, w, callerID, RoleViewer); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}
	return s.store.ListActivity(ctx, wishlistID, limit)
}
