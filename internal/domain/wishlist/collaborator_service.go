package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CollaboratorService owns the role assignments between users and wishlists
type CollaboratorService struct {
	*core
}

// AddCollaboratorRequest represents add collaborator request
type AddCollaboratorRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	Role   Role `json:"role" binding:"required"`
}

// UpdateRoleRequest represents update collaborator role request
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// List returns the collaborators of a wishlist; members only
func (s *CollaboratorService) List(ctx context.Context, wishlistID, callerID uint) ([]Collaborator, error) {
	w, err := s.store.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, s.store, w, callerID, RoleViewer); err != nil {
		return nil, err
	}
	return s.store.ListCollaborators(ctx, wishlistID)
}

// Add grants userID a role directly. The caller must be owner or admin, and
// only the owner may hand out a role equal to its own.
func (s *CollaboratorService) Add(ctx context.Context, wishlistID, callerID uint, req *AddCollaboratorRequest) (*Collaborator, error) {
	var (
		collaborator *Collaborator
		event        *Event
	)
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		callerRole, err := s.requireRole(ctx, tx, w, callerID, RoleAdmin)
		if err != nil {
			return err
		}
		if err := checkGrantable(callerRole, req.Role); err != nil {
			return err
		}

		now := s.clock()
		collaborator, err = s.addLocked(ctx, tx, w, req.UserID, req.Role, callerID, now)
		if err != nil {
			return err
		}

		event, err = s.record(ctx, tx, w, callerID, VerbCollaboratorAdded, TargetCollaborator, collaborator.ID, collaborator.Role.String())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return collaborator, nil
}

// Remove deletes a collaborator. Items they reserved or purchased keep their
// attribution.
func (s *CollaboratorService) Remove(ctx context.Context, wishlistID, collaboratorID, callerID uint) error {
	var event *Event
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		target, err := s.authorizeManage(ctx, tx, w, collaboratorID, callerID)
		if err != nil {
			return err
		}

		if err := tx.DeleteCollaborator(ctx, w.ID, target.ID); err != nil {
			return fmt.Errorf("failed to remove collaborator: %w", err)
		}

		event, err = s.record(ctx, tx, w, callerID, VerbCollaboratorRemoved, TargetCollaborator, target.ID, fmt.Sprintf("user %d", target.UserID))
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, event)
	return nil
}

// UpdateRole changes a collaborator's role
func (s *CollaboratorService) UpdateRole(ctx context.Context, wishlistID, collaboratorID, callerID uint, newRole Role) (*Collaborator, error) {
	var (
		target *Collaborator
		event  *Event
	)
	err := s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		var err error
		target, err = s.authorizeManage(ctx, tx, w, collaboratorID, callerID)
		if err != nil {
			return err
		}

		callerRole, _, err := s.roleOf(ctx, tx, w, callerID)
		if err != nil {
			return err
		}
		if err := checkGrantable(callerRole, newRole); err != nil {
			return err
		}

		target.Role = newRole
		if err := tx.SaveCollaborator(ctx, target); err != nil {
			return fmt.Errorf("failed to update collaborator role: %w", err)
		}

		event, err = s.record(ctx, tx, w, callerID, VerbRoleUpdated, TargetCollaborator, target.ID, newRole.String())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return target, nil
}

// addLocked inserts the collaborator row; the caller holds the wishlist lock
func (s *CollaboratorService) addLocked(ctx context.Context, tx Tx, w *Wishlist, userID uint, role Role, invitedBy uint, invitedAt time.Time) (*Collaborator, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}
	if !role.Assignable() {
		return nil, fmt.Errorf("%w: role must be viewer, contributor or admin", ErrValidation)
	}
	if !w.IsCollaborative {
		return nil, fmt.Errorf("%w: wishlist %d is not collaborative", ErrValidation, w.ID)
	}
	if userID == w.OwnerID {
		return nil, fmt.Errorf("%w: user %d owns wishlist %d", ErrConflict, userID, w.ID)
	}

	_, err := tx.FindCollaborator(ctx, w.ID, userID)
	if err == nil {
		return nil, fmt.Errorf("%w: user %d already collaborates on wishlist %d", ErrConflict, userID, w.ID)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check collaborator: %w", err)
	}

	collaborator := &Collaborator{
		WishlistID: w.ID,
		UserID:     userID,
		Role:       role,
		InvitedBy:  invitedBy,
		InvitedAt:  invitedAt,
		JoinedAt:   s.clock(),
	}
	if err := tx.CreateCollaborator(ctx, collaborator); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}
	return collaborator, nil
}

// authorizeManage loads the target and checks the caller outranks it. Nobody
// manages their own membership.
func (s *CollaboratorService) authorizeManage(ctx context.Context, tx Tx, w *Wishlist, collaboratorID, callerID uint) (*Collaborator, error) {
	target, err := tx.GetCollaborator(ctx, w.ID, collaboratorID)
	if err != nil {
		return nil, err
	}
	if target.UserID == callerID {
		return nil, fmt.Errorf("%w: collaborators cannot manage their own membership", ErrForbidden)
	}

	callerRole, _, err := s.roleOf(ctx, tx, w, callerID)
	if err != nil {
		return nil, err
	}
	if callerRole != RoleOwner && !callerRole.Outranks(target.Role) {
		return nil, fmt.Errorf("%w: %s cannot manage %s", ErrForbidden, roleLabel(callerRole), target.Role)
	}
	if !callerRole.AtLeast(RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role or above required on wishlist %d", ErrForbidden, w.ID)
	}
	return target, nil
}

// checkGrantable enforces that granted roles are collaborator roles ranked
// below the granter, except for the owner who may grant admin
func checkGrantable(granter, role Role) error {
	if !role.Assignable() {
		return fmt.Errorf("%w: role must be viewer, contributor or admin", ErrValidation)
	}
	if granter != RoleOwner && !granter.Outranks(role) {
		return fmt.Errorf("%w: %s cannot grant %s", ErrForbidden, roleLabel(granter), role)
	}
	return nil
}

func roleLabel(r Role) string {
	if r == RoleNone {
		return "non-member"
	}
	return r.String()
}
