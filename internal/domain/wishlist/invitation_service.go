package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// InvitationService manages invitations that turn into collaborators on acceptance
type InvitationService struct {
	*core
	collaborators *CollaboratorService
}

// InviteRequest represents invite collaborator request
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role" binding:"required"`
}

// Invite creates a pending invitation valid for the configured TTL (7 days by
// default). Owner or admin only.
func (s *InvitationService) Invite(ctx context.Context, wishlistID, inviterID uint, req *InviteRequest) (*Invitation, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	var (
		invitation *Invitation
		event      *Event
	)
	err = s.store.WithWishlist(ctx, wishlistID, func(tx Tx, w *Wishlist) error {
		inviterRole, err := s.requireRole(ctx, tx, w, inviterID, RoleAdmin)
		if err != nil {
			return err
		}
		if err := checkGrantable(inviterRole, req.Role); err != nil {
			return err
		}
		if !w.IsCollaborative {
			return fmt.Errorf("%w: wishlist %d is not collaborative", ErrValidation, w.ID)
		}

		now := s.clock()
		existing, err := tx.ListInvitations(ctx, w.ID)
		if err != nil {
			return fmt.Errorf("failed to list invitations: %w", err)
		}
		for i := range existing {
			if existing[i].Email == email && existing[i].EffectiveStatus(now) == InvitationStatusPending {
				return fmt.Errorf("%w: %s already has a pending invitation", ErrConflict, email)
			}
		}

		invitation = &Invitation{
			WishlistID: w.ID,
			Email:      email,
			Role:       req.Role,
			InviterID:  inviterID,
			Status:     InvitationStatusPending,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.invitationTTL),
		}
		if err := tx.CreateInvitation(ctx, invitation); err != nil {
			return fmt.Errorf("failed to create invitation: %w", err)
		}

		event, err = s.record(ctx, tx, w, inviterID, VerbInvited, TargetInvitation, invitation.ID, email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return invitation, nil
}

// Accept converts a pending, unexpired invitation into a collaborator. Expiry
// is checked here, at acceptance time. A replayed acceptance fails with
// ErrConflict and never creates a second collaborator.
func (s *InvitationService) Accept(ctx context.Context, invitationID uint, accepter Principal) (*Collaborator, error) {
	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	var (
		collaborator *Collaborator
		event        *Event
	)
	err = s.store.WithWishlist(ctx, invitation.WishlistID, func(tx Tx, w *Wishlist) error {
		inv, err := tx.GetInvitation(ctx, invitationID)
		if err != nil {
			return err
		}
		if !addressedTo(inv, accepter) {
			return fmt.Errorf("%w: invitation %d was not sent to this account", ErrForbidden, inv.ID)
		}

		now := s.clock()
		switch inv.EffectiveStatus(now) {
		case InvitationStatusPending:
		case InvitationStatusExpired:
			return fmt.Errorf("%w: invitation %d expired at %s", ErrExpired, inv.ID, inv.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
		default:
			return fmt.Errorf("%w: invitation %d is already %s", ErrConflict, inv.ID, inv.Status)
		}

		collaborator, err = s.collaborators.addLocked(ctx, tx, w, accepter.UserID, inv.Role, inv.InviterID, inv.CreatedAt)
		if err != nil {
			return err
		}

		inv.Status = InvitationStatusAccepted
		inv.RespondedAt = &now
		if err := tx.SaveInvitation(ctx, inv); err != nil {
			return fmt.Errorf("failed to update invitation: %w", err)
		}

		event, err = s.record(ctx, tx, w, accepter.UserID, VerbInvitationAccepted, TargetInvitation, inv.ID, inv.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return collaborator, nil
}

// Decline marks a pending invitation declined. Declining an invitation that
// is already resolved or expired succeeds without changing it. The invitee
// or an owner/admin of the wishlist may decline.
func (s *InvitationService) Decline(ctx context.Context, invitationID uint, caller Principal) (*Invitation, error) {
	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	var (
		result *Invitation
		event  *Event
	)
	err = s.store.WithWishlist(ctx, invitation.WishlistID, func(tx Tx, w *Wishlist) error {
		inv, err := tx.GetInvitation(ctx, invitationID)
		if err != nil {
			return err
		}
		result = inv

		if !addressedTo(inv, caller) {
			if _, err := s.requireRole(ctx, tx, w, caller.UserID, RoleAdmin); err != nil {
				return err
			}
		}

		now := s.clock()
		if inv.EffectiveStatus(now) != InvitationStatusPending {
			return nil
		}

		inv.Status = InvitationStatusDeclined
		inv.RespondedAt = &now
		if err := tx.SaveInvitation(ctx, inv); err != nil {
			return fmt.Errorf("failed to update invitation: %w", err)
		}

		event, err = s.record(ctx, tx, w, caller.UserID, VerbInvitationDeclined, TargetInvitation, inv.ID, inv.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return s.present(result), nil
}

// addressedTo reports whether p is the invitee. A principal without an email
// is never the invitee.
func addressedTo(inv *Invitation, p Principal) bool {
	return p.Email != "" && strings.EqualFold(p.Email, inv.Email)
}

// ListForWishlist returns every invitation of a wishlist; owner or admin only
func (s *InvitationService) ListForWishlist(ctx context.Context, wishlistID, callerID uint) ([]Invitation, error) {
	w, err := s.store.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, s.store, w, callerID, RoleAdmin); err != nil {
		return nil, err
	}

	invitations, err := s.store.ListInvitations(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	for i := range invitations {
		invitations[i] = *s.present(&invitations[i])
	}
	return invitations, nil
}

// ListForEmail returns the still-acceptable invitations addressed to email
func (s *InvitationService) ListForEmail(ctx context.Context, email string) ([]Invitation, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	invitations, err := s.store.ListInvitationsByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.clock()
	pending := make([]Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if inv.EffectiveStatus(now) == InvitationStatusPending {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

// present reports the effective status instead of the stored one
func (s *InvitationService) present(inv *Invitation) *Invitation {
	out := *inv
	out.Status = inv.EffectiveStatus(s.clock())
	return &out
}
