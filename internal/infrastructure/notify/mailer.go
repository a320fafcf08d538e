package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/pkg/email"
)

// InvitationSender delivers invitation emails
type InvitationSender interface {
	SendInvitationEmail(ctx context.Context, data email.InvitationEmailData) error
}

// InvitationLookup loads a committed invitation
type InvitationLookup interface {
	GetInvitation(ctx context.Context, id uint) (*wishlist.Invitation, error)
}

// InvitationMailer emails the invitee whenever an invitation is recorded.
// Every other verb is ignored.
type InvitationMailer struct {
	sender  InvitationSender
	lookup  InvitationLookup
	siteURL string
}

// NewInvitationMailer creates a mailer linking invitees to siteURL
func NewInvitationMailer(sender InvitationSender, lookup InvitationLookup, siteURL string) *InvitationMailer {
	return &InvitationMailer{
		sender:  sender,
		lookup:  lookup,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// Notify implements wishlist.Notifier
func (m *InvitationMailer) Notify(ctx context.Context, event wishlist.Event) error {
	if event.Entry.Verb != wishlist.VerbInvited {
		return nil
	}

	invitation, err := m.lookup.GetInvitation(ctx, event.Entry.TargetID)
	if err != nil {
		return fmt.Errorf("failed to load invitation %d: %w", event.Entry.TargetID, err)
	}

	data := email.InvitationEmailData{
		EmailTemplateData: email.GetBaseTemplateData("", m.siteURL, invitation.Email),
		Role:              invitation.Role.String(),
		AcceptURL:         fmt.Sprintf("%s/invitations/%d", m.siteURL, invitation.ID),
		ExpiresAt:         invitation.ExpiresAt,
	}
	if err := m.sender.SendInvitationEmail(ctx, data); err != nil {
		return fmt.Errorf("failed to email invitation %d: %w", invitation.ID, err)
	}
	return nil
}
