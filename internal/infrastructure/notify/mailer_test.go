package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/pkg/email"
)

type fakeSender struct {
	sent []email.InvitationEmailData
	err  error
}

func (s *fakeSender) SendInvitationEmail(_ context.Context, data email.InvitationEmailData) error {
	s.sent = append(s.sent, data)
	return s.err
}

type fakeLookup map[uint]*wishlist.Invitation

func (l fakeLookup) GetInvitation(_ context.Context, id uint) (*wishlist.Invitation, error) {
	inv, ok := l[id]
	if !ok {
		return nil, wishlist.ErrNotFound
	}
	return inv, nil
}

func TestInvitationMailerSendsOnInvite(t *testing.T) {
	expires := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	lookup := fakeLookup{9: {ID: 9, WishlistID: 4, Email: "bob@example.com", Role: wishlist.RoleContributor, ExpiresAt: expires}}
	sender := &fakeSender{}
	mailer := NewInvitationMailer(sender, lookup, "https://gifts.example.com/")

	err := mailer.Notify(context.Background(), wishlist.Event{
		Entry: wishlist.ActivityEntry{WishlistID: 4, Verb: wishlist.VerbInvited, TargetID: 9, Detail: "bob@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "bob@example.com", sender.sent[0].UserEmail)
	assert.Equal(t, "contributor", sender.sent[0].Role)
	assert.Equal(t, "https://gifts.example.com/invitations/9", sender.sent[0].AcceptURL)
	assert.Equal(t, expires, sender.sent[0].ExpiresAt)
}

func TestInvitationMailerIgnoresOtherVerbs(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewInvitationMailer(sender, fakeLookup{}, "https://gifts.example.com")

	require.NoError(t, mailer.Notify(context.Background(), sampleEvent()))
	assert.Empty(t, sender.sent)
}

func TestInvitationMailerErrors(t *testing.T) {
	event := wishlist.Event{Entry: wishlist.ActivityEntry{Verb: wishlist.VerbInvited, TargetID: 9}}

	mailer := NewInvitationMailer(&fakeSender{}, fakeLookup{}, "")
	err := mailer.Notify(context.Background(), event)
	assert.ErrorIs(t, err, wishlist.ErrNotFound)

	sendErr := errors.New("smtp unavailable")
	lookup := fakeLookup{9: {ID: 9, Email: "bob@example.com", Role: wishlist.RoleViewer}}
	mailer = NewInvitationMailer(&fakeSender{err: sendErr}, lookup, "")
	err = mailer.Notify(context.Background(), event)
	assert.ErrorIs(t, err, sendErr)
}
