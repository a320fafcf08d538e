package wishlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

func TestAddCollaborator(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)

	c := f.addCollaborator(w.ID, aliceID, wishlist.RoleAdmin)
	assert.Equal(t, wishlist.RoleAdmin, c.Role)
	assert.Equal(t, ownerID, c.InvitedBy)

	tests := []struct {
		name   string
		caller uint
		req    wishlist.AddCollaboratorRequest
		want   error
	}{
		{"duplicate", ownerID, wishlist.AddCollaboratorRequest{UserID: aliceID, Role: wishlist.RoleViewer}, wishlist.ErrConflict},
		{"owner", ownerID, wishlist.AddCollaboratorRequest{UserID: ownerID, Role: wishlist.RoleViewer}, wishlist.ErrConflict},
		{"owner role", ownerID, wishlist.AddCollaboratorRequest{UserID: bobID, Role: wishlist.RoleOwner}, wishlist.ErrValidation},
		{"admin grants admin", aliceID, wishlist.AddCollaboratorRequest{UserID: bobID, Role: wishlist.RoleAdmin}, wishlist.ErrForbidden},
		{"stranger", strangerID, wishlist.AddCollaboratorRequest{UserID: bobID, Role: wishlist.RoleViewer}, wishlist.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Collaborators.Add(f.ctx, w.ID, tt.caller, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	c, err := f.svc.Collaborators.Add(f.ctx, w.ID, aliceID, &wishlist.AddCollaboratorRequest{UserID: bobID, Role: wishlist.RoleContributor})
	require.NoError(t, err)
	assert.Equal(t, aliceID, c.InvitedBy)

	list, err := f.svc.Collaborators.List(f.ctx, w.ID, bobID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAddCollaboratorRequiresCollaborativeWishlist(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, false)

	_, err := f.svc.Collaborators.Add(f.ctx, w.ID, ownerID, &wishlist.AddCollaboratorRequest{UserID: aliceID, Role: wishlist.RoleViewer})
	assert.ErrorIs(t, err, wishlist.ErrValidation)
}

func TestRemoveCollaborator(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	admin := f.addCollaborator(w.ID, aliceID, wishlist.RoleAdmin)
	otherAdmin := f.addCollaborator(w.ID, carolID, wishlist.RoleAdmin)
	contributor := f.addCollaborator(w.ID, bobID, wishlist.RoleContributor)

	assert.ErrorIs(t, f.svc.Collaborators.Remove(f.ctx, w.ID, otherAdmin.ID, aliceID), wishlist.ErrForbidden, "admins cannot remove peers")
	assert.ErrorIs(t, f.svc.Collaborators.Remove(f.ctx, w.ID, admin.ID, aliceID), wishlist.ErrForbidden, "nobody removes themselves")
	assert.ErrorIs(t, f.svc.Collaborators.Remove(f.ctx, w.ID, admin.ID, bobID), wishlist.ErrForbidden)

	require.NoError(t, f.svc.Collaborators.Remove(f.ctx, w.ID, contributor.ID, aliceID))
	assert.ErrorIs(t, f.svc.Collaborators.Remove(f.ctx, w.ID, contributor.ID, aliceID), wishlist.ErrNotFound)

	require.NoError(t, f.svc.Collaborators.Remove(f.ctx, w.ID, otherAdmin.ID, ownerID))

	list, err := f.store.ListCollaborators(f.ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, aliceID, list[0].UserID)
}

func TestAdminCannotTouchOwner(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	f.addCollaborator(w.ID, aliceID, wishlist.RoleAdmin)

	// the owner holds no collaborator row, so there is nothing to remove
	list, err := f.store.ListCollaborators(f.ctx, w.ID)
	require.NoError(t, err)
	for _, c := range list {
		assert.NotEqual(t, ownerID, c.UserID)
	}

	_, err = f.svc.Collaborators.Add(f.ctx, w.ID, aliceID, &wishlist.AddCollaboratorRequest{UserID: ownerID, Role: wishlist.RoleViewer})
	assert.Error(t, err)

	stored, err := f.store.GetWishlist(f.ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, stored.OwnerID)
}

func TestRemovedCollaboratorKeepsReservation(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	c := f.addCollaborator(w.ID, aliceID, wishlist.RoleViewer)
	item := f.addItem(w.ID, ownerID, "Kettle", 30)

	_, err := f.svc.Items.Reserve(f.ctx, w.ID, item.ID, member(aliceID))
	require.NoError(t, err)
	require.NoError(t, f.svc.Collaborators.Remove(f.ctx, w.ID, c.ID, ownerID))

	stored := f.item(w.ID, item.ID)
	assert.Equal(t, wishlist.ItemStatusReserved, stored.Status)
	assert.Equal(t, aliceID, *stored.ReservedBy)
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	admin := f.addCollaborator(w.ID, aliceID, wishlist.RoleAdmin)
	viewer := f.addCollaborator(w.ID, bobID, wishlist.RoleViewer)

	updated, err := f.svc.Collaborators.UpdateRole(f.ctx, w.ID, viewer.ID, aliceID, wishlist.RoleContributor)
	require.NoError(t, err)
	assert.Equal(t, wishlist.RoleContributor, updated.Role)

	_, err = f.svc.Collaborators.UpdateRole(f.ctx, w.ID, viewer.ID, aliceID, wishlist.RoleAdmin)
	assert.ErrorIs(t, err, wishlist.ErrForbidden, "admins cannot promote to their own rank")

	_, err = f.svc.Collaborators.UpdateRole(f.ctx, w.ID, admin.ID, aliceID, wishlist.RoleViewer)
	assert.ErrorIs(t, err, wishlist.ErrForbidden)

	_, err = f.svc.Collaborators.UpdateRole(f.ctx, w.ID, viewer.ID, ownerID, wishlist.RoleOwner)
	assert.ErrorIs(t, err, wishlist.ErrValidation)

	updated, err = f.svc.Collaborators.UpdateRole(f.ctx, w.ID, viewer.ID, ownerID, wishlist.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, wishlist.RoleAdmin, updated.Role)

	stored, err := f.store.FindCollaborator(f.ctx, w.ID, bobID)
	require.NoError(t, err)
	assert.Equal(t, wishlist.RoleAdmin, stored.Role)

	assert.Equal(t, wishlist.VerbRoleUpdated, f.notifier.last().Entry.Verb)
}

func TestDisablingCollaborationKeepsExistingMembers(t *testing.T) {
	f := newFixture(t)
	w := f.createWishlist(ownerID, true)
	f.addCollaborator(w.ID, aliceID, wishlist.RoleContributor)
	inv := invite(t, f, w.ID, "bob@example.com", wishlist.RoleViewer)

	off := false
	_, err := f.svc.Wishlists.Update(f.ctx, w.ID, ownerID, &wishlist.UpdateWishlistRequest{IsCollaborative: &off})
	require.NoError(t, err)

	f.addItem(w.ID, aliceID, "Still allowed", 5)

	_, err = f.svc.Collaborators.Add(f.ctx, w.ID, ownerID, &wishlist.AddCollaboratorRequest{UserID: carolID, Role: wishlist.RoleViewer})
	assert.ErrorIs(t, err, wishlist.ErrValidation)

	_, err = f.svc.Invitations.Accept(f.ctx, inv.ID, principal(bobID, "bob@example.com"))
	assert.ErrorIs(t, err, wishlist.ErrValidation)

	collaborators, err := f.store.ListCollaborators(f.ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, collaborators, 1)
	assert.Equal(t, aliceID, collaborators[0].UserID)
}
