// internal/domain/wishlist/entity.go
package wishlist

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Role is a collaborator's standing on a wishlist. Roles are totally ordered:
// viewer < contributor < admin < owner.
type Role uint8

const (
	RoleNone Role = iota
	RoleViewer
	RoleContributor
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleNone:        "",
	RoleViewer:      "viewer",
	RoleContributor: "contributor",
	RoleAdmin:       "admin",
	RoleOwner:       "owner",
}

// ParseRole converts a role name into a Role
func ParseRole(name string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for role, roleName := range roleNames {
		if role != RoleNone && roleName == normalized {
			return role, nil
		}
	}
	return RoleNone, fmt.Errorf("%w: unknown role %q", ErrValidation, name)
}

func (r Role) String() string {
	return roleNames[r]
}

// AtLeast reports whether r ranks equal to or above other
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// Outranks reports whether r ranks strictly above other
func (r Role) Outranks(other Role) bool {
	return r > other
}

// Assignable reports whether the role can be held by a stored collaborator
func (r Role) Assignable() bool {
	return r >= RoleViewer && r <= RoleAdmin
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Value stores the role by name
func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan reads a role stored by name
func (r *Role) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case nil:
		*r = RoleNone
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Role", value)
	}
}

// ItemStatus represents the lifecycle state of a wishlist item
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusReserved  ItemStatus = "reserved"
	ItemStatusPurchased ItemStatus = "purchased"
)

// Priority represents how much the owner wants an item
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// InvitationStatus represents the state of a collaboration invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// ShareType represents the audience of a share link
type ShareType string

const (
	ShareTypePublic        ShareType = "public"
	ShareTypePrivate       ShareType = "private"
	ShareTypeCollaborative ShareType = "collaborative"
)

// Valid reports whether t is a known share type
func (t ShareType) Valid() bool {
	return t == ShareTypePublic || t == ShareTypePrivate || t == ShareTypeCollaborative
}

// Settings holds per-wishlist behaviour switches
type Settings struct {
	AllowComments   bool `gorm:"not null" json:"allow_comments"`
	AllowPurchases  bool `gorm:"not null" json:"allow_purchases"`
	ShowPrices      bool `gorm:"not null" json:"show_prices"`
	AllowDuplicates bool `gorm:"not null" json:"allow_duplicates"`
}

// DefaultSettings returns the settings applied when a wishlist is created without any
func DefaultSettings() Settings {
	return Settings{
		AllowComments:  true,
		AllowPurchases: true,
		ShowPrices:     true,
	}
}

// Wishlist is the aggregate root. Items, collaborators, invitations, shares,
// comments and activity entries live and die with it.
type Wishlist struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OwnerID         uint      `gorm:"not null;index" json:"owner_id"`
	Name            string    `gorm:"not null;size:200" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	IsPublic        bool      `gorm:"not null" json:"is_public"`
	IsCollaborative bool      `gorm:"not null" json:"is_collaborative"`
	Settings        Settings  `gorm:"embedded;embeddedPrefix:setting_" json:"settings"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Wishlist) TableName() string {
	return "wishlists"
}

// Item is a single desired good inside a wishlist
type Item struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WishlistID  uint       `gorm:"not null;index" json:"wishlist_id"`
	Title       string     `gorm:"not null;size:200" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	URL         string     `gorm:"size:2048" json:"url"`
	ImageURL    string     `gorm:"size:2048" json:"image_url"`
	Price       float64    `gorm:"type:decimal(12,2);default:0" json:"price"`
	Currency    string     `gorm:"size:3;default:'USD'" json:"currency"`
	Category    string     `gorm:"size:100" json:"category"`
	Priority    Priority   `gorm:"size:10;default:'medium'" json:"priority"`
	Status      ItemStatus `gorm:"size:20;default:'available';index" json:"status"`
	ReservedBy  *uint      `gorm:"index" json:"reserved_by"`
	ReservedAt  *time.Time `json:"reserved_at"`
	PurchasedBy *uint      `gorm:"index" json:"purchased_by"`
	PurchasedAt *time.Time `json:"purchased_at"`
	Tags        []string   `gorm:"serializer:json;type:text" json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (Item) TableName() string {
	return "wishlist_items"
}

// Reserve moves an available item to reserved for userID
func (i *Item) Reserve(userID uint, now time.Time) error {
	if i.Status != ItemStatusAvailable {
		return fmt.Errorf("%w: item %d is already %s", ErrConflict, i.ID, i.Status)
	}
	i.Status = ItemStatusReserved
	i.ReservedBy = &userID
	i.ReservedAt = &now
	i.PurchasedBy = nil
	i.PurchasedAt = nil
	return nil
}

// Purchase marks the item bought by userID. A reserved item can only be
// purchased by the user holding the reservation.
func (i *Item) Purchase(userID uint, now time.Time) error {
	switch i.Status {
	case ItemStatusAvailable:
	case ItemStatusReserved:
		if i.ReservedBy != nil && *i.ReservedBy != userID {
			return fmt.Errorf("%w: item %d is reserved by another user", ErrConflict, i.ID)
		}
	default:
		return fmt.Errorf("%w: item %d is already %s", ErrConflict, i.ID, i.Status)
	}
	i.Status = ItemStatusPurchased
	i.PurchasedBy = &userID
	i.PurchasedAt = &now
	i.ReservedBy = nil
	i.ReservedAt = nil
	return nil
}

// Release returns a reserved item to available
func (i *Item) Release() error {
	if i.Status != ItemStatusReserved {
		return fmt.Errorf("%w: item %d is %s, not reserved", ErrConflict, i.ID, i.Status)
	}
	i.Status = ItemStatusAvailable
	i.ReservedBy = nil
	i.ReservedAt = nil
	return nil
}

// Collaborator grants a registered user a role on a wishlist
type Collaborator struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WishlistID uint      `gorm:"not null;uniqueIndex:idx_collaborators_wishlist_user" json:"wishlist_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_collaborators_wishlist_user;index" json:"user_id"`
	Role       Role      `gorm:"type:varchar(20);not null" json:"role"`
	InvitedBy  uint      `json:"invited_by"`
	InvitedAt  time.Time `json:"invited_at"`
	JoinedAt   time.Time `json:"joined_at"`
}

// TableName overrides the table name
func (Collaborator) TableName() string {
	return "wishlist_collaborators"
}

// Invitation is a pending offer of a collaborator role to an email address
type Invitation struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	WishlistID  uint             `gorm:"not null;index" json:"wishlist_id"`
	Email       string           `gorm:"not null;size:254;index" json:"email"`
	Role        Role             `gorm:"type:varchar(20);not null" json:"role"`
	InviterID   uint             `gorm:"not null" json:"inviter_id"`
	Status      InvitationStatus `gorm:"size:20;default:'pending'" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// TableName overrides the table name
func (Invitation) TableName() string {
	return "wishlist_invitations"
}

// EffectiveStatus reports the status as of now; a pending invitation past its
// expiry is expired whatever the stored status says.
func (inv *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if inv.Status == InvitationStatusPending && !now.Before(inv.ExpiresAt) {
		return InvitationStatusExpired
	}
	return inv.Status
}

// Share is a tokenized read-only access grant to a wishlist
type Share struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	WishlistID   uint       `gorm:"not null;index" json:"wishlist_id"`
	ShareType    ShareType  `gorm:"size:20;not null" json:"share_type"`
	ShareCode    string     `gorm:"not null;size:64;uniqueIndex" json:"share_code"`
	PasswordHash string     `gorm:"size:100" json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ViewCount    int64      `gorm:"default:0" json:"view_count"`
	CreatedBy    uint       `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName overrides the table name
func (Share) TableName() string {
	return "wishlist_shares"
}

// HasPassword reports whether the share is password protected
func (s *Share) HasPassword() bool {
	return s.PasswordHash != ""
}

// Expired reports whether the share is past its validity window
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Comment is a message left on an item
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WishlistID uint      `gorm:"not null;index" json:"wishlist_id"`
	ItemID     uint      `gorm:"not null;index" json:"item_id"`
	AuthorID   uint      `gorm:"not null" json:"author_id"`
	AuthorName string    `gorm:"size:200" json:"author_name"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name
func (Comment) TableName() string {
	return "wishlist_item_comments"
}

// Activity verbs
const (
	VerbCreated             = "created"
	VerbUpdated             = "updated"
	VerbDeleted             = "deleted"
	VerbAdded               = "added"
	VerbItemUpdated         = "item_updated"
	VerbRemoved             = "removed"
	VerbReserved            = "reserved"
	VerbPurchased           = "purchased"
	VerbReleased            = "released"
	VerbCommented           = "commented"
	VerbCommentDeleted      = "comment_deleted"
	VerbCollaboratorAdded   = "collaborator_added"
	VerbCollaboratorRemoved = "collaborator_removed"
	VerbRoleUpdated         = "role_updated"
	VerbInvited             = "invited"
	VerbInvitationAccepted  = "invitation_accepted"
	VerbInvitationDeclined  = "invitation_declined"
	VerbShared              = "shared"
	VerbUnshared            = "unshared"
)

// Activity target types
const (
	TargetWishlist     = "wishlist"
	TargetItem         = "item"
	TargetComment      = "comment"
	TargetCollaborator = "collaborator"
	TargetInvitation   = "invitation"
	TargetShare        = "share"
)

// ActivityEntry is an immutable record of a mutation on a wishlist
type ActivityEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WishlistID uint      `gorm:"not null;index" json:"wishlist_id"`
	ActorID    uint      `gorm:"not null" json:"actor_id"`
	Verb       string    `gorm:"size:40;not null" json:"verb"`
	TargetType string    `gorm:"size:20" json:"target_type"`
	TargetID   uint      `json:"target_id"`
	Detail     string    `gorm:"size:500" json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name
func (ActivityEntry) TableName() string {
	return "wishlist_activity"
}

// Principal is the authenticated caller supplied by the identity provider
type Principal struct {
	UserID uint
	Email  string
	Name   string
}

// DisplayName returns the name shown next to the principal's comments
func (p Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return fmt.Sprintf("user-%d", p.UserID)
}
