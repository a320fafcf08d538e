package wishlist

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/giftlist-backend/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultInvitationTTL   = 7 * 24 * time.Hour
	defaultShareCodeLength = 12
	maxShareCodeAttempts   = 10
)

// PasswordHasher hashes and verifies share passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) error
}

// core carries the dependencies shared by every service of the subsystem
type core struct {
	store         Store
	notifier      Notifier
	logger        *logrus.Logger
	hasher        PasswordHasher
	now           func() time.Time
	invitationTTL time.Duration
	shareBaseURL  string
	newShareCode  func() (string, error)
}

// Option configures the services
type Option func(*core)

// WithNotifier sets the notifier that receives committed activity
func WithNotifier(n Notifier) Option {
	return func(c *core) { c.notifier = n }
}

// WithLogger sets the logger
func WithLogger(l *logrus.Logger) Option {
	return func(c *core) { c.logger = l }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// WithInvitationTTL sets how long invitations stay acceptable
func WithInvitationTTL(ttl time.Duration) Option {
	return func(c *core) { c.invitationTTL = ttl }
}

// WithShareBaseURL sets the prefix used to build share URLs
func WithShareBaseURL(url string) Option {
	return func(c *core) { c.shareBaseURL = url }
}

// WithPasswordHasher sets the share password hasher
func WithPasswordHasher(h PasswordHasher) Option {
	return func(c *core) { c.hasher = h }
}

// WithShareCodeGenerator overrides share code generation
func WithShareCodeGenerator(gen func() (string, error)) Option {
	return func(c *core) { c.newShareCode = gen }
}

// WithShareCodeLength sets the number of random bytes behind each share code
func WithShareCodeLength(n int) Option {
	return func(c *core) { c.newShareCode = randomShareCode(rand.Reader, n) }
}

// Services bundles the collaboration and sharing subsystem
type Services struct {
	Wishlists     *Service
	Items         *ItemService
	Collaborators *CollaboratorService
	Invitations   *InvitationService
	Shares        *ShareService
	Activity      *ActivityService
	Comments      *CommentService
}

// NewServices wires every service on top of store
func NewServices(store Store, opts ...Option) *Services {
	c := &core{
		store:         store,
		notifier:      NopNotifier{},
		logger:        logrus.StandardLogger(),
		hasher:        auth.NewPasswordManager(bcrypt.DefaultCost),
		now:           time.Now,
		invitationTTL: defaultInvitationTTL,
		newShareCode:  randomShareCode(rand.Reader, defaultShareCodeLength),
	}
	for _, opt := range opts {
		opt(c)
	}

	collaborators := &CollaboratorService{core: c}
	return &Services{
		Wishlists:     &Service{core: c},
		Items:         &ItemService{core: c},
		Collaborators: collaborators,
		Invitations:   &InvitationService{core: c, collaborators: collaborators},
		Shares:        &ShareService{core: c},
		Activity:      &ActivityService{core: c},
		Comments:      &CommentService{core: c},
	}
}

func randomShareCode(src io.Reader, n int) func() (string, error) {
	return func() (string, error) {
		buf := make([]byte, n)
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("failed to generate share code: %w", err)
		}
		return base64.RawURLEncoding.EncodeToString(buf), nil
	}
}

func (c *core) clock() time.Time {
	return c.now().UTC()
}

// record appends an activity entry inside tx and returns the event to
// publish once the transaction commits
func (c *core) record(ctx context.Context, tx Tx, w *Wishlist, actorID uint, verb, targetType string, targetID uint, detail string) (*Event, error) {
	entry := &ActivityEntry{
		WishlistID: w.ID,
		ActorID:    actorID,
		Verb:       verb,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     truncate(detail, 500),
		CreatedAt:  c.clock(),
	}
	if err := tx.AppendActivity(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	recipients, err := c.recipients(ctx, tx, w, actorID)
	if err != nil {
		return nil, err
	}
	return &Event{Entry: *entry, Recipients: recipients}, nil
}

// recipients lists the owner and every collaborator except the actor
func (c *core) recipients(ctx context.Context, r Reader, w *Wishlist, actorID uint) ([]uint, error) {
	collaborators, err := r.ListCollaborators(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}

	recipients := make([]uint, 0, len(collaborators)+1)
	if w.OwnerID != actorID {
		recipients = append(recipients, w.OwnerID)
	}
	for _, collaborator := range collaborators {
		if collaborator.UserID != actorID {
			recipients = append(recipients, collaborator.UserID)
		}
	}
	return recipients, nil
}

// publish hands committed events to the notifier. Failures are logged, never
// returned: the mutation has already happened.
func (c *core) publish(ctx context.Context, events ...*Event) {
	for _, event := range events {
		if event == nil {
			continue
		}

		entry := c.logger.WithFields(logrus.Fields{
			"wishlist_id": event.Entry.WishlistID,
			"actor_id":    event.Entry.ActorID,
			"verb":        event.Entry.Verb,
			"target_type": event.Entry.TargetType,
			"target_id":   event.Entry.TargetID,
		})
		entry.Info("Wishlist activity recorded")

		if err := c.notifier.Notify(ctx, *event); err != nil {
			entry.WithError(err).Warn("Failed to notify wishlist activity")
		}
	}
}
