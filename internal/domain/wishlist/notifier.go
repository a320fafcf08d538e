package wishlist

import "context"

// Event is handed to the notification subsystem once a mutation commits
type Event struct {
	Entry      ActivityEntry `json:"entry"`
	Recipients []uint        `json:"recipients"`
}

// Notifier accepts activity events and the user ids that should hear about
// them. Delivery is the implementation's concern.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NopNotifier discards every event
type NopNotifier struct{}

// Notify implements Notifier
func (NopNotifier) Notify(context.Context, Event) error { return nil }
