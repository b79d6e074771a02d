package model

import "time"

// Notification origin constants. Server-delivered notifications come in
// over the push channel or a list refetch; local ones are synthesized by
// the unread-count reconciler.
const (
	NotificationOriginServer = "server"
	NotificationOriginLocal  = "local"
)

// Notification represents a single entry in the admin notification feed.
type Notification struct {
	// ID is the unique identifier. Server-assigned for pushed
	// notifications, client-generated (UUID) for synthesized ones.
	ID string `json:"id"`

	// Title is the short label, e.g. "New Support Message".
	Title string `json:"title"`

	// Message is the free-text description.
	Message string `json:"message"`

	// Type is a classification tag ("info", "support", ...). The backend
	// does not enforce a closed set, so neither do we.
	Type string `json:"type"`

	// Origin records whether the entry came from the backend or was
	// synthesized locally (use NotificationOrigin* constants).
	Origin string `json:"origin"`

	// Read indicates whether the admin has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
