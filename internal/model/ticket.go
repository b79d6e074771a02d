package model

import "time"

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Ticket priority constants as reported by the backend.
const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
	TicketPriorityUrgent = "urgent"
)

// TicketUser identifies the end user who opened a ticket.
type TicketUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TicketMessage is a single entry in a ticket's message thread.
type TicketMessage struct {
	// IsAdmin is true when the message was posted by an admin.
	IsAdmin bool `json:"is_admin"`

	// Message is the body text.
	Message string `json:"message"`

	// IsRead indicates whether the recipient has seen the message.
	IsRead bool `json:"is_read"`

	// CreatedAt is when the message was posted.
	CreatedAt time.Time `json:"created_at"`
}

// Ticket is a support ticket as consumed from the admin API. Tickets are
// created externally by end users; this client only reads them, appends
// admin replies, and transitions their status.
type Ticket struct {
	ID       string       `json:"id"`
	Subject  string       `json:"subject"`
	Message  string       `json:"message"`
	Status   TicketStatus `json:"status"`
	Category string       `json:"category"`
	Priority string       `json:"priority"`
	User     TicketUser   `json:"user"`

	// Messages is the nested thread, present on detail fetches only.
	Messages []TicketMessage `json:"messages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CanTransition reports whether a ticket may move from one status to
// another via explicit admin action. The forward chain is
// open -> in_progress -> resolved; closed is reachable from any state.
func CanTransition(from, to TicketStatus) bool {
	if to == TicketStatusClosed {
		return from != TicketStatusClosed
	}
	switch from {
	case TicketStatusOpen:
		return to == TicketStatusInProgress
	case TicketStatusInProgress:
		return to == TicketStatusResolved
	default:
		return false
	}
}

// NextStatuses returns the statuses reachable from the given one,
// in display order.
func NextStatuses(from TicketStatus) []TicketStatus {
	var next []TicketStatus
	for _, to := range []TicketStatus{
		TicketStatusInProgress,
		TicketStatusResolved,
		TicketStatusClosed,
	} {
		if CanTransition(from, to) {
			next = append(next, to)
		}
	}
	return next
}
