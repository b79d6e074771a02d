package tickets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/crowdbricks/admin-console/internal/api"
	"github.com/crowdbricks/admin-console/internal/model"
)

// ErrInvalidTransition is returned by SetStatus when the requested
// status change is not allowed from the ticket's current status.
var ErrInvalidTransition = errors.New("invalid ticket status transition")

// API is the backend surface the workflow needs. *api.Client satisfies
// this; tests substitute a fake.
type API interface {
	ListTickets(ctx context.Context, filter api.TicketFilter) ([]model.Ticket, error)
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	RespondTicket(ctx context.Context, id, text string) error
	SetTicketStatus(ctx context.Context, id string, status model.TicketStatus) error
	UnreadTicketCount(ctx context.Context) (int, error)
}

// RespondResult carries the refreshed state after a successful reply:
// the ticket list and the unread count are both refetched so the UI and
// the reconciler's badge stay consistent with the new thread state.
type RespondResult struct {
	Tickets     []model.Ticket
	UnreadCount int
}

// Workflow implements the admin support-ticket operations: list, filter,
// inspect, respond, and transition status. Every operation is a single
// attempt; failures are surfaced to the caller for a toast, never
// retried.
type Workflow struct {
	api API
	log *zap.Logger
}

// NewWorkflow creates a ticket workflow over the given API.
func NewWorkflow(a API, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{api: a, log: log}
}

// List fetches tickets matching the filter.
func (w *Workflow) List(
	ctx context.Context,
	filter api.TicketFilter,
) ([]model.Ticket, error) {
	return w.api.ListTickets(ctx, filter)
}

// Get fetches full ticket detail including the nested message thread.
func (w *Workflow) Get(ctx context.Context, id string) (*model.Ticket, error) {
	return w.api.GetTicket(ctx, id)
}

// Respond appends an admin message to the ticket. On success it refetches
// the ticket list and the unread count (two distinct backend calls) and
// returns both; on failure nothing is refetched.
func (w *Workflow) Respond(
	ctx context.Context,
	id, text string,
) (*RespondResult, error) {
	if err := w.api.RespondTicket(ctx, id, text); err != nil {
		return nil, err
	}

	result := &RespondResult{}

	tickets, err := w.api.ListTickets(ctx, api.TicketFilter{})
	if err != nil {
		// The reply itself landed; a stale list is tolerable.
		w.log.Warn("refetching tickets after respond", zap.Error(err))
	} else {
		result.Tickets = tickets
	}

	count, err := w.api.UnreadTicketCount(ctx)
	if err != nil {
		w.log.Warn("refetching unread count after respond", zap.Error(err))
	} else {
		result.UnreadCount = count
	}

	return result, nil
}

// SetStatus transitions a ticket to the given status. The transition is
// validated locally against the ticket's current status before any
// network call: open -> in_progress -> resolved, closed from any state.
func (w *Workflow) SetStatus(
	ctx context.Context,
	ticket model.Ticket,
	to model.TicketStatus,
) error {
	if !model.CanTransition(ticket.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ticket.Status, to)
	}
	return w.api.SetTicketStatus(ctx, ticket.ID, to)
}
