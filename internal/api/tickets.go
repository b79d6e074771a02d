package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/crowdbricks/admin-console/internal/model"
)

// TicketFilter constrains a ticket list query. Nil fields match all.
type TicketFilter struct {
	Status   *model.TicketStatus
	Category *string
}

// ListTickets fetches support tickets, optionally filtered by status
// and category.
func (c *Client) ListTickets(
	ctx context.Context,
	filter TicketFilter,
) ([]model.Ticket, error) {
	query := url.Values{}
	if filter.Status != nil {
		query.Set("status", string(*filter.Status))
	}
	if filter.Category != nil {
		query.Set("category", *filter.Category)
	}

	path := "/v1/admin/support-tickets"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var wire []wireTicket
	if err := c.Get(ctx, path, &wire); err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}

	tickets := make([]model.Ticket, 0, len(wire))
	for _, w := range wire {
		tickets = append(tickets, w.toModel())
	}
	return tickets, nil
}

// GetTicket fetches full ticket detail including the nested message thread.
func (c *Client) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	path := fmt.Sprintf("/v1/admin/support-tickets/%s", id)

	var wire wireTicket
	if err := c.Get(ctx, path, &wire); err != nil {
		return nil, fmt.Errorf("fetching ticket %s: %w", id, err)
	}

	ticket := wire.toModel()
	return &ticket, nil
}

// RespondTicket appends an admin message to a ticket's thread.
func (c *Client) RespondTicket(ctx context.Context, id, text string) error {
	path := fmt.Sprintf("/v1/admin/support-tickets/%s/respond", id)
	body := map[string]string{"message": text}

	if err := c.Post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("responding to ticket %s: %w", id, err)
	}
	return nil
}

// SetTicketStatus transitions a ticket to the given status.
func (c *Client) SetTicketStatus(
	ctx context.Context,
	id string,
	status model.TicketStatus,
) error {
	path := fmt.Sprintf("/v1/admin/support-tickets/%s/status", id)
	body := map[string]string{"status": string(status)}

	if err := c.Patch(ctx, path, body, nil); err != nil {
		return fmt.Errorf("setting ticket %s status: %w", id, err)
	}
	return nil
}

// UnreadTicketCount fetches the number of unread support messages.
func (c *Client) UnreadTicketCount(ctx context.Context) (int, error) {
	var wire wireUnreadCount
	err := c.Get(ctx, "/v1/admin/support-tickets/unread-count", &wire)
	if err != nil {
		return 0, fmt.Errorf("fetching unread ticket count: %w", err)
	}
	return wire.value(), nil
}
