package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/crowdbricks/admin-console/internal/model"
)

// ListNotifications fetches the full admin notification feed.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var wire []wireNotification
	if err := c.Get(ctx, "/v1/admin/notifications", &wire); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	notifications := make([]model.Notification, 0, len(wire))
	for _, w := range wire {
		notifications = append(notifications, w.toModel())
	}
	return notifications, nil
}

// MarkNotificationRead marks a single notification as read on the backend.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	path := fmt.Sprintf("/v1/admin/notifications/%s/read", id)
	if err := c.Post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification as read on the backend.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.Post(ctx, "/v1/admin/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification on the backend.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	path := fmt.Sprintf("/v1/admin/notifications/%s", id)
	if err := c.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}

// EventStream is an open push channel delivering server-initiated
// notification events (text/event-stream).
type EventStream struct {
	resp   *http.Response
	reader *bufio.Reader
}

// OpenEvents opens the push-event channel. The returned stream must be
// closed by the caller. Callers should fall back to interval polling
// when this fails.
func (c *Client) OpenEvents(ctx context.Context) (*EventStream, error) {
	url := c.baseURL + "/v1/admin/notifications/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating event stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The stream is long-lived, so it bypasses the default client and
	// its 30-second timeout.
	streamClient := &http.Client{Timeout: 0}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening event stream: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, &AuthError{Message: "event stream rejected the session token"}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "event stream unavailable"}
	}

	return &EventStream{
		resp:   resp,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

// Next blocks until the next notification event arrives and returns it.
// It returns an error when the stream breaks or is closed; the stream is
// not usable afterwards.
func (s *EventStream) Next() (model.Notification, error) {
	var data strings.Builder

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return model.Notification{}, fmt.Errorf("reading event stream: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			// Dispatch boundary: decode accumulated data, if any.
			if data.Len() == 0 {
				continue
			}
			var wire wireNotification
			if err := json.Unmarshal([]byte(data.String()), &wire); err != nil {
				// Skip undecodable events rather than killing the stream.
				data.Reset()
				continue
			}
			return wire.toModel(), nil

		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))

		default:
			// event:, id:, retry: and comment lines are not used.
		}
	}
}

// Close shuts the push channel down.
func (s *EventStream) Close() error {
	return s.resp.Body.Close()
}
