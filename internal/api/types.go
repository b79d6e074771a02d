package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/crowdbricks/admin-console/internal/model"
)

// flexID decodes an identifier that the backend sends as either a JSON
// string or a JSON number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// flexTime decodes a creation timestamp. The backend mostly sends
// ISO-8601 strings but is not consistent about fractional seconds or
// the space-separated variant; unparseable values decode to zero time.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	return nil
}

// wireNotification is a notification record as delivered by the backend.
// The body field appears as either "body" or "message" depending on the
// endpoint.
type wireNotification struct {
	ID        flexID   `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Message   string   `json:"message"`
	Type      string   `json:"type"`
	Read      bool     `json:"read"`
	CreatedAt flexTime `json:"created_at"`
	Timestamp flexTime `json:"timestamp"`
}

// toModel normalizes a wire notification into the domain type.
func (w wireNotification) toModel() model.Notification {
	message := w.Message
	if message == "" {
		message = w.Body
	}

	createdAt := w.CreatedAt.Time
	if createdAt.IsZero() {
		createdAt = w.Timestamp.Time
	}

	return model.Notification{
		ID:        string(w.ID),
		Title:     w.Title,
		Message:   message,
		Type:      w.Type,
		Origin:    model.NotificationOriginServer,
		Read:      w.Read,
		CreatedAt: createdAt,
	}
}

// wireTicketUser is the nested user object on a ticket.
type wireTicketUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// wireTicketMessage is a single thread entry as delivered by the backend.
type wireTicketMessage struct {
	IsAdmin   bool     `json:"is_admin"`
	Message   string   `json:"message"`
	IsRead    bool     `json:"is_read"`
	CreatedAt flexTime `json:"created_at"`
}

// wireTicket is a support ticket as delivered by the backend.
type wireTicket struct {
	ID        flexID              `json:"id"`
	Subject   string              `json:"subject"`
	Message   string              `json:"message"`
	Status    string              `json:"status"`
	Category  string              `json:"category"`
	Priority  string              `json:"priority"`
	User      wireTicketUser      `json:"user"`
	Messages  []wireTicketMessage `json:"messages"`
	CreatedAt flexTime            `json:"created_at"`
}

// toModel normalizes a wire ticket into the domain type.
func (w wireTicket) toModel() model.Ticket {
	t := model.Ticket{
		ID:       string(w.ID),
		Subject:  w.Subject,
		Message:  w.Message,
		Status:   model.TicketStatus(w.Status),
		Category: w.Category,
		Priority: w.Priority,
		User: model.TicketUser{
			Name:  w.User.Name,
			Email: w.User.Email,
		},
		CreatedAt: w.CreatedAt.Time,
	}

	for _, m := range w.Messages {
		t.Messages = append(t.Messages, model.TicketMessage{
			IsAdmin:   m.IsAdmin,
			Message:   m.Message,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt.Time,
		})
	}

	return t
}

// wireUnreadCount is the unread-count endpoint payload. The count field
// appears as either "count" or "unread_count".
type wireUnreadCount struct {
	Count       *int `json:"count"`
	UnreadCount *int `json:"unread_count"`
}

func (w wireUnreadCount) value() int {
	if w.Count != nil {
		return *w.Count
	}
	if w.UnreadCount != nil {
		return *w.UnreadCount
	}
	return 0
}
