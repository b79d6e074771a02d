package notificationlist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowdbricks/admin-console/internal/keys"
	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/store"
	"github.com/crowdbricks/admin-console/internal/theme"
)

// MarkReadMsg asks the parent to mark one notification read.
type MarkReadMsg struct {
	ID string
}

// MarkAllReadMsg asks the parent to mark every notification read.
type MarkAllReadMsg struct{}

// DeleteMsg asks the parent to delete one notification.
type DeleteMsg struct {
	ID string
}

// Model is the notification feed view. It reads directly from the local
// store (all reads are in-memory) and emits mutation requests to the
// parent, which owns the optimistic update and the best-effort backend
// call.
type Model struct {
	store       *store.NotificationStore
	keys        *keys.KeyMap
	items       []model.Notification
	selectedIdx int
	width       int
	height      int
}

// New creates a new notification list model.
func New(s *store.NotificationStore, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:  s,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command. The list is populated by Reload.
func (m Model) Init() tea.Cmd {
	return nil
}

// Reload re-reads the list from the store. The parent calls this after
// any store mutation.
func (m *Model) Reload() {
	m.items = m.store.All()
	if m.selectedIdx >= len(m.items) && m.selectedIdx > 0 {
		m.selectedIdx = len(m.items) - 1
	}
}

// Update handles messages for the notification list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if len(m.items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.items)
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Up):
		if len(m.items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.items) - 1
			}
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.MarkRead), key.Matches(keyMsg, m.keys.Select):
		if len(m.items) == 0 {
			return m, nil
		}
		id := m.items[m.selectedIdx].ID
		return m, func() tea.Msg { return MarkReadMsg{ID: id} }

	case key.Matches(keyMsg, m.keys.MarkAllRead):
		if len(m.items) == 0 {
			return m, nil
		}
		return m, func() tea.Msg { return MarkAllReadMsg{} }

	case key.Matches(keyMsg, m.keys.Delete):
		if len(m.items) == 0 {
			return m, nil
		}
		id := m.items[m.selectedIdx].ID
		return m, func() tea.Msg { return DeleteMsg{ID: id} }
	}

	return m, nil
}

// View renders the notification feed, newest first.
func (m Model) View() string {
	if len(m.items) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.")
	}

	visible := m.height
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.selectedIdx >= visible {
		start = m.selectedIdx - visible + 1
	}

	var rows []string
	for i := start; i < len(m.items) && i < start+visible; i++ {
		rows = append(rows, m.renderItem(i))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderItem renders a single feed row.
func (m Model) renderItem(i int) string {
	n := m.items[i]

	marker := "  "
	if !n.Read {
		marker = theme.UnreadStyle.Render("● ")
	}

	title := n.Title
	if title == "" {
		title = n.Type
	}

	line := fmt.Sprintf("%s%s — %s (%s)",
		marker, title, n.Message, relativeTime(n.CreatedAt))

	if i == m.selectedIdx {
		return theme.SelectedItemStyle.Width(m.width - 2).Render(line)
	}
	return theme.ListItemStyle.Width(m.width - 2).Render(line)
}

// relativeTime formats a timestamp for the feed row.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
