package ticketlist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowdbricks/admin-console/internal/api"
	"github.com/crowdbricks/admin-console/internal/keys"
	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/theme"
	"github.com/crowdbricks/admin-console/internal/tickets"
)

// TicketsLoadedMsg carries the result of a ticket list fetch.
type TicketsLoadedMsg struct {
	Tickets []model.Ticket
	Err     error
}

// SelectedTicketMsg asks the parent to open a ticket's detail view.
type SelectedTicketMsg struct {
	TicketID string
}

// statusFilters is the cycle order for the status filter. The empty
// string means no filter.
var statusFilters = []model.TicketStatus{
	"",
	model.TicketStatusOpen,
	model.TicketStatusInProgress,
	model.TicketStatusResolved,
	model.TicketStatusClosed,
}

// Model is the support ticket list view.
type Model struct {
	workflow    *tickets.Workflow
	keys        *keys.KeyMap
	tickets     []model.Ticket
	filterIdx   int
	selectedIdx int
	loading     bool
	loadErr     error
	width       int
	height      int
}

// New creates a new ticket list model.
func New(w *tickets.Workflow, k *keys.KeyMap, width, height int) Model {
	return Model{
		workflow: w,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init triggers the initial ticket fetch.
func (m Model) Init() tea.Cmd {
	return m.LoadTickets()
}

// LoadTickets returns a command that fetches the ticket list with the
// current status filter applied.
func (m Model) LoadTickets() tea.Cmd {
	workflow := m.workflow
	filter := m.currentFilter()
	return func() tea.Msg {
		list, err := workflow.List(context.Background(), filter)
		return TicketsLoadedMsg{Tickets: list, Err: err}
	}
}

// currentFilter builds the filter for the active status selection.
func (m Model) currentFilter() api.TicketFilter {
	status := statusFilters[m.filterIdx]
	if status == "" {
		return api.TicketFilter{}
	}
	return api.TicketFilter{Status: &status}
}

// SetTickets replaces the list contents. The parent calls this when a
// ticket workflow operation returns a refreshed list.
func (m *Model) SetTickets(list []model.Ticket) {
	m.tickets = list
	m.loading = false
	m.loadErr = nil
	if m.selectedIdx >= len(m.tickets) && m.selectedIdx > 0 {
		m.selectedIdx = len(m.tickets) - 1
	}
}

// Update handles messages for the ticket list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TicketsLoadedMsg:
		if msg.Err != nil {
			m.loading = false
			m.loadErr = msg.Err
			return m, nil
		}
		m.SetTickets(msg.Tickets)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Down):
			if len(m.tickets) > 0 {
				m.selectedIdx = (m.selectedIdx + 1) % len(m.tickets)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if len(m.tickets) > 0 {
				m.selectedIdx--
				if m.selectedIdx < 0 {
					m.selectedIdx = len(m.tickets) - 1
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if len(m.tickets) == 0 {
				return m, nil
			}
			id := m.tickets[m.selectedIdx].ID
			return m, func() tea.Msg { return SelectedTicketMsg{TicketID: id} }

		case key.Matches(msg, m.keys.CycleStatus):
			m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
			m.selectedIdx = 0
			m.loading = true
			return m, m.LoadTickets()

		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.LoadTickets()
		}
	}

	return m, nil
}

// View renders the ticket list with the active filter in the title row.
func (m Model) View() string {
	title := "All tickets"
	if status := statusFilters[m.filterIdx]; status != "" {
		title = "Tickets: " + string(status)
	}
	header := theme.HelpStyle.Render(title)

	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, header, "  Loading…")
	}
	if m.loadErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			theme.ToastErrorStyle.Render("Failed to load tickets: "+m.loadErr.Error()))
	}
	if len(m.tickets) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			theme.HelpStyle.Render("  No tickets."))
	}

	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.selectedIdx >= visible {
		start = m.selectedIdx - visible + 1
	}

	rows := []string{header}
	for i := start; i < len(m.tickets) && i < start+visible; i++ {
		rows = append(rows, m.renderItem(i))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderItem renders a single ticket row.
func (m Model) renderItem(i int) string {
	t := m.tickets[i]

	status := theme.StatusStyle(string(t.Status)).Render(string(t.Status))
	priority := theme.PriorityStyle(t.Priority).Render(t.Priority)

	unread := "  "
	if hasUnreadUserMessage(t) {
		unread = theme.UnreadStyle.Render("● ")
	}

	line := fmt.Sprintf("%s%s %s  %s — %s",
		unread, status, priority, t.Subject, t.User.Name)

	if i == m.selectedIdx {
		return theme.SelectedItemStyle.Width(m.width - 2).Render(line)
	}
	return theme.ListItemStyle.Width(m.width - 2).Render(line)
}

// hasUnreadUserMessage reports whether the ticket has an unread message
// from the ticket's user.
func hasUnreadUserMessage(t model.Ticket) bool {
	for _, msg := range t.Messages {
		if !msg.IsAdmin && !msg.IsRead {
			return true
		}
	}
	return false
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
