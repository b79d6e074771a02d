package ticketdetail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowdbricks/admin-console/internal/keys"
	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/theme"
)

// BackMsg asks the parent to return to the ticket list.
type BackMsg struct{}

// RespondRequestMsg asks the parent to post an admin reply.
type RespondRequestMsg struct {
	TicketID string
	Text     string
}

// StatusChangeRequestMsg asks the parent to transition the ticket.
type StatusChangeRequestMsg struct {
	Ticket model.Ticket
	To     model.TicketStatus
}

// mode tracks which input surface owns keystrokes.
type mode int

const (
	modeViewing mode = iota
	modeReplying
	modeTransitioning
)

// Model is the single-ticket detail view: the message thread in a
// scrollable viewport, a reply composer, and a status transition picker.
type Model struct {
	keys   *keys.KeyMap
	ticket *model.Ticket

	mode       mode
	viewport   viewport.Model
	replyInput textarea.Model

	transitionForm   *huh.Form
	transitionTarget string

	width  int
	height int
}

// New creates a new ticket detail model.
func New(k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Write a reply…"
	ta.CharLimit = 4000
	ta.SetWidth(width - 4)
	ta.SetHeight(4)

	vp := viewport.New(width, height)

	return Model{
		keys:       k,
		viewport:   vp,
		replyInput: ta,
		width:      width,
		height:     height,
	}
}

// Init is a no-op; the parent loads the ticket and calls SetTicket.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetTicket replaces the displayed ticket and rebuilds the thread view.
// Passing nil puts the view back into its loading state.
func (m *Model) SetTicket(t *model.Ticket) {
	m.ticket = t
	m.mode = modeViewing
	m.replyInput.Reset()
	if t == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderThread())
	m.viewport.GotoBottom()
}

// Ticket returns the currently displayed ticket, or nil.
func (m Model) Ticket() *model.Ticket {
	return m.ticket
}

// Update handles messages for the ticket detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeReplying:
		return m.updateReplying(msg)
	case modeTransitioning:
		return m.updateTransitioning(msg)
	}
	return m.updateViewing(msg)
}

// updateViewing handles keys while reading the thread.
func (m Model) updateViewing(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(keyMsg, m.keys.Reply):
		if m.ticket == nil {
			return m, nil
		}
		m.mode = modeReplying
		return m, m.replyInput.Focus()

	case key.Matches(keyMsg, m.keys.Transition):
		if m.ticket == nil {
			return m, nil
		}
		next := model.NextStatuses(m.ticket.Status)
		if len(next) == 0 {
			return m, nil
		}
		m.mode = modeTransitioning
		m.transitionForm = m.newTransitionForm(next)
		return m, m.transitionForm.Init()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateReplying handles keys while composing a reply. Esc cancels,
// ctrl+s submits.
func (m Model) updateReplying(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.mode = modeViewing
			m.replyInput.Blur()
			m.replyInput.Reset()
			return m, nil

		case "ctrl+s":
			text := strings.TrimSpace(m.replyInput.Value())
			if text == "" {
				return m, nil
			}
			id := m.ticket.ID
			m.mode = modeViewing
			m.replyInput.Blur()
			m.replyInput.Reset()
			return m, func() tea.Msg {
				return RespondRequestMsg{TicketID: id, Text: text}
			}
		}
	}

	var cmd tea.Cmd
	m.replyInput, cmd = m.replyInput.Update(msg)
	return m, cmd
}

// updateTransitioning runs the status picker form.
func (m Model) updateTransitioning(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.transitionForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.transitionForm = f
	}

	if m.transitionForm.State == huh.StateCompleted {
		ticket := *m.ticket
		to := model.TicketStatus(m.transitionTarget)
		m.mode = modeViewing
		m.transitionForm = nil
		return m, func() tea.Msg {
			return StatusChangeRequestMsg{Ticket: ticket, To: to}
		}
	}

	if m.transitionForm.State == huh.StateAborted {
		m.mode = modeViewing
		m.transitionForm = nil
		return m, nil
	}

	return m, cmd
}

// newTransitionForm builds a select form over the reachable statuses.
func (m *Model) newTransitionForm(next []model.TicketStatus) *huh.Form {
	options := make([]huh.Option[string], 0, len(next))
	for _, s := range next {
		options = append(options, huh.NewOption(string(s), string(s)))
	}
	m.transitionTarget = string(next[0])

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transition ticket to").
				Options(options...).
				Value(&m.transitionTarget),
		),
	).WithWidth(40)
}

// View renders the detail view for the current mode.
func (m Model) View() string {
	if m.ticket == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading ticket…")
	}

	switch m.mode {
	case modeReplying:
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderSummary(),
			m.viewport.View(),
			theme.BorderStyle.Render(m.replyInput.View()),
			theme.HelpStyle.Render("ctrl+s send · esc cancel"),
		)
	case modeTransitioning:
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderSummary(),
			m.transitionForm.View(),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderSummary(),
		m.viewport.View(),
	)
}

// renderSummary renders the ticket header line.
func (m Model) renderSummary() string {
	t := m.ticket
	status := theme.StatusStyle(string(t.Status)).Render(string(t.Status))
	priority := theme.PriorityStyle(t.Priority).Render(t.Priority)

	return fmt.Sprintf("%s %s %s  %s <%s>",
		status, priority, t.Subject, t.User.Name, t.User.Email)
}

// renderThread renders the message thread, oldest first. The original
// ticket body is the first entry.
func (m Model) renderThread() string {
	t := m.ticket

	adminLabel := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	userLabel := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)

	var b strings.Builder
	b.WriteString(userLabel.Render(t.User.Name))
	if !t.CreatedAt.IsZero() {
		b.WriteString(theme.HelpStyle.Render(
			"  " + t.CreatedAt.Format("2006-01-02 15:04")))
	}
	b.WriteString("\n")
	b.WriteString(t.Message)
	b.WriteString("\n")

	for _, msg := range t.Messages {
		b.WriteString("\n")
		if msg.IsAdmin {
			b.WriteString(adminLabel.Render("Admin"))
		} else {
			b.WriteString(userLabel.Render(t.User.Name))
		}
		if !msg.CreatedAt.IsZero() {
			b.WriteString(theme.HelpStyle.Render(
				"  " + msg.CreatedAt.Format("2006-01-02 15:04")))
		}
		b.WriteString("\n")
		b.WriteString(msg.Message)
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(m.width - 4).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 8
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.replyInput.SetWidth(width - 4)
	if m.ticket != nil {
		m.viewport.SetContent(m.renderThread())
	}
}

// Replying reports whether the reply composer currently owns keystrokes.
// The parent uses this to suppress global keybindings.
func (m Model) Replying() bool {
	return m.mode != modeViewing
}
