package setup

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowdbricks/admin-console/internal/theme"
)

// DoneMsg carries the completed first-run configuration.
type DoneMsg struct {
	BaseURL string
	Token   string
}

// AbortedMsg signals that the user cancelled setup.
type AbortedMsg struct{}

// Model is the first-run setup form: it collects the admin API base URL
// and a session token, which the parent persists to the config file and
// the system keyring.
type Model struct {
	form *huh.Form

	baseURL string
	token   string

	width  int
	height int
}

// New creates a new setup model, pre-filled with any known base URL.
func New(baseURL string, width, height int) Model {
	m := Model{
		baseURL: baseURL,
		width:   width,
		height:  height,
	}
	m.form = m.newForm()
	return m
}

// newForm builds the setup form.
func (m *Model) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("e.g. https://api.crowdbricks.example").
				Value(&m.baseURL).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return fmt.Errorf("base URL is required")
					}
					u, err := url.Parse(s)
					if err != nil || u.Scheme == "" || u.Host == "" {
						return fmt.Errorf("must be an absolute URL")
					}
					return nil
				}),
			huh.NewInput().
				Title("Admin API token").
				EchoMode(huh.EchoModePassword).
				Value(&m.token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("token is required")
					}
					return nil
				}),
		),
	).WithWidth(60)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update runs the form until it completes or aborts.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		baseURL := strings.TrimRight(strings.TrimSpace(m.baseURL), "/")
		token := strings.TrimSpace(m.token)
		return m, func() tea.Msg {
			return DoneMsg{BaseURL: baseURL, Token: token}
		}
	}

	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return AbortedMsg{} }
	}

	return m, cmd
}

// View renders the setup form centered in the content area.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("CrowdBricks Admin — first-run setup")

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		m.form.View(),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
