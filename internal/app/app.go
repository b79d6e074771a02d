package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/crowdbricks/admin-console/internal/api"
	"github.com/crowdbricks/admin-console/internal/credential"
	"github.com/crowdbricks/admin-console/internal/keys"
	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/store"
	appsync "github.com/crowdbricks/admin-console/internal/sync"
	"github.com/crowdbricks/admin-console/internal/tickets"
	"github.com/crowdbricks/admin-console/internal/ui"
	helpview "github.com/crowdbricks/admin-console/internal/ui/help"
	"github.com/crowdbricks/admin-console/internal/ui/notificationlist"
	setupview "github.com/crowdbricks/admin-console/internal/ui/setup"
	"github.com/crowdbricks/admin-console/internal/ui/ticketdetail"
	"github.com/crowdbricks/admin-console/internal/ui/ticketlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewNotifications ViewState = iota
	ViewTickets
	ViewTicketDetail
	ViewSetup
	ViewHelp
)

// toastDuration is how long a toast stays in the status bar.
const toastDuration = 4 * time.Second

// clearToastMsg expires a toast. The seq guards against an old timer
// clearing a newer toast.
type clearToastMsg struct {
	seq int
}

// ticketLoadedMsg carries a ticket detail fetch result.
type ticketLoadedMsg struct {
	ticket *model.Ticket
	err    error
}

// respondResultMsg carries the outcome of posting an admin reply.
type respondResultMsg struct {
	ticketID string
	result   *tickets.RespondResult
	err      error
}

// statusChangedMsg carries the outcome of a ticket status transition.
type statusChangedMsg struct {
	ticketID string
	to       model.TicketStatus
	err      error
}

// Model is the root Bubble Tea model that manages view routing, layout,
// the background sync loops, and the local notification store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	cfg     *model.AppConfig
	cfgPath string
	keys    *keys.KeyMap
	log     *zap.Logger

	store      *store.NotificationStore
	audit      *store.AuditLog
	client     *api.Client
	workflow   *tickets.Workflow
	subscriber *appsync.Subscriber
	reconciler *appsync.Reconciler

	notifView  notificationlist.Model
	ticketView ticketlist.Model
	detailView ticketdetail.Model
	setupView  setupview.Model
	helpView   helpview.Model

	toast    string
	toastErr bool
	toastSeq int
}

// New creates the root application model. A nil client means no base URL
// or token is configured yet; the app then starts in first-run setup.
func New(
	cfg *model.AppConfig,
	cfgPath string,
	s *store.NotificationStore,
	audit *store.AuditLog,
	client *api.Client,
	log *zap.Logger,
) Model {
	if log == nil {
		log = zap.NewNop()
	}
	k := keys.DefaultKeyMap()

	m := Model{
		currentView: ViewNotifications,
		cfg:         cfg,
		cfgPath:     cfgPath,
		keys:        k,
		log:         log,
		store:       s,
		audit:       audit,
		notifView:   notificationlist.New(s, k, 80, 24),
		detailView:  ticketdetail.New(k, 80, 24),
		setupView:   setupview.New(cfg.API.BaseURL, 80, 24),
		helpView:    helpview.New(k, 80, 24),
	}

	if client != nil {
		m.attachClient(client)
	} else {
		m.currentView = ViewSetup
	}

	m.notifView.Reload()
	return m
}

// attachClient wires the backend client and the sync loops that depend
// on it.
func (m *Model) attachClient(client *api.Client) {
	m.client = client
	m.workflow = tickets.NewWorkflow(client, m.log)
	m.ticketView = ticketlist.New(m.workflow, m.keys, 80, 24)

	pollInterval := time.Duration(m.cfg.Sync.PollIntervalSec) * time.Second
	checkInterval := time.Duration(m.cfg.Sync.UnreadCheckIntervalSec) * time.Second

	m.subscriber = appsync.NewSubscriber(
		appsync.APIFeed{Client: client}, m.store, pollInterval, m.log)
	m.reconciler = appsync.NewReconciler(client, m.store, checkInterval, m.log)
}

// Init starts the sync loops, or the setup form on first run.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewSetup {
		return m.setupView.Init()
	}

	return tea.Batch(
		m.subscriber.Start(),
		m.reconciler.Start(),
		m.ticketView.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.notifView.SetSize(contentWidth, contentHeight)
		m.ticketView.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.PushNotificationMsg:
		m.notifView.Reload()
		m.ringBell()
		cmd := m.showToast(msg.Notification.Title, false)
		return m, tea.Batch(cmd, m.subscriber.WaitForNextEvent())

	case appsync.NotificationsRefreshedMsg:
		m.notifView.Reload()
		return m, m.subscriber.WaitForNextEvent()

	case appsync.SupportActivityMsg:
		m.notifView.Reload()
		m.ringBell()
		cmd := m.showToast(msg.Notification.Message, false)
		return m, tea.Batch(cmd, m.reconciler.WaitForNextEvent())

	case notificationlist.MarkReadMsg:
		return m, m.markNotificationRead(msg.ID)

	case notificationlist.MarkAllReadMsg:
		return m, m.markAllNotificationsRead()

	case notificationlist.DeleteMsg:
		return m, m.deleteNotification(msg.ID)

	case notificationMutatedMsg:
		m.notifView.Reload()
		return m, nil

	case notificationsReloadedMsg:
		if msg.err != nil {
			return m, m.showToast("Refresh failed: "+msg.err.Error(), true)
		}
		m.notifView.Reload()
		return m, nil

	case ticketlist.SelectedTicketMsg:
		m.previousView = m.currentView
		m.currentView = ViewTicketDetail
		m.detailView.SetTicket(nil)
		return m, m.loadTicket(msg.TicketID)

	case ticketLoadedMsg:
		if msg.err != nil {
			m.currentView = ViewTickets
			return m, m.showToast("Loading ticket failed: "+msg.err.Error(), true)
		}
		m.detailView.SetTicket(msg.ticket)
		return m, nil

	case ticketdetail.BackMsg:
		m.currentView = ViewTickets
		return m, nil

	case ticketdetail.RespondRequestMsg:
		return m, m.respond(msg.TicketID, msg.Text)

	case respondResultMsg:
		if msg.err != nil {
			return m, m.showToast("Reply failed: "+msg.err.Error(), true)
		}
		m.audit.Record("ticket.respond", msg.ticketID)
		if msg.result != nil && msg.result.Tickets != nil {
			m.ticketView.SetTickets(msg.result.Tickets)
		}
		return m, tea.Batch(
			m.showToast("Reply sent", false),
			m.loadTicket(msg.ticketID),
		)

	case ticketdetail.StatusChangeRequestMsg:
		return m, m.setTicketStatus(msg.Ticket, msg.To)

	case statusChangedMsg:
		if msg.err != nil {
			return m, m.showToast("Status change failed: "+msg.err.Error(), true)
		}
		m.audit.Record("ticket.status",
			fmt.Sprintf("%s -> %s", msg.ticketID, msg.to))
		return m, tea.Batch(
			m.showToast("Ticket moved to "+string(msg.to), false),
			m.loadTicket(msg.ticketID),
			m.ticketView.LoadTickets(),
		)

	case setupview.DoneMsg:
		return m.finishSetup(msg)

	case setupview.AbortedMsg:
		return m, tea.Quit

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
			m.toastErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the active
// view. It reports whether the key was consumed.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.shutdown()
		return tea.Quit, true
	}

	// Text inputs own keystrokes while active.
	if m.currentView == ViewSetup {
		return nil, false
	}
	if m.currentView == ViewTicketDetail && m.detailView.Replying() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewNotifications || m.currentView == ViewTickets {
			m.shutdown()
			return tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}

	case "1":
		if m.currentView != ViewNotifications {
			m.previousView = m.currentView
			m.currentView = ViewNotifications
			m.notifView.Reload()
			return nil, true
		}

	case "2":
		if m.currentView != ViewTickets && m.workflow != nil {
			m.previousView = m.currentView
			m.currentView = ViewTickets
			return m.ticketView.LoadTickets(), true
		}

	case "r":
		if m.currentView == ViewNotifications {
			return m.reloadNotifications(), true
		}
	}

	return nil, false
}

// finishSetup persists the first-run configuration, stores the token in
// the system keyring, and brings the sync loops up.
func (m Model) finishSetup(msg setupview.DoneMsg) (tea.Model, tea.Cmd) {
	m.cfg.API.BaseURL = msg.BaseURL
	if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
		m.log.Error("saving config", zap.Error(err))
		return m, m.showToast("Saving config failed: "+err.Error(), true)
	}

	if err := credential.Set(credential.KeyAPIToken, msg.Token); err != nil {
		// The token still works for this session; it just won't survive
		// a restart.
		m.log.Warn("storing token in keyring", zap.Error(err))
	}

	m.attachClient(api.NewClient(msg.BaseURL, msg.Token))
	m.audit.Record("setup", "configured "+msg.BaseURL)

	m.currentView = ViewNotifications
	m.notifView.Reload()

	return m, tea.Batch(
		m.subscriber.Start(),
		m.reconciler.Start(),
		m.ticketView.Init(),
	)
}

// loadTicket returns a command that fetches full ticket detail.
func (m Model) loadTicket(id string) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		t, err := workflow.Get(ctx, id)
		return ticketLoadedMsg{ticket: t, err: err}
	}
}

// respond returns a command that posts an admin reply.
func (m Model) respond(id, text string) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := workflow.Respond(ctx, id, text)
		return respondResultMsg{ticketID: id, result: result, err: err}
	}
}

// setTicketStatus returns a command that transitions a ticket.
func (m Model) setTicketStatus(t model.Ticket, to model.TicketStatus) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := workflow.SetStatus(ctx, t, to)
		return statusChangedMsg{ticketID: t.ID, to: to, err: err}
	}
}

// showToast sets a transient status-bar message and schedules its expiry.
func (m *Model) showToast(text string, isError bool) tea.Cmd {
	m.toast = text
	m.toastErr = isError
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

// ringBell sounds the terminal bell when alerts are enabled.
func (m Model) ringBell() {
	if m.cfg.Display.BellAlerts {
		fmt.Fprint(os.Stderr, "\a")
	}
}

// shutdown stops the background sync loops.
func (m *Model) shutdown() {
	if m.subscriber != nil {
		m.subscriber.Stop()
	}
	if m.reconciler != nil {
		m.reconciler.Stop()
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewTickets:
		m.ticketView, cmd = m.ticketView.Update(msg)
	case ViewTicketDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewSetup {
		return m.setupView.View()
	}

	headerTitle := "CrowdBricks Admin"
	if unread := m.store.UnreadCount(); unread > 0 {
		headerTitle = fmt.Sprintf("CrowdBricks Admin [%d unread]", unread)
	}
	header := m.layout.RenderHeader(headerTitle, m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.toast, m.toastErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewNotifications:
		return m.notifView.View()
	case ViewTickets:
		return m.ticketView.View()
	case ViewTicketDetail:
		return m.detailView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// syncStatus returns the delivery-mode indicator for the header.
func (m Model) syncStatus() string {
	if m.subscriber == nil {
		return "offline"
	}
	return "sync: " + m.subscriber.Mode().String()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewTickets:
		return "enter open | s filter | r refresh | 1 notifications | q quit"
	case ViewTicketDetail:
		return "a answer | t transition | j/k scroll | esc back"
	default:
		return "m read | M all read | d delete | r refresh | 2 tickets | ? help | q quit"
	}
}
