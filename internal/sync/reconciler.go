package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/store"
)

// SupportActivityMsg is a tea.Msg sent when the unread-count reconciler
// detects new support-ticket activity. The synthesized notification is
// already in the store.
type SupportActivityMsg struct {
	Count        int
	Notification model.Notification
}

// CountSource fetches the current unread support-message count.
// *api.Client satisfies this.
type CountSource interface {
	UnreadTicketCount(ctx context.Context) (int, error)
}

// Reconciler infers new support-ticket activity purely from a changing
// unread count, without receiving the underlying events. It polls on a
// fixed interval (plus one immediate check on start), synthesizes a
// local notification when the count increases, and silently skips
// cycles whose fetch fails.
type Reconciler struct {
	source   CountSource
	store    *store.NotificationStore
	log      *zap.Logger
	interval time.Duration

	mu      gosync.Mutex
	prev    int
	running bool

	resultCh chan tea.Msg
	stopCh   chan struct{}
}

// NewReconciler creates a reconciler writing into the given store.
func NewReconciler(
	source CountSource,
	s *store.NotificationStore,
	interval time.Duration,
	log *zap.Logger,
) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		source:   source,
		store:    s,
		log:      log,
		interval: interval,
		resultCh: make(chan tea.Msg, 16),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that waits
// for its first event. The first count check happens immediately.
func (r *Reconciler) Start() tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	go r.run()

	return r.waitForEvent()
}

// Stop cancels the polling loop.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
}

// WaitForNextEvent returns a tea.Cmd that waits for the next reconciler
// event. Call it again after processing each message to keep listening.
func (r *Reconciler) WaitForNextEvent() tea.Cmd {
	return r.waitForEvent()
}

func (r *Reconciler) run() {
	r.tick()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// tick performs one reconciliation cycle. The comparison uses the count
// observed by the previous successful fetch, and the snapshot is updated
// unconditionally after every successful fetch, so increments between
// cycles are never missed and equal or dropping counts never alert.
func (r *Reconciler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	count, err := r.source.UnreadTicketCount(ctx)
	if err != nil {
		r.log.Debug("unread count fetch failed, skipping cycle",
			zap.Error(err))
		return
	}

	r.mu.Lock()
	prev := r.prev
	r.prev = count
	r.mu.Unlock()

	if count > prev && count > 0 {
		n := synthesizeSupportNotification(count)
		r.store.Prepend(n)
		r.send(SupportActivityMsg{Count: count, Notification: n})
	}
}

// synthesizeSupportNotification builds a client-generated notification
// describing the unread support backlog.
func synthesizeSupportNotification(count int) model.Notification {
	word := "messages"
	if count == 1 {
		word = "message"
	}

	return model.Notification{
		ID:        uuid.New().String(),
		Title:     "New Support Message",
		Message:   fmt.Sprintf("You have %d unread support %s", count, word),
		Type:      "info",
		Origin:    model.NotificationOriginLocal,
		CreatedAt: time.Now(),
	}
}

func (r *Reconciler) send(msg tea.Msg) {
	select {
	case r.resultCh <- msg:
	default:
	}
}

func (r *Reconciler) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-r.resultCh:
			return msg
		case <-r.stopCh:
			return nil
		}
	}
}
