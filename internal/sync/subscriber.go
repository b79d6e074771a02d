package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/crowdbricks/admin-console/internal/api"
	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/store"
)

// Mode is the delivery mode of the Remote Event Subscriber. The only
// transition is ModeStreaming -> ModePolling, taken once when the push
// channel fails; there is no reverse transition for the session.
type Mode int

const (
	// ModeConnecting is the initial state before the push channel
	// attempt has resolved.
	ModeConnecting Mode = iota

	// ModeStreaming means notifications arrive over the push channel.
	ModeStreaming

	// ModePolling means the push channel is unavailable and the feed is
	// refetched on a fixed interval.
	ModePolling
)

func (m Mode) String() string {
	switch m {
	case ModeStreaming:
		return "live"
	case ModePolling:
		return "polling"
	default:
		return "connecting"
	}
}

// PushNotificationMsg is a tea.Msg sent when a notification arrives over
// the push channel. The notification is already in the store.
type PushNotificationMsg struct {
	Notification model.Notification
}

// NotificationsRefreshedMsg is a tea.Msg sent after a polling-fallback
// refetch replaced the store contents.
type NotificationsRefreshedMsg struct {
	Count int
}

// fetchTimeout is the maximum time allowed for a single refetch.
const fetchTimeout = 30 * time.Second

// Stream is an open push channel; Next blocks until the next event.
type Stream interface {
	Next() (model.Notification, error)
	Close() error
}

// Feed is the backend surface the subscriber needs: a push channel and
// a bulk fetch for the polling fallback.
type Feed interface {
	OpenEvents(ctx context.Context) (Stream, error)
	ListNotifications(ctx context.Context) ([]model.Notification, error)
}

// APIFeed adapts *api.Client to the Feed interface.
type APIFeed struct {
	Client *api.Client
}

func (f APIFeed) OpenEvents(ctx context.Context) (Stream, error) {
	s, err := f.Client.OpenEvents(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (f APIFeed) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	return f.Client.ListNotifications(ctx)
}

// Subscriber obtains new notifications as close to real-time as the
// backend allows: it opens the push channel and prepends every delivered
// event into the store, degrading to a fixed-interval full refetch (with
// Replace) when the channel fails. Exactly one of the two is active at
// any time.
type Subscriber struct {
	feed         Feed
	store        *store.NotificationStore
	log          *zap.Logger
	pollInterval time.Duration

	mu      gosync.Mutex
	mode    Mode
	stream  Stream
	running bool

	resultCh chan tea.Msg
	stopCh   chan struct{}
}

// NewSubscriber creates a subscriber writing into the given store.
func NewSubscriber(
	feed Feed,
	s *store.NotificationStore,
	pollInterval time.Duration,
	log *zap.Logger,
) *Subscriber {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{
		feed:         feed,
		store:        s,
		log:          log,
		pollInterval: pollInterval,
		resultCh:     make(chan tea.Msg, 16),
		stopCh:       make(chan struct{}),
	}
}

// Start launches the subscriber goroutine and returns a tea.Cmd that
// waits for its first event.
func (s *Subscriber) Start() tea.Cmd {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	go s.run()

	return s.waitForEvent()
}

// Stop tears the subscriber down: it closes the push channel if one is
// open, or lets the polling loop observe stopCh and exit. No stream
// reference survives teardown.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)

	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
}

// Mode returns the current delivery mode.
func (s *Subscriber) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// WaitForNextEvent returns a tea.Cmd that waits for the next subscriber
// event. Call it again after processing each message to keep listening.
func (s *Subscriber) WaitForNextEvent() tea.Cmd {
	return s.waitForEvent()
}

// run drives the push channel, falling back to polling on any failure.
func (s *Subscriber) run() {
	stream, err := s.feed.OpenEvents(context.Background())
	if err != nil {
		s.log.Warn("push channel unavailable, falling back to polling",
			zap.Error(err))
		s.pollLoop()
		return
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		_ = stream.Close()
		return
	}
	s.stream = stream
	s.mode = ModeStreaming
	s.mu.Unlock()

	for {
		n, err := stream.Next()
		if err != nil {
			_ = stream.Close()
			s.mu.Lock()
			s.stream = nil
			stopped := !s.running
			s.mu.Unlock()
			if stopped {
				return
			}
			s.log.Warn("push channel broke, falling back to polling",
				zap.Error(err))
			s.pollLoop()
			return
		}

		s.store.Prepend(n)
		s.send(PushNotificationMsg{Notification: n})
	}
}

// pollLoop is the degraded path: refetch immediately, then on a fixed
// interval until Stop.
func (s *Subscriber) pollLoop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mode = ModePolling
	s.mu.Unlock()

	s.refetch()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.refetch()
		}
	}
}

// refetch replaces the store contents with the backend's full feed.
// Fetch errors skip the cycle silently.
func (s *Subscriber) refetch() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	list, err := s.feed.ListNotifications(ctx)
	if err != nil {
		s.log.Debug("notification refetch failed, skipping cycle",
			zap.Error(err))
		return
	}

	s.store.Replace(list)
	s.send(NotificationsRefreshedMsg{Count: len(list)})
}

// send delivers a message to the UI without blocking.
func (s *Subscriber) send(msg tea.Msg) {
	select {
	case s.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the subscriber
	}
}

// waitForEvent returns a tea.Cmd that waits on the result channel.
func (s *Subscriber) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.resultCh:
			return msg
		case <-s.stopCh:
			return nil
		}
	}
}
