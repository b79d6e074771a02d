package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/store"
	"github.com/crowdbricks/admin-console/tests/testutil"
)

// fakeStream delivers notifications from a channel; closing the channel
// makes Next return an error, like a broken connection.
type fakeStream struct {
	ch        chan model.Notification
	closeOnce sync.Once
	closed    bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan model.Notification)}
}

func (f *fakeStream) Next() (model.Notification, error) {
	n, ok := <-f.ch
	if !ok {
		return model.Notification{}, errors.New("stream closed")
	}
	return n, nil
}

func (f *fakeStream) Close() error {
	f.closeOnce.Do(func() {
		f.closed = true
		close(f.ch)
	})
	return nil
}

// fakeFeed controls whether the push channel opens and what the polling
// fallback fetches.
type fakeFeed struct {
	mu        sync.Mutex
	stream    *fakeStream
	openErr   error
	list      []model.Notification
	listErr   error
	listCalls int
}

func (f *fakeFeed) OpenEvents(context.Context) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func (f *fakeFeed) ListNotifications(context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func newTestSubscriber(t *testing.T, feed Feed) (*Subscriber, *store.NotificationStore) {
	t.Helper()
	s := store.NewNotificationStore(testutil.NewTestKV(t), nil)
	sub := NewSubscriber(feed, s, 100*time.Millisecond, nil)
	t.Cleanup(sub.Stop)
	return sub, s
}

// nextMsg runs a wait command with a timeout so a broken subscriber
// cannot hang the test suite.
func nextMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()

	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	select {
	case msg := <-result:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscriber event")
		return nil
	}
}

func TestStreamDeliveryPrependsToStore(t *testing.T) {
	stream := newFakeStream()
	feed := &fakeFeed{stream: stream}
	sub, s := newTestSubscriber(t, feed)

	cmd := sub.Start()

	n := model.Notification{ID: "n1", Title: "Funding complete"}
	go func() { stream.ch <- n }()

	msg := nextMsg(t, cmd)
	push, ok := msg.(PushNotificationMsg)
	require.True(t, ok)
	assert.Equal(t, "n1", push.Notification.ID)
	assert.Equal(t, ModeStreaming, sub.Mode())

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "n1", all[0].ID)
}

func TestOpenFailureFallsBackToPolling(t *testing.T) {
	feed := &fakeFeed{
		openErr: errors.New("stream unavailable"),
		list:    []model.Notification{{ID: "a"}, {ID: "b"}},
	}
	sub, s := newTestSubscriber(t, feed)

	cmd := sub.Start()

	msg := nextMsg(t, cmd)
	refreshed, ok := msg.(NotificationsRefreshedMsg)
	require.True(t, ok)
	assert.Equal(t, 2, refreshed.Count)
	assert.Equal(t, ModePolling, sub.Mode())
	assert.Len(t, s.All(), 2)
}

func TestStreamBreakFallsBackToPolling(t *testing.T) {
	stream := newFakeStream()
	feed := &fakeFeed{
		stream: stream,
		list:   []model.Notification{{ID: "refetched"}},
	}
	sub, s := newTestSubscriber(t, feed)

	cmd := sub.Start()

	go func() { stream.ch <- model.Notification{ID: "n1"} }()
	require.IsType(t, PushNotificationMsg{}, nextMsg(t, cmd))

	// Break the stream; the subscriber must degrade to polling and never
	// touch the stream again.
	stream.Close()

	msg := nextMsg(t, sub.WaitForNextEvent())
	require.IsType(t, NotificationsRefreshedMsg{}, msg)
	assert.Equal(t, ModePolling, sub.Mode())

	sub.mu.Lock()
	assert.Nil(t, sub.stream)
	sub.mu.Unlock()

	// The refetch replaced the streamed contents wholesale.
	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "refetched", all[0].ID)
}

func TestPollingRefetchErrorSkipsCycle(t *testing.T) {
	feed := &fakeFeed{
		openErr: errors.New("stream unavailable"),
		listErr: errors.New("backend down"),
	}
	sub, s := newTestSubscriber(t, feed)

	sub.Start()

	// Give the immediate refetch and at least one tick a chance to run.
	time.Sleep(250 * time.Millisecond)

	feed.mu.Lock()
	calls := feed.listCalls
	feed.mu.Unlock()
	assert.GreaterOrEqual(t, calls, 1)
	assert.Empty(t, s.All())
}

func TestStopTearsDownStream(t *testing.T) {
	stream := newFakeStream()
	feed := &fakeFeed{stream: stream}
	sub, _ := newTestSubscriber(t, feed)

	cmd := sub.Start()

	go func() { stream.ch <- model.Notification{ID: "n1"} }()
	nextMsg(t, cmd)

	sub.Stop()

	assert.True(t, stream.closed)
	sub.mu.Lock()
	assert.Nil(t, sub.stream)
	sub.mu.Unlock()
}

func TestStartIsIdempotent(t *testing.T) {
	feed := &fakeFeed{openErr: errors.New("stream unavailable")}
	sub, _ := newTestSubscriber(t, feed)

	first := sub.Start()
	require.NotNil(t, first)
	assert.Nil(t, sub.Start())
	nextMsg(t, first)
}
