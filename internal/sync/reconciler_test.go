package sync

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdbricks/admin-console/internal/store"
	"github.com/crowdbricks/admin-console/tests/testutil"
)

// fakeCountSource returns queued counts (or errors) in order, repeating
// the last entry when exhausted.
type fakeCountSource struct {
	counts []int
	errs   []error
	calls  int
}

func (f *fakeCountSource) UnreadTicketCount(context.Context) (int, error) {
	i := f.calls
	if i >= len(f.counts) {
		i = len(f.counts) - 1
	}
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return 0, f.errs[i]
	}
	return f.counts[i], nil
}

func newTestReconciler(t *testing.T, source CountSource) (*Reconciler, *store.NotificationStore) {
	t.Helper()
	s := store.NewNotificationStore(testutil.NewTestKV(t), nil)
	return NewReconciler(source, s, 0, nil), s
}

// drain pulls one pending message without blocking.
func drain(ch chan tea.Msg) tea.Msg {
	select {
	case msg := <-ch:
		return msg
	default:
		return nil
	}
}

func TestCountIncreaseSynthesizesNotification(t *testing.T) {
	source := &fakeCountSource{counts: []int{5}}
	r, s := newTestReconciler(t, source)

	r.tick()

	msg := drain(r.resultCh)
	require.NotNil(t, msg)
	activity, ok := msg.(SupportActivityMsg)
	require.True(t, ok)
	assert.Equal(t, 5, activity.Count)
	assert.Equal(t, "New Support Message", activity.Notification.Title)
	assert.Equal(t, "You have 5 unread support messages", activity.Notification.Message)
	assert.Equal(t, "info", activity.Notification.Type)
	assert.NotEmpty(t, activity.Notification.ID)

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, activity.Notification.ID, all[0].ID)
}

func TestSingularMessageWording(t *testing.T) {
	source := &fakeCountSource{counts: []int{1}}
	r, _ := newTestReconciler(t, source)

	r.tick()

	msg := drain(r.resultCh)
	require.NotNil(t, msg)
	activity := msg.(SupportActivityMsg)
	assert.Equal(t, "You have 1 unread support message", activity.Notification.Message)
}

func TestUnchangedCountDoesNotAlert(t *testing.T) {
	source := &fakeCountSource{counts: []int{3, 3}}
	r, s := newTestReconciler(t, source)

	r.tick()
	require.NotNil(t, drain(r.resultCh))

	r.tick()
	assert.Nil(t, drain(r.resultCh))
	assert.Len(t, s.All(), 1)
}

func TestDecreasedCountDoesNotAlert(t *testing.T) {
	source := &fakeCountSource{counts: []int{4, 2}}
	r, s := newTestReconciler(t, source)

	r.tick()
	require.NotNil(t, drain(r.resultCh))

	r.tick()
	assert.Nil(t, drain(r.resultCh))
	assert.Len(t, s.All(), 1)
}

func TestSnapshotFollowsEverySuccessfulFetch(t *testing.T) {
	// After a drop the snapshot tracks the lower value, so a later rise
	// above it alerts even though it stays below the session maximum.
	source := &fakeCountSource{counts: []int{5, 2, 3}}
	r, s := newTestReconciler(t, source)

	r.tick() // 0 -> 5: alert
	require.NotNil(t, drain(r.resultCh))

	r.tick() // 5 -> 2: silent
	assert.Nil(t, drain(r.resultCh))

	r.tick() // 2 -> 3: alert
	msg := drain(r.resultCh)
	require.NotNil(t, msg)
	assert.Equal(t, 3, msg.(SupportActivityMsg).Count)
	assert.Len(t, s.All(), 2)
}

func TestFetchErrorSkipsCycle(t *testing.T) {
	source := &fakeCountSource{
		counts: []int{5, 0, 5},
		errs:   []error{nil, errors.New("backend down"), nil},
	}
	r, s := newTestReconciler(t, source)

	r.tick() // 0 -> 5: alert
	require.NotNil(t, drain(r.resultCh))

	r.tick() // error: state untouched
	assert.Nil(t, drain(r.resultCh))

	r.tick() // still 5, previous snapshot still 5: silent
	assert.Nil(t, drain(r.resultCh))
	assert.Len(t, s.All(), 1)
}

func TestZeroCountNeverAlerts(t *testing.T) {
	source := &fakeCountSource{counts: []int{0, 0}}
	r, s := newTestReconciler(t, source)

	r.tick()
	r.tick()
	assert.Nil(t, drain(r.resultCh))
	assert.Empty(t, s.All())
}
