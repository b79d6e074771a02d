package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdbricks/admin-console/internal/localdata"
	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/tests/testutil"
)

func notif(id string, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Title:     "Title " + id,
		Message:   "Message " + id,
		Type:      "info",
		Origin:    model.NotificationOriginServer,
		Read:      read,
		CreatedAt: time.Now(),
	}
}

func TestLoadEmpty(t *testing.T) {
	kv := testutil.NewTestKV(t)
	s := NewNotificationStore(kv, nil)

	s.Load()
	assert.Empty(t, s.All())
	assert.Equal(t, 0, s.UnreadCount())
}

func TestLoadMalformedYieldsEmpty(t *testing.T) {
	kv := testutil.NewTestKV(t)
	require.NoError(t, kv.Set(localdata.KeyNotifications, "{not json"))

	s := NewNotificationStore(kv, nil)
	s.Load()

	assert.Empty(t, s.All())
}

func TestPrependOrder(t *testing.T) {
	kv := testutil.NewTestKV(t)
	s := NewNotificationStore(kv, nil)

	s.Prepend(notif("n1", false))
	s.Prepend(notif("n2", false))
	s.Prepend(notif("n3", false))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "n3", all[0].ID)
	assert.Equal(t, "n2", all[1].ID)
	assert.Equal(t, "n1", all[2].ID)
}

func TestMarkRead(t *testing.T) {
	kv := testutil.NewTestKV(t)
	s := NewNotificationStore(kv, nil)

	s.Prepend(notif("n1", false))
	s.Prepend(notif("n2", false))
	require.Equal(t, 2, s.UnreadCount())

	s.MarkRead("n1")
	assert.Equal(t, 1, s.UnreadCount())

	// Marking again, or marking an unknown id, changes nothing.
	s.MarkRead("n1")
	s.MarkRead("missing")
	assert.Equal(t, 1, s.UnreadCount())

	all := s.All()
	assert.False(t, all[0].Read)
	assert.True(t, all[1].Read)
}

func TestMarkAllRead(t *testing.T) {
	kv := testutil.NewTestKV(t)
	s := NewNotificationStore(kv, nil)

	s.Prepend(notif("n1", false))
	s.Prepend(notif("n2", true))
	s.Prepend(notif("n3", false))

	s.MarkAllRead()
	assert.Equal(t, 0, s.UnreadCount())
	for _, n := range s.All() {
		assert.True(t, n.Read)
	}
}

func TestRemove(t *testing.T) {
	kv := testutil.NewTestKV(t)
	s := NewNotificationStore(kv, nil)

	s.Prepend(notif("n1", false))
	s.Prepend(notif("n2", false))

	s.Remove("n1")
	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "n2", all[0].ID)

	// Removing an unknown id is a no-op.
	s.Remove("missing")
	assert.Len(t, s.All(), 1)
}

func TestReplace(t *testing.T) {
	kv := testutil.NewTestKV(t)
	s := NewNotificationStore(kv, nil)

	s.Prepend(notif("old", false))
	s.Replace([]model.Notification{notif("a", true), notif("b", false)})

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestPersistenceAcrossInstances(t *testing.T) {
	kv := testutil.NewTestKV(t)

	s1 := NewNotificationStore(kv, nil)
	s1.Prepend(notif("n1", false))
	s1.MarkRead("n1")

	s2 := NewNotificationStore(kv, nil)
	s2.Load()

	all := s2.All()
	require.Len(t, all, 1)
	assert.Equal(t, "n1", all[0].ID)
	assert.True(t, all[0].Read)
}

func TestClear(t *testing.T) {
	kv := testutil.NewTestKV(t)
	s := NewNotificationStore(kv, nil)

	s.Prepend(notif("n1", false))
	s.Clear()
	assert.Empty(t, s.All())

	s2 := NewNotificationStore(kv, nil)
	s2.Load()
	assert.Empty(t, s2.All())
}
