package store

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/crowdbricks/admin-console/internal/localdata"
	"github.com/crowdbricks/admin-console/internal/model"
)

// NotificationStore is the single source of truth for notification state
// within an admin session: an in-memory list, newest first, mirrored to
// durable local storage after every mutation.
//
// Multiple producers (the push subscriber, its polling fallback, and the
// unread-count reconciler) mutate the store on independent timers. Each
// operation is atomic; Replace is last-writer-wins by contract.
type NotificationStore struct {
	mu    sync.Mutex
	items []model.Notification
	kv    localdata.KV
	log   *zap.Logger
}

// NewNotificationStore creates a store backed by kv. Pass zap.NewNop()
// when logging is not wanted.
func NewNotificationStore(kv localdata.KV, log *zap.Logger) *NotificationStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationStore{kv: kv, log: log}
}

// Load reads the persisted list from local storage. Absent or malformed
// data yields an empty list; parse failures are swallowed, not surfaced.
func (s *NotificationStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	raw, ok, err := s.kv.Get(localdata.KeyNotifications)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("loading persisted notifications", zap.Error(err))
		}
		return
	}

	var items []model.Notification
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("discarding malformed persisted notifications", zap.Error(err))
		return
	}
	s.items = items
}

// All returns a copy of the current list, newest first.
func (s *NotificationStore) All() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the number of unread entries.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Replace overwrites the in-memory and persisted state wholesale.
// Used after a full refetch from the backend.
func (s *NotificationStore) Replace(items []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]model.Notification, len(items))
	copy(s.items, items)
	s.persistLocked()
}

// Prepend inserts a new notification at the head, preserving all others.
func (s *NotificationStore) Prepend(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]model.Notification{n}, s.items...)
	s.persistLocked()
}

// MarkRead sets read=true on the entry with the given id. Marking an
// already-read or absent entry is a no-op.
func (s *NotificationStore) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			break
		}
	}
	s.persistLocked()
}

// MarkAllRead sets read=true on every entry.
func (s *NotificationStore) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
	s.persistLocked()
}

// Remove deletes the entry with the given id.
func (s *NotificationStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.persistLocked()
}

// Clear removes every entry.
func (s *NotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persistLocked()
}

// persistLocked writes the current list to local storage. The in-memory
// mutation always happens first; a persistence failure is logged and the
// in-memory state stands (store-then-persist, never persist-without-store).
func (s *NotificationStore) persistLocked() {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.log.Warn("marshaling notifications for persistence", zap.Error(err))
		return
	}
	if err := s.kv.Set(localdata.KeyNotifications, string(data)); err != nil {
		s.log.Warn("persisting notifications", zap.Error(err))
	}
}
