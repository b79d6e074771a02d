package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// notificationMutatedMsg signals that a local notification mutation
// finished its best-effort backend call.
type notificationMutatedMsg struct{}

// notificationsReloadedMsg carries the result of a manual feed refetch.
type notificationsReloadedMsg struct {
	err error
}

// mutationTimeout bounds the best-effort backend call that follows a
// local mutation.
const mutationTimeout = 10 * time.Second

// Notification mutations are optimistic: the local store is updated
// first and the backend call follows best-effort. A backend failure is
// logged and never rolls the local state back.

// markNotificationRead marks one notification read locally, then on the
// backend.
func (m *Model) markNotificationRead(id string) tea.Cmd {
	m.store.MarkRead(id)
	m.audit.Record("notification.read", id)

	client := m.client
	log := m.log
	return func() tea.Msg {
		if client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
			defer cancel()
			if err := client.MarkNotificationRead(ctx, id); err != nil {
				log.Debug("backend mark-read failed",
					zap.String("id", id), zap.Error(err))
			}
		}
		return notificationMutatedMsg{}
	}
}

// markAllNotificationsRead marks every notification read locally, then
// on the backend.
func (m *Model) markAllNotificationsRead() tea.Cmd {
	m.store.MarkAllRead()
	m.audit.Record("notification.read-all", "")

	client := m.client
	log := m.log
	return func() tea.Msg {
		if client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
			defer cancel()
			if err := client.MarkAllNotificationsRead(ctx); err != nil {
				log.Debug("backend mark-all-read failed", zap.Error(err))
			}
		}
		return notificationMutatedMsg{}
	}
}

// deleteNotification removes a notification locally, then on the backend.
func (m *Model) deleteNotification(id string) tea.Cmd {
	m.store.Remove(id)
	m.audit.Record("notification.delete", id)

	client := m.client
	log := m.log
	return func() tea.Msg {
		if client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
			defer cancel()
			if err := client.DeleteNotification(ctx, id); err != nil {
				log.Debug("backend delete failed",
					zap.String("id", id), zap.Error(err))
			}
		}
		return notificationMutatedMsg{}
	}
}

// reloadNotifications refetches the full feed and replaces the store.
// Unlike the mutations above, a failure here is surfaced as a toast.
func (m *Model) reloadNotifications() tea.Cmd {
	client := m.client
	s := m.store
	return func() tea.Msg {
		if client == nil {
			return notificationsReloadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		list, err := client.ListNotifications(ctx)
		if err != nil {
			return notificationsReloadedMsg{err: err}
		}
		s.Replace(list)
		return notificationsReloadedMsg{}
	}
}
