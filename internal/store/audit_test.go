package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdbricks/admin-console/internal/localdata"
	"github.com/crowdbricks/admin-console/tests/testutil"
)

func TestAuditRecordAndReload(t *testing.T) {
	kv := testutil.NewTestKV(t)

	a := NewAuditLog(kv, nil)
	a.Record("notification.read", "n1")
	a.Record("ticket.respond", "t42")

	reloaded := NewAuditLog(kv, nil)
	reloaded.Load()

	entries := reloaded.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "notification.read", entries[0].Action)
	assert.Equal(t, "n1", entries[0].Detail)
	assert.Equal(t, "ticket.respond", entries[1].Action)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAuditCapsEntries(t *testing.T) {
	kv := testutil.NewTestKV(t)
	a := NewAuditLog(kv, nil)

	for i := 0; i < maxAuditEntries+25; i++ {
		a.Record("action", fmt.Sprintf("detail-%d", i))
	}

	entries := a.Entries()
	require.Len(t, entries, maxAuditEntries)
	// Oldest entries rolled off.
	assert.Equal(t, "detail-25", entries[0].Detail)
}

func TestAuditLoadMalformed(t *testing.T) {
	kv := testutil.NewTestKV(t)
	require.NoError(t, kv.Set(localdata.KeyAuditLog, "not json"))

	a := NewAuditLog(kv, nil)
	a.Load()
	assert.Empty(t, a.Entries())
}
