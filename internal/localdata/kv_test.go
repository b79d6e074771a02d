package localdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *SQLiteKV {
	t.Helper()

	kv, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestGetMissingKey(t *testing.T) {
	kv := newTestKV(t)

	_, ok, err := kv.Get("never-set")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetGetRoundTrip(t *testing.T) {
	kv := newTestKV(t)

	require.NoError(t, kv.Set(KeyNotifications, `[{"id":"n1"}]`))

	value, ok, err := kv.Get(KeyNotifications)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"n1"}]`, value)
}

func TestSetReplacesValue(t *testing.T) {
	kv := newTestKV(t)

	require.NoError(t, kv.Set(KeyTheme, "default"))
	require.NoError(t, kv.Set(KeyTheme, "dark"))

	value, ok, err := kv.Get(KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)
}

func TestDelete(t *testing.T) {
	kv := newTestKV(t)

	require.NoError(t, kv.Set(KeyAuditLog, "[]"))
	require.NoError(t, kv.Delete(KeyAuditLog))

	_, ok, err := kv.Get(KeyAuditLog)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, kv.Delete(KeyAuditLog))
}
