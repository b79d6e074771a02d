package testutil

import (
	"testing"

	"github.com/crowdbricks/admin-console/internal/localdata"
)

// NewTestKV creates an in-memory SQLiteKV with all migrations applied.
// It automatically closes the database when the test completes.
func NewTestKV(t *testing.T) *localdata.SQLiteKV {
	t.Helper()

	kv, err := localdata.Open(":memory:")
	if err != nil {
		t.Fatalf("creating test kv: %v", err)
	}

	t.Cleanup(func() {
		if err := kv.Close(); err != nil {
			t.Errorf("closing test kv: %v", err)
		}
	})

	return kv
}
