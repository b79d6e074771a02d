package store

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crowdbricks/admin-console/internal/localdata"
)

// maxAuditEntries caps the persisted audit log; older entries roll off.
const maxAuditEntries = 200

// AuditEntry records a single admin action taken in this console.
type AuditEntry struct {
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditLog is a persisted, size-capped log of admin actions. Like the
// notification store it is local-only: the backend keeps its own
// authoritative records.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	kv      localdata.KV
	log     *zap.Logger
}

// NewAuditLog creates an audit log backed by kv.
func NewAuditLog(kv localdata.KV, log *zap.Logger) *AuditLog {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLog{kv: kv, log: log}
}

// Load reads persisted entries. Malformed data is discarded silently.
func (a *AuditLog) Load() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = nil

	raw, ok, err := a.kv.Get(localdata.KeyAuditLog)
	if err != nil || !ok {
		return
	}

	var entries []AuditEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		a.log.Warn("discarding malformed audit log", zap.Error(err))
		return
	}
	a.entries = entries
}

// Record appends an entry and persists, trimming to the cap.
func (a *AuditLog) Record(action, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = append(a.entries, AuditEntry{
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now(),
	})
	if len(a.entries) > maxAuditEntries {
		a.entries = a.entries[len(a.entries)-maxAuditEntries:]
	}

	data, err := json.Marshal(a.entries)
	if err != nil {
		a.log.Warn("marshaling audit log", zap.Error(err))
		return
	}
	if err := a.kv.Set(localdata.KeyAuditLog, string(data)); err != nil {
		a.log.Warn("persisting audit log", zap.Error(err))
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (a *AuditLog) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out
}
