package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDAcceptsStringAndNumber(t *testing.T) {
	var w wireNotification
	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc-123"}`), &w))
	assert.Equal(t, "abc-123", string(w.ID))

	require.NoError(t, json.Unmarshal([]byte(`{"id": 42}`), &w))
	assert.Equal(t, "42", string(w.ID))
}

func TestFlexTimeLayouts(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			"rfc3339 with fraction",
			`"2026-03-15T09:30:00.250Z"`,
			time.Date(2026, 3, 15, 9, 30, 0, 250000000, time.UTC),
		},
		{
			"rfc3339",
			`"2026-03-15T09:30:00Z"`,
			time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			"space separated",
			`"2026-03-15 09:30:00"`,
			time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			"date only",
			`"2026-03-15"`,
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexTime
			require.NoError(t, json.Unmarshal([]byte(tt.value), &f))
			assert.True(t, tt.want.Equal(f.Time), "got %v", f.Time)
		})
	}
}

func TestFlexTimeUnparseableIsZero(t *testing.T) {
	var f flexTime
	require.NoError(t, json.Unmarshal([]byte(`"next tuesday"`), &f))
	assert.True(t, f.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &f))
	assert.True(t, f.IsZero())
}

func TestNotificationBodyFieldVariants(t *testing.T) {
	var w wireNotification
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": "n1", "body": "from body"}`), &w))
	assert.Equal(t, "from body", w.toModel().Message)

	w = wireNotification{}
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": "n1", "message": "from message"}`), &w))
	assert.Equal(t, "from message", w.toModel().Message)
}

func TestNotificationTimestampFallback(t *testing.T) {
	var w wireNotification
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": "n1", "timestamp": "2026-03-15T09:30:00Z"}`), &w))

	n := w.toModel()
	assert.Equal(t,
		time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC), n.CreatedAt.UTC())
}
