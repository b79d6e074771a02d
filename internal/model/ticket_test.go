package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from TicketStatus
		to   TicketStatus
		want bool
	}{
		{"open to in_progress", TicketStatusOpen, TicketStatusInProgress, true},
		{"in_progress to resolved", TicketStatusInProgress, TicketStatusResolved, true},
		{"open to resolved skips a step", TicketStatusOpen, TicketStatusResolved, false},
		{"resolved is terminal forward", TicketStatusResolved, TicketStatusInProgress, false},
		{"no reopening", TicketStatusInProgress, TicketStatusOpen, false},
		{"open to closed", TicketStatusOpen, TicketStatusClosed, true},
		{"in_progress to closed", TicketStatusInProgress, TicketStatusClosed, true},
		{"resolved to closed", TicketStatusResolved, TicketStatusClosed, true},
		{"closed stays closed", TicketStatusClosed, TicketStatusClosed, false},
		{"closed cannot reopen", TicketStatusClosed, TicketStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t,
		[]TicketStatus{TicketStatusInProgress, TicketStatusClosed},
		NextStatuses(TicketStatusOpen))

	assert.Equal(t,
		[]TicketStatus{TicketStatusResolved, TicketStatusClosed},
		NextStatuses(TicketStatusInProgress))

	assert.Equal(t,
		[]TicketStatus{TicketStatusClosed},
		NextStatuses(TicketStatusResolved))

	assert.Empty(t, NextStatuses(TicketStatusClosed))
}
