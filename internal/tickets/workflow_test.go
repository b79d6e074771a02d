package tickets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdbricks/admin-console/internal/api"
	"github.com/crowdbricks/admin-console/internal/model"
)

// fakeAPI records calls and returns configurable results.
type fakeAPI struct {
	listCalls    int
	listResult   []model.Ticket
	listErr      error
	getResult    *model.Ticket
	respondCalls int
	respondErr   error
	statusCalls  int
	statusErr    error
	statusSet    model.TicketStatus
	countCalls   int
	countResult  int
	countErr     error
}

func (f *fakeAPI) ListTickets(context.Context, api.TicketFilter) ([]model.Ticket, error) {
	f.listCalls++
	return f.listResult, f.listErr
}

func (f *fakeAPI) GetTicket(context.Context, string) (*model.Ticket, error) {
	return f.getResult, nil
}

func (f *fakeAPI) RespondTicket(context.Context, string, string) error {
	f.respondCalls++
	return f.respondErr
}

func (f *fakeAPI) SetTicketStatus(_ context.Context, _ string, status model.TicketStatus) error {
	f.statusCalls++
	f.statusSet = status
	return f.statusErr
}

func (f *fakeAPI) UnreadTicketCount(context.Context) (int, error) {
	f.countCalls++
	return f.countResult, f.countErr
}

func TestRespondRefetchesListAndCount(t *testing.T) {
	backend := &fakeAPI{
		listResult:  []model.Ticket{{ID: "t1"}},
		countResult: 7,
	}
	w := NewWorkflow(backend, nil)

	result, err := w.Respond(context.Background(), "t1", "On it.")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.respondCalls)
	assert.Equal(t, 1, backend.listCalls)
	assert.Equal(t, 1, backend.countCalls)

	require.NotNil(t, result)
	assert.Equal(t, []model.Ticket{{ID: "t1"}}, result.Tickets)
	assert.Equal(t, 7, result.UnreadCount)
}

func TestRespondFailureSkipsRefetches(t *testing.T) {
	backend := &fakeAPI{respondErr: errors.New("rejected")}
	w := NewWorkflow(backend, nil)

	_, err := w.Respond(context.Background(), "t1", "On it.")
	require.Error(t, err)

	assert.Equal(t, 0, backend.listCalls)
	assert.Equal(t, 0, backend.countCalls)
}

func TestRespondToleratesRefetchFailures(t *testing.T) {
	backend := &fakeAPI{
		listErr:  errors.New("list down"),
		countErr: errors.New("count down"),
	}
	w := NewWorkflow(backend, nil)

	result, err := w.Respond(context.Background(), "t1", "On it.")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Nil(t, result.Tickets)
	assert.Zero(t, result.UnreadCount)
}

func TestSetStatusValidTransition(t *testing.T) {
	backend := &fakeAPI{}
	w := NewWorkflow(backend, nil)

	ticket := model.Ticket{ID: "t1", Status: model.TicketStatusOpen}
	err := w.SetStatus(context.Background(), ticket, model.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.statusCalls)
	assert.Equal(t, model.TicketStatusInProgress, backend.statusSet)
}

func TestSetStatusInvalidTransitionNeverHitsBackend(t *testing.T) {
	backend := &fakeAPI{}
	w := NewWorkflow(backend, nil)

	ticket := model.Ticket{ID: "t1", Status: model.TicketStatusOpen}
	err := w.SetStatus(context.Background(), ticket, model.TicketStatusResolved)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, backend.statusCalls)
}

func TestSetStatusClosedFromAnyState(t *testing.T) {
	for _, from := range []model.TicketStatus{
		model.TicketStatusOpen,
		model.TicketStatusInProgress,
		model.TicketStatusResolved,
	} {
		backend := &fakeAPI{}
		w := NewWorkflow(backend, nil)

		ticket := model.Ticket{ID: "t1", Status: from}
		err := w.SetStatus(context.Background(), ticket, model.TicketStatusClosed)
		require.NoError(t, err, "from %s", from)
		assert.Equal(t, 1, backend.statusCalls)
	}
}

func TestSetStatusReopenClosedRejected(t *testing.T) {
	backend := &fakeAPI{}
	w := NewWorkflow(backend, nil)

	ticket := model.Ticket{ID: "t1", Status: model.TicketStatusClosed}
	err := w.SetStatus(context.Background(), ticket, model.TicketStatusOpen)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, backend.statusCalls)
}
