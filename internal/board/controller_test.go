package board

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvu/careboard/internal/api"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/store"
	"github.com/tvu/careboard/internal/watch"
	"github.com/tvu/careboard/tests/testutil"
)

// fakeBackend is an in-memory stand-in for the EMR task service.
type fakeBackend struct {
	mu     sync.Mutex
	tasks  map[int64]model.Task
	order  []int64
	nextID int64

	failList    bool
	createCalls int
	updateCalls int
	deleteCalls int
	lastCreated model.Task
	lastUpdated model.Task
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{tasks: make(map[int64]model.Task)}
}

func (f *fakeBackend) seed(t model.Task) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	t.ID = f.nextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().Add(-time.Hour)
	}
	f.tasks[t.ID] = t
	f.order = append(f.order, t.ID)
	return t
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			if f.failList {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"detail": "database unavailable"})
				return
			}
			out := make([]model.Task, 0, len(f.order))
			for _, id := range f.order {
				out = append(out, f.tasks[id])
			}
			json.NewEncoder(w).Encode(out)

		case http.MethodPost:
			var t model.Task
			if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.createCalls++
			f.nextID++
			t.ID = f.nextID
			t.CreatedAt = time.Now()
			f.tasks[t.ID] = t
			f.order = append(f.order, t.ID)
			f.lastCreated = t
			json.NewEncoder(w).Encode(t)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/tasks/"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		switch r.Method {
		case http.MethodPut:
			var t model.Task
			if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.updateCalls++
			t.ID = id
			f.tasks[id] = t
			f.lastUpdated = t
			json.NewEncoder(w).Encode(t)

		case http.MethodDelete:
			f.deleteCalls++
			delete(f.tasks, id)
			for i, oid := range f.order {
				if oid == id {
					f.order = append(f.order[:i], f.order[i+1:]...)
					break
				}
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	return mux
}

func newTestController(t *testing.T) (*Controller, *fakeBackend, *store.SQLiteStore) {
	t.Helper()

	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	s := testutil.NewTestStore(t)
	w := watch.New(s, watch.DefaultScanInterval)
	ctrl := New(api.NewClient(server.URL, "test-token"), s, w)
	return ctrl, backend, s
}

func TestRefreshReplacesViewAndCounts(t *testing.T) {
	ctrl, backend, _ := newTestController(t)
	ctx := context.Background()

	backend.seed(model.Task{Title: "Draw labs", Status: model.StatusTodo, Priority: model.PriorityHigh})
	backend.seed(model.Task{Title: "Chart review", Status: model.StatusTodo, Priority: model.PriorityLow})
	backend.seed(model.Task{Title: "Rounds", Status: model.StatusInProgress, Priority: model.PriorityMedium})

	require.NoError(t, ctrl.Refresh(ctx))

	assert.Len(t, ctrl.Tasks(), 3)
	counts := ctrl.Counts()
	assert.Equal(t, 2, counts[model.StatusTodo])
	assert.Equal(t, 1, counts[model.StatusInProgress])
	assert.Len(t, ctrl.TasksByStatus(model.StatusTodo), 2)
}

func TestRefreshFailureKeepsPriorView(t *testing.T) {
	ctrl, backend, _ := newTestController(t)
	ctx := context.Background()

	backend.seed(model.Task{Title: "Draw labs", Status: model.StatusTodo})
	require.NoError(t, ctrl.Refresh(ctx))

	backend.failList = true
	err := ctrl.Refresh(ctx)
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "database unavailable", apiErr.Detail)
	assert.Len(t, ctrl.Tasks(), 1, "prior view must survive a failed refresh")
}

func TestCreateRequiresTitle(t *testing.T) {
	ctrl, backend, _ := newTestController(t)

	err := ctrl.Create(context.Background(), Draft{Title: "   "})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
	assert.Zero(t, backend.createCalls, "validation failures must not reach the network")
}

func TestCreateCombinesDueDateAndTime(t *testing.T) {
	ctrl, backend, _ := newTestController(t)

	require.NoError(t, ctrl.Create(context.Background(), Draft{
		Title:       "Draw labs",
		Priority:    model.PriorityHigh,
		DueDate:     "2026-04-01",
		DueTime:     "14:30",
		NotifyOnDue: true,
		Tags:        []string{" stat ", "", "lab"},
	}))

	require.NotNil(t, backend.lastCreated.DueDate)
	want := time.Date(2026, 4, 1, 14, 30, 0, 0, time.Local)
	assert.True(t, backend.lastCreated.DueDate.Equal(want))
	assert.Equal(t, model.StatusTodo, backend.lastCreated.Status)
	assert.Equal(t, []string{"stat", "lab"}, backend.lastCreated.Tags)
}

func TestCreateDateOnlyDefaultsToMidnight(t *testing.T) {
	ctrl, backend, _ := newTestController(t)

	require.NoError(t, ctrl.Create(context.Background(), Draft{
		Title:   "Chart review",
		DueDate: "2026-04-01",
	}))

	require.NotNil(t, backend.lastCreated.DueDate)
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)
	assert.True(t, backend.lastCreated.DueDate.Equal(want))
	assert.Equal(t, model.PriorityMedium, backend.lastCreated.Priority)
}

func TestAdvanceTodoStartsTask(t *testing.T) {
	ctrl, backend, s := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusTodo})
	require.NoError(t, ctrl.Refresh(ctx))

	require.NoError(t, ctrl.Advance(ctx, seeded.ID))

	assert.Equal(t, model.StatusInProgress, backend.lastUpdated.Status)
	assert.Nil(t, backend.lastUpdated.CompletedAt, "starting a task must not stamp completion")

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, notifications, "only the done transition notifies")
}

func TestAdvanceInProgressCompletesTask(t *testing.T) {
	ctrl, backend, s := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusInProgress})
	require.NoError(t, ctrl.Refresh(ctx))

	require.NoError(t, ctrl.Advance(ctx, seeded.ID))

	assert.Equal(t, model.StatusDone, backend.lastUpdated.Status)
	require.NotNil(t, backend.lastUpdated.CompletedAt)
	assert.False(t, backend.lastUpdated.CompletedAt.Before(seeded.CreatedAt))

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Task Completed", notifications[0].Title)
	assert.Equal(t, model.NotificationTask, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "Draw labs")
}

func TestCompletionNotificationSurvivesFailedRefresh(t *testing.T) {
	ctrl, backend, s := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusInProgress})
	require.NoError(t, ctrl.Refresh(ctx))

	backend.failList = true
	err := ctrl.Advance(ctx, seeded.ID)
	require.Error(t, err, "the failed refresh still surfaces")

	assert.Equal(t, model.StatusDone, backend.lastUpdated.Status,
		"the transition was persisted before the refresh")

	notifications, nerr := s.Notifications(ctx)
	require.NoError(t, nerr)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Task Completed", notifications[0].Title)
}

func TestAdvanceTerminalStatusRejectedBeforeNetwork(t *testing.T) {
	ctrl, backend, s := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusDone})
	require.NoError(t, ctrl.Refresh(ctx))

	err := ctrl.Advance(ctx, seeded.ID)

	var transErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, model.StatusDone, transErr.From)
	assert.Zero(t, backend.updateCalls, "rejected transitions must not reach the network")

	notifications, nerr := s.Notifications(ctx)
	require.NoError(t, nerr)
	assert.Empty(t, notifications)
}

func TestChangeStatusBackwardRejected(t *testing.T) {
	ctrl, backend, _ := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusInProgress})
	require.NoError(t, ctrl.Refresh(ctx))

	err := ctrl.ChangeStatus(ctx, seeded.ID, model.StatusTodo)

	var transErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Zero(t, backend.updateCalls)
}

func TestCancelIsExplicitAction(t *testing.T) {
	ctrl, backend, _ := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusTodo})
	require.NoError(t, ctrl.Refresh(ctx))

	// The forward table never offers cancelled...
	err := ctrl.ChangeStatus(ctx, seeded.ID, model.StatusCancelled)
	var transErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)

	// ...but the explicit cancel action reaches it.
	require.NoError(t, ctrl.Cancel(ctx, seeded.ID))
	assert.Equal(t, model.StatusCancelled, backend.lastUpdated.Status)

	err = ctrl.Cancel(ctx, seeded.ID)
	require.ErrorAs(t, err, &transErr, "cancelled is terminal")
}

func TestDelayMovesDueDateAndClearsMarkers(t *testing.T) {
	ctrl, backend, s := newTestController(t)
	ctx := context.Background()

	due := time.Now().Add(-10 * time.Minute).Truncate(time.Second)
	seeded := backend.seed(model.Task{
		Title: "Draw labs", Status: model.StatusTodo,
		DueDate: &due, NotifyOnDue: true,
	})
	require.NoError(t, ctrl.Refresh(ctx))

	// Simulate a prior overdue alert.
	require.NoError(t, s.SetMarker(ctx, seeded.ID, watch.MarkerOverdue))

	require.NoError(t, ctrl.Delay(ctx, seeded.ID, 30))

	require.NotNil(t, backend.lastUpdated.DueDate)
	assert.True(t, backend.lastUpdated.DueDate.Equal(due.Add(30*time.Minute)))

	seen, err := s.HasMarker(ctx, seeded.ID, watch.MarkerOverdue)
	require.NoError(t, err)
	assert.False(t, seen, "delay re-arms due notifications")

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Task Delayed", notifications[0].Title)
	assert.Equal(t, model.NotificationInfo, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "30 minutes")
}

func TestDelayWithoutDueDateIsNoop(t *testing.T) {
	ctrl, backend, _ := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusTodo})
	require.NoError(t, ctrl.Refresh(ctx))

	require.NoError(t, ctrl.Delay(ctx, seeded.ID, 30))
	assert.Zero(t, backend.updateCalls)
}

func TestDeleteDeclinedNeverCallsBackend(t *testing.T) {
	ctrl, backend, _ := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusTodo})
	require.NoError(t, ctrl.Refresh(ctx))

	require.NoError(t, ctrl.Delete(ctx, seeded.ID, func() bool { return false }))

	assert.Zero(t, backend.deleteCalls)
	assert.Len(t, ctrl.Tasks(), 1)
}

func TestDeleteConfirmedRemovesTask(t *testing.T) {
	ctrl, backend, _ := newTestController(t)
	ctx := context.Background()

	seeded := backend.seed(model.Task{Title: "Draw labs", Status: model.StatusTodo})
	require.NoError(t, ctrl.Refresh(ctx))

	require.NoError(t, ctrl.Delete(ctx, seeded.ID, func() bool { return true }))

	assert.Equal(t, 1, backend.deleteCalls)
	assert.Empty(t, ctrl.Tasks())
}
