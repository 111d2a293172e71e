package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.RiskChangedEvent
	err    error
}

func (p *recordingPublisher) PublishRiskChange(_ context.Context, ev websocket.RiskChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type testEnv struct {
	stores        *repository.Stores
	publisher     *recordingPublisher
	recalculation *RiskRecalculationService
	checkins      *CheckinService
	students      *StudentService
	interventions *InterventionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	stores := repository.NewMemoryStores()
	pub := &recordingPublisher{}
	recalc := NewRiskRecalculationService(stores.Students, stores.Checkins, pub, zerolog.Nop())
	return &testEnv{
		stores:        stores,
		publisher:     pub,
		recalculation: recalc,
		checkins:      NewCheckinService(stores.Checkins, recalc, zerolog.Nop()),
		students:      NewStudentService(stores.Students, recalc, zerolog.Nop()),
		interventions: NewInterventionService(stores.Interventions, stores.FollowUps, stores.Students, zerolog.Nop()),
	}
}

func intPtr(v int) *int { return &v }

// putStudent stores a student directly, bypassing recalculation, so tests can
// start from a stale cached index.
func (e *testEnv) putStudent(t *testing.T, s model.Student) {
	t.Helper()
	require.NoError(t, e.stores.Students.Create(context.Background(), &s))
}

func (e *testEnv) riskOf(t *testing.T, id string) int {
	t.Helper()
	s, err := e.stores.Students.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s.RiskIndex
}

func TestOnCheckinIngested_UnknownStudentIsSkipped(t *testing.T) {
	env := newTestEnv(t)

	err := env.recalculation.OnCheckinIngested(context.Background(), &model.Checkin{
		StudentID: "ghost", WeekNumber: 46, Motivation: 5, Stress: 5,
	})

	assert.NoError(t, err)
	assert.Empty(t, env.publisher.events)
}

func TestRecalculateStudent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.putStudent(t, model.Student{ID: "student-3", AverageGrade: 45, Attendance: 58, AVAParticipation: 3})
	for _, c := range []model.Checkin{
		{StudentID: "student-3", WeekNumber: 46, Motivation: 2, Stress: 9},
		{StudentID: "student-3", WeekNumber: 45, Motivation: 3, Stress: 9},
	} {
		require.NoError(t, env.stores.Checkins.Append(ctx, &c))
	}

	updated, err := env.recalculation.RecalculateStudent(ctx, "student-3")
	require.NoError(t, err)
	assert.Equal(t, 69, updated.RiskIndex)
	assert.Equal(t, 69, env.riskOf(t, "student-3"))

	require.Len(t, env.publisher.events, 1)
	ev := env.publisher.events[0]
	assert.Equal(t, websocket.EventRiskChanged, ev.Event)
	assert.Equal(t, 0, ev.PreviousIndex)
	assert.Equal(t, 69, ev.RiskIndex)
	assert.Equal(t, "high", ev.Level)
	assert.Equal(t, "Alto Risco", ev.Label)

	t.Run("unchanged index publishes nothing", func(t *testing.T) {
		_, err := env.recalculation.RecalculateStudent(ctx, "student-3")
		require.NoError(t, err)
		assert.Len(t, env.publisher.events, 1)
	})

	t.Run("unknown student is not found", func(t *testing.T) {
		_, err := env.recalculation.RecalculateStudent(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRecalculateStudent_PublishFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("redis down")
	env.putStudent(t, model.Student{ID: "s", AverageGrade: 100, Attendance: 100, AVAParticipation: 20})

	updated, err := env.recalculation.RecalculateStudent(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, 20, updated.RiskIndex)
}

func TestRecalculateAll_RepairsStaleCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.putStudent(t, model.Student{ID: "a", Name: "A", AverageGrade: 100, Attendance: 100, AVAParticipation: 20, RiskIndex: 99})
	env.putStudent(t, model.Student{ID: "b", Name: "B", AverageGrade: 100, Attendance: 100, AVAParticipation: 20, RiskIndex: 0})
	env.putStudent(t, model.Student{ID: "c", Name: "C", AverageGrade: 100, Attendance: 100, AVAParticipation: 20, RiskIndex: 20})
	require.NoError(t, env.stores.Checkins.Append(ctx, &model.Checkin{StudentID: "b", WeekNumber: 1, Motivation: 10, Stress: 0}))

	result, err := env.recalculation.RecalculateAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 1, result.Changed)
	assert.Equal(t, 20, env.riskOf(t, "a"))
	assert.Equal(t, 0, env.riskOf(t, "b"))
	assert.Equal(t, 20, env.riskOf(t, "c"))
}

func TestRecalculateMany_SkipsUnknownIDs(t *testing.T) {
	env := newTestEnv(t)
	env.putStudent(t, model.Student{ID: "a", AverageGrade: 100, Attendance: 100, AVAParticipation: 20, RiskIndex: 99})

	result, err := env.recalculation.RecalculateMany(context.Background(), []string{"a", "ghost"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Changed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 20, env.riskOf(t, "a"))
}

type sliceQueue struct{ ids []string }

func (q *sliceQueue) Enqueue(_ context.Context, ids ...string) error {
	q.ids = append(q.ids, ids...)
	return nil
}

func TestEnqueueAll(t *testing.T) {
	env := newTestEnv(t)
	env.putStudent(t, model.Student{ID: "a", Name: "A"})
	env.putStudent(t, model.Student{ID: "b", Name: "B"})
	q := &sliceQueue{}

	n, err := env.recalculation.EnqueueAll(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"a", "b"}, q.ids)
}
