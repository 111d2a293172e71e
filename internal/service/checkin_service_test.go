package service

import (
	"context"
	"testing"

	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkinRequest(studentID string, week, motivation, stress int) model.SubmitCheckinRequest {
	return model.SubmitCheckinRequest{
		StudentID:    studentID,
		WeekNumber:   week,
		Motivation:   intPtr(motivation),
		Stress:       intPtr(stress),
		Focus:        intPtr(5),
		Organization: intPtr(5),
	}
}

func TestCheckinService_SubmitUpdatesOnlyOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.putStudent(t, model.Student{ID: "x", AverageGrade: 100, Attendance: 100, AVAParticipation: 20, RiskIndex: 20})
	env.putStudent(t, model.Student{ID: "y", AverageGrade: 100, Attendance: 100, AVAParticipation: 20, RiskIndex: 77})

	c, err := env.checkins.Submit(ctx, checkinRequest("x", 46, 10, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	assert.Equal(t, 0, env.riskOf(t, "x"))
	assert.Equal(t, 77, env.riskOf(t, "y"))
}

func TestCheckinService_SubmitUsesHighestWeek(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.putStudent(t, model.Student{ID: "x", AverageGrade: 100, Attendance: 100, AVAParticipation: 20})

	_, err := env.checkins.Submit(ctx, checkinRequest("x", 46, 10, 0))
	require.NoError(t, err)
	// A late report for an older week must not override week 46.
	_, err = env.checkins.Submit(ctx, checkinRequest("x", 44, 0, 10))
	require.NoError(t, err)

	assert.Equal(t, 0, env.riskOf(t, "x"))
}

func TestCheckinService_SubmitForUnknownStudent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	c, err := env.checkins.Submit(ctx, checkinRequest("ghost", 3, 5, 5))
	require.NoError(t, err)

	stored, err := env.checkins.ListByStudent(ctx, "ghost")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, c.ID, stored[0].ID)
}

func TestCheckinService_SubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.SubmitCheckinRequest)
	}{
		{"missing student", func(r *model.SubmitCheckinRequest) { r.StudentID = "" }},
		{"week zero", func(r *model.SubmitCheckinRequest) { r.WeekNumber = 0 }},
		{"stress above scale", func(r *model.SubmitCheckinRequest) { r.Stress = intPtr(11) }},
		{"negative focus", func(r *model.SubmitCheckinRequest) { r.Focus = intPtr(-1) }},
		{"missing organization", func(r *model.SubmitCheckinRequest) { r.Organization = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			req := checkinRequest("x", 5, 5, 5)
			tt.mutate(&req)

			_, err := env.checkins.Submit(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)

			all, err := env.checkins.ListAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCheckinService_ListByStudentNewestWeekFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for _, w := range []int{45, 46, 44} {
		_, err := env.checkins.Submit(ctx, checkinRequest("x", w, 5, 5))
		require.NoError(t, err)
	}

	list, err := env.checkins.ListByStudent(ctx, "x")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{46, 45, 44}, []int{list[0].WeekNumber, list[1].WeekNumber, list[2].WeekNumber})
}
