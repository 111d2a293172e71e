package risk

import (
	"math"
	"testing"

	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkin(week, motivation, stress int) model.Checkin {
	return model.Checkin{WeekNumber: week, Motivation: motivation, Stress: stress}
}

func TestComputeIndex(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		latest  *model.Checkin
		want    int
	}{
		{
			name:    "no check-in uses neutral mood",
			metrics: Metrics{AverageGrade: 100, Attendance: 100, AVAParticipation: 100},
			want:    20,
		},
		{
			name:    "every term at its maximum",
			metrics: Metrics{},
			latest:  &model.Checkin{Motivation: 0, Stress: 10},
			want:    100,
		},
		{
			name:    "perfect student",
			metrics: Metrics{AverageGrade: 100, Attendance: 100, AVAParticipation: 20},
			latest:  &model.Checkin{Motivation: 10, Stress: 0},
			want:    0,
		},
		{
			// 0.25*15 + 0.20*8 + 0.15*10 + 0.20*20 + 0.20*10 = 12.85
			name:    "seeded low-risk student",
			metrics: Metrics{AverageGrade: 85, Attendance: 92, AVAParticipation: 18, LateAssignments: 1},
			latest:  &model.Checkin{Motivation: 9, Stress: 2},
			want:    13,
		},
		{
			// 0.25*38 + 0.20*25 + 0.15*60 + 0.20*80 + 0.20*60 = 51.5
			name:    "exact tie rounds up",
			metrics: Metrics{AverageGrade: 62, Attendance: 75, AVAParticipation: 8, LateAssignments: 4},
			latest:  &model.Checkin{Motivation: 4, Stress: 8},
			want:    52,
		},
		{
			// 0.25*55 + 0.20*42 + 0.15*85 + 0.20*90 + 0.20*80 = 68.9
			name:    "seeded high-risk student",
			metrics: Metrics{AverageGrade: 45, Attendance: 58, AVAParticipation: 3, LateAssignments: 7},
			latest:  &model.Checkin{Motivation: 2, Stress: 9},
			want:    69,
		},
		{
			name:    "out of range inputs stay bounded",
			metrics: Metrics{AverageGrade: 140, Attendance: -20, AVAParticipation: -3},
			latest:  &model.Checkin{Motivation: 15, Stress: 12},
			want:    55,
		},
		{
			name:    "huge participation count is full engagement",
			metrics: Metrics{AverageGrade: 100, Attendance: 100, AVAParticipation: 3689348814741910323},
			latest:  &model.Checkin{Motivation: 10, Stress: 0},
			want:    0,
		},
		{
			name:    "huge participation count without check-in",
			metrics: Metrics{AverageGrade: 100, Attendance: 100, AVAParticipation: math.MaxInt},
			want:    20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeIndex(tt.metrics, tt.latest))
		})
	}
}

func TestComputeIndex_LateAssignmentsIgnored(t *testing.T) {
	base := Metrics{AverageGrade: 70, Attendance: 80, AVAParticipation: 10}
	late := base
	late.LateAssignments = 25

	assert.Equal(t, ComputeIndex(base, nil), ComputeIndex(late, nil))
}

func TestComputeIndex_Idempotent(t *testing.T) {
	m := Metrics{AverageGrade: 55, Attendance: 68, AVAParticipation: 6, LateAssignments: 5}
	c := &model.Checkin{Motivation: 4, Stress: 7}

	first := ComputeIndex(m, c)
	second := ComputeIndex(m, c)
	assert.Equal(t, first, second)
}

func TestLatestCheckin(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, LatestCheckin(nil))
	})

	t.Run("picks greatest week regardless of order", func(t *testing.T) {
		checkins := []model.Checkin{checkin(45, 5, 5), checkin(46, 9, 1), checkin(44, 1, 9)}

		latest := LatestCheckin(checkins)
		require.NotNil(t, latest)
		assert.Equal(t, 46, latest.WeekNumber)
		assert.Equal(t, 9, latest.Motivation)
	})

	t.Run("duplicate weeks are tolerated", func(t *testing.T) {
		checkins := []model.Checkin{checkin(46, 3, 3), checkin(46, 7, 7), checkin(12, 0, 0)}

		latest := LatestCheckin(checkins)
		require.NotNil(t, latest)
		assert.Equal(t, 46, latest.WeekNumber)
	})
}

func TestScore_UsesLatestWeek(t *testing.T) {
	s := &model.Student{AverageGrade: 100, Attendance: 100, AVAParticipation: 20}
	checkins := []model.Checkin{checkin(45, 0, 10), checkin(46, 10, 0), checkin(44, 0, 10)}

	assert.Equal(t, 0, Score(s, checkins))
}
