// Package risk computes the IRE (risk index) of a student from their academic
// indicators and most recent weekly check-in.
package risk

import "github.com/stemsi/sei-backend/internal/model"

// Weights are expressed in hundredths so the weighted sum stays an integer.
// They add up to 100.
const (
	weightLowGrade      = 25
	weightAbsenteeism   = 20
	weightLowEngagement = 15
	weightHighStress    = 20
	weightLowMotivation = 20

	// neutralMood replaces the stress and motivation terms when the student
	// has never checked in.
	neutralMood = 50

	// Each AVA access removes 5 points of disengagement; 20 accesses reach zero.
	engagementPointsPerAccess = 5

	MinIndex = 0
	MaxIndex = 100
)

// Metrics are the student indicators the index is derived from.
// LateAssignments is carried but currently not weighted.
type Metrics struct {
	AverageGrade     int
	Attendance       int
	AVAParticipation int
	LateAssignments  int
}

// MetricsOf extracts the scoring inputs from a student record.
func MetricsOf(s *model.Student) Metrics {
	return Metrics{
		AverageGrade:     s.AverageGrade,
		Attendance:       s.Attendance,
		AVAParticipation: s.AVAParticipation,
		LateAssignments:  s.LateAssignments,
	}
}

// ComputeIndex returns the risk index in [0,100]. latest may be nil when the
// student has no check-in yet, in which case the mood terms use a neutral 50.
//
// Ties are rounded half-up on the exact weighted sum.
func ComputeIndex(m Metrics, latest *model.Checkin) int {
	lowGrade := bound(MaxIndex - m.AverageGrade)
	absenteeism := bound(MaxIndex - m.Attendance)
	lowEngagement := bound(MaxIndex - min(m.AVAParticipation, MaxIndex/engagementPointsPerAccess)*engagementPointsPerAccess)

	highStress, lowMotivation := neutralMood, neutralMood
	if latest != nil {
		highStress = bound(latest.Stress * 10)
		lowMotivation = bound((model.MoodScaleMax - latest.Motivation) * 10)
	}

	hundredths := weightLowGrade*lowGrade +
		weightAbsenteeism*absenteeism +
		weightLowEngagement*lowEngagement +
		weightHighStress*highStress +
		weightLowMotivation*lowMotivation

	return bound((hundredths + 50) / 100)
}

// LatestCheckin returns the check-in with the greatest week number, or nil
// for an empty slice. Insertion order is irrelevant; among equal weeks the
// first one encountered wins.
func LatestCheckin(checkins []model.Checkin) *model.Checkin {
	var latest *model.Checkin
	for i := range checkins {
		if latest == nil || checkins[i].WeekNumber > latest.WeekNumber {
			latest = &checkins[i]
		}
	}
	return latest
}

// Score is a convenience wrapper combining MetricsOf, LatestCheckin and ComputeIndex.
func Score(s *model.Student, checkins []model.Checkin) int {
	return ComputeIndex(MetricsOf(s), LatestCheckin(checkins))
}

func bound(v int) int {
	return max(MinIndex, min(v, MaxIndex))
}
