package service

import (
	"context"
	"sort"
	"time"

	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/risk"
)

const (
	week = 7 * 24 * time.Hour

	highRiskPreviewSize = 5
)

// CurrentWeek returns ceil((now - epoch) / 7 days). now == epoch is week 0;
// any instant inside the first seven days is week 1.
func CurrentWeek(now, epoch time.Time) int {
	d := now.Sub(epoch)
	n := int(d / week)
	if d%week > 0 {
		n++
	}
	return n
}

// DashboardData consolidates the figures shown on the coordinator dashboard.
type DashboardData struct {
	TotalStudents          int                `json:"total_students"`
	LevelCounts            map[risk.Level]int `json:"level_counts"`
	AverageRiskIndex       int                `json:"average_risk_index"`
	OpenInterventions      int                `json:"open_interventions"`
	CompletedInterventions int                `json:"completed_interventions"`
	CurrentWeek            int                `json:"current_week"`
	PendingCheckins        int                `json:"pending_checkins"`
	HighestRisk            []StudentView      `json:"highest_risk"`
}

// DashboardService computes dashboard aggregates. The clock is injected so
// the current week is deterministic under test.
type DashboardService struct {
	students      repository.StudentRepository
	checkins      repository.CheckinRepository
	interventions repository.InterventionRepository
	epoch         time.Time
	now           func() time.Time
}

// NewDashboardService creates a new DashboardService. A nil now uses time.Now.
func NewDashboardService(
	students repository.StudentRepository,
	checkins repository.CheckinRepository,
	interventions repository.InterventionRepository,
	epoch time.Time,
	now func() time.Time,
) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{
		students:      students,
		checkins:      checkins,
		interventions: interventions,
		epoch:         epoch,
		now:           now,
	}
}

// GetDashboardData reads all students, check-ins and interventions once and
// aggregates them.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	checkins, err := s.checkins.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	interventions, err := s.interventions.List(ctx, "")
	if err != nil {
		return nil, err
	}

	current := CurrentWeek(s.now(), s.epoch)
	checkedIn := make(map[string]bool)
	for _, c := range checkins {
		if c.WeekNumber == current {
			checkedIn[c.StudentID] = true
		}
	}

	data := &DashboardData{
		TotalStudents: len(students),
		LevelCounts: map[risk.Level]int{
			risk.LevelLow:    0,
			risk.LevelMedium: 0,
			risk.LevelHigh:   0,
		},
		CurrentWeek: current,
		HighestRisk: []StudentView{},
	}

	sum := 0
	for _, st := range students {
		data.LevelCounts[risk.LevelFor(st.RiskIndex)]++
		sum += st.RiskIndex
		if !checkedIn[st.ID] {
			data.PendingCheckins++
		}
	}
	if len(students) > 0 {
		data.AverageRiskIndex = (sum + len(students)/2) / len(students)
	}

	for _, i := range interventions {
		switch i.Status {
		case model.InterventionOpen:
			data.OpenInterventions++
		case model.InterventionCompleted:
			data.CompletedInterventions++
		}
	}

	ranked := append([]model.Student(nil), students...)
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].RiskIndex > ranked[b].RiskIndex })
	for _, st := range ranked {
		if len(data.HighestRisk) == highRiskPreviewSize || risk.LevelFor(st.RiskIndex) != risk.LevelHigh {
			break
		}
		data.HighestRisk = append(data.HighestRisk, NewStudentView(st))
	}

	return data, nil
}
