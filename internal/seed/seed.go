// Package seed loads the demonstration roster used in development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
)

// Recalculator is the part of the recalculation service the seeder needs.
type Recalculator interface {
	RecalculateStudent(ctx context.Context, studentID string) (*model.Student, error)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Students returns the demo roster without risk indexes.
func Students() []model.Student {
	return []model.Student{
		{ID: "student-1", Name: "João Pedro Santos", Email: "joao.santos@escola.edu.br", Grade: "9º A",
			AverageGrade: 85, Attendance: 92, AVAParticipation: 18, LateAssignments: 1},
		{ID: "student-2", Name: "Ana Carolina Lima", Email: "ana.lima@escola.edu.br", Grade: "9º A",
			AverageGrade: 62, Attendance: 75, AVAParticipation: 8, LateAssignments: 4},
		{ID: "student-3", Name: "Lucas Oliveira Martins", Email: "lucas.martins@escola.edu.br", Grade: "9º B",
			AverageGrade: 45, Attendance: 58, AVAParticipation: 3, LateAssignments: 7},
		{ID: "student-4", Name: "Beatriz Ferreira Costa", Email: "beatriz.costa@escola.edu.br", Grade: "9º A",
			AverageGrade: 78, Attendance: 88, AVAParticipation: 15, LateAssignments: 2},
		{ID: "student-5", Name: "Gabriel Rodrigues Alves", Email: "gabriel.alves@escola.edu.br", Grade: "9º B",
			AverageGrade: 55, Attendance: 68, AVAParticipation: 6, LateAssignments: 5},
	}
}

// Checkins returns two weeks of demo check-ins per student.
func Checkins() []model.Checkin {
	w45, w46 := day(2024, time.November, 4), day(2024, time.November, 11)
	return []model.Checkin{
		{StudentID: "student-1", WeekNumber: 45, Motivation: 8, Stress: 3, Focus: 7, Organization: 8, CreatedAt: w45},
		{StudentID: "student-1", WeekNumber: 46, Motivation: 9, Stress: 2, Focus: 8, Organization: 9, CreatedAt: w46},
		{StudentID: "student-2", WeekNumber: 45, Motivation: 5, Stress: 7, Focus: 4, Organization: 4, CreatedAt: w45},
		{StudentID: "student-2", WeekNumber: 46, Motivation: 4, Stress: 8, Focus: 3, Organization: 3, CreatedAt: w46},
		{StudentID: "student-3", WeekNumber: 45, Motivation: 3, Stress: 9, Focus: 2, Organization: 2, CreatedAt: w45},
		{StudentID: "student-3", WeekNumber: 46, Motivation: 2, Stress: 9, Focus: 2, Organization: 1, CreatedAt: w46},
		{StudentID: "student-4", WeekNumber: 45, Motivation: 7, Stress: 4, Focus: 7, Organization: 6, CreatedAt: w45},
		{StudentID: "student-4", WeekNumber: 46, Motivation: 8, Stress: 3, Focus: 8, Organization: 7, CreatedAt: w46},
		{StudentID: "student-5", WeekNumber: 45, Motivation: 5, Stress: 6, Focus: 5, Organization: 4, CreatedAt: w45},
		{StudentID: "student-5", WeekNumber: 46, Motivation: 4, Stress: 7, Focus: 4, Organization: 3, CreatedAt: w46},
	}
}

// Interventions returns the demo interventions.
func Interventions() []model.Intervention {
	return []model.Intervention{
		{
			ID:             "intervention-1",
			StudentID:      "student-3",
			Objective:      "Melhorar frequência e engajamento nas aulas de Matemática",
			PlannedActions: "Reunião com responsáveis, monitoria semanal e acompanhamento de presença",
			StartDate:      "2024-11-01",
			Responsible:    "Prof. Maria Silva",
			Status:         model.InterventionOpen,
			CreatedAt:      day(2024, time.November, 1),
		},
		{
			ID:             "intervention-2",
			StudentID:      "student-2",
			Objective:      "Apoio socioemocional e redução de estresse",
			PlannedActions: "Encaminhamento ao serviço de orientação e rodas de conversa quinzenais",
			StartDate:      "2024-11-10",
			Responsible:    "Coord. Pedro Santos",
			Status:         model.InterventionOpen,
			CreatedAt:      day(2024, time.November, 10),
		},
	}
}

// FollowUps returns the demo follow-ups.
func FollowUps() []model.FollowUp {
	return []model.FollowUp{
		{ID: "followup-1", InterventionID: "intervention-1",
			Observations: "Aluno compareceu à primeira monitoria, ainda com dificuldades.",
			Progress:     3, CreatedAt: day(2024, time.November, 8)},
		{ID: "followup-2", InterventionID: "intervention-1",
			Observations: "Melhora na frequência, participação ainda tímida.",
			Progress:     5, CreatedAt: day(2024, time.November, 15)},
	}
}

// Load writes the demo data and computes every seeded student's risk index.
// It is a no-op when the first demo student already exists.
func Load(ctx context.Context, stores *repository.Stores, recalc Recalculator, log zerolog.Logger) error {
	log = log.With().Str("component", "seed").Logger()

	students := Students()
	if _, err := stores.Students.GetByID(ctx, students[0].ID); err == nil {
		log.Info().Msg("Demo data already present, skipping")
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check existing demo data: %w", err)
	}

	for i := range students {
		if err := stores.Students.Create(ctx, &students[i]); err != nil {
			return fmt.Errorf("seed student %s: %w", students[i].ID, err)
		}
	}
	for _, c := range Checkins() {
		if err := stores.Checkins.Append(ctx, &c); err != nil {
			return fmt.Errorf("seed check-in: %w", err)
		}
	}
	for _, i := range Interventions() {
		if err := stores.Interventions.Create(ctx, &i); err != nil {
			return fmt.Errorf("seed intervention %s: %w", i.ID, err)
		}
	}
	for _, f := range FollowUps() {
		if err := stores.FollowUps.Create(ctx, &f); err != nil {
			return fmt.Errorf("seed follow-up %s: %w", f.ID, err)
		}
	}

	for _, s := range students {
		if _, err := recalc.RecalculateStudent(ctx, s.ID); err != nil {
			return fmt.Errorf("score seeded student %s: %w", s.ID, err)
		}
	}

	log.Info().
		Int("students", len(students)).
		Msg("Demo data loaded")
	return nil
}
