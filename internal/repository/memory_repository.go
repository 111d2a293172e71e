package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stemsi/sei-backend/internal/model"
)

// MemoryStudentRepository keeps students in a map. Used by tests and the
// STORAGE_DRIVER=memory development mode.
type MemoryStudentRepository struct {
	mu       sync.RWMutex
	students map[string]model.Student
}

func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{students: make(map[string]model.Student)}
}

func (r *MemoryStudentRepository) Create(_ context.Context, s *model.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignIdentity(&s.ID, &s.CreatedAt)
	if _, exists := r.students[s.ID]; exists {
		return ErrDuplicateID
	}
	s.UpdatedAt = s.CreatedAt
	r.students[s.ID] = *s
	return nil
}

func (r *MemoryStudentRepository) GetByID(_ context.Context, id string) (*model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemoryStudentRepository) ListAll(_ context.Context) ([]model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	students := make([]model.Student, 0, len(r.students))
	for _, s := range r.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (r *MemoryStudentRepository) ApplyPartialUpdate(_ context.Context, id string, patch StudentPatch) (*model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !patch.IsEmpty() {
		patch.Apply(&s)
		s.UpdatedAt = time.Now().UTC()
		r.students[id] = s
	}
	return &s, nil
}

// MemoryCheckinRepository keeps check-ins in insertion order.
type MemoryCheckinRepository struct {
	mu       sync.RWMutex
	checkins []model.Checkin
	ids      map[string]struct{}
}

func NewMemoryCheckinRepository() *MemoryCheckinRepository {
	return &MemoryCheckinRepository{ids: make(map[string]struct{})}
}

func (r *MemoryCheckinRepository) Append(_ context.Context, c *model.Checkin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignIdentity(&c.ID, &c.CreatedAt)
	if _, exists := r.ids[c.ID]; exists {
		return ErrDuplicateID
	}
	r.ids[c.ID] = struct{}{}
	r.checkins = append(r.checkins, *c)
	return nil
}

func (r *MemoryCheckinRepository) ListByStudent(_ context.Context, studentID string) ([]model.Checkin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checkins := []model.Checkin{}
	for _, c := range r.checkins {
		if c.StudentID == studentID {
			checkins = append(checkins, c)
		}
	}
	return checkins, nil
}

func (r *MemoryCheckinRepository) ListAll(_ context.Context) ([]model.Checkin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Checkin{}, r.checkins...), nil
}

// MemoryInterventionRepository keeps interventions in a map plus creation order.
type MemoryInterventionRepository struct {
	mu            sync.RWMutex
	interventions map[string]model.Intervention
	order         []string
}

func NewMemoryInterventionRepository() *MemoryInterventionRepository {
	return &MemoryInterventionRepository{interventions: make(map[string]model.Intervention)}
}

func (r *MemoryInterventionRepository) Create(_ context.Context, i *model.Intervention) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignIdentity(&i.ID, &i.CreatedAt)
	if _, exists := r.interventions[i.ID]; exists {
		return ErrDuplicateID
	}
	r.interventions[i.ID] = *i
	r.order = append(r.order, i.ID)
	return nil
}

func (r *MemoryInterventionRepository) GetByID(_ context.Context, id string) (*model.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.interventions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &i, nil
}

// List returns interventions newest first, matching the SQL implementations.
func (r *MemoryInterventionRepository) List(_ context.Context, studentID string) ([]model.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	interventions := []model.Intervention{}
	for k := len(r.order) - 1; k >= 0; k-- {
		i := r.interventions[r.order[k]]
		if studentID == "" || i.StudentID == studentID {
			interventions = append(interventions, i)
		}
	}
	return interventions, nil
}

func (r *MemoryInterventionRepository) UpdateStatus(_ context.Context, id string, status model.InterventionStatus) (*model.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.interventions[id]
	if !ok {
		return nil, ErrNotFound
	}
	i.Status = status
	r.interventions[id] = i
	return &i, nil
}

// MemoryFollowUpRepository keeps follow-ups in insertion order.
type MemoryFollowUpRepository struct {
	mu        sync.RWMutex
	followUps []model.FollowUp
	ids       map[string]struct{}
}

func NewMemoryFollowUpRepository() *MemoryFollowUpRepository {
	return &MemoryFollowUpRepository{ids: make(map[string]struct{})}
}

func (r *MemoryFollowUpRepository) Create(_ context.Context, f *model.FollowUp) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignIdentity(&f.ID, &f.CreatedAt)
	if _, exists := r.ids[f.ID]; exists {
		return ErrDuplicateID
	}
	r.ids[f.ID] = struct{}{}
	r.followUps = append(r.followUps, *f)
	return nil
}

func (r *MemoryFollowUpRepository) List(_ context.Context, interventionID string) ([]model.FollowUp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	followUps := []model.FollowUp{}
	for _, f := range r.followUps {
		if interventionID == "" || f.InterventionID == interventionID {
			followUps = append(followUps, f)
		}
	}
	return followUps, nil
}
