package board

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jobgrid.org/internal/ids"
)

// InMemory implements Store with in-process concurrency safety. Used in tests
// and local development; production runs on the PostgreSQL store.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]*User
	jobs  map[string]*Job
	apps  map[string]*Application
	cats  map[string]*Category
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		users: make(map[string]*User),
		jobs:  make(map[string]*Job),
		apps:  make(map[string]*Application),
		cats:  make(map[string]*Category),
	}
}

func (s *InMemory) Users() UserStore               { return (*memUsers)(s) }
func (s *InMemory) Jobs() JobStore                 { return (*memJobs)(s) }
func (s *InMemory) Applications() ApplicationStore { return (*memApps)(s) }
func (s *InMemory) Categories() CategoryStore      { return (*memCats)(s) }

// Users ---------------------------------------------------------------------

type memUsers InMemory

func (s *memUsers) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = ids.New()
	}
	if _, ok := s.users[u.ID]; ok {
		return ErrAlreadyExists
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrAlreadyExists
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUsers) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUsers) ListByIDs(ctx context.Context, idList []string) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, id := range idList {
		if u, ok := s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memUsers) List(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Jobs ----------------------------------------------------------------------

type memJobs InMemory

func (s *memJobs) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = ids.New()
	}
	if _, ok := s.jobs[job.ID]; ok {
		return ErrAlreadyExists
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *memJobs) Find(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *memJobs) ListActive(ctx context.Context) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Job
	for _, j := range s.jobs {
		if j.IsActive {
			cp := *j
			out = append(out, &cp)
		}
	}
	sortJobsNewestFirst(out)
	return out, nil
}

func (s *memJobs) ListByEmployer(ctx context.Context, employerID string) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Job
	for _, j := range s.jobs {
		if j.EmployerID == employerID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sortJobsNewestFirst(out)
	return out, nil
}

func (s *memJobs) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, j := range s.jobs {
		if j.IsActive && j.CreatedAt.Before(cutoff) {
			j.IsActive = false
			n++
		}
	}
	return n, nil
}

func sortJobsNewestFirst(jobs []*Job) {
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
}

// Applications --------------------------------------------------------------

type memApps InMemory

func (s *memApps) Create(ctx context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apps {
		if existing.JobID == app.JobID && existing.JobSeekerID == app.JobSeekerID {
			return ErrDuplicateApplication
		}
	}
	if app.ID == "" {
		app.ID = ids.New()
	}
	if app.Status == "" {
		app.Status = StatusPending
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now().UTC()
	}
	cp := *app
	s.apps[app.ID] = &cp
	return nil
}

func (s *memApps) Find(ctx context.Context, id string) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memApps) ListBySeeker(ctx context.Context, seekerID string) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Application
	for _, a := range s.apps {
		if a.JobSeekerID == seekerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortAppsNewestFirst(out)
	return out, nil
}

func (s *memApps) ListByJobs(ctx context.Context, jobIDs []string) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		want[id] = struct{}{}
	}
	var out []*Application
	for _, a := range s.apps {
		if _, ok := want[a.JobID]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortAppsNewestFirst(out)
	return out, nil
}

func (s *memApps) CountByJob(ctx context.Context, jobID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.apps {
		if a.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (s *memApps) Exists(ctx context.Context, jobID, seekerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.apps {
		if a.JobID == jobID && a.JobSeekerID == seekerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memApps) UpdateStatus(ctx context.Context, id string, status ApplicationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func sortAppsNewestFirst(apps []*Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt.After(apps[j].AppliedAt) })
}

// Categories ----------------------------------------------------------------

type memCats InMemory

func (s *memCats) Create(ctx context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = ids.New()
	}
	for _, existing := range s.cats {
		if strings.EqualFold(existing.Name, c.Name) {
			return ErrAlreadyExists
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	cp := *c
	s.cats[c.ID] = &cp
	return nil
}

func (s *memCats) List(ctx context.Context) ([]*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Category, 0, len(s.cats))
	for _, c := range s.cats {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memCats) Update(ctx context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.cats[c.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = c.Name
	existing.Description = c.Description
	return nil
}

func (s *memCats) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return ErrNotFound
	}
	delete(s.cats, id)
	return nil
}
