// Package dashboard assembles the role-specific views shown after login and
// applies application status decisions. Views are built from flat store reads
// joined in memory; the package degrades gracefully when a later fetch stage
// fails instead of blanking data already loaded.
package dashboard

import (
	"context"
	"sync"

	"jobgrid.org/internal/board"
	"jobgrid.org/internal/obs"
)

// Orchestrator coordinates the per-role dashboard fetches.
type Orchestrator struct {
	store board.Store
}

// NewOrchestrator wires the view assembly to a store.
func NewOrchestrator(store board.Store) *Orchestrator {
	return &Orchestrator{store: store}
}

// SeekerView is the job seeker dashboard: the seeker's applications,
// newest-first.
type SeekerView struct {
	Applications []*board.Application
}

// SeekerDashboard loads the seeker's submissions.
func (o *Orchestrator) SeekerDashboard(ctx context.Context, seekerID string) (*SeekerView, error) {
	apps, err := o.store.Applications().ListBySeeker(ctx, seekerID)
	if err != nil {
		obs.ObserveFetchFailure("job_seeker", "applications")
		return nil, err
	}
	return &SeekerView{Applications: apps}, nil
}

// EmployerView is the employer dashboard: the employer's postings with their
// applications joined, plus the flat application list across all postings. Both
// slices are newest-first.
type EmployerView struct {
	Jobs         []*board.JobWithApplications
	Applications []*board.DecoratedApplication
}

// EmployerDashboard assembles the employer view through three sequential
// stages: postings, applications across those postings, then the applicants'
// contact records. A failure in a later stage degrades the view rather than
// failing it: applications missing leaves jobs with empty lists, seeker records
// missing falls back to placeholder contact data.
func (o *Orchestrator) EmployerDashboard(ctx context.Context, employerID string) (*EmployerView, error) {
	jobs, err := o.store.Jobs().ListByEmployer(ctx, employerID)
	if err != nil {
		obs.ObserveFetchFailure("employer", "jobs")
		return nil, err
	}

	jobIDs := make([]string, len(jobs))
	for i, j := range jobs {
		jobIDs[i] = j.ID
	}

	apps, err := o.store.Applications().ListByJobs(ctx, jobIDs)
	if err != nil {
		obs.ObserveFetchFailure("employer", "applications")
		obs.LogEvent("warn", "employer dashboard: application fetch failed", map[string]any{
			"employer_id": employerID,
			"error":       err.Error(),
		})
		apps = nil
	}

	seekers := o.lookupSeekers(ctx, apps)

	decorated := make([]*board.DecoratedApplication, len(apps))
	byJob := make(map[string][]board.DecoratedApplication, len(jobs))
	for i, app := range apps {
		seeker, ok := seekers[app.JobSeekerID]
		if !ok {
			seeker = board.PlaceholderSeeker(app.JobSeekerID)
		}
		d := board.DecoratedApplication{Application: *app, Seeker: seeker}
		decorated[i] = &d
		byJob[app.JobID] = append(byJob[app.JobID], d)
	}

	view := &EmployerView{
		Jobs:         make([]*board.JobWithApplications, len(jobs)),
		Applications: decorated,
	}
	for i, j := range jobs {
		view.Jobs[i] = &board.JobWithApplications{
			Job:              *j,
			Applications:     byJob[j.ID],
			ApplicationCount: len(byJob[j.ID]),
		}
	}
	return view, nil
}

// lookupSeekers resolves the distinct applicant IDs to contact records. On
// lookup failure every applicant gets placeholder data; individual missing
// records are handled by the caller the same way.
func (o *Orchestrator) lookupSeekers(ctx context.Context, apps []*board.Application) map[string]board.Seeker {
	seen := make(map[string]struct{}, len(apps))
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.JobSeekerID]; ok {
			continue
		}
		seen[app.JobSeekerID] = struct{}{}
		ids = append(ids, app.JobSeekerID)
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := o.store.Users().ListByIDs(ctx, ids)
	if err != nil {
		obs.ObserveFetchFailure("employer", "seekers")
		obs.LogEvent("warn", "employer dashboard: seeker lookup failed", map[string]any{"error": err.Error()})
		return nil
	}
	out := make(map[string]board.Seeker, len(users))
	for _, u := range users {
		out[u.ID] = board.Seeker{ID: u.ID, FullName: u.FullName, Email: u.Email, Phone: u.Phone}
	}
	return out
}

// EmployerJobCounts returns the employer's postings with per-posting
// application counts. Counts are fetched concurrently, one per posting, and
// every fetch is awaited before the result is returned; a failed count renders
// as zero rather than failing the page.
func (o *Orchestrator) EmployerJobCounts(ctx context.Context, employerID string) ([]*board.JobWithCount, error) {
	jobs, err := o.store.Jobs().ListByEmployer(ctx, employerID)
	if err != nil {
		obs.ObserveFetchFailure("employer", "jobs")
		return nil, err
	}

	out := make([]*board.JobWithCount, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		out[i] = &board.JobWithCount{Job: *j}
		wg.Add(1)
		go func(i int, jobID string) {
			defer wg.Done()
			n, err := o.store.Applications().CountByJob(ctx, jobID)
			if err != nil {
				obs.ObserveFetchFailure("employer", "counts")
				return
			}
			out[i].ApplicationCount = n
		}(i, j.ID)
	}
	wg.Wait()
	return out, nil
}

// HasApplied reports whether the seeker already has a submission for the job.
func (o *Orchestrator) HasApplied(ctx context.Context, jobID, seekerID string) (bool, error) {
	return o.store.Applications().Exists(ctx, jobID, seekerID)
}

// Apply submits an application for the seeker. The posting's title, company
// and location are captured onto the application at submit time. A second
// application for the same posting is rejected.
func (o *Orchestrator) Apply(ctx context.Context, jobID, seekerID, coverLetter string) (*board.Application, error) {
	job, err := o.store.Jobs().Find(ctx, jobID)
	if err != nil {
		return nil, err
	}
	already, err := o.store.Applications().Exists(ctx, jobID, seekerID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, board.ErrDuplicateApplication
	}

	app := &board.Application{
		JobID:       job.ID,
		JobSeekerID: seekerID,
		JobTitle:    job.Title,
		CompanyName: job.Company,
		JobLocation: job.Location,
		CoverLetter: coverLetter,
		Status:      board.StatusPending,
	}
	// The store enforces uniqueness as well; the pre-check only produces the
	// friendlier path.
	if err := o.store.Applications().Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}
