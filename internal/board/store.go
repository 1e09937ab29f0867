package board

import (
	"context"
	"time"
)

// Store describes persistence operations required by the job board.
type Store interface {
	Users() UserStore
	Jobs() JobStore
	Applications() ApplicationStore
	Categories() CategoryStore
}

// UserStore manages accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
	List(ctx context.Context) ([]*User, error)
}

// JobStore manages postings. List methods return rows most-recent-first.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Find(ctx context.Context, id string) (*Job, error)
	ListActive(ctx context.Context) ([]*Job, error)
	ListByEmployer(ctx context.Context, employerID string) ([]*Job, error)
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ApplicationStore manages submissions. List methods return rows ordered by
// applied_at descending.
type ApplicationStore interface {
	Create(ctx context.Context, app *Application) error
	Find(ctx context.Context, id string) (*Application, error)
	ListBySeeker(ctx context.Context, seekerID string) ([]*Application, error)
	ListByJobs(ctx context.Context, jobIDs []string) ([]*Application, error)
	CountByJob(ctx context.Context, jobID string) (int, error)
	Exists(ctx context.Context, jobID, seekerID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status ApplicationStatus) error
}

// CategoryStore manages the admin-curated category catalog.
type CategoryStore interface {
	Create(ctx context.Context, c *Category) error
	List(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
