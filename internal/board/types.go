package board

import "time"

// UserType distinguishes the three account roles on the platform.
type UserType string

const (
	UserTypeJobSeeker UserType = "job_seeker"
	UserTypeEmployer  UserType = "employer"
	UserTypeAdmin     UserType = "admin"
)

// Known reports whether t is one of the recognized account roles. Accounts with
// an unrecognized role are neither rejected nor silently dropped; callers render
// an explicit fallback instead.
func (t UserType) Known() bool {
	switch t {
	case UserTypeJobSeeker, UserTypeEmployer, UserTypeAdmin:
		return true
	}
	return false
}

// User is a platform account. A user provisioned through the auth provider has
// AuthUserID set; accounts created while the provider was unavailable have it
// empty and authenticate through the local-session path instead.
type User struct {
	ID           string
	AuthUserID   string
	Email        string
	Phone        string
	FullName     string
	UserType     UserType
	PasswordHash string
	CreatedAt    time.Time
}

// JobType enumerates the employment kinds a posting can advertise.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

// Job is a posting owned by exactly one employer. Inactive rows stay in storage
// but are excluded from public listings.
type Job struct {
	ID                 string
	EmployerID         string
	Title              string
	Company            string
	Location           string
	JobType            JobType
	Category           string
	SalaryMin          int64
	SalaryMax          int64
	Description        string
	Requirements       string
	CompanyWebsite     string
	CompanyDescription string
	IsActive           bool
	CreatedAt          time.Time
}

// Application is a job seeker's submission for a job. JobTitle, CompanyName and
// JobLocation are captured from the Job at apply time and are never re-synced
// if the posting later changes.
type Application struct {
	ID          string
	JobID       string
	JobSeekerID string
	JobTitle    string
	CompanyName string
	JobLocation string
	CoverLetter string
	Status      ApplicationStatus
	AppliedAt   time.Time
}

// Category groups postings; managed by admins.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Seeker is the contact slice of a user shown to employers next to an
// application.
type Seeker struct {
	ID       string
	FullName string
	Email    string
	Phone    string
}

// PlaceholderSeeker substitutes for a job seeker record that could not be
// looked up. Applications are never dropped because their author is missing.
func PlaceholderSeeker(id string) Seeker {
	return Seeker{ID: id, FullName: "Unknown User", Email: "N/A", Phone: "N/A"}
}

// DecoratedApplication is an Application joined with its author's contact data.
type DecoratedApplication struct {
	Application
	Seeker Seeker
}

// JobWithApplications is a Job carrying its joined applications. Never
// persisted; built by the dashboard orchestrator.
type JobWithApplications struct {
	Job
	Applications     []DecoratedApplication
	ApplicationCount int
}

// JobWithCount is the lighter dashboard projection: a Job plus how many
// applications it has received.
type JobWithCount struct {
	Job
	ApplicationCount int
}
