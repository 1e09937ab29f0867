// Package pg implements the board store on PostgreSQL through database/sql and
// the pgx stdlib driver.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"jobgrid.org/internal/board"
	"jobgrid.org/internal/ids"
)

// Store is a PostgreSQL-backed board.Store.
type Store struct {
	db *sql.DB
}

var _ board.Store = (*Store)(nil)

// Open connects to dsn and configures the connection pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Users() board.UserStore               { return (*userStore)(s) }
func (s *Store) Jobs() board.JobStore                 { return (*jobStore)(s) }
func (s *Store) Applications() board.ApplicationStore { return (*applicationStore)(s) }
func (s *Store) Categories() board.CategoryStore      { return (*categoryStore)(s) }

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type userStore Store

func (s *userStore) Create(ctx context.Context, u *board.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into users (id, auth_user_id, email, phone, full_name, user_type, password_hash, created_at)
		values ($1, nullif($2,''), $3, $4, $5, $6, $7, $8)
	`, u.ID, u.AuthUserID, u.Email, u.Phone, u.FullName, string(u.UserType), u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return board.ErrAlreadyExists
	}
	return err
}

const userColumns = `id, coalesce(auth_user_id,''), email, phone, full_name, user_type, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*board.User, error) {
	var u board.User
	var userType string
	if err := row.Scan(&u.ID, &u.AuthUserID, &u.Email, &u.Phone, &u.FullName, &userType, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.UserType = board.UserType(userType)
	return &u, nil
}

func (s *userStore) Find(ctx context.Context, id string) (*board.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	return u, err
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*board.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where lower(email)=lower($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	return u, err
}

func (s *userStore) ListByIDs(ctx context.Context, userIDs []string) ([]*board.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users where id = any($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (s *userStore) List(ctx context.Context) ([]*board.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by created_at desc`)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]*board.User, error) {
	defer rows.Close()
	var out []*board.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type jobStore Store

const jobColumns = `id, employer_id, title, company, location, job_type, category,
	salary_min, salary_max, description, requirements, company_website,
	company_description, is_active, created_at`

func scanJob(row interface{ Scan(...any) error }) (*board.Job, error) {
	var j board.Job
	var jobType string
	if err := row.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Company, &j.Location, &jobType,
		&j.Category, &j.SalaryMin, &j.SalaryMax, &j.Description, &j.Requirements,
		&j.CompanyWebsite, &j.CompanyDescription, &j.IsActive, &j.CreatedAt); err != nil {
		return nil, err
	}
	j.JobType = board.JobType(jobType)
	return &j, nil
}

func (s *jobStore) Create(ctx context.Context, job *board.Job) error {
	if job.ID == "" {
		job.ID = ids.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into jobs (id, employer_id, title, company, location, job_type, category,
			salary_min, salary_max, description, requirements, company_website,
			company_description, is_active, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, job.ID, job.EmployerID, job.Title, job.Company, job.Location, string(job.JobType),
		job.Category, job.SalaryMin, job.SalaryMax, job.Description, job.Requirements,
		job.CompanyWebsite, job.CompanyDescription, job.IsActive, job.CreatedAt)
	return err
}

func (s *jobStore) Find(ctx context.Context, id string) (*board.Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx, `select `+jobColumns+` from jobs where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	return j, err
}

func (s *jobStore) ListActive(ctx context.Context) ([]*board.Job, error) {
	rows, err := s.db.QueryContext(ctx, `select `+jobColumns+` from jobs where is_active order by created_at desc`)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (s *jobStore) ListByEmployer(ctx context.Context, employerID string) ([]*board.Job, error) {
	rows, err := s.db.QueryContext(ctx, `select `+jobColumns+` from jobs where employer_id=$1 order by created_at desc`, employerID)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (s *jobStore) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `update jobs set is_active=false where is_active and created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectJobs(rows *sql.Rows) ([]*board.Job, error) {
	defer rows.Close()
	var out []*board.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

type applicationStore Store

const applicationColumns = `id, job_id, job_seeker_id, job_title, company_name,
	job_location, cover_letter, status, applied_at`

func scanApplication(row interface{ Scan(...any) error }) (*board.Application, error) {
	var a board.Application
	var status string
	if err := row.Scan(&a.ID, &a.JobID, &a.JobSeekerID, &a.JobTitle, &a.CompanyName,
		&a.JobLocation, &a.CoverLetter, &status, &a.AppliedAt); err != nil {
		return nil, err
	}
	a.Status = board.ApplicationStatus(status)
	return &a, nil
}

func (s *applicationStore) Create(ctx context.Context, app *board.Application) error {
	if app.ID == "" {
		app.ID = ids.New()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now().UTC()
	}
	if app.Status == "" {
		app.Status = board.StatusPending
	}
	_, err := s.db.ExecContext(ctx, `
		insert into job_applications (id, job_id, job_seeker_id, job_title, company_name,
			job_location, cover_letter, status, applied_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, app.ID, app.JobID, app.JobSeekerID, app.JobTitle, app.CompanyName,
		app.JobLocation, app.CoverLetter, string(app.Status), app.AppliedAt)
	// The (job_id, job_seeker_id) unique index backs the duplicate-apply
	// guard even when two submissions race past the pre-check.
	if isUniqueViolation(err) {
		return board.ErrDuplicateApplication
	}
	return err
}

func (s *applicationStore) Find(ctx context.Context, id string) (*board.Application, error) {
	a, err := scanApplication(s.db.QueryRowContext(ctx, `select `+applicationColumns+` from job_applications where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	return a, err
}

func (s *applicationStore) ListBySeeker(ctx context.Context, seekerID string) ([]*board.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+applicationColumns+` from job_applications
		where job_seeker_id=$1 order by applied_at desc
	`, seekerID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (s *applicationStore) ListByJobs(ctx context.Context, jobIDs []string) ([]*board.Application, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+applicationColumns+` from job_applications
		where job_id = any($1) order by applied_at desc
	`, jobIDs)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (s *applicationStore) CountByJob(ctx context.Context, jobID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from job_applications where job_id=$1`, jobID).Scan(&n)
	return n, err
}

func (s *applicationStore) Exists(ctx context.Context, jobID, seekerID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from job_applications where job_id=$1 and job_seeker_id=$2)
	`, jobID, seekerID).Scan(&exists)
	return exists, err
}

func (s *applicationStore) UpdateStatus(ctx context.Context, id string, status board.ApplicationStatus) error {
	res, err := s.db.ExecContext(ctx, `update job_applications set status=$2 where id=$1`, id, string(status))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return board.ErrNotFound
	}
	return nil
}

func collectApplications(rows *sql.Rows) ([]*board.Application, error) {
	defer rows.Close()
	var out []*board.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type categoryStore Store

func (s *categoryStore) Create(ctx context.Context, c *board.Category) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into categories (id, name, description, created_at) values ($1,$2,$3,$4)
	`, c.ID, c.Name, c.Description, c.CreatedAt)
	if isUniqueViolation(err) {
		return board.ErrAlreadyExists
	}
	return err
}

func (s *categoryStore) List(ctx context.Context) ([]*board.Category, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name, description, created_at from categories order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*board.Category
	for rows.Next() {
		var c board.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *categoryStore) Update(ctx context.Context, c *board.Category) error {
	res, err := s.db.ExecContext(ctx, `update categories set name=$2, description=$3 where id=$1`, c.ID, c.Name, c.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return board.ErrAlreadyExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return board.ErrNotFound
	}
	return nil
}

func (s *categoryStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from categories where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return board.ErrNotFound
	}
	return nil
}
