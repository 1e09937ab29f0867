package httpapi

import (
	"net/http"
	"strings"
	"time"

	"jobgrid.org/internal/audit"
	"jobgrid.org/internal/board"
)

func (a *API) handleJobsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listJobs(w, r)
	case http.MethodPost:
		a.createJob(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleJobResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/apply") {
		id := strings.TrimSuffix(strings.TrimSuffix(path, "/apply"), "/")
		if id == "" {
			writeError(w, r, http.StatusNotFound, "job not found")
			return
		}
		a.applyToJob(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getJob(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

// listJobs is the public browse endpoint: active postings, newest-first, with
// optional in-memory filters.
func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.store.Jobs().ListActive(r.Context())
	if err != nil {
		handleBoardError(w, r, err)
		return
	}

	q := r.URL.Query()
	filtered := board.FilterJobs(jobs, board.JobFilter{
		Search:   q.Get("search"),
		Location: q.Get("location"),
		Category: q.Get("category"),
		JobType:  board.JobType(q.Get("job_type")),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"items": filtered,
		"total": len(filtered),
		"as_of": time.Now().UTC(),
	})
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request, id string) {
	job, err := a.store.Jobs().Find(r.Context(), id)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type createJobRequest struct {
	Title              string `json:"title"`
	Company            string `json:"company"`
	Location           string `json:"location"`
	JobType            string `json:"job_type"`
	Category           string `json:"category"`
	SalaryMin          int64  `json:"salary_min"`
	SalaryMax          int64  `json:"salary_max"`
	Description        string `json:"description"`
	Requirements       string `json:"requirements"`
	CompanyWebsite     string `json:"company_website"`
	CompanyDescription string `json:"company_description"`
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	actor := a.requireRole(w, r, board.UserTypeEmployer)
	if actor == nil {
		return
	}

	var req createJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Company) == "" {
		writeError(w, r, http.StatusBadRequest, "title and company are required")
		return
	}
	if req.SalaryMin < 0 || (req.SalaryMax > 0 && req.SalaryMax < req.SalaryMin) {
		writeError(w, r, http.StatusBadRequest, "invalid salary range")
		return
	}

	job := &board.Job{
		EmployerID:         actor.ID,
		Title:              strings.TrimSpace(req.Title),
		Company:            strings.TrimSpace(req.Company),
		Location:           strings.TrimSpace(req.Location),
		JobType:            board.JobType(req.JobType),
		Category:           req.Category,
		SalaryMin:          req.SalaryMin,
		SalaryMax:          req.SalaryMax,
		Description:        req.Description,
		Requirements:       req.Requirements,
		CompanyWebsite:     req.CompanyWebsite,
		CompanyDescription: req.CompanyDescription,
		// New postings are live immediately.
		IsActive: true,
	}
	if err := a.store.Jobs().Create(r.Context(), job); err != nil {
		handleBoardError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "job.create", map[string]any{
		"job_id": job.ID,
		"title":  job.Title,
	})
	w.Header().Set("Location", "/v1/jobs/"+job.ID)
	writeJSON(w, http.StatusCreated, job)
}

type applyRequest struct {
	CoverLetter string `json:"cover_letter"`
}

func (a *API) applyToJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor := a.requireRole(w, r, board.UserTypeJobSeeker)
	if actor == nil {
		return
	}

	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	app, err := a.orchestrator.Apply(r.Context(), jobID, actor.ID, req.CoverLetter)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "application.submit", map[string]any{
		"application_id": app.ID,
		"job_id":         jobID,
	})
	writeJSON(w, http.StatusCreated, app)
}
