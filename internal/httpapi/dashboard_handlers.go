package httpapi

import (
	"net/http"
	"strings"
	"time"

	"jobgrid.org/internal/board"
)

func (a *API) handleSeekerDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor := a.requireRole(w, r, board.UserTypeJobSeeker)
	if actor == nil {
		return
	}

	view, err := a.orchestrator.SeekerDashboard(r.Context(), actor.ID)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applications": view.Applications,
		"total":        len(view.Applications),
		"as_of":        time.Now().UTC(),
	})
}

func (a *API) handleEmployerDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor := a.requireRole(w, r, board.UserTypeEmployer)
	if actor == nil {
		return
	}

	view, err := a.orchestrator.EmployerDashboard(r.Context(), actor.ID)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":         view.Jobs,
		"applications": view.Applications,
		"as_of":        time.Now().UTC(),
	})
}

// handleEmployerJobs is the lighter postings list: each job with its
// application count.
func (a *API) handleEmployerJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor := a.requireRole(w, r, board.UserTypeEmployer)
	if actor == nil {
		return
	}

	jobs, err := a.orchestrator.EmployerJobCounts(r.Context(), actor.ID)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (a *API) handleApplicationResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/applications/")
	if !strings.HasSuffix(path, "/status") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id := strings.TrimSuffix(strings.TrimSuffix(path, "/status"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}

	actor := a.requireRole(w, r, board.UserTypeEmployer)
	if actor == nil {
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	status, err := board.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Only the employer that owns the posting may decide its applications.
	app, err := a.store.Applications().Find(r.Context(), id)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	job, err := a.store.Jobs().Find(r.Context(), app.JobID)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	if job.EmployerID != actor.ID {
		writeError(w, r, http.StatusForbidden, "not your posting")
		return
	}

	if err := a.updater.Update(r.Context(), nil, id, status); err != nil {
		handleBoardError(w, r, err)
		return
	}

	updated, err := a.store.Applications().Find(r.Context(), id)
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
