// Package httpapi is the HTTP surface of the job board: login and session
// endpoints, public job browsing, the role-gated dashboards and the
// application status protocol.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"jobgrid.org/internal/auth"
	"jobgrid.org/internal/board"
	"jobgrid.org/internal/dashboard"
	"jobgrid.org/internal/obs"
	"jobgrid.org/internal/session"
)

// ReadyProbe reports whether the service's backing store is reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the API's tunables.
type Config struct {
	Version       string
	ReadyProbe    ReadyProbe
	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// API is the HTTP layer.
type API struct {
	mux          *http.ServeMux
	store        board.Store
	auth         *auth.Service
	resolver     *session.Resolver
	orchestrator *dashboard.Orchestrator
	updater      *dashboard.StatusUpdater
	readyProbe   ReadyProbe
	version      string

	rateBurst     int
	ratePerSecond int
	maxBodyBytes  int64
}

// New assembles the route table.
func New(store board.Store, authSvc *auth.Service, resolver *session.Resolver, cfg Config) *API {
	a := &API{
		mux:           http.NewServeMux(),
		store:         store,
		auth:          authSvc,
		resolver:      resolver,
		orchestrator:  dashboard.NewOrchestrator(store),
		updater:       dashboard.NewStatusUpdater(store.Applications()),
		readyProbe:    cfg.ReadyProbe,
		version:       cfg.Version,
		rateBurst:     cfg.RateBurst,
		ratePerSecond: cfg.RatePerSecond,
		maxBodyBytes:  cfg.MaxBodyBytes,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 50
	}
	if a.ratePerSecond <= 0 {
		a.ratePerSecond = 25
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth + session
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/session", a.handleSession)

	// jobs
	a.mux.HandleFunc("/v1/jobs", a.handleJobsCollection)
	a.mux.HandleFunc("/v1/jobs/", a.handleJobResource)

	// dashboards + status decisions
	a.mux.HandleFunc("/v1/dashboard", a.handleSeekerDashboard)
	a.mux.HandleFunc("/v1/employer/dashboard", a.handleEmployerDashboard)
	a.mux.HandleFunc("/v1/employer/jobs", a.handleEmployerJobs)
	a.mux.HandleFunc("/v1/applications/", a.handleApplicationResource)

	// categories: public read, admin write
	a.mux.HandleFunc("/v1/categories", a.handleCategories)
	a.mux.HandleFunc("/v1/admin/users", a.handleAdminUsers)
	a.mux.HandleFunc("/v1/admin/categories", a.handleAdminCategoriesCollection)
	a.mux.HandleFunc("/v1/admin/categories/", a.handleAdminCategoryResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware chain around the route table.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withSession(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- service handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "jobgrid-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "jobgrid-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeRedirect renders a gate decision: 303 plus the target, so both browser
// and API clients can follow it.
func writeRedirect(w http.ResponseWriter, r *http.Request, target string) {
	w.Header().Set("Location", target)
	writeJSON(w, http.StatusSeeOther, map[string]any{
		"redirect": target,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleBoardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, board.ErrInvalidInput), errors.Is(err, board.ErrInvalidTransition):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, board.ErrDuplicateApplication), errors.Is(err, board.ErrAlreadyExists), errors.Is(err, board.ErrUpdateInFlight):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, board.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
