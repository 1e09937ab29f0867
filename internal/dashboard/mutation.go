package dashboard

import (
	"context"
	"fmt"
	"sync"

	"jobgrid.org/internal/audit"
	"jobgrid.org/internal/board"
	"jobgrid.org/internal/obs"
)

// StatusUpdater applies application status decisions and reconciles an
// employer view in place. The store write happens first; only a successful
// write patches the view, so a failure leaves the rendered state exactly as it
// was. While a decision is being written the application is marked in-flight so
// the page can disable its decision controls.
type StatusUpdater struct {
	store board.ApplicationStore

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewStatusUpdater wires a status updater to the application store.
func NewStatusUpdater(store board.ApplicationStore) *StatusUpdater {
	return &StatusUpdater{store: store, inFlight: make(map[string]struct{})}
}

// InFlight reports whether a decision for the application is currently being
// written.
func (u *StatusUpdater) InFlight(appID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.inFlight[appID]
	return ok
}

func (u *StatusUpdater) begin(appID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.inFlight[appID]; ok {
		return false
	}
	u.inFlight[appID] = struct{}{}
	return true
}

func (u *StatusUpdater) end(appID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.inFlight, appID)
}

// Update moves the application to status and, when view is non-nil, patches
// both the flat application list and the per-job nested copy so the two stay
// consistent. Invalid transitions are rejected before any write; accepted and
// rejected may be flipped to one another, re-deciding a decided application.
func (u *StatusUpdater) Update(ctx context.Context, view *EmployerView, appID string, status board.ApplicationStatus) error {
	if !u.begin(appID) {
		return fmt.Errorf("application %s: %w", appID, board.ErrUpdateInFlight)
	}
	defer u.end(appID)

	current, err := u.store.Find(ctx, appID)
	if err != nil {
		obs.ObserveStatusUpdate(string(status), "error")
		return err
	}
	if !board.CanTransition(current.Status, status) {
		obs.ObserveStatusUpdate(string(status), "invalid")
		return fmt.Errorf("%s -> %s: %w", current.Status, status, board.ErrInvalidTransition)
	}

	if err := u.store.UpdateStatus(ctx, appID, status); err != nil {
		// The view is left untouched so the page keeps showing the stored
		// state, not the failed decision.
		obs.ObserveStatusUpdate(string(status), "error")
		return err
	}

	if view != nil {
		patchView(view, appID, status)
	}
	obs.ObserveStatusUpdate(string(status), "ok")
	audit.LogEvent(ctx, "application.status_update", map[string]any{
		"application_id": appID,
		"from":           string(current.Status),
		"to":             string(status),
	})
	return nil
}

// patchView rewrites the status of appID in both of the view's copies of the
// application.
func patchView(view *EmployerView, appID string, status board.ApplicationStatus) {
	for _, app := range view.Applications {
		if app.ID == appID {
			app.Status = status
		}
	}
	for _, job := range view.Jobs {
		for i := range job.Applications {
			if job.Applications[i].ID == appID {
				job.Applications[i].Status = status
			}
		}
	}
}
