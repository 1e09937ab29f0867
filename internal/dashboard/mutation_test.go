package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"jobgrid.org/internal/board"
)

type stubApps struct {
	board.ApplicationStore
	updateErr error
	release   chan struct{} // when set, UpdateStatus blocks until closed
	started   chan struct{}
	startOnce sync.Once
}

func (a *stubApps) UpdateStatus(ctx context.Context, id string, status board.ApplicationStatus) error {
	if a.started != nil {
		a.startOnce.Do(func() { close(a.started) })
	}
	if a.release != nil {
		<-a.release
	}
	if a.updateErr != nil {
		return a.updateErr
	}
	return a.ApplicationStore.UpdateStatus(ctx, id, status)
}

func seedView(t *testing.T) (board.Store, *EmployerView) {
	t.Helper()
	store, _ := seedBoard(t)
	view, err := NewOrchestrator(store).EmployerDashboard(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("build view: %v", err)
	}
	return store, view
}

func statusIn(t *testing.T, view *EmployerView, appID string) (flat, nested board.ApplicationStatus) {
	t.Helper()
	for _, app := range view.Applications {
		if app.ID == appID {
			flat = app.Status
		}
	}
	for _, job := range view.Jobs {
		for _, app := range job.Applications {
			if app.ID == appID {
				nested = app.Status
			}
		}
	}
	return flat, nested
}

func TestUpdatePatchesBothViewCopies(t *testing.T) {
	store, view := seedView(t)
	u := NewStatusUpdater(store.Applications())

	if err := u.Update(context.Background(), view, "app-1", board.StatusAccepted); err != nil {
		t.Fatalf("Update: %v", err)
	}

	flat, nested := statusIn(t, view, "app-1")
	if flat != board.StatusAccepted || nested != board.StatusAccepted {
		t.Fatalf("both copies must be patched: flat=%s nested=%s", flat, nested)
	}

	// No other application changed.
	for _, id := range []string{"app-2", "app-3"} {
		stored, err := store.Applications().Find(context.Background(), id)
		if err != nil {
			t.Fatalf("find %s: %v", id, err)
		}
		flat, nested := statusIn(t, view, id)
		if flat != stored.Status || nested != stored.Status {
			t.Fatalf("%s drifted: flat=%s nested=%s stored=%s", id, flat, nested, stored.Status)
		}
	}

	stored, err := store.Applications().Find(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Status != board.StatusAccepted {
		t.Fatalf("store not updated: %s", stored.Status)
	}
}

func TestUpdateAllowsReDecision(t *testing.T) {
	store, view := seedView(t)
	u := NewStatusUpdater(store.Applications())
	ctx := context.Background()

	if err := u.Update(ctx, view, "app-1", board.StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := u.Update(ctx, view, "app-1", board.StatusRejected); err != nil {
		t.Fatalf("accepted -> rejected must be allowed: %v", err)
	}
	if err := u.Update(ctx, view, "app-1", board.StatusAccepted); err != nil {
		t.Fatalf("rejected -> accepted must be allowed: %v", err)
	}
}

func TestUpdateRejectsInvalidTransition(t *testing.T) {
	store, view := seedView(t)
	u := NewStatusUpdater(store.Applications())
	ctx := context.Background()

	if err := u.Update(ctx, view, "app-1", board.StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// A decided application cannot move back to pending or reviewed.
	for _, to := range []board.ApplicationStatus{board.StatusPending, board.StatusReviewed, board.StatusAccepted} {
		if err := u.Update(ctx, view, "app-1", to); !errors.Is(err, board.ErrInvalidTransition) {
			t.Fatalf("accepted -> %s: expected ErrInvalidTransition, got %v", to, err)
		}
	}
}

func TestUpdateFailureLeavesViewUntouched(t *testing.T) {
	store, view := seedView(t)
	apps := &stubApps{ApplicationStore: store.Applications(), updateErr: errors.New("write failed")}
	u := NewStatusUpdater(apps)

	err := u.Update(context.Background(), view, "app-1", board.StatusAccepted)
	if err == nil {
		t.Fatal("expected the write failure to surface")
	}

	flat, nested := statusIn(t, view, "app-1")
	if flat != board.StatusPending || nested != board.StatusPending {
		t.Fatalf("failed write must not patch the view: flat=%s nested=%s", flat, nested)
	}
	stored, _ := store.Applications().Find(context.Background(), "app-1")
	if stored.Status != board.StatusPending {
		t.Fatalf("store must keep the prior status, got %s", stored.Status)
	}
}

func TestUpdateMarksApplicationInFlight(t *testing.T) {
	store, view := seedView(t)
	apps := &stubApps{
		ApplicationStore: store.Applications(),
		release:          make(chan struct{}),
		started:          make(chan struct{}),
	}
	u := NewStatusUpdater(apps)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = u.Update(context.Background(), view, "app-1", board.StatusAccepted)
	}()

	<-apps.started
	if !u.InFlight("app-1") {
		t.Error("application must be marked in-flight during the write")
	}
	if u.InFlight("app-2") {
		t.Error("other applications must not be marked")
	}

	// A second decision for the same application is refused while one is
	// in flight.
	if err := u.Update(context.Background(), view, "app-1", board.StatusRejected); !errors.Is(err, board.ErrUpdateInFlight) {
		t.Errorf("expected ErrUpdateInFlight, got %v", err)
	}

	close(apps.release)
	wg.Wait()

	if u.InFlight("app-1") {
		t.Error("in-flight marker must be cleared after the write")
	}
}
