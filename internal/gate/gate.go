// Package gate decides whether a resolved actor may see a protected page and
// where to send it otherwise. Redirects are full navigations, not in-memory
// route changes: client-local session state may disagree with routing state,
// and a hard navigation re-runs resolution from scratch.
package gate

import "jobgrid.org/internal/board"

// Page targets used across the service.
const (
	LoginPath        = "/login"
	DashboardPath    = "/dashboard"
	EmployerHomePath = "/employer"
	AdminHomePath    = "/admin"
	// FallbackPath renders the explicit "account type not recognized" view,
	// distinct from both the loading and the unauthenticated states.
	FallbackPath = "/account-unrecognized"
)

// Decision is the gate's verdict: either render the protected content, or
// navigate to Target.
type Decision struct {
	Allow  bool
	Target string
}

// Allow permits rendering.
var Allow = Decision{Allow: true}

// Redirect sends the client to target.
func Redirect(target string) Decision {
	return Decision{Target: target}
}

// Authorize gates a page that requires one of the given roles. A nil actor is
// sent to login; a present actor with a different role is sent to its own
// home; an unrecognized role gets the explicit fallback page.
func Authorize(actor *board.User, required ...board.UserType) Decision {
	if actor == nil {
		return Redirect(LoginPath)
	}
	for _, role := range required {
		if actor.UserType == role {
			return Allow
		}
	}
	return Redirect(HomeFor(actor.UserType))
}

// HomeFor returns the designated landing page for a role.
func HomeFor(t board.UserType) string {
	switch t {
	case board.UserTypeJobSeeker:
		return DashboardPath
	case board.UserTypeEmployer:
		return EmployerHomePath
	case board.UserTypeAdmin:
		return AdminHomePath
	default:
		return FallbackPath
	}
}
