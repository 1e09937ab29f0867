// Application status state machine.
//
// Valid status graph:
//
//	pending ──► reviewed ──► accepted ◄──► rejected
//	    │                        ▲             ▲
//	    └────────────────────────┴─────────────┘
//
// reviewed is a manual pre-terminal state set by employers, never by the
// system. accepted and rejected are terminal for the workflow, but an explicit
// re-decision between the two remains allowed.
package board

import "fmt"

// ApplicationStatus mirrors the application_status values stored in PostgreSQL.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusReviewed ApplicationStatus = "reviewed"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// statusTransitions lists every allowed (from → to) pair.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:  {StatusReviewed, StatusAccepted, StatusRejected},
	StatusReviewed: {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusRejected},
	StatusRejected: {StatusAccepted},
}

// ParseStatus converts a raw string to an ApplicationStatus, returning an
// error for unknown values.
func ParseStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// CanTransition returns true when moving from → to is permitted by the state
// machine. Self-transitions are never permitted; re-applying the current
// status is a no-op the caller must not issue.
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsDecided returns true once an employer has made an accept/reject decision.
func IsDecided(s ApplicationStatus) bool {
	return s == StatusAccepted || s == StatusRejected
}
