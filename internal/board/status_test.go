package board_test

import (
	"testing"

	"jobgrid.org/internal/board"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"pending", "reviewed", "accepted", "rejected"}
	for _, s := range valid {
		got, err := board.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"PENDING", "approved", ""} {
		if _, err := board.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

func TestCanTransition_PreTerminalToDecision(t *testing.T) {
	cases := []struct {
		from board.ApplicationStatus
		to   board.ApplicationStatus
	}{
		{board.StatusPending, board.StatusReviewed},
		{board.StatusPending, board.StatusAccepted},
		{board.StatusPending, board.StatusRejected},
		{board.StatusReviewed, board.StatusAccepted},
		{board.StatusReviewed, board.StatusRejected},
	}
	for _, c := range cases {
		if !board.CanTransition(c.from, c.to) {
			t.Errorf("CanTransition(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestCanTransition_ReDecisionAllowed(t *testing.T) {
	if !board.CanTransition(board.StatusAccepted, board.StatusRejected) {
		t.Error("CanTransition(accepted → rejected) should be true (explicit re-decision)")
	}
	if !board.CanTransition(board.StatusRejected, board.StatusAccepted) {
		t.Error("CanTransition(rejected → accepted) should be true (explicit re-decision)")
	}
}

func TestCanTransition_NoBackwards(t *testing.T) {
	cases := []struct {
		from board.ApplicationStatus
		to   board.ApplicationStatus
	}{
		{board.StatusReviewed, board.StatusPending},
		{board.StatusAccepted, board.StatusPending},
		{board.StatusAccepted, board.StatusReviewed},
		{board.StatusRejected, board.StatusPending},
		{board.StatusRejected, board.StatusReviewed},
	}
	for _, c := range cases {
		if board.CanTransition(c.from, c.to) {
			t.Errorf("CanTransition(%s → %s) should be false", c.from, c.to)
		}
	}
}

func TestCanTransition_Self(t *testing.T) {
	all := []board.ApplicationStatus{
		board.StatusPending, board.StatusReviewed, board.StatusAccepted, board.StatusRejected,
	}
	for _, s := range all {
		if board.CanTransition(s, s) {
			t.Errorf("CanTransition(%s → %s) should be false (self)", s, s)
		}
	}
}

func TestIsDecided(t *testing.T) {
	if board.IsDecided(board.StatusPending) || board.IsDecided(board.StatusReviewed) {
		t.Error("pending/reviewed should not be decided")
	}
	if !board.IsDecided(board.StatusAccepted) || !board.IsDecided(board.StatusRejected) {
		t.Error("accepted/rejected should be decided")
	}
}
