package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to MissionStatus
		want     bool
	}{
		{StatusPendingPayment, StatusSearching, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusPendingPayment, StatusAssigned, false},
		{StatusSearching, StatusAssigned, true},
		{StatusSearching, StatusCancelled, true},
		{StatusSearching, StatusCompleted, false},
		{StatusAssigned, StatusInProgress, true},
		{StatusAssigned, StatusSearching, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusSearching, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[MissionStatus]bool{
		StatusPendingPayment: false,
		StatusSearching:      false,
		StatusAssigned:       false,
		StatusInProgress:     false,
		StatusCompleted:      true,
		StatusCancelled:      true,
	}
	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
	for s := range terminal {
		if !s.Terminal() {
			continue
		}
		for _, to := range []MissionStatus{StatusSearching, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled} {
			if CanTransition(s, to) {
				t.Errorf("terminal status %s must not transition to %s", s, to)
			}
		}
	}
}
