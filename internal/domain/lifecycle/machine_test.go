package lifecycle

import (
	"errors"
	"testing"
)

func TestProjectTableAllowedTransitions(t *testing.T) {
	table := NewProjectTable()

	allowed := []struct {
		from, to State
	}{
		{StatePlanning, StateInProgress},
		{StatePlanning, StateOnHold},
		{StatePlanning, StateCancelled},
		{StateInProgress, StateReview},
		{StateInProgress, StateCompleted},
		{StateInProgress, StateOnHold},
		{StateReview, StateInProgress},
		{StateReview, StateCompleted},
		{StateOnHold, StateInProgress},
		{StateOnHold, StatePlanning},
	}

	for _, tc := range allowed {
		if !table.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
		if err := table.Validate(tc.from, tc.to); err != nil {
			t.Errorf("Validate(%s, %s) returned error: %v", tc.from, tc.to, err)
		}
	}
}

func TestProjectTableRejectedTransitions(t *testing.T) {
	table := NewProjectTable()

	rejected := []struct {
		from, to State
	}{
		{StateCompleted, StatePlanning},
		{StateCompleted, StateInProgress},
		{StateCancelled, StateInProgress},
		{StatePlanning, StateReview},
		{StatePlanning, StateCompleted},
		{StateOnHold, StateCompleted},
		{StateOnHold, StateReview},
	}

	for _, tc := range rejected {
		if table.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
		err := table.Validate(tc.from, tc.to)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Validate(%s, %s) = %v, want ErrInvalidTransition", tc.from, tc.to, err)
		}
	}
}

func TestValidateRejectsUnknownStates(t *testing.T) {
	table := NewProjectTable()

	err := table.Validate(State("archived"), StateInProgress)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Validate with unknown state = %v, want ErrInvalidState", err)
	}
}

func TestTerminalStates(t *testing.T) {
	table := NewProjectTable()

	for _, s := range []State{StateCompleted, StateCancelled} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
		if got := table.PermittedTargets(s); len(got) != 0 {
			t.Errorf("expected no targets from %s, got %v", s, got)
		}
	}

	if StateInProgress.IsTerminal() {
		t.Error("in_progress must not be terminal")
	}
}
