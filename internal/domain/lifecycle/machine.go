package lifecycle

import (
	"fmt"
	"sort"
)

// Table maps each state to the set of states it may transition to.
// Built once via the Builder and shared read-only afterwards.
type Table struct {
	transitions map[State]map[State]bool
}

// Builder accumulates allowed transitions for a Table
type Builder struct {
	transitions map[State]map[State]bool
}

// NewBuilder creates a new transition table builder
func NewBuilder() *Builder {
	return &Builder{
		transitions: make(map[State]map[State]bool),
	}
}

// Configure returns a configuration handle for the given source state
func (b *Builder) Configure(from State) *StateConfig {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", from))
	}

	targets, exists := b.transitions[from]
	if !exists {
		targets = make(map[State]bool)
		b.transitions[from] = targets
	}

	return &StateConfig{from: from, targets: targets}
}

// Build freezes the accumulated transitions into a Table
func (b *Builder) Build() *Table {
	copied := make(map[State]map[State]bool, len(b.transitions))
	for from, targets := range b.transitions {
		t := make(map[State]bool, len(targets))
		for to := range targets {
			t[to] = true
		}
		copied[from] = t
	}
	return &Table{transitions: copied}
}

// StateConfig configures outgoing transitions for one source state
type StateConfig struct {
	from    State
	targets map[State]bool
}

// Permit allows a transition from the configured state to the target state
func (c *StateConfig) Permit(to State) *StateConfig {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	c.targets[to] = true
	return c
}

// CanTransition reports whether from -> to is an allowed transition
func (t *Table) CanTransition(from, to State) bool {
	targets, exists := t.transitions[from]
	if !exists {
		return false
	}
	return targets[to]
}

// Validate returns a typed error when from -> to is not allowed
func (t *Table) Validate(from, to State) error {
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, from, to)
	}
	if !t.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// PermittedTargets returns the sorted list of states reachable from a state
func (t *Table) PermittedTargets(from State) []State {
	targets := t.transitions[from]
	result := make([]State, 0, len(targets))
	for to := range targets {
		result = append(result, to)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// NewProjectTable builds the transition table for the project lifecycle.
// Completed and cancelled are terminal.
func NewProjectTable() *Table {
	builder := NewBuilder()

	builder.Configure(StatePlanning).
		Permit(StateInProgress).
		Permit(StateOnHold).
		Permit(StateCancelled)

	builder.Configure(StateInProgress).
		Permit(StateReview).
		Permit(StateCompleted).
		Permit(StateOnHold).
		Permit(StateCancelled)

	builder.Configure(StateReview).
		Permit(StateInProgress).
		Permit(StateCompleted).
		Permit(StateOnHold).
		Permit(StateCancelled)

	builder.Configure(StateOnHold).
		Permit(StatePlanning).
		Permit(StateInProgress).
		Permit(StateCancelled)

	// completed and cancelled have no outgoing transitions

	return builder.Build()
}
