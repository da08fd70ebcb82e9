package lifecycle

// State represents a project lifecycle state
type State string

const (
	StatePlanning   State = "planning"
	StateInProgress State = "in_progress"
	StateReview     State = "review"
	StateCompleted  State = "completed"
	StateOnHold     State = "on_hold"
	StateCancelled  State = "cancelled"
)

var validStates = map[State]bool{
	StatePlanning:   true,
	StateInProgress: true,
	StateReview:     true,
	StateCompleted:  true,
	StateOnHold:     true,
	StateCancelled:  true,
}

var terminalStates = map[State]bool{
	StateCompleted: true,
	StateCancelled: true,
}

// IsTerminal returns true if the state admits no further transitions
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
