package workflow

// State is an approval state. Values match entity.Status literally so the
// persisted status can be handed to the machine without translation.
type State string

const (
	StatePending  State = "Pending"
	StateApproved State = "Approved"
	StateRejected State = "Rejected"
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateRejected: true,
}

// IsValid returns true if the state is known
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true when no approval transition leaves the state
func (s State) IsTerminal() bool {
	return s == StateApproved || s == StateRejected
}

func (s State) String() string {
	return string(s)
}
