package txn

// State is the lifecycle state of a transaction.
//
//	Active -> Committing -> Committed
//	Active -> RolledBack
//	Committing -> RolledBack (commit-time validation or apply failure)
type State uint8

const (
	StateActive State = iota
	StateCommitting
	StateCommitted
	StateRolledBack
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack
}
