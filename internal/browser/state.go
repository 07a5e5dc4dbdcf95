package browser

// State is the lifecycle of a browsing session:
// Uninitialized -> Loading -> Idle <-> Filtered, or Loading -> Error.
// Error is terminal for the session.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateIdle
	StateFiltered
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateFiltered:
		return "filtered"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Loaded reports whether the dataset is in the store
func (s State) Loaded() bool {
	return s == StateIdle || s == StateFiltered
}

func stateForQuery(query string) State {
	if query == "" {
		return StateIdle
	}
	return StateFiltered
}
