package rsx

// State classifies a Result.
type State int

const (
	// StateOk means the tree was parsed without diagnostics.
	StateOk State = iota
	// StatePartial means a best-effort tree was produced alongside
	// diagnostics.
	StatePartial
	// StateFailed means no tree could be built.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOk:
		return "ok"
	case StatePartial:
		return "partial"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Result combines the parsed nodes with the diagnostics accumulated
// during one recoverable parse call, in the order they were recorded.
type Result struct {
	Nodes []Node
	Diags []Diagnostic

	failed bool
}

// State returns the outcome classification.
func (r Result) State() State {
	switch {
	case r.failed:
		return StateFailed
	case len(r.Diags) == 0:
		return StateOk
	default:
		return StatePartial
	}
}

// Split returns the nodes and diagnostics.
func (r Result) Split() ([]Node, []Diagnostic) {
	return r.Nodes, r.Diags
}

// Err returns nil for a clean parse, otherwise the first diagnostic.
// This is the strict-mode view: one actionable error, later
// diagnostics suppressed.
func (r Result) Err() error {
	if len(r.Diags) == 0 {
		return nil
	}
	return r.Diags[0]
}
