package resolver

// Result is the orchestrator's output (spec §3, "ResolutionResult"):
// either Defer ("fall through to the next plugin"), Null ("handled by
// doing nothing"), or a concrete ID (optionally External).
type Result struct {
	ID                string
	External          bool
	ModuleSideEffects *bool
	Defer             bool
	Null              bool
}

func deferred() (*Result, error) { return &Result{Defer: true}, nil }

func nullResult() (*Result, error) { return &Result{Null: true}, nil }

func handled(id string) (*Result, error) { return &Result{ID: id}, nil }

func externalResult(id string) (*Result, error) {
	return &Result{ID: id, External: true}, nil
}
