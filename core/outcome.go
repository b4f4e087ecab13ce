package core

// State is a step of a single validation.
type State int

const (
	StateInit State = iota
	StateReconstructed
	StateValid   // terminal: pass the request through unchanged
	StateInvalid // terminal: report Original and ProposedFix, stop the request
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReconstructed:
		return "reconstructed"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	}
	return "unknown"
}

// Outcome is the result of ValidateAndRepair.
type Outcome struct {
	Valid       bool
	Original    []byte // reconstructed candidate
	ProposedFix []byte // longest parseable prefix of Original; nil when Valid
}

// State returns the terminal state of the validation that produced o.
func (o Outcome) State() State {
	if o.Valid {
		return StateValid
	}
	return StateInvalid
}

// ValidateAndRepair runs the full pipeline with the UTF-8 classifier.
//
// Example:
//
//	out := core.ValidateAndRepair([]byte("myscript"), []byte("/items/457k\x11"), nil)
//	// out.Valid == false, string(out.ProposedFix) == "myscript/items/457k"
func ValidateAndRepair(prefix, path, query []byte) Outcome {
	return defaultClassifier.ValidateAndRepair(Components{Prefix: prefix, Path: path, Query: query})
}

// ValidateAndRepair reconstructs the candidate from c and classifies it.
// Invalid candidates are repaired with LongestParseablePrefix.
func (cl *Classifier) ValidateAndRepair(c Components) Outcome {
	return cl.Check(c.Candidate())
}

// Check classifies an already reconstructed candidate.
func (cl *Classifier) Check(candidate []byte) Outcome {
	if cl.IsParseable(candidate) {
		return Outcome{Valid: true, Original: candidate}
	}
	return Outcome{Original: candidate, ProposedFix: cl.LongestParseablePrefix(candidate)}
}
