package credstore

// Outcome is what Materialize did for one record.
type Outcome string

const (
	OutcomeExpanded      Outcome = "expanded"
	OutcomeKeptExisting  Outcome = "kept_existing"
	OutcomeWroteFallback Outcome = "wrote_fallback"
	OutcomeWroteLegacy   Outcome = "wrote_legacy"
	OutcomeCorrupt       Outcome = "corrupt"
	OutcomeError         Outcome = "error"
)

// facts is everything the materialize decision depends on.
type facts struct {
	selected    bool // record carries a selected-files payload
	attempted   bool // expansion has been tried
	expanded    bool // expansion succeeded
	credsExists bool // creds.json already on disk
	content     bool // marker-stripped blob is a non-empty JSON object
}

type action int

const (
	actionExpand action = iota
	actionFinishExpanded
	actionKeepExisting
	actionWriteFallback
	actionWriteLegacy
	actionCorrupt
)

// decide is the pure materialize decision table.
func decide(f facts) action {
	if !f.selected {
		switch {
		case f.credsExists:
			return actionKeepExisting
		case f.content:
			return actionWriteLegacy
		default:
			return actionCorrupt
		}
	}

	switch {
	case !f.attempted:
		return actionExpand
	case f.expanded:
		return actionFinishExpanded
	case f.credsExists:
		return actionKeepExisting
	case f.content:
		return actionWriteFallback
	default:
		return actionCorrupt
	}
}
