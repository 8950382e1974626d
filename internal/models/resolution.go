package models

// ResolutionSource records which strategy produced an entity.
type ResolutionSource string

const (
	SourceNone   ResolutionSource = "none"
	SourceDirect ResolutionSource = "direct"
	SourceSearch ResolutionSource = "search"
)

// Resolution is the result of resolving a channel name.
//
// A found Resolution carries the Candidate; a not-found one carries a nil Candidate and, when the cause was a failed call, the error.
type Resolution struct {
	Candidate *Candidate
	Source    ResolutionSource
	Err       error
}

// Found reports whether an entity was resolved.
func (r Resolution) Found() bool {
	return r.Candidate != nil
}

// Resolved builds a found [Resolution].
func Resolved(c Candidate, source ResolutionSource) Resolution {
	return Resolution{Candidate: &c, Source: source}
}

// NotFound builds a not-found [Resolution]. err may be nil when nothing matched.
func NotFound(err error) Resolution {
	return Resolution{Source: SourceNone, Err: err}
}

// JoinOutcome is the result of one join attempt. Joined is the public success flag.
type JoinOutcome struct {
	Name     string
	Joined   bool
	Source   ResolutionSource
	Resolved *Candidate
	Err      error
}

// Error returns the failure message or an empty string.
func (o JoinOutcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
