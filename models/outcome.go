package models

// OutcomeKind classifies how a fetch ended. There are exactly three
// terminal states: the page arrived and looks real, policy forbade the
// request, or every attempt failed.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeBlocked
	OutcomeExhausted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Outcome is the result of one logical fetch, retries included.
type Outcome struct {
	Kind       OutcomeKind
	Body       []byte // set on success only
	StatusCode int
	Reason     string // set on blocked: "policy" or a block description
	LastErr    error  // set on exhausted: the final attempt's error
}

// Success wraps a plausible response body.
func Success(body []byte, statusCode int) Outcome {
	return Outcome{Kind: OutcomeSuccess, Body: body, StatusCode: statusCode}
}

// Blocked reports a fetch that must not be retried through this
// fetcher, with the reason it was refused.
func Blocked(reason string) Outcome {
	return Outcome{Kind: OutcomeBlocked, Reason: reason}
}

// Exhausted reports that every attempt failed, carrying the last
// attempt's error for diagnostics.
func Exhausted(lastErr error) Outcome {
	return Outcome{Kind: OutcomeExhausted, LastErr: lastErr}
}

// OK reports whether the outcome carries a usable body.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}
