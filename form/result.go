package form

import "fmt"

// Outcome classifies a submission.
type Outcome int

const (
	// Submitted means the submit function succeeded.
	Submitted Outcome = iota
	// Rejected means nothing was sent: the draft failed validation or a
	// submission was already in flight.
	Rejected
	// Failed means the submit function returned an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Submitted:
		return "submitted"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is what Submit returns. Err is nil only for Submitted.
type Result struct {
	Outcome Outcome
	Err     error
	Values  Values
}

func (r Result) OK() bool { return r.Outcome == Submitted }

// ValidationError is a draft problem caught before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
