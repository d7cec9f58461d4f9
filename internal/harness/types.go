package harness

import "fmt"

// StepEvent is one transcript entry: the operation, its arguments, and what
// came of it. Transcripts are the unit of golden comparison, so every field
// must be deterministic across runs.
type StepEvent struct {
	Seq     int               `json:"seq"`
	Op      string            `json:"op"`
	Args    map[string]string `json:"args,omitempty"`
	Outcome string            `json:"outcome"` // "ok" or a failure code
	Entity  string            `json:"entity,omitempty"`
	Note    string            `json:"note,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step met its expectation and every check held.
	Pass bool `json:"pass"`

	// Transcript lists each executed step in order.
	Transcript []StepEvent `json:"transcript"`

	// Errors lists expectation and check failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{Pass: true, Transcript: []StepEvent{}}
}

// AddError records a validation failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
