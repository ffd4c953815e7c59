package harness

import "github.com/roach88/stepgraph/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every check and assertion held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed check or assertion.
	Errors []string `json:"errors,omitempty"`

	// Record is the encoded line of the built instance.
	Record []byte `json:"-"`

	// Digest is ir.Digest of Record.
	Digest string `json:"digest"`

	// IR is the built instance.
	IR *ir.IR `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
