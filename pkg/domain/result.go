package domain

// RunResult is the outcome of one Transform Engine execution.
type RunResult struct {
	// Output is the final value, or the last successfully produced value when a step failed.
	Output string `json:"output"`

	// Errors maps the failing step id to its message. At most one entry is populated.
	Errors map[string]string `json:"errors"`

	// FailedStep is the step that halted the run, if any.
	FailedStep *Step `json:"failedStep,omitempty"`
}

// Failed reports whether a step halted the run.
func (r RunResult) Failed() bool {
	return r.FailedStep != nil
}
