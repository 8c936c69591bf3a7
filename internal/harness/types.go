package harness

// TraceEvent records one scenario step.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Call      string `json:"call"` // "attach", "bootstrap" or "resolve"
	Target    string `json:"target,omitempty"`
	Name      string `json:"name,omitempty"`
	Qualifier string `json:"qualifier,omitempty"`
	Calls     int    `json:"calls,omitempty"`
	Forwarded int    `json:"forwarded,omitempty"`
	Recorded  int64  `json:"recorded"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every call was transparent and every
	// assertion held.
	Pass bool `json:"pass"`

	// Session is the controller's session id.
	Session string `json:"session"`

	// Trace contains one event per step, after the initial attach event.
	Trace []TraceEvent `json:"trace"`

	// Catalog is the catalog file's lines after the run.
	Catalog []string `json:"catalog"`

	// State is the controller's final state.
	State string `json:"state"`

	// Recorded is the total number of names the capture hooks recorded.
	Recorded int64 `json:"recorded"`

	// Degraded reports whether the catalog fell back to memory only.
	Degraded bool `json:"degraded,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Catalog: []string{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// count returns how many trace events have the given call kind.
func (r *Result) count(call string) int {
	n := 0
	for _, e := range r.Trace {
		if e.Call == call {
			n++
		}
	}
	return n
}
