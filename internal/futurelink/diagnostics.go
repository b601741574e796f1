package futurelink

import "log/slog"

// DiagnosticKind classifies a non-fatal event observed during a transform.
type DiagnosticKind string

const (
	KindUnparseableDate DiagnosticKind = "unparseable_date"
	KindMalformed       DiagnosticKind = "malformed_marker"
	KindHeld            DiagnosticKind = "held"
	KindIterationLimit  DiagnosticKind = "iteration_limit"
)

// Level maps a diagnostic kind to the slog level hosts should log it at.
func (k DiagnosticKind) Level() slog.Level {
	switch k {
	case KindIterationLimit:
		return slog.LevelError
	case KindMalformed, KindUnparseableDate:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Diagnostic is one entry of the per-call log. Offset refers to the encoded
// buffer at the moment the event was recorded.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Syntax  string         `json:"syntax"`
	Offset  int            `json:"offset"`
	Target  string         `json:"target,omitempty"`
	Message string         `json:"message"`
}

// Decision is the outcome for a single marker.
type Decision string

const (
	DecisionLinked   Decision = "linked"
	DecisionStripped Decision = "stripped"
	DecisionHeld     Decision = "held"
)

// Marker records a processed marker. Anchor is entity-decoded.
type Marker struct {
	Syntax   string   `json:"syntax"`
	Payload  Payload  `json:"payload"`
	Anchor   string   `json:"anchor"`
	Decision Decision `json:"decision"`
}

// Result is what a transform hands back to the host.
type Result struct {
	Content     string       `json:"-"`
	Changed     bool         `json:"changed"`
	Aborted     bool         `json:"aborted"`
	Markers     []Marker     `json:"markers"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Count returns how many markers ended with decision d.
func (r Result) Count(d Decision) int {
	n := 0
	for _, m := range r.Markers {
		if m.Decision == d {
			n++
		}
	}
	return n
}
