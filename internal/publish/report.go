package publish

import (
	"time"

	"git.home.luguber.info/inful/futurelink/internal/futurelink"
)

// Report summarizes one publish or check run.
type Report struct {
	Started  time.Time     `json:"started"`
	Now      time.Time     `json:"now"`
	Duration time.Duration `json:"duration"`
	Pages    []PageReport  `json:"pages"`
	Copied   int           `json:"copied"`
}

// PageReport is the outcome for a single page.
type PageReport struct {
	Path        string                  `json:"path"`
	Output      string                  `json:"output"`
	Eligible    bool                    `json:"eligible"`
	Changed     bool                    `json:"changed"`
	Aborted     bool                    `json:"aborted"`
	Markers     []futurelink.Marker     `json:"markers,omitempty"`
	Diagnostics []futurelink.Diagnostic `json:"diagnostics,omitempty"`
}

// Totals aggregates marker decisions across a report.
type Totals struct {
	Pages       int `json:"pages"`
	Markers     int `json:"markers"`
	Linked      int `json:"linked"`
	Stripped    int `json:"stripped"`
	Held        int `json:"held"`
	Diagnostics int `json:"diagnostics"`
	Aborted     int `json:"aborted"`
}

func (r *Report) add(page *Page, output string) {
	r.Pages = append(r.Pages, PageReport{
		Path:        page.Path,
		Output:      output,
		Eligible:    page.Eligible,
		Changed:     page.Result.Changed,
		Aborted:     page.Result.Aborted,
		Markers:     page.Result.Markers,
		Diagnostics: page.Result.Diagnostics,
	})
}

// Total computes the aggregate counts.
func (r *Report) Total() Totals {
	t := Totals{Pages: len(r.Pages)}
	for _, p := range r.Pages {
		t.Markers += len(p.Markers)
		t.Diagnostics += len(p.Diagnostics)
		if p.Aborted {
			t.Aborted++
		}
		for _, m := range p.Markers {
			switch m.Decision {
			case futurelink.DecisionLinked:
				t.Linked++
			case futurelink.DecisionStripped:
				t.Stripped++
			case futurelink.DecisionHeld:
				t.Held++
			}
		}
	}
	return t
}

// HasProblems reports whether any page produced a warning-level diagnostic
// or hit the iteration limit.
func (r *Report) HasProblems() bool {
	for _, p := range r.Pages {
		if p.Aborted {
			return true
		}
		for _, d := range p.Diagnostics {
			if d.Kind == futurelink.KindMalformed || d.Kind == futurelink.KindUnparseableDate {
				return true
			}
		}
	}
	return false
}

// SinglePageReport wraps one rendered page in a report.
func SinglePageReport(page *Page, now time.Time) *Report {
	r := &Report{Started: now, Now: now}
	r.add(page, OutputPath(page.Path))
	return r
}
