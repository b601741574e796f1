// Package futurelink rewrites "future link" markers in HTML content.
//
// A marker embeds a destination and a go-live date around a piece of anchor
// text:
//
//	[[example.org/launch|2026-03-01]]our launch post[[end]]
//
// Once the go-live date has passed the marker becomes a hyperlink around the
// anchor text; before that only the anchor text is left. Older content may use
// the legacy form <-example.org/launch|2026-03-01->our launch post<->.
//
// A Filter holds no per-call state and may be shared between goroutines. Every
// call returns its own diagnostics in the Result.
package futurelink

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultMaxIterations bounds how many markers one call will rewrite or hold.
// Malformed start tokens are skipped without counting.
const DefaultMaxIterations = 10

// Options configures a Filter. Zero values select defaults.
type Options struct {
	// Syntaxes are processed in order. Defaults to DefaultSyntaxes.
	Syntaxes []Syntax
	// MaxIterations caps the markers visited per call, malformed ones included.
	MaxIterations int
	// Hold, when set, masks markers whose URL it accepts.
	Hold HoldFunc
	// Location is used for go-live dates that carry no zone. Defaults to UTC.
	Location *time.Location
}

// RenderContext is supplied by the host for each invocation.
type RenderContext struct {
	// Eligible is true only for the canonical rendering of a qualifying
	// document. Ineligible content is returned unchanged.
	Eligible bool
	// Now is the single instant all markers of this call are compared against.
	// A zero value samples time.Now once.
	Now time.Time
}

// Filter rewrites future link markers.
type Filter struct {
	opts Options
}

// New returns a Filter with defaults applied to opts.
func New(opts Options) *Filter {
	if len(opts.Syntaxes) == 0 {
		opts.Syntaxes = DefaultSyntaxes
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Filter{opts: opts}
}

// Options returns the effective options.
func (f *Filter) Options() Options { return f.opts }

var defaultFilter = New(Options{})

// TransformContent runs the default filter and returns only the content.
func TransformContent(content string, rc RenderContext) string {
	return defaultFilter.Transform(content, rc).Content
}

// Transform rewrites every marker in content. It never fails: malformed
// markers, unreadable dates and runaway input are reported as diagnostics.
func (f *Filter) Transform(content string, rc RenderContext) Result {
	res := Result{Content: content}
	if !rc.Eligible || !f.mayContainMarkers(content) {
		return res
	}
	now := rc.Now
	if now.IsZero() {
		now = time.Now()
	}

	p := &pass{opts: f.opts, now: now, text: html.EscapeString(content)}
	for _, syn := range f.opts.Syntaxes {
		if !p.run(syn) {
			break
		}
	}
	p.restore()

	out := html.UnescapeString(p.text)
	if p.aborted {
		out += iterationNotice(f.opts.MaxIterations)
	}

	res.Content = out
	res.Changed = out != content
	res.Aborted = p.aborted
	res.Markers = p.markers
	res.Diagnostics = p.diags
	return res
}

// mayContainMarkers is the fast path: without an end token there is nothing to pair.
func (f *Filter) mayContainMarkers(content string) bool {
	for _, syn := range f.opts.Syntaxes {
		if strings.Contains(content, syn.rawEnd()) {
			return true
		}
	}
	return false
}

func iterationNotice(limit int) string {
	return fmt.Sprintf("\n<!-- futurelink: more than %d markers, remaining markers were not processed -->", limit)
}
