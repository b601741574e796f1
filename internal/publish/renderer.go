package publish

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/futurelink"
	"git.home.luguber.info/inful/futurelink/internal/logfields"
	"git.home.luguber.info/inful/futurelink/internal/metrics"
)

// Page is one rendered document.
type Page struct {
	Path     string // slash-separated, relative to the content root
	HTML     string
	Eligible bool
	Result   futurelink.Result
}

// Renderer turns a single source document into HTML with its future links resolved.
// It is safe for concurrent use.
type Renderer struct {
	filter   *futurelink.Filter
	eligible []string
	markdown goldmark.Markdown
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewRenderer creates a renderer. eligible holds glob patterns matched against
// the relative path and the base name; recorder may be nil.
func NewRenderer(filter *futurelink.Filter, eligible []string, recorder metrics.Recorder) *Renderer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Renderer{
		filter:   filter,
		eligible: eligible,
		// Markers are resolved before conversion and leave raw <a> tags behind.
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		recorder: recorder,
		logger:   slog.Default(),
	}
}

// IsEligible reports whether the page at rel gets its markers resolved.
func (r *Renderer) IsEligible(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, pattern := range r.eligible {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Render resolves markers in src and converts Markdown sources to HTML. now is
// the instant every marker of the page is compared against.
func (r *Renderer) Render(ctx context.Context, rel string, src []byte, now time.Time) (*Page, error) {
	page := &Page{Path: filepath.ToSlash(rel), Eligible: r.IsEligible(rel)}

	start := time.Now()
	res := r.filter.Transform(string(src), futurelink.RenderContext{Eligible: page.Eligible, Now: now})
	r.record(res, page.Eligible, time.Since(start))
	r.logDiagnostics(ctx, page.Path, res)
	page.Result = res

	if !isMarkdown(rel) {
		page.HTML = res.Content
		return page, nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(res.Content), &buf); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "markdown conversion failed").
			WithContext("path", page.Path).
			Build()
	}
	page.HTML = buf.String()
	return page, nil
}

func (r *Renderer) record(res futurelink.Result, eligible bool, d time.Duration) {
	r.recorder.ObserveTransformDuration(d)
	switch {
	case res.Aborted:
		r.recorder.IncTransformOutcome(metrics.OutcomeAborted)
	case res.Changed:
		r.recorder.IncTransformOutcome(metrics.OutcomeRewritten)
	case !eligible || len(res.Markers) == 0 && len(res.Diagnostics) == 0:
		r.recorder.IncTransformOutcome(metrics.OutcomeSkipped)
	default:
		r.recorder.IncTransformOutcome(metrics.OutcomeUnchanged)
	}
	for _, dec := range []futurelink.Decision{futurelink.DecisionLinked, futurelink.DecisionStripped, futurelink.DecisionHeld} {
		r.recorder.AddMarkers(string(dec), res.Count(dec))
	}
	for _, diag := range res.Diagnostics {
		r.recorder.IncDiagnostic(string(diag.Kind))
	}
}

func (r *Renderer) logDiagnostics(ctx context.Context, rel string, res futurelink.Result) {
	for _, d := range res.Diagnostics {
		attrs := []slog.Attr{
			logfields.File(rel),
			logfields.Kind(string(d.Kind)),
			logfields.Syntax(d.Syntax),
			logfields.Offset(d.Offset),
		}
		if d.Target != "" {
			attrs = append(attrs, logfields.Target(d.Target))
		}
		r.logger.LogAttrs(ctx, d.Kind.Level(), d.Message, attrs...)
	}
	if len(res.Markers) > 0 {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "Resolved future links",
			logfields.File(rel),
			logfields.Markers(len(res.Markers)),
			logfields.Linked(res.Count(futurelink.DecisionLinked)),
			logfields.Held(res.Count(futurelink.DecisionHeld)))
	}
}

func isMarkdown(rel string) bool {
	ext := strings.ToLower(filepath.Ext(rel))
	return ext == ".md" || ext == ".markdown"
}

// OutputPath maps a source path to the path it is published under.
func OutputPath(rel string) string {
	if isMarkdown(rel) {
		return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	}
	return rel
}
