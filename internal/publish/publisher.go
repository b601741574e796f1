// Package publish renders a content tree through the future link filter.
package publish

import (
	"context"
	stdErrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/futurelink/internal/config"
	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/futurelink"
	"git.home.luguber.info/inful/futurelink/internal/logfields"
	"git.home.luguber.info/inful/futurelink/internal/metrics"
)

// Publisher renders every page of the source tree into the output tree.
type Publisher struct {
	content  config.ContentConfig
	renderer *Renderer
	recorder metrics.Recorder
	clock    func() time.Time
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithClock overrides the time source sampled once per run.
func WithClock(clock func() time.Time) Option {
	return func(p *Publisher) { p.clock = clock }
}

// New builds a publisher from the content section of cfg.
func New(cfg *config.Config, filter *futurelink.Filter, recorder metrics.Recorder, opts ...Option) *Publisher {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	p := &Publisher{
		content:  cfg.Content,
		renderer: NewRenderer(filter, cfg.Content.Eligible, recorder),
		recorder: recorder,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Renderer exposes the page renderer used by the publisher.
func (p *Publisher) Renderer() *Renderer { return p.renderer }

// IsPage reports whether rel is rendered rather than copied.
func (p *Publisher) IsPage(rel string) bool {
	ext := strings.ToLower(filepath.Ext(rel))
	return slices.Contains(p.content.Extensions, ext)
}

// Publish walks the source tree once. All pages of a run share one "now".
func (p *Publisher) Publish(ctx context.Context) (*Report, error) {
	report := &Report{Started: p.clock().UTC()}
	report.Now = report.Started

	err := p.publish(ctx, report)
	report.Duration = time.Since(report.Started)
	p.recorder.ObservePublishDuration(report.Duration)
	p.recorder.AddPublishedFiles(len(report.Pages) + report.Copied)

	switch {
	case err == nil:
		p.recorder.IncPublishOutcome(metrics.PublishSuccess)
	case stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded):
		p.recorder.IncPublishOutcome(metrics.PublishCanceled)
	default:
		p.recorder.IncPublishOutcome(metrics.PublishFailed)
	}
	if err != nil {
		return report, err
	}

	slog.Info("Publish completed",
		logfields.Path(p.content.Output),
		logfields.Files(len(report.Pages)+report.Copied),
		logfields.Markers(report.Total().Markers),
		logfields.Duration(report.Duration))
	return report, nil
}

// overlaps reports whether either directory contains the other.
func overlaps(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return true
	}
	inside := func(parent, child string) bool {
		rel, err := filepath.Rel(parent, child)
		return err == nil && !strings.HasPrefix(rel, "..")
	}
	return inside(absA, absB) || inside(absB, absA)
}

// Check renders every page without writing anything.
func (p *Publisher) Check(ctx context.Context) (*Report, error) {
	report := &Report{Started: p.clock().UTC()}
	report.Now = report.Started
	err := p.walk(ctx, func(rel, abs string, page bool) error {
		if !page {
			return nil
		}
		rendered, err := p.renderFile(ctx, rel, abs, report.Now)
		if err != nil {
			return err
		}
		report.add(rendered, OutputPath(rel))
		return nil
	})
	report.Duration = time.Since(report.Started)
	return report, err
}

func (p *Publisher) publish(ctx context.Context, report *Report) error {
	if p.content.Clean {
		if overlaps(p.content.Source, p.content.Output) {
			return errors.ConfigError("refusing to clean an output directory that overlaps the source").
				WithContext("source", p.content.Source).
				WithContext("output", p.content.Output).
				Build()
		}
		if err := os.RemoveAll(p.content.Output); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output directory").
				WithContext("path", p.content.Output).
				Build()
		}
	}
	if err := os.MkdirAll(p.content.Output, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", p.content.Output).
			Build()
	}

	return p.walk(ctx, func(rel, abs string, page bool) error {
		if !page {
			if err := copyFile(abs, filepath.Join(p.content.Output, rel)); err != nil {
				return err
			}
			report.Copied++
			return nil
		}
		rendered, err := p.renderFile(ctx, rel, abs, report.Now)
		if err != nil {
			return err
		}
		out := OutputPath(rel)
		if err := writeFile(filepath.Join(p.content.Output, out), []byte(rendered.HTML)); err != nil {
			return err
		}
		report.add(rendered, filepath.ToSlash(out))
		return nil
	})
}

func (p *Publisher) walk(ctx context.Context, visit func(rel, abs string, page bool) error) error {
	root := p.content.Source
	if _, err := os.Stat(root); err != nil {
		return errors.WrapError(err, errors.CategoryNotFound, "content source not found").
			WithContext("path", root).
			Build()
	}
	outAbs, _ := filepath.Abs(p.content.Output)

	return filepath.WalkDir(root, func(abs string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to walk content").
				WithContext("path", abs).
				Build()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if a, _ := filepath.Abs(abs); a == outAbs {
				return filepath.SkipDir
			}
			if abs != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to relativize path").Build()
		}
		return visit(rel, abs, p.IsPage(rel))
	})
}

func (p *Publisher) renderFile(ctx context.Context, rel, abs string, now time.Time) (*Page, error) {
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read page").
			WithContext("path", rel).
			Build()
	}
	return p.renderer.Render(ctx, rel, src, now)
}

func writeFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			WithContext("path", filepath.Dir(dst)).
			Build()
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
			WithContext("path", dst).
			Build()
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			WithContext("path", filepath.Dir(dst)).
			Build()
	}
	in, err := os.Open(src) // #nosec G304 -- path comes from walking the content root
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to open file").WithContext("path", src).Build()
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) // #nosec G304 -- path is inside the output root
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create file").WithContext("path", dst).Build()
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy file").WithContext("path", dst).Build()
	}
	if err := out.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to close file").WithContext("path", dst).Build()
	}
	return nil
}
