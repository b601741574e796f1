package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/publish"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File       string `arg:"" optional:"" help:"Document to render (defaults to stdin)" type:"existingfile"`
	Output     string `short:"o" help:"Write the result to this file instead of stdout"`
	Now        string `help:"Evaluate go-live dates against this time instead of the clock"`
	Ineligible bool   `help:"Treat the document as a non-canonical rendering and leave markers alone"`
	Markdown   bool   `help:"Treat stdin as Markdown and convert it to HTML"`
}

func (r *RenderCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	now, err := parseNow(r.Now, cfg)
	if err != nil {
		return err
	}
	filter, err := cfg.NewFilter()
	if err != nil {
		return err
	}

	name, src, err := r.read()
	if err != nil {
		return err
	}

	// Eligibility is decided by the flag, not by the configured globs.
	var eligible []string
	if !r.Ineligible {
		eligible = []string{"*"}
	}
	page, err := publish.NewRenderer(filter, eligible, nil).Render(context.Background(), name, src, now)
	if err != nil {
		return err
	}
	return r.write(page.HTML)
}

func (r *RenderCmd) read() (string, []byte, error) {
	if r.File == "" {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read stdin").Build()
		}
		name := "stdin.html"
		if r.Markdown {
			name = "stdin.md"
		}
		return name, src, nil
	}
	src, err := os.ReadFile(r.File)
	if err != nil {
		return "", nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", r.File).
			Build()
	}
	return filepath.Base(r.File), src, nil
}

func (r *RenderCmd) write(out string) error {
	if r.Output == "" {
		_, err := io.WriteString(os.Stdout, out)
		return err
	}
	if err := os.WriteFile(r.Output, []byte(out), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", r.Output).
			Build()
	}
	return nil
}
