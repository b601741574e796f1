package publish

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/futurelink/internal/futurelink"
)

// Formatter writes a report for humans or machines.
type Formatter interface {
	Format(w io.Writer, report *Report) error
}

// NewFormatter returns the formatter registered for name ("text" or "json").
func NewFormatter(name string, useColor bool) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return NewTextFormatter(useColor), nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

const (
	colorRed    = "#FF6188"
	colorOrange = "#FC9867"
	colorGreen  = "#A9DC76"
	colorCyan   = "#78DCE8"
	colorDim    = "#727072"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	useColor bool
	linked   lipgloss.Style
	stripped lipgloss.Style
	held     lipgloss.Style
	warn     lipgloss.Style
	err      lipgloss.Style
	dim      lipgloss.Style
	title    lipgloss.Style
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(useColor bool) *TextFormatter {
	return &TextFormatter{
		useColor: useColor,
		linked:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		stripped: lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
		held:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan)),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorOrange)),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)).Bold(true),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
		title:    lipgloss.NewStyle().Bold(true),
	}
}

func (f *TextFormatter) paint(s lipgloss.Style, text string) string {
	if !f.useColor {
		return text
	}
	return s.Render(text)
}

// Format outputs the report in text form.
func (f *TextFormatter) Format(w io.Writer, report *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", f.paint(f.title, "Future links as of"), report.Now.Format("2006-01-02 15:04:05 MST"))
	b.WriteString(strings.Repeat("━", 60) + "\n")

	for _, p := range report.Pages {
		if len(p.Markers) == 0 && len(p.Diagnostics) == 0 {
			continue
		}
		b.WriteString(f.paint(f.title, p.Path))
		if !p.Eligible {
			b.WriteString(f.paint(f.dim, " (not eligible)"))
		}
		b.WriteString("\n")
		for _, m := range p.Markers {
			fmt.Fprintf(&b, "  %s %s %s\n", f.decision(m.Decision), m.Payload.URL, f.paint(f.dim, goLive(m.Payload)))
		}
		for _, d := range p.Diagnostics {
			if d.Kind == futurelink.KindHeld {
				continue
			}
			style := f.warn
			if d.Kind == futurelink.KindIterationLimit {
				style = f.err
			}
			fmt.Fprintf(&b, "  %s %s\n", f.paint(style, "! "+string(d.Kind)), d.Message)
		}
		b.WriteString("\n")
	}

	t := report.Total()
	b.WriteString(strings.Repeat("━", 60) + "\n")
	fmt.Fprintf(&b, "%d page%s, %d marker%s: %s linked, %s pending, %s held\n",
		t.Pages, pluralize(t.Pages), t.Markers, pluralize(t.Markers),
		f.paint(f.linked, fmt.Sprint(t.Linked)),
		f.paint(f.stripped, fmt.Sprint(t.Stripped)),
		f.paint(f.held, fmt.Sprint(t.Held)))
	if report.Copied > 0 {
		fmt.Fprintf(&b, "%d other file%s copied\n", report.Copied, pluralize(report.Copied))
	}
	if t.Aborted > 0 {
		fmt.Fprintln(&b, f.paint(f.err, fmt.Sprintf("%d page%s hit the marker limit", t.Aborted, pluralize(t.Aborted))))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) decision(d futurelink.Decision) string {
	label := fmt.Sprintf("%-8s", d)
	switch d {
	case futurelink.DecisionLinked:
		return f.paint(f.linked, label)
	case futurelink.DecisionHeld:
		return f.paint(f.held, label)
	default:
		return f.paint(f.stripped, label)
	}
}

func goLive(p futurelink.Payload) string {
	if !p.Parsed {
		if p.GoLiveRaw == "" {
			return "(no date)"
		}
		return fmt.Sprintf("(unreadable date %q)", p.GoLiveRaw)
	}
	return p.GoLive.Format("2006-01-02 15:04 MST")
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// JSONFormatter formats reports as indented JSON.
type JSONFormatter struct{}

type jsonReport struct {
	*Report
	Totals Totals `json:"totals"`
}

// Format outputs the report as JSON.
func (f *JSONFormatter) Format(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Report: report, Totals: report.Total()})
}
