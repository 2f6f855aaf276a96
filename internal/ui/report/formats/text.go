package formats

import (
	"classlint/internal/engine/checks"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	categoryStyles = map[checks.Category]lipgloss.Style{
		checks.Principle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		checks.Pattern:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		checks.Style:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	}
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type TextOptions struct {
	// Color enables ANSI styling; leave it off for files and pipes.
	Color bool
}

type TextGenerator struct {
	opts TextOptions
}

func NewTextGenerator(opts TextOptions) *TextGenerator {
	return &TextGenerator{opts: opts}
}

// Generate writes one line per finding in engine order, then a per-check
// summary and any load failures.
func (g *TextGenerator) Generate(w io.Writer, data ReportData) error {
	var b strings.Builder
	for _, f := range data.Findings {
		category := "[" + strings.ToUpper(string(f.Category)) + "]"
		location := f.Location
		if g.opts.Color {
			if style, ok := categoryStyles[f.Category]; ok {
				category = style.Render(category)
			}
			location = locationStyle.Render(location)
		}
		fmt.Fprintf(&b, "%s %s at %s: %s\n", category, f.CheckName, location, f.Message)
	}

	if len(data.Findings) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(g.header("Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  classes analyzed: %d\n", data.Classes)
	fmt.Fprintf(&b, "  checks run:       %d\n", len(data.Checks))
	fmt.Fprintf(&b, "  findings:         %d\n", len(data.Findings))
	if data.Duration > 0 {
		fmt.Fprintf(&b, "  duration:         %s\n", data.Duration.Round(1e6))
	}
	for _, c := range countByCheck(data.Findings) {
		fmt.Fprintf(&b, "  %-24s %d\n", c.name, c.count)
	}

	if len(data.LoadFailures) > 0 {
		b.WriteString("\n")
		b.WriteString(g.header(fmt.Sprintf("Load failures (%d)", len(data.LoadFailures))))
		b.WriteString("\n")
		for _, lf := range data.LoadFailures {
			line := fmt.Sprintf("  %s: %s", lf.Path, lf.Error)
			if g.opts.Color {
				line = failureStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (g *TextGenerator) header(s string) string {
	if g.opts.Color {
		return headerStyle.Render(s)
	}
	return s
}
