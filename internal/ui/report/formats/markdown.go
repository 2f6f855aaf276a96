package formats

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type MarkdownOptions struct {
	// Collapsible wraps long finding tables in <details>.
	Collapsible bool
}

type MarkdownGenerator struct {
	opts MarkdownOptions
}

func NewMarkdownGenerator(opts MarkdownOptions) *MarkdownGenerator {
	return &MarkdownGenerator{opts: opts}
}

func (m *MarkdownGenerator) Generate(w io.Writer, data ReportData) error {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Class Analysis Report\n")
	b.WriteString("project: " + nonEmpty(data.Project, "unknown") + "\n")
	b.WriteString("generated_at: " + data.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(data.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Analysis Report\n\n")
	m.writeSummary(&b, data)
	m.writeFindings(&b, data)
	m.writeLoadFailures(&b, data)

	_, err := io.WriteString(w, b.String())
	return err
}

// Summary renders only the summary tables, for injection into other
// documents.
func (m *MarkdownGenerator) Summary(data ReportData) string {
	var b strings.Builder
	m.writeSummary(&b, data)
	return strings.TrimRight(b.String(), "\n")
}

func (m *MarkdownGenerator) writeSummary(b *strings.Builder, data ReportData) {
	b.WriteString("## Executive Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(b, "| Classes Analyzed | %d |\n", data.Classes)
	fmt.Fprintf(b, "| Checks Run | %d |\n", len(data.Checks))
	fmt.Fprintf(b, "| Findings | %d |\n", len(data.Findings))
	fmt.Fprintf(b, "| Load Failures | %d |\n\n", len(data.LoadFailures))

	counts := countByCheck(data.Findings)
	if len(counts) == 0 {
		return
	}
	b.WriteString("| Check | Category | Findings |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, c := range counts {
		fmt.Fprintf(b, "| %s | %s | %d |\n", c.name, c.category, c.count)
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeFindings(b *strings.Builder, data ReportData) {
	b.WriteString("## Findings\n")
	if len(data.Findings) == 0 {
		b.WriteString("No findings.\n\n")
		return
	}

	// Group by check, keeping the engine's order inside each group.
	var order []string
	grouped := make(map[string][]int)
	for i, f := range data.Findings {
		if _, ok := grouped[f.CheckName]; !ok {
			order = append(order, f.CheckName)
		}
		grouped[f.CheckName] = append(grouped[f.CheckName], i)
	}

	for _, name := range order {
		idx := grouped[name]
		fmt.Fprintf(b, "### %s (%s)\n", name, data.Findings[idx[0]].Category)
		rows := make([]string, 0, len(idx))
		for _, i := range idx {
			f := data.Findings[i]
			rows = append(rows, fmt.Sprintf("| `%s` | %s |\n", f.Location, escapeCell(f.Message)))
		}
		m.writeTable(b, fmt.Sprintf("%d findings", len(rows)), len(rows) > 10,
			[]string{"| Location | Message |\n", "| --- | --- |\n"}, rows)
	}
}

func (m *MarkdownGenerator) writeLoadFailures(b *strings.Builder, data ReportData) {
	if len(data.LoadFailures) == 0 {
		return
	}
	b.WriteString("## Load Failures\n")
	rows := make([]string, 0, len(data.LoadFailures))
	for _, lf := range data.LoadFailures {
		rows = append(rows, fmt.Sprintf("| `%s` | %s |\n", lf.Path, escapeCell(lf.Error)))
	}
	m.writeTable(b, "Load failure details", len(rows) > 10,
		[]string{"| Input | Error |\n", "| --- | --- |\n"}, rows)
}

func (m *MarkdownGenerator) writeTable(b *strings.Builder, summary string, long bool, header, rows []string) {
	collapse := m.opts.Collapsible && long
	if collapse {
		fmt.Fprintf(b, "<details>\n<summary>%s</summary>\n\n", summary)
	}
	for _, h := range header {
		b.WriteString(h)
	}
	for _, r := range rows {
		b.WriteString(r)
	}
	if collapse {
		b.WriteString("\n</details>\n")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
