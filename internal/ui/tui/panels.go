package tui

import (
	"classlint/internal/data/history"
	"fmt"
	"path/filepath"
	"strings"
)

func renderHelp(m model) string {
	keys := "Keys: tab panel | / filter | enter show findings | t trend overlay | q quit"
	if m.mode == panelFindings {
		keys = "Keys: tab panel | / filter | esc clear check filter | t trend overlay | q quit"
	}
	return statusStyle.Render(keys)
}

func renderChecksPanel(m model) string {
	summary := m.checkList.View()
	if len(m.counts) == 0 {
		return summary + "\n\n" + statusStyle.Render("No checks reported findings.")
	}
	idx := m.checkList.Index()
	if idx < 0 || idx >= len(m.counts) {
		idx = 0
	}
	selected := m.counts[idx]
	details := strings.Join([]string{
		"Selected Check",
		fmt.Sprintf("  Name: %s", selected.name),
		fmt.Sprintf("  Category: %s", selected.category),
		fmt.Sprintf("  Findings: %d", selected.count),
		"  Press enter to list its findings.",
	}, "\n")
	return summary + "\n\n" + details
}

func renderTrendOverlay(report *history.TrendReport) string {
	if report == nil || len(report.Points) == 0 {
		return statusStyle.Render("Trend overlay unavailable (run with --save to record history).")
	}
	last := report.Points[len(report.Points)-1]
	return strings.Join([]string{
		"Trend Overlay",
		fmt.Sprintf("  Runs: %d | Latest: %s", report.RunCount, last.Timestamp.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("  Findings: %d (%+d)", last.FindingCount, last.DeltaFindings),
		fmt.Sprintf("  Findings per class: %.2f over %d classes", last.FindingsPerClass, last.ClassCount),
	}, "\n")
}

func renderFooter(m model) string {
	if m.lastErr != nil {
		return principleStyle.Render("Analysis failed: " + m.lastErr.Error())
	}
	if len(m.changed) == 0 {
		return ""
	}
	names := make([]string, 0, len(m.changed))
	for _, p := range m.changed {
		names = append(names, filepath.Base(p))
	}
	if len(names) > 5 {
		names = append(names[:5], fmt.Sprintf("... %d more", len(m.changed)-5))
	}
	return statusStyle.Render("Changed: " + strings.Join(names, ", "))
}
