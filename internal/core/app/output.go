package app

import (
	"classlint/internal/core/app/helpers"
	"classlint/internal/core/ports"
	"classlint/internal/engine/checks"
	"classlint/internal/shared/version"
	"classlint/internal/ui/report"
	"classlint/internal/ui/report/formats"
	"io"
	"os"
	"strings"
)

// ReportRequest overrides the [output] section for one report.
type ReportRequest struct {
	Format string
	// Output is a file path; "-" forces stdout.
	Output string
	Color  bool
	Stdout io.Writer
}

// WriteReport renders res and returns the file written, or "" for stdout.
func (a *App) WriteReport(req ReportRequest, res ports.RunResult) (string, error) {
	snap := a.snapshot()

	formatName := req.Format
	if strings.TrimSpace(formatName) == "" {
		formatName = snap.cfg.Output.Format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return "", err
	}

	path := snap.paths.OutputPath
	switch out := strings.TrimSpace(req.Output); out {
	case "":
	case "-":
		path = ""
	default:
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		path = helpers.ResolveOutputPath(out, cwd)
	}

	data := formats.FromRunResult(a.ProjectKey(), version.Version, res, ranEntries(snap.registry.Entries(), res.Checks))
	opts := report.Options{Color: req.Color, Collapsible: true}
	if path == "" {
		w := req.Stdout
		if w == nil {
			w = os.Stdout
		}
		return "", report.Write(w, format, data, opts)
	}
	if marker := snap.cfg.Output.InjectMarker; marker != "" && format == report.FormatMarkdown {
		if _, err := os.Stat(path); err == nil {
			if err := report.InjectSummary(path, marker, data); err != nil {
				return "", err
			}
			return path, nil
		}
	}
	if err := report.WriteFile(path, format, data, opts); err != nil {
		return "", err
	}
	return path, nil
}

func ranEntries(all []checks.Entry, ran []string) []checks.Entry {
	names := make(map[string]bool, len(ran))
	for _, n := range ran {
		names[n] = true
	}
	out := make([]checks.Entry, 0, len(ran))
	for _, e := range all {
		if names[e.Name] {
			out = append(out, e)
		}
	}
	return out
}
