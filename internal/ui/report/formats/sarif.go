package formats

import (
	"classlint/internal/engine/checks"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const informationURI = "https://github.com/classlint/classlint"

var lineSuffix = regexp.MustCompile(`^(.*):(\d+)$`)

type SARIFGenerator struct{}

func NewSARIFGenerator() *SARIFGenerator {
	return &SARIFGenerator{}
}

// Generate writes a SARIF 2.1.0 log with one rule per check. Findings are
// located logically by class member; a trailing ":line" becomes the region.
func (s *SARIFGenerator) Generate(w io.Writer, data ReportData) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("create sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("classlint", informationURI)
	if data.Version != "" {
		run.Tool.Driver.Version = &data.Version
	}

	for _, entry := range ruleEntries(data) {
		desc := entry.Description
		if desc == "" {
			desc = entry.Name
		}
		run.AddRule(entry.Name).
			WithDescription(desc).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: sarifLevel(entry.Category),
			})
	}

	for _, f := range data.Findings {
		result := sarif.NewRuleResult(f.CheckName).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(sarifLevel(f.Category)).
			WithLocations([]*sarif.Location{findingLocation(f.Location)})
		run.AddResult(result)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}

func findingLocation(location string) *sarif.Location {
	name := location
	loc := sarif.NewLocation()
	if m := lineSuffix.FindStringSubmatch(location); m != nil {
		name = m[1]
		if line, err := strconv.Atoi(m[2]); err == nil && line > 0 {
			loc.WithPhysicalLocation(sarif.NewPhysicalLocation().
				WithRegion(sarif.NewRegion().WithStartLine(line)))
		}
	}
	kind := "member"
	loc.LogicalLocations = []*sarif.LogicalLocation{{
		FullyQualifiedName: &name,
		Kind:               &kind,
	}}
	return loc
}

// sarifLevel maps categories to result levels: broken principles warn,
// pattern and style advice are notes.
func sarifLevel(c checks.Category) string {
	switch c {
	case checks.Principle:
		return "warning"
	case checks.Pattern, checks.Style:
		return "note"
	default:
		return "none"
	}
}
