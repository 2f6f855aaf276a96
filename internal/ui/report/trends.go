package report

import (
	"classlint/internal/data/history"
	"encoding/json"
	"fmt"
	"strings"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRun\tClasses\tFindings\tDeltaFindings\tFindingsPerClass\n")
	for _, point := range report.Points {
		fmt.Fprintf(&buf, "%s\t%s\t%d\t%d\t%d\t%.2f\n",
			point.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.ClassCount,
			point.FindingCount,
			point.DeltaFindings,
			point.FindingsPerClass,
		)
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
