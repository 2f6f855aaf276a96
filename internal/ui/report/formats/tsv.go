package formats

import (
	"fmt"
	"io"
	"strings"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

// Generate writes one row per finding. Tabs and newlines inside fields are
// replaced with spaces so every row has exactly four columns.
func (t *TSVGenerator) Generate(w io.Writer, data ReportData) error {
	var buf strings.Builder
	buf.WriteString("Check\tCategory\tLocation\tMessage\n")
	for _, f := range data.Findings {
		fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\n",
			tsvField(f.CheckName),
			tsvField(string(f.Category)),
			tsvField(f.Location),
			tsvField(f.Message),
		)
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
}
