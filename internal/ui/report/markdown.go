package report

import (
	"classlint/internal/ui/report/formats"
	"fmt"
	"os"
	"strings"
)

// InjectSummary replaces the block between
// <!-- classlint:<marker>:start --> and <!-- classlint:<marker>:end --> in an
// existing markdown file with the run summary.
func InjectSummary(filePath, marker string, data formats.ReportData) error {
	summary := formats.NewMarkdownGenerator(formats.MarkdownOptions{}).Summary(data)
	return InjectReport(filePath, marker, summary)
}

func InjectReport(filePath, marker, body string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", filePath, err)
	}

	next, err := ReplaceBetweenMarkers(string(content), marker, body)
	if err != nil {
		return err
	}
	return replaceFile(filePath, []byte(next))
}

func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", fmt.Errorf("markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- classlint:%s:start -->", marker)
	end := fmt.Sprintf("<!-- classlint:%s:end -->", marker)

	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", fmt.Errorf("markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", fmt.Errorf("invalid marker order for %q", marker)
	}

	prefix := content[:startIdx+len(start)]
	suffix := content[endIdx:]
	body := strings.TrimRight(replacement, "\r\n")
	if newline == "\r\n" {
		body = strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n")
	}

	return prefix + newline + body + newline + suffix, nil
}
