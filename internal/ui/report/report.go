// Package report renders analysis results in every supported output format.
package report

import (
	"bytes"
	"classlint/internal/ui/report/formats"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTSV      Format = "tsv"
	FormatSARIF    Format = "sarif"
)

// Formats lists the supported formats in the order help text shows them.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON, FormatTSV, FormatSARIF}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatMarkdown, FormatJSON, FormatTSV, FormatSARIF:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Extension is the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatTSV:
		return ".tsv"
	case FormatSARIF:
		return ".sarif"
	default:
		return ".txt"
	}
}

type Options struct {
	// Color styles text output for a terminal.
	Color bool
	// Collapsible folds long markdown tables.
	Collapsible bool
}

type generator interface {
	Generate(w io.Writer, data formats.ReportData) error
}

func newGenerator(format Format, opts Options) (generator, error) {
	switch format {
	case FormatText:
		return formats.NewTextGenerator(formats.TextOptions{Color: opts.Color}), nil
	case FormatMarkdown:
		return formats.NewMarkdownGenerator(formats.MarkdownOptions{Collapsible: opts.Collapsible}), nil
	case FormatJSON:
		return formats.NewJSONGenerator(), nil
	case FormatTSV:
		return formats.NewTSVGenerator(), nil
	case FormatSARIF:
		return formats.NewSARIFGenerator(), nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

func Write(w io.Writer, format Format, data formats.ReportData, opts Options) error {
	gen, err := newGenerator(format, opts)
	if err != nil {
		return err
	}
	return gen.Generate(w, data)
}

// WriteFile renders the report into memory and replaces path atomically, so
// a failed render never leaves a truncated report behind.
func WriteFile(path string, format Format, data formats.ReportData, opts Options) error {
	opts.Color = false
	var buf bytes.Buffer
	if err := Write(&buf, format, data, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory for %q: %w", path, err)
	}
	return replaceFile(path, buf.Bytes())
}

func replaceFile(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".classlint-report-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	writeErr := error(nil)
	if _, err := tmp.Write(content); err != nil {
		writeErr = fmt.Errorf("write temp file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp file %q: %w", tmpName, err)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return writeErr
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace file %q: %w", path, err)
	}
	return nil
}
