package report

import (
	"bytes"
	"classlint/internal/engine/checks"
	"classlint/internal/ui/report/formats"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() formats.ReportData {
	return formats.ReportData{
		Project: "shop",
		Classes: 2,
		Checks:  []string{"HashCodeEquals"},
		Findings: []checks.Finding{{
			CheckName: "HashCodeEquals",
			Category:  checks.Principle,
			Location:  "com.acme.Money",
			Message:   "overrides equals without hashCode",
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"md", FormatMarkdown, false},
		{" sarif ", FormatSARIF, false},
		{"tsv", FormatTSV, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatsAndExtensions(t *testing.T) {
	want := map[Format]string{
		FormatText:     ".txt",
		FormatMarkdown: ".md",
		FormatJSON:     ".json",
		FormatTSV:      ".tsv",
		FormatSARIF:    ".sarif",
	}
	assert.Len(t, Formats(), len(want))
	for _, f := range Formats() {
		assert.Equal(t, want[f], f.Extension())
	}
}

func TestWriteEveryFormat(t *testing.T) {
	for _, f := range Formats() {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, f, sampleData(), Options{}), f)
		assert.NotEmpty(t, buf.String(), f)
	}
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), sampleData(), Options{}))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.tsv")
	require.NoError(t, WriteFile(path, FormatTSV, sampleData(), Options{Color: true}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "HashCodeEquals\tPrinciple\tcom.acme.Money")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestReplaceBetweenMarkers(t *testing.T) {
	content := "# Doc\n<!-- classlint:summary:start -->\nold\n<!-- classlint:summary:end -->\ntail\n"
	got, err := ReplaceBetweenMarkers(content, "summary", "new body\n")
	require.NoError(t, err)
	assert.Equal(t, "# Doc\n<!-- classlint:summary:start -->\nnew body\n<!-- classlint:summary:end -->\ntail\n", got)

	crlf := strings.ReplaceAll(content, "\n", "\r\n")
	got, err = ReplaceBetweenMarkers(crlf, "summary", "a\nb")
	require.NoError(t, err)
	assert.Contains(t, got, "start -->\r\na\r\nb\r\n<!--")
}

func TestReplaceBetweenMarkers_Errors(t *testing.T) {
	_, err := ReplaceBetweenMarkers("x", " ", "y")
	assert.Error(t, err)

	_, err = ReplaceBetweenMarkers("no markers", "summary", "y")
	assert.Error(t, err)

	reversed := "<!-- classlint:s:end -->\n<!-- classlint:s:start -->"
	_, err = ReplaceBetweenMarkers(reversed, "s", "y")
	assert.Error(t, err)
}

func TestInjectSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	doc := "intro\n<!-- classlint:analysis:start -->\n<!-- classlint:analysis:end -->\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	require.NoError(t, InjectSummary(path, "analysis", sampleData()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "| HashCodeEquals | Principle | 1 |")
	assert.True(t, strings.HasPrefix(string(content), "intro\n"))
}
