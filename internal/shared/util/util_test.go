package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./com/acme  ", expected: "com/acme"},
		{name: "Relative", input: "com/../org/Foo", expected: "org/Foo"},
		{name: "Backslash", input: `build\classes\Foo.class`, expected: "build/classes/Foo.class"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, NormalizePatternPath(tc.input))
		})
	}
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	assert.True(t, HasPathPrefix("com/acme/Order", "com/acme"))
	assert.True(t, HasPathPrefix("com/acme", "com/acme/"))
	assert.False(t, HasPathPrefix("com/acmeco/Order", "com/acme"))
	assert.False(t, HasPathPrefix("com/acme", ""))
	assert.True(t, HasPathPrefix("", "."))
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()
	keys := SortedStringKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Empty(t, SortedStringKeys(map[string]bool{}))
}

func TestWriteFileWithDirs(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "trend.tsv")

	require.NoError(t, WriteFileWithDirs(path, []byte("ok"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestReadRuntimeStats(t *testing.T) {
	stats := ReadRuntimeStats()
	assert.GreaterOrEqual(t, stats.Goroutines, 1)
}
