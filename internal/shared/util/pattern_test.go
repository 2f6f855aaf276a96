package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Match(t *testing.T) {
	cases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"com/acme", "com/acme/Order", true},
		{"com/acme", "com/acmeco/Order", false},
		{"com/acme/*", "com/acme/Order", true},
		{"com/acme/*", "com/acme/web/OrderController", false},
		{"com/acme/**", "com/acme/web/OrderController", true},
		{"**/*Test", "com/acme/OrderTest", true},
		{"*.jar", "lib.jar", true},
		{"**/generated/**", "build/generated/Foo.class", true},
	}
	for _, tc := range cases {
		p, err := CompilePattern(tc.pattern)
		require.NoError(t, err, tc.pattern)
		assert.Equal(t, tc.want, p.Match(tc.name), "%s vs %s", tc.pattern, tc.name)
	}
}

func TestCompilePattern_Errors(t *testing.T) {
	_, err := CompilePattern("  ")
	assert.Error(t, err)

	_, err = CompilePatterns([]string{"com/acme", "com/[acme"})
	assert.Error(t, err)
}

func TestMatchAnyAndSpecificity(t *testing.T) {
	patterns, err := CompilePatterns([]string{"org/lib", "com/acme/**"})
	require.NoError(t, err)

	assert.True(t, MatchAny(patterns, "com/acme/x/Y"))
	assert.False(t, MatchAny(patterns, "net/other/Z"))
	assert.False(t, MatchAny(nil, "com/acme/x/Y"))
	assert.Greater(t, patterns[1].Specificity(), patterns[0].Specificity())
	assert.Equal(t, "com/acme/**", patterns[1].String())
}

func TestClassPattern(t *testing.T) {
	assert.Equal(t, "com/acme/gen/**", ClassPattern("com.acme.gen.**"))
	assert.Equal(t, "com/acme/*", ClassPattern("com/acme/*"))
}
