package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	for _, raw := range []string{"2.39", "6.6.21", "1.0.0-rc1", "v1.3.1"} {
		v := Parse(raw)
		assert.True(t, v.Semantic(), raw)
		assert.Equal(t, raw, v.String(), "the original text is kept")
	}
	for _, raw := range []string{"9.6p1", "git", ""} {
		assert.False(t, Parse(raw).Semantic(), raw)
	}
}

func TestCompareRaw(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.36.1", "1.35.0", 1},
		{"1.2", "1.2.0", 0},
		{"2.0.0", "10.0.0", -1},
		{"1.0.0", "git", 1},
		{"git", "1.0.0", -1},
		{"abc", "abd", -1},
		{"9.6p1", "9.6p2", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareRaw(tt.a, tt.b), "CompareRaw(%q, %q)", tt.a, tt.b)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, raw string
		want         bool
	}{
		{"", "anything", true},
		{"6.6%", "6.6.12", true},
		{"6.6%", "6.1.0", false},
		{">=1.0.0 <2.0.0", "1.5.0", true},
		{">=1.0.0 <2.0.0", "2.0.0", false},
		{"~1.4", "1.4.7", true},
		{"1.36.1", "1.36.1", true},
		{"git", "git", true},
		{"git", "1.0.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchPattern(tt.pattern, tt.raw), "MatchPattern(%q, %q)", tt.pattern, tt.raw)
	}
}

func TestParsePattern(t *testing.T) {
	p := ParsePattern(" 6.6% ")
	assert.Equal(t, "6.6%", p.String())
	assert.True(t, p.Match("6.6.21"))
	assert.False(t, p.Match("6.1.80"))
	// A constraint never matches text versions, only an exact string does.
	assert.False(t, ParsePattern(">=1.0").Match("9.6p1"))
}
