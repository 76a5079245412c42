// Package semver orders recipe versions and matches version preference
// patterns.
//
// Versions are parsed leniently with github.com/Masterminds/semver/v3, so
// "2.39" and "6.6" are accepted as 2.39.0 and 6.6.0. A version that does not
// parse ("9.6p1", "git") is kept as text; it ranks below every semantic
// version and compares lexically against other text versions.
package semver

import (
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a recipe version as written in a manifest.
type Version struct {
	raw string
	v   *mm.Version
}

// Parse never fails; see Semantic.
func Parse(raw string) Version {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{raw: raw}
	}
	return Version{raw: raw, v: v}
}

// Semantic reports whether the version parsed as a semantic version.
func (v Version) Semantic() bool {
	return v.v != nil
}

// String returns the version exactly as written.
func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or 1 as a is lower than, equal to or higher than b.
func Compare(a, b Version) int {
	switch {
	case a.Semantic() && b.Semantic():
		return a.v.Compare(b.v)
	case a.Semantic():
		return 1
	case b.Semantic():
		return -1
	default:
		return strings.Compare(a.raw, b.raw)
	}
}

// CompareRaw compares two version strings.
func CompareRaw(a, b string) int {
	return Compare(Parse(a), Parse(b))
}

// Pattern is a version preference such as "6.6%", ">=6.2 <7" or "2.39".
type Pattern struct {
	raw        string
	prefix     string
	constraint *mm.Constraints
}

// ParsePattern classifies raw. Patterns are tried in order:
//   - "" matches everything
//   - a trailing "%" matches any suffix ("6.6%" matches "6.6.12")
//   - a semver constraint, applied to semantic versions only
//   - anything else must equal the version text
func ParsePattern(raw string) Pattern {
	raw = strings.TrimSpace(raw)
	p := Pattern{raw: raw}
	switch {
	case raw == "":
	case strings.HasSuffix(raw, "%"):
		p.prefix = strings.TrimSuffix(raw, "%")
	default:
		if c, err := mm.NewConstraint(raw); err == nil {
			p.constraint = c
		}
	}
	return p
}

func (p Pattern) String() string {
	return p.raw
}

// Match reports whether version satisfies the pattern.
func (p Pattern) Match(version string) bool {
	switch {
	case p.raw == "":
		return true
	case strings.HasSuffix(p.raw, "%"):
		return strings.HasPrefix(version, p.prefix)
	}
	if p.constraint != nil {
		if v := Parse(version); v.Semantic() {
			return p.constraint.Check(v.v)
		}
	}
	return p.raw == version
}

// MatchPattern is ParsePattern(pattern).Match(version).
func MatchPattern(pattern, version string) bool {
	return ParsePattern(pattern).Match(version)
}
