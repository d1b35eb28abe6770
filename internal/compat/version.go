package compat

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Version is the leading numeric token of a browser version string, split
// into integer components. "15.2-15.3" parses as 15.2, "TP" does not parse.
type Version struct {
	Major int
	Minor int
}

var leadingVersion = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseVersion reads the first numeric token of s.
func ParseVersion(s string) (Version, bool) {
	tok := leadingVersion.FindString(s)
	if tok == "" {
		return Version{}, false
	}
	return parseNumeric(tok)
}

func parseNumeric(tok string) (Version, bool) {
	major, minor, _ := strings.Cut(tok, ".")
	var v Version
	var err error
	if v.Major, err = strconv.Atoi(major); err != nil {
		return Version{}, false
	}
	if minor != "" {
		if v.Minor, err = strconv.Atoi(minor); err != nil {
			return Version{}, false
		}
	}
	return v, true
}

// Compare returns -1, 0 or +1. Qualifiers past the leading token are ignored,
// so "17" and "17.0" compare equal.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	default:
		return cmpInt(v.Minor, o.Minor)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var (
	rangeKey   = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s*-\s*(\d+(?:\.\d+)*)`)
	ceilingKey = regexp.MustCompile(`^≤\s*(\d+(?:\.\d+)?)`)
)

// resolveStat finds the support value recorded for version in one agent's
// legacy stats table. Resolution order:
//  1. exact key
//  2. a "lo-hi" key whose range contains the version
//  3. a "≤N" key whose ceiling is at or above the version
//  4. the greatest plain numeric key at or below the version
//
// Keys are visited in sorted order so ties resolve the same way every run.
func resolveStat(stats map[string]string, version string) (string, bool) {
	if val, ok := stats[version]; ok {
		return val, true
	}
	v, ok := ParseVersion(version)
	if !ok {
		return "", false
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		m := rangeKey.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		lo, okLo := ParseVersion(m[1])
		hi, okHi := ParseVersion(m[2])
		if okLo && okHi && v.Compare(lo) >= 0 && v.Compare(hi) <= 0 {
			return stats[k], true
		}
	}

	for _, k := range keys {
		m := ceilingKey.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		if hi, ok := ParseVersion(m[1]); ok && v.Compare(hi) <= 0 {
			return stats[k], true
		}
	}

	var (
		best    Version
		bestKey string
		found   bool
	)
	for _, k := range keys {
		if rangeKey.MatchString(k) || ceilingKey.MatchString(k) {
			continue
		}
		kv, ok := ParseVersion(k)
		if !ok || kv.Compare(v) > 0 {
			continue
		}
		if !found || kv.Compare(best) > 0 {
			best, bestKey, found = kv, k, true
		}
	}
	if !found {
		return "", false
	}
	return stats[bestKey], true
}

// supportedValue reports whether a legacy stats value means the feature works:
// "y" (yes) or "a" (partial) anywhere in the value.
func supportedValue(val string) bool {
	return strings.ContainsAny(val, "ya")
}
