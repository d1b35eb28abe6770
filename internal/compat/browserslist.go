package compat

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Agent is one concrete browser release, named with caniuse agent ids.
type Agent struct {
	Name    string
	Version string
}

func (a Agent) String() string { return a.Name + " " + a.Version }

// FirefoxESR lists the Firefox extended support releases matched by "Firefox ESR".
var FirefoxESR = []string{"128", "140"}

var deadQueries = []string{"Baidu >= 0", "ie <= 11", "ie_mob <= 11", "bb <= 10", "op_mob <= 12.1", "samsung 4"}

const defaultsQuery = "> 0.5%, last 2 versions, Firefox ESR, not dead"

var browserAliases = map[string]string{
	"chrome":         "chrome",
	"chromeandroid":  "and_chr",
	"and_chr":        "and_chr",
	"edge":           "edge",
	"firefox":        "firefox",
	"ff":             "firefox",
	"fx":             "firefox",
	"firefoxandroid": "and_ff",
	"and_ff":         "and_ff",
	"safari":         "safari",
	"ios":            "ios_saf",
	"ios_saf":        "ios_saf",
	"opera":          "opera",
	"operamini":      "op_mini",
	"op_mini":        "op_mini",
	"operamobile":    "op_mob",
	"op_mob":         "op_mob",
	"samsung":        "samsung",
	"ie":             "ie",
	"explorer":       "ie",
	"explorermobile": "ie_mob",
	"ie_mob":         "ie_mob",
	"android":        "android",
	"ucandroid":      "and_uc",
	"and_uc":         "and_uc",
	"kaios":          "kaios",
	"blackberry":     "bb",
	"bb":             "bb",
	"baidu":          "baidu",
}

var (
	combiner = regexp.MustCompile(`(?i)\s*(,|\bor\b|\band\b)\s*`)

	usageQuery       = regexp.MustCompile(`^([<>]=?)\s*(\d+(?:\.\d+)?|\.\d+)%$`)
	lastQuery        = regexp.MustCompile(`(?i)^last\s+(\d+)\s+versions?$`)
	lastBrowserQuery = regexp.MustCompile(`(?i)^last\s+(\d+)\s+(\w+)\s+versions?$`)
	compareQuery     = regexp.MustCompile(`(?i)^(\w+)\s*([<>]=?)\s*(\d+(?:\.\d+)*)$`)
	rangeQuery       = regexp.MustCompile(`(?i)^(\w+)\s+(\d+(?:\.\d+)*)\s*-\s*(\d+(?:\.\d+)*)$`)
	directQuery      = regexp.MustCompile(`(?i)^(\w+)\s+(tp|all|\d+(?:\.\d+)*)$`)
	sinceQuery       = regexp.MustCompile(`(?i)^since\s+(\d{4})(?:-(\d{2}))?(?:-(\d{2}))?$`)
	esrQuery         = regexp.MustCompile(`(?i)^(?:firefox|ff|fx)\s+esr$`)
)

// Browsers expands target queries against the agent table of the caniuse data.
// It implements the commonly used subset of the browserslist query language.
type Browsers struct {
	agents map[string]AgentData
}

// NewBrowsers builds a query resolver over data.
func NewBrowsers(data *CaniuseData) *Browsers {
	b := &Browsers{agents: map[string]AgentData{}}
	if data != nil {
		b.agents = data.Agents
	}
	return b
}

type queryPart struct {
	text string
	and  bool
	not  bool
}

// Resolve expands queries into concrete agents, sorted by name and then by
// version, newest first. All queries are combined as one comma separated list.
func (b *Browsers) Resolve(queries []string) ([]Agent, error) {
	parts, err := splitQueries(strings.Join(queries, ", "))
	if err != nil {
		return nil, err
	}

	result := map[Agent]bool{}
	for i, p := range parts {
		selected, err := b.selectQuery(p.text)
		if err != nil {
			return nil, err
		}
		switch {
		case p.not:
			if i == 0 {
				return nil, fmt.Errorf("query %q: not cannot come first", p.text)
			}
			for a := range selected {
				delete(result, a)
			}
		case p.and:
			for a := range result {
				if !selected[a] {
					delete(result, a)
				}
			}
		default:
			for a := range selected {
				result[a] = true
			}
		}
	}

	out := make([]Agent, 0, len(result))
	for a := range result {
		out = append(out, a)
	}
	sortAgents(out)
	return out, nil
}

func splitQueries(s string) ([]queryPart, error) {
	var parts []queryPart
	and := false
	rest := strings.TrimSpace(s)
	for rest != "" {
		loc := combiner.FindStringSubmatchIndex(rest)
		text := rest
		next := ""
		nextAnd := false
		if loc != nil {
			text = rest[:loc[0]]
			next = rest[loc[1]:]
			nextAnd = strings.EqualFold(rest[loc[2]:loc[3]], "and")
			if strings.TrimSpace(next) == "" {
				return nil, fmt.Errorf("query %q ends with %q", s, rest[loc[2]:loc[3]])
			}
		}
		text = strings.TrimSpace(text)
		if text != "" {
			p := queryPart{text: text, and: and}
			if lower := strings.ToLower(text); strings.HasPrefix(lower, "not ") {
				p.not = true
				p.text = strings.TrimSpace(text[4:])
			}
			parts = append(parts, p)
		} else if nextAnd || and {
			return nil, fmt.Errorf("empty query around %q", s)
		}
		and = nextAnd
		if loc == nil {
			break
		}
		rest = next
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty browser query")
	}
	return parts, nil
}

func (b *Browsers) selectQuery(q string) (map[Agent]bool, error) {
	out := map[Agent]bool{}
	lower := strings.ToLower(q)

	switch lower {
	case "defaults":
		return b.resolveSet([]string{defaultsQuery})
	case "dead":
		// a replacement dataset may lack some of the dead browsers
		for _, dq := range deadQueries {
			if set, err := b.selectQuery(dq); err == nil {
				for a := range set {
					out[a] = true
				}
			}
		}
		return out, nil
	}

	if esrQuery.MatchString(q) {
		for _, v := range FirefoxESR {
			if b.hasVersion("firefox", v) {
				out[Agent{"firefox", v}] = true
			}
		}
		return out, nil
	}

	if m := usageQuery.FindStringSubmatch(q); m != nil {
		limit, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q, err)
		}
		for name, agent := range b.agents {
			for _, v := range agent.VersionList {
				if compareFloat(v.GlobalUsage, m[1], limit) {
					out[Agent{name, v.Version}] = true
				}
			}
		}
		return out, nil
	}

	if m := lastQuery.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[1])
		for name := range b.agents {
			b.addLast(out, name, n)
		}
		return out, nil
	}

	if m := lastBrowserQuery.FindStringSubmatch(q); m != nil {
		name, err := b.browser(m[2])
		if err != nil {
			return nil, err
		}
		n, _ := strconv.Atoi(m[1])
		b.addLast(out, name, n)
		return out, nil
	}

	if m := sinceQuery.FindStringSubmatch(q); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, day := 1, 1
		if m[2] != "" {
			month, _ = strconv.Atoi(m[2])
		}
		if m[3] != "" {
			day, _ = strconv.Atoi(m[3])
		}
		since := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Unix()
		for name, agent := range b.agents {
			for _, v := range agent.Released() {
				if *v.ReleaseDate >= since {
					out[Agent{name, v.Version}] = true
				}
			}
		}
		return out, nil
	}

	if m := compareQuery.FindStringSubmatch(q); m != nil {
		name, err := b.browser(m[1])
		if err != nil {
			return nil, err
		}
		want, _ := ParseVersion(m[3])
		for _, v := range b.agents[name].Released() {
			got, ok := ParseVersion(v.Version)
			if ok && compareInt(got.Compare(want), m[2]) {
				out[Agent{name, v.Version}] = true
			}
		}
		return out, nil
	}

	if m := rangeQuery.FindStringSubmatch(q); m != nil {
		name, err := b.browser(m[1])
		if err != nil {
			return nil, err
		}
		lo, _ := ParseVersion(m[2])
		hi, _ := ParseVersion(m[3])
		for _, v := range b.agents[name].Released() {
			got, ok := ParseVersion(v.Version)
			if ok && got.Compare(lo) >= 0 && got.Compare(hi) <= 0 {
				out[Agent{name, v.Version}] = true
			}
		}
		return out, nil
	}

	if m := directQuery.FindStringSubmatch(q); m != nil {
		name, err := b.browser(m[1])
		if err != nil {
			return nil, err
		}
		version, ok := b.findVersion(name, m[2])
		if !ok {
			return nil, fmt.Errorf("unknown version %s of %s", m[2], m[1])
		}
		out[Agent{name, version}] = true
		return out, nil
	}

	return nil, fmt.Errorf("unknown browser query %q", q)
}

func (b *Browsers) resolveSet(queries []string) (map[Agent]bool, error) {
	agents, err := b.Resolve(queries)
	if err != nil {
		return nil, err
	}
	out := make(map[Agent]bool, len(agents))
	for _, a := range agents {
		out[a] = true
	}
	return out, nil
}

func (b *Browsers) browser(name string) (string, error) {
	if id, ok := browserAliases[strings.ToLower(name)]; ok {
		if _, known := b.agents[id]; known {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown browser %s", name)
}

func (b *Browsers) addLast(out map[Agent]bool, name string, n int) {
	released := b.agents[name].Released()
	if n > len(released) {
		n = len(released)
	}
	for _, v := range released[len(released)-n:] {
		out[Agent{name, v.Version}] = true
	}
}

func (b *Browsers) hasVersion(name, version string) bool {
	for _, v := range b.agents[name].VersionList {
		if v.Version == version {
			return true
		}
	}
	return false
}

// findVersion matches an exact version, or a ranged release like "15.2-15.3"
// that contains it.
func (b *Browsers) findVersion(name, version string) (string, bool) {
	for _, v := range b.agents[name].VersionList {
		if strings.EqualFold(v.Version, version) {
			return v.Version, true
		}
	}
	want, ok := ParseVersion(version)
	if !ok {
		return "", false
	}
	for _, v := range b.agents[name].VersionList {
		m := rangeKey.FindStringSubmatch(v.Version)
		if m == nil {
			continue
		}
		lo, _ := ParseVersion(m[1])
		hi, _ := ParseVersion(m[2])
		if want.Compare(lo) >= 0 && want.Compare(hi) <= 0 {
			return v.Version, true
		}
	}
	return "", false
}

func compareFloat(got float64, op string, limit float64) bool {
	switch op {
	case ">":
		return got > limit
	case ">=":
		return got >= limit
	case "<":
		return got < limit
	default:
		return got <= limit
	}
}

func compareInt(cmp int, op string) bool {
	switch op {
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	default:
		return cmp <= 0
	}
}

func sortAgents(agents []Agent) {
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].Name != agents[j].Name {
			return agents[i].Name < agents[j].Name
		}
		vi, oki := ParseVersion(agents[i].Version)
		vj, okj := ParseVersion(agents[j].Version)
		if oki && okj && vi.Compare(vj) != 0 {
			return vi.Compare(vj) > 0
		}
		return agents[i].Version > agents[j].Version
	})
}
