package compat

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

//go:embed data/caniuse.json
var embeddedCaniuse []byte

//go:embed data/web-features.json
var embeddedWebFeatures []byte

// VersionEntry is one release of an agent.
type VersionEntry struct {
	Version     string  `json:"version"`
	GlobalUsage float64 `json:"global_usage"`
	ReleaseDate *int64  `json:"release_date"` // unix seconds; nil for unreleased versions
	Era         int     `json:"era"`
}

// AgentData lists the releases of one browser, oldest first.
type AgentData struct {
	Abbr        string         `json:"abbr,omitempty"`
	Browser     string         `json:"browser"`
	Type        string         `json:"type"`
	VersionList []VersionEntry `json:"version_list"`
}

// Released returns the released versions, oldest first.
func (a AgentData) Released() []VersionEntry {
	out := make([]VersionEntry, 0, len(a.VersionList))
	for _, v := range a.VersionList {
		if v.ReleaseDate != nil {
			out = append(out, v)
		}
	}
	return out
}

// FeatureStats is the legacy per-agent, per-version support table of one feature.
type FeatureStats struct {
	Title string                       `json:"title"`
	Stats map[string]map[string]string `json:"stats"`
}

// CaniuseData is the subset of the caniuse full data file the resolver reads.
type CaniuseData struct {
	Agents  map[string]AgentData    `json:"agents"`
	Data    map[string]FeatureStats `json:"data"`
	Updated int64                   `json:"updated,omitempty"` // unix seconds
}

// BaselineLevel is web-features' status.baseline: "high", "low" or false.
type BaselineLevel string

func (b *BaselineLevel) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*b = BaselineLevel(s)
		return nil
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err != nil {
		return fmt.Errorf("baseline: expected string or bool, got %s", raw)
	}
	*b = ""
	return nil
}

// MarshalJSON writes the empty level back as false.
func (b BaselineLevel) MarshalJSON() ([]byte, error) {
	if b == "" {
		return []byte("false"), nil
	}
	return json.Marshal(string(b))
}

// Interoperable reports a "low" or "high" Baseline status.
func (b BaselineLevel) Interoperable() bool {
	return b == "low" || b == "high"
}

// WebFeature is one entry of the web-features dataset.
type WebFeature struct {
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	Caniuse []string `json:"caniuse,omitempty"`
	Status  struct {
		Baseline         BaselineLevel     `json:"baseline"`
		BaselineLowDate  string            `json:"baseline_low_date,omitempty"`
		BaselineHighDate string            `json:"baseline_high_date,omitempty"`
		Support          map[string]string `json:"support"` // browser -> minimum version
	} `json:"status"`
}

// WebFeaturesData is the subset of the web-features data file the resolver reads.
type WebFeaturesData struct {
	Browsers map[string]json.RawMessage `json:"browsers,omitempty"`
	Features map[string]WebFeature      `json:"features"`
}

// Lookup finds a feature by id, or else the first feature (by id order) whose
// caniuse list contains slug.
func (w *WebFeaturesData) Lookup(id, slug string) (WebFeature, bool) {
	if w == nil {
		return WebFeature{}, false
	}
	if f, ok := w.Features[id]; ok && id != "" && f.isFeature() {
		return f, true
	}
	if slug == "" {
		return WebFeature{}, false
	}
	for _, key := range sortedKeys(w.Features) {
		f := w.Features[key]
		if !f.isFeature() {
			continue
		}
		for _, c := range f.Caniuse {
			if c == slug {
				return f, true
			}
		}
	}
	return WebFeature{}, false
}

// moved and split entries carry no status
func (f WebFeature) isFeature() bool {
	return f.Kind == "" || f.Kind == "feature"
}

// Dataset bundles both compatibility datasets.
type Dataset struct {
	Caniuse     *CaniuseData
	WebFeatures *WebFeaturesData
}

// LoadDataset reads the datasets from the given files. An empty path selects
// the embedded snapshot for that dataset.
func LoadDataset(caniusePath, webFeaturesPath string) (*Dataset, error) {
	ciRaw, err := readOrEmbedded(caniusePath, embeddedCaniuse)
	if err != nil {
		return nil, err
	}
	wfRaw, err := readOrEmbedded(webFeaturesPath, embeddedWebFeatures)
	if err != nil {
		return nil, err
	}

	var ds Dataset
	ds.Caniuse = &CaniuseData{}
	if err := json.Unmarshal(ciRaw, ds.Caniuse); err != nil {
		return nil, fmt.Errorf("failed to parse caniuse data: %w", err)
	}
	ds.WebFeatures = &WebFeaturesData{}
	if err := json.Unmarshal(wfRaw, ds.WebFeatures); err != nil {
		return nil, fmt.Errorf("failed to parse web-features data: %w", err)
	}
	return &ds, nil
}

// DefaultDataset returns the embedded snapshot.
func DefaultDataset() *Dataset {
	ds, err := LoadDataset("", "")
	if err != nil {
		panic(fmt.Sprintf("embedded compatibility data: %v", err))
	}
	return ds
}

func readOrEmbedded(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compat data %s: %w", path, err)
	}
	return raw, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
