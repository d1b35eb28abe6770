package compat

import (
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"baseliner/internal/features"
	"baseliner/internal/logging"
)

// SupportStats counts target agents for one feature.
type SupportStats struct {
	Considered int
	Supported  int
	Skipped    int // agents the source had no data for
}

// SupportSource answers support questions from one dataset.
type SupportSource interface {
	Name() string
	Support(meta features.FeatureMeta, agents []Agent) (SupportStats, bool)
}

// SourceChain asks each source in turn. The first source that considers at
// least one agent wins.
type SourceChain struct {
	sources []SupportSource
}

func NewSourceChain(sources ...SupportSource) *SourceChain {
	return &SourceChain{sources: sources}
}

// NewDefaultChain prefers the web-features minimum versions and falls back to
// the legacy caniuse stats.
func NewDefaultChain(ds *Dataset) *SourceChain {
	return NewSourceChain(NewWebFeaturesSource(ds.WebFeatures), NewCaniuseSource(ds.Caniuse))
}

// Run returns the stats of the winning source and its name.
func (c *SourceChain) Run(meta features.FeatureMeta, agents []Agent) (SupportStats, string, bool) {
	for _, s := range c.sources {
		stats, ok := s.Support(meta, agents)
		if ok && stats.Considered > 0 {
			return stats, s.Name(), true
		}
	}
	return SupportStats{}, "", false
}

// agent ids of the web-features dataset differ for mobile browsers
var webFeaturesBrowser = map[string]string{
	"chrome":  "chrome",
	"edge":    "edge",
	"firefox": "firefox",
	"safari":  "safari",
	"and_chr": "chrome_android",
	"and_ff":  "firefox_android",
	"ios_saf": "safari_ios",
}

// WebFeaturesSource compares agent versions with per-browser minimum versions.
type WebFeaturesSource struct {
	data *WebFeaturesData
}

func NewWebFeaturesSource(data *WebFeaturesData) *WebFeaturesSource {
	return &WebFeaturesSource{data: data}
}

func (s *WebFeaturesSource) Name() string { return "web-features" }

func (s *WebFeaturesSource) Support(meta features.FeatureMeta, agents []Agent) (SupportStats, bool) {
	wf, ok := s.data.Lookup(meta.WebFeatureID, meta.CompatKey)
	if !ok {
		return SupportStats{}, false
	}
	var st SupportStats
	for _, a := range agents {
		browser, mapped := webFeaturesBrowser[a.Name]
		got, parsed := ParseVersion(a.Version)
		if !mapped || !parsed {
			st.Skipped++
			continue
		}
		st.Considered++
		minVersion, listed := wf.Status.Support[browser]
		if !listed {
			continue
		}
		if want, ok := ParseVersion(minVersion); ok && got.Compare(want) >= 0 {
			st.Supported++
		}
	}
	return st, true
}

// CaniuseSource reads the legacy per-version stats table.
type CaniuseSource struct {
	data *CaniuseData
}

func NewCaniuseSource(data *CaniuseData) *CaniuseSource {
	return &CaniuseSource{data: data}
}

func (s *CaniuseSource) Name() string { return "caniuse" }

func (s *CaniuseSource) Support(meta features.FeatureMeta, agents []Agent) (SupportStats, bool) {
	if s.data == nil || meta.CompatKey == "" {
		return SupportStats{}, false
	}
	feature, ok := s.data.Data[meta.CompatKey]
	if !ok {
		return SupportStats{}, false
	}
	var st SupportStats
	for _, a := range agents {
		stats, ok := feature.Stats[a.Name]
		if !ok {
			st.Skipped++
			continue
		}
		val, ok := resolveStat(stats, a.Version)
		if !ok {
			st.Skipped++
			continue
		}
		st.Considered++
		if supportedValue(val) {
			st.Supported++
		}
	}
	return st, true
}

type percentResult struct {
	value float64
	ok    bool
}

// Resolver computes support percentages and Baseline flags. Results are
// memoized for the lifetime of the resolver; it is safe for concurrent use.
type Resolver struct {
	registry *features.Registry
	data     *Dataset
	browsers *Browsers
	chain    *SourceChain
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	agents   map[string][]Agent
	percent  map[string]percentResult
	baseline map[string]bool
}

// NewResolver builds a resolver over ds. Nil arguments select the embedded
// dataset, the default registry and a no-op logger.
func NewResolver(reg *features.Registry, ds *Dataset, logger *zap.SugaredLogger) *Resolver {
	if reg == nil {
		reg = features.Default()
	}
	if ds == nil {
		ds = DefaultDataset()
	}
	return &Resolver{
		registry: reg,
		data:     ds,
		browsers: NewBrowsers(ds.Caniuse),
		chain:    NewDefaultChain(ds),
		logger:   logging.Nop(logger),
		agents:   map[string][]Agent{},
		percent:  map[string]percentResult{},
		baseline: map[string]bool{},
	}
}

func targetsKey(targets []string) string {
	return strings.Join(targets, "\x00")
}

// Agents expands targets, memoized. Unknown queries yield an error.
func (r *Resolver) Agents(targets []string) ([]Agent, error) {
	key := targetsKey(targets)
	r.mu.Lock()
	cached, ok := r.agents[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	agents, err := r.browsers.Resolve(targets)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.agents[key] = agents
	r.mu.Unlock()
	return agents, nil
}

// Resolve returns the percentage of target agents supporting featureID.
// ok is false when the targets do not resolve, the feature has no
// compatibility data, or no target agent has data.
func (r *Resolver) Resolve(featureID string, targets []string) (float64, bool) {
	if len(targets) == 0 {
		return 0, false
	}
	key := featureID + "\x01" + targetsKey(targets)
	r.mu.Lock()
	memo, hit := r.percent[key]
	r.mu.Unlock()
	if hit {
		return memo.value, memo.ok
	}

	res := r.compute(featureID, targets)
	r.mu.Lock()
	r.percent[key] = res
	r.mu.Unlock()
	return res.value, res.ok
}

func (r *Resolver) compute(featureID string, targets []string) percentResult {
	meta, ok := r.registry.Get(featureID)
	if !ok {
		return percentResult{}
	}
	agents, err := r.Agents(targets)
	if err != nil {
		r.logger.Debugw("targets do not resolve", "targets", targets, "error", err)
		return percentResult{}
	}
	stats, source, ok := r.chain.Run(meta, agents)
	if !ok {
		r.logger.Debugw("no compatibility data", "feature", featureID)
		return percentResult{}
	}
	pct := 100 * float64(stats.Supported) / float64(stats.Considered)
	r.logger.Debugw("support resolved",
		"feature", featureID,
		"source", source,
		"supported", stats.Supported,
		"considered", stats.Considered,
		"skipped", stats.Skipped,
	)
	return percentResult{value: pct, ok: true}
}

// IsBaseline reports whether web-features marks the feature as Baseline
// (newly or widely available).
func (r *Resolver) IsBaseline(featureID string) bool {
	r.mu.Lock()
	v, ok := r.baseline[featureID]
	r.mu.Unlock()
	if ok {
		return v
	}

	result := false
	if meta, found := r.registry.Get(featureID); found {
		if wf, found := r.data.WebFeatures.Lookup(meta.WebFeatureID, meta.CompatKey); found {
			result = wf.Status.Baseline.Interoperable()
		}
	}
	r.mu.Lock()
	r.baseline[featureID] = result
	r.mu.Unlock()
	return result
}

// UnsupportedPercent converts a support percentage into the rounded share of
// targets lacking support, clamped to [0, 100].
func UnsupportedPercent(supported float64) float64 {
	v := math.Round(100 - supported)
	return math.Max(0, math.Min(100, v))
}
