package compat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"baseliner/internal/features"
)

// Embedded file names, also written by WriteDataset.
const (
	CaniuseFile     = "caniuse.json"
	WebFeaturesFile = "web-features.json"
)

// Extract trims full upstream datasets to what reg can ask about. Every agent
// is kept, since target queries range over all of them. Caniuse stats are kept
// for the catalog's compat keys, and web-features entries for the catalog's
// feature ids and for any feature listing one of its compat keys.
func Extract(ds *Dataset, reg *features.Registry) *Dataset {
	if reg == nil {
		reg = features.Default()
	}
	out := &Dataset{
		Caniuse:     &CaniuseData{Agents: map[string]AgentData{}, Data: map[string]FeatureStats{}},
		WebFeatures: &WebFeaturesData{Features: map[string]WebFeature{}},
	}

	slugs := map[string]bool{}
	ids := map[string]bool{}
	for _, id := range reg.IDs() {
		meta, _ := reg.Get(id)
		if meta.CompatKey != "" {
			slugs[meta.CompatKey] = true
		}
		if meta.WebFeatureID != "" {
			ids[meta.WebFeatureID] = true
		}
	}

	if ci := ds.Caniuse; ci != nil {
		out.Caniuse.Updated = ci.Updated
		for name, agent := range ci.Agents {
			out.Caniuse.Agents[name] = agent
		}
		for slug := range slugs {
			if stats, ok := ci.Data[slug]; ok {
				out.Caniuse.Data[slug] = stats
			}
		}
	}

	if wf := ds.WebFeatures; wf != nil {
		out.WebFeatures.Browsers = wf.Browsers
		for id, f := range wf.Features {
			if ids[id] || listsAny(f.Caniuse, slugs) {
				out.WebFeatures.Features[id] = f
			}
		}
	}
	return out
}

func listsAny(list []string, set map[string]bool) bool {
	for _, s := range list {
		if set[s] {
			return true
		}
	}
	return false
}

// WriteDataset writes ds into dir as CaniuseFile and WebFeaturesFile, in the
// layout LoadDataset reads.
func WriteDataset(ds *Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	files := []struct {
		name string
		v    any
	}{
		{CaniuseFile, ds.Caniuse},
		{WebFeaturesFile, ds.WebFeatures},
	}
	for _, f := range files {
		raw, err := json.MarshalIndent(f.v, "", " ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
		raw = append(raw, '\n')
		if err := os.WriteFile(filepath.Join(dir, f.name), raw, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}
