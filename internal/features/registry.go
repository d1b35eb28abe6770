package features

import (
	"sort"

	"baseliner/internal/model"
)

// FeatureMeta describes one detectable platform feature.
type FeatureMeta struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	DocsURL      string               `json:"docsUrl"`
	Baseline     model.BaselineStatus `json:"baselineStatus"`
	Suggestion   string               `json:"suggestion,omitempty"`
	CompatKey    string               `json:"compatDataKey,omitempty"` // caniuse slug
	WebFeatureID string               `json:"webFeatureId,omitempty"`
	Kinds        []model.FileKind     `json:"kinds"`
}

// Registry is the immutable feature catalog.
type Registry struct {
	byID  map[string]FeatureMeta
	order []string
}

// NewRegistry indexes the given features. Later duplicates replace earlier ones.
func NewRegistry(metas []FeatureMeta) *Registry {
	r := &Registry{byID: make(map[string]FeatureMeta, len(metas))}
	for _, m := range metas {
		if _, dup := r.byID[m.ID]; !dup {
			r.order = append(r.order, m.ID)
		}
		r.byID[m.ID] = m
	}
	return r
}

var defaultRegistry = NewRegistry(catalog)

// Default returns the built-in catalog.
func Default() *Registry {
	return defaultRegistry
}

// Get looks up a feature by id.
func (r *Registry) Get(id string) (FeatureMeta, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// All returns every feature in catalog order.
func (r *Registry) All() []FeatureMeta {
	out := make([]FeatureMeta, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ForKind returns the features applicable to a file kind, in catalog order.
func (r *Registry) ForKind(kind model.FileKind) []FeatureMeta {
	var out []FeatureMeta
	for _, id := range r.order {
		m := r.byID[id]
		for _, k := range m.Kinds {
			if k == kind {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// IDs returns all feature ids sorted.
func (r *Registry) IDs() []string {
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}
