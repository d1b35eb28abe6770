package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(agents []Agent) []string {
	out := make([]string, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.String())
	}
	return out
}

func TestBrowsers_Resolve(t *testing.T) {
	b := NewBrowsers(DefaultDataset().Caniuse)

	tests := []struct {
		name    string
		queries []string
		want    []string
	}{
		{"last browser versions", []string{"last 2 Chrome versions"}, []string{"chrome 141", "chrome 140"}},
		{"compare", []string{"chrome >= 140"}, []string{"chrome 141", "chrome 140"}},
		{"range", []string{"iOS 15.2-15.4"}, []string{"ios_saf 15.4", "ios_saf 15.2-15.3"}},
		{"direct inside ranged release", []string{"safari 15.3"}, []string{"safari 15.2-15.3"}},
		{"esr", []string{"Firefox ESR"}, []string{"firefox 140", "firefox 128"}},
		{"union", []string{"chrome 140", "edge 140"}, []string{"chrome 140", "edge 140"}},
		{"or keyword", []string{"chrome 140 or edge 140"}, []string{"chrome 140", "edge 140"}},
		{"intersection", []string{"chrome >= 139 and > 2%"}, []string{"chrome 141", "chrome 140", "chrome 139"}},
		{"not", []string{"chrome >= 139, not chrome 139"}, []string{"chrome 141", "chrome 140"}},
		{"op mini", []string{"OperaMini all"}, []string{"op_mini all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Resolve(tt.queries)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestBrowsers_UsageAndDead(t *testing.T) {
	b := NewBrowsers(DefaultDataset().Caniuse)

	got, err := b.Resolve([]string{">0.5% and not dead"})
	require.NoError(t, err)
	assert.Len(t, got, 22)
	assert.Contains(t, names(got), "and_chr 140")
	assert.Contains(t, names(got), "ios_saf 18.5-18.6")
	assert.NotContains(t, names(got), "ie 11")

	dead, err := b.Resolve([]string{"dead"})
	require.NoError(t, err)
	assert.Contains(t, names(dead), "ie 11")
	assert.Contains(t, names(dead), "samsung 4")
	assert.Contains(t, names(dead), "baidu 13.52")
	assert.NotContains(t, names(dead), "samsung 28")

	defaults, err := b.Resolve([]string{"defaults"})
	require.NoError(t, err)
	assert.Contains(t, names(defaults), "firefox 128")
	assert.Contains(t, names(defaults), "chrome 141")
	assert.NotContains(t, names(defaults), "ie 11")
	assert.NotContains(t, names(defaults), "chrome 142", "unreleased versions are not in last N")
}

func TestBrowsers_Deterministic(t *testing.T) {
	b := NewBrowsers(DefaultDataset().Caniuse)
	first, err := b.Resolve([]string{"defaults"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := b.Resolve([]string{"defaults"})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBrowsers_Errors(t *testing.T) {
	b := NewBrowsers(DefaultDataset().Caniuse)
	for _, q := range []string{
		"not dead",
		"netscape 4",
		"chrome 3",
		"the best browsers",
		"",
		"chrome 140 and",
	} {
		_, err := b.Resolve([]string{q})
		assert.Error(t, err, q)
	}
}
