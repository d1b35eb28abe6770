package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baseliner/internal/detector"
)

// classify detects src and classifies its only candidate of feature.
func classify(t *testing.T, path, src, feature string) (bool, detector.Strategy) {
	t.Helper()
	res := detector.New(nil, nil, nil).Detect(src, path)
	var found []detector.Candidate
	for _, c := range res.Candidates {
		if c.FeatureID == feature {
			found = append(found, c)
		}
	}
	require.Len(t, found, 1, "candidates: %+v", res.Candidates)
	return New(nil).Classify(res, src, found[0]), res.Strategy
}

func TestClassify_Structural(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		src     string
		feature string
		want    bool
	}{
		{"unguarded", "a.js", "navigator.share({});", "navigator-share", false},
		{"if presence", "a.js", "if (navigator.share) { await navigator.share({title:'x'}); }", "navigator-share", true},
		{"if without braces", "a.js", "if (navigator.share) navigator.share({});", "navigator-share", true},
		{"unrelated if", "a.js", "if (ready) { navigator.share({}); }", "navigator-share", false},
		{"other feature check", "a.js", "if (navigator.clipboard) { navigator.share({}); }", "navigator-share", false},
		{"negated guards else", "a.js", "if (!navigator.share) { fallback(); } else { navigator.share({}); }", "navigator-share", true},
		{"negated does not guard consequence", "a.js", "if (!navigator.share) { navigator.share({}); }", "navigator-share", false},
		{"positive does not guard else", "a.js", "if (navigator.share) { a(); } else { navigator.share({}); }", "navigator-share", false},
		{"nested inside guard", "a.js", "if (navigator.share) { for (const x of xs) { if (x) { navigator.share(x); } } }", "navigator-share", true},
		{"optional chain test", "a.js", "if (window.navigator?.share) { navigator.share({}); }", "navigator-share", true},
		{"in check", "a.js", "if ('share' in navigator) { navigator.share({}); }", "navigator-share", true},
		{"ts cast in test", "a.ts", "if ((navigator as any).share) { (navigator as any).share({}); }", "navigator-share", true},
		{"optional call", "a.js", "navigator.share?.({});", "navigator-share", true},
		{"logical and", "a.js", "navigator.share && navigator.share({});", "navigator-share", true},
		{"ternary", "a.js", "const p = navigator.share ? navigator.share({}) : null;", "navigator-share", true},
		{"negated ternary", "a.js", "const p = !navigator.share ? null : navigator.share({});", "navigator-share", true},
		{"usage in test is not guarded", "a.js", "if (navigator.share({})) { done(); }", "navigator-share", false},
		{"view transition in check", "a.js", "if ('startViewTransition' in document) { document.startViewTransition(() => {}); }", "view-transitions", true},
		{"view transition wrong object", "a.js", "if ('startViewTransition' in window) { document.startViewTransition(() => {}); }", "view-transitions", false},
		{"clipboard optional pre-check", "a.js", "if (navigator.clipboard?.writeText) { await navigator.clipboard.writeText('x'); }", "async-clipboard", true},
		{"can parse", "a.js", "if (URL.canParse) { URL.canParse(u); }", "url-canparse", true},
		{"typeof defined", "a.js", "if (typeof URLPattern !== 'undefined') { new URLPattern({}); }", "urlpattern", true},
		{"typeof undefined guards else", "a.js", "if (typeof URLPattern === 'undefined') { load(); } else { new URLPattern({}); }", "urlpattern", true},
		{"typeof undefined does not guard consequence", "a.js", "if (typeof URLPattern === 'undefined') { new URLPattern({}); }", "urlpattern", false},
		{"alias checked", "a.js", "const P = URLPattern; if (P) { new P('/x'); }", "urlpattern", true},
		{"file picker on window", "a.js", "if (window.showOpenFilePicker) { showOpenFilePicker(); }", "file-system-access-picker", true},
		{"file picker in window", "a.js", "if ('showSaveFilePicker' in self) { window.showSaveFilePicker(); }", "file-system-access-picker", true},
		{"dialog", "a.js", "if (typeof dialog.showModal === 'function') { dialog.showModal(); }", "html-dialog", true},
		{"promise any", "a.js", "if (Promise.any) { Promise.any(ps); }", "promise-any", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy := classify(t, tt.path, tt.src, tt.feature)
			require.Equal(t, detector.StrategyStructural, strategy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Textual(t *testing.T) {
	// every source ends in a syntax error so the regex path is taken
	const broken = "\nif ("
	tests := []struct {
		name    string
		src     string
		feature string
		want    bool
	}{
		{"unguarded", "navigator.share({});", "navigator-share", false},
		{"if presence", "if (navigator.share) {\n  navigator.share({});\n}", "navigator-share", true},
		{"ts cast", "if ((navigator as any).share) {\n  (navigator as any).share({});\n}", "navigator-share", true},
		{"last if wins", "if (navigator.share) { a(); }\nif (ready) {\n  navigator.share({});\n}", "navigator-share", false},
		{"can parse", "if ((URL as any).canParse) { URL.canParse(u) }", "url-canparse", true},
		{"view transitions", "if ('startViewTransition' in document) { document.startViewTransition(f) }", "view-transitions", true},
		{"file picker", "if (window.showOpenFilePicker) { showOpenFilePicker() }", "file-system-access-picker", true},
		{"clipboard", "if (navigator.clipboard) { navigator.clipboard.readText() }", "async-clipboard", true},
		{"multi-line condition is not seen", "if (navigator.share &&\n    ok) {\n  navigator.share({});\n}", "navigator-share", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy := classify(t, "a.js", tt.src+broken, tt.feature)
			require.Equal(t, detector.StrategyRegex, strategy)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("guard outside the lookback window", func(t *testing.T) {
		src := "if (navigator.share) {\n" + strings.Repeat("x();\n", Lookback/5+1) + "navigator.share({});" + broken
		got, _ := classify(t, "a.js", src, "navigator-share")
		assert.False(t, got)
	})
}

func TestClassify_Style(t *testing.T) {
	src := strings.Join([]string{
		"@supports selector(:has(a)) {",
		"  .card:has(img) { padding: 0; }",
		"}",
	}, "\n")
	got, strategy := classify(t, "a.css", src, "css-has")
	assert.Equal(t, detector.StrategyRegex, strategy)
	assert.True(t, got)

	got, _ = classify(t, "a.css", ".card:has(img) { padding: 0; }", "css-has")
	assert.False(t, got)

	got, _ = classify(t, "a.scss", "@supports (display: grid) {\n  .card:has(img) {}\n}", "css-has")
	assert.False(t, got)
}

func TestClassify_ByKind(t *testing.T) {
	got, _ := classify(t, "index.html", "<dialog open>Hi</dialog>", "html-dialog")
	assert.False(t, got)

	got, _ = classify(t, "a.css", "@supports (color: oklch(0 0 0)) {\n  a { color: oklch(50% 0.1 20); }\n}", "css-color-oklch")
	assert.True(t, got)
}
