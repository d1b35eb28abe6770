package detector

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baseliner/internal/model"
	"baseliner/internal/syntax"
)

func ids(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.FeatureID)
	}
	return out
}

func TestDetect_Structural(t *testing.T) {
	d := New(nil, nil, nil)

	tests := []struct {
		name string
		path string
		src  string
		want []string
	}{
		{"share call", "a.js", "navigator.share({title: 'x'});", []string{"navigator-share"}},
		{"window prefix", "a.js", "window.structuredClone(obj);", []string{"structured-clone"}},
		{"globalThis prefix", "a.mjs", "globalThis.navigator.share({});", []string{"navigator-share"}},
		{"clipboard", "a.js", "navigator.clipboard.writeText('hi');", []string{"async-clipboard"}},
		{"optional clipboard", "a.js", "navigator.clipboard?.readText();", []string{"async-clipboard"}},
		{"array at", "a.js", "const last = items.at(-1);", []string{"array-prototype-at"}},
		{"promise any", "a.js", "Promise.any([a, b]);", []string{"promise-any"}},
		{"url canParse", "a.js", "URL.canParse(input);", []string{"url-canparse"}},
		{"view transition", "a.js", "document.startViewTransition(() => {});", []string{"view-transitions"}},
		{"file picker", "a.js", "showSaveFilePicker();", []string{"file-system-access-picker"}},
		{"show modal", "a.jsx", "dialogRef.current.showModal();", []string{"html-dialog"}},
		{"ts cast", "a.ts", "(navigator as any).share({});", []string{"navigator-share"}},
		{"ts non-null", "a.ts", "navigator.clipboard!.readText();", []string{"async-clipboard"}},
		{"tsx", "a.tsx", "const el = <div onClick={() => navigator.share({})} />;", []string{"navigator-share"}},
		{"unrelated names", "a.js", "myshare(); share(); navigator.shareData; obj.at;", nil},
		{"property read is not a call", "a.js", "const f = navigator.share;", nil},
		{"aliased constructor", "a.js", "const P = URLPattern; const p = new P('https://example.com/:id');", []string{"urlpattern"}},
		{"aliased navigator", "a.js", "let nav = navigator; nav.share({});", []string{"navigator-share"}},
		{"assignment alias", "a.js", "let U; U = window.URL; U.canParse(s);", []string{"url-canparse"}},
		{"ordered by offset", "a.js", "const x = a.at(0); structuredClone(x);", []string{"array-prototype-at", "structured-clone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect(tt.src, tt.path)
			assert.Equal(t, model.KindScript, res.Kind)
			require.Equal(t, StrategyStructural, res.Strategy)
			require.NotNil(t, res.Tree)
			if tt.want == nil {
				assert.Empty(t, res.Candidates)
				return
			}
			assert.Equal(t, tt.want, ids(res.Candidates))
			for _, c := range res.Candidates {
				assert.NotEqual(t, syntax.None, c.Node)
			}
		})
	}
}

func TestDetect_Positions(t *testing.T) {
	d := New(nil, nil, nil)

	t.Run("guarded call position", func(t *testing.T) {
		src := "if (navigator.share) { await navigator.share({title:'x'}); }"
		res := d.Detect(src, "share.js")
		require.Len(t, res.Candidates, 1)
		c := res.Candidates[0]
		assert.Equal(t, 1, c.Line)
		assert.Equal(t, strings.Index(src, "navigator.share(")+1, c.Column)
	})

	t.Run("columns count code points", func(t *testing.T) {
		src := "const é = 1;\n  const ü = 'ä'; navigator.share({});"
		res := d.Detect(src, "a.js")
		require.Len(t, res.Candidates, 1)
		c := res.Candidates[0]
		assert.Equal(t, 2, c.Line)
		assert.Equal(t, len([]rune("  const ü = 'ä'; "))+1, c.Column)
	})

	t.Run("regex fallback reports the same position", func(t *testing.T) {
		valid := "function f() {\n\tconst é = 1;\n\tnavigator.share({});\n}\n"
		broken := valid + "if ("

		structural := d.Detect(valid, "a.js")
		require.Equal(t, StrategyStructural, structural.Strategy)
		fallback := d.Detect(broken, "a.js")
		require.Equal(t, StrategyRegex, fallback.Strategy)
		assert.Nil(t, fallback.Tree)

		require.Len(t, structural.Candidates, 1)
		require.Len(t, fallback.Candidates, 1)
		assert.Equal(t, 3, structural.Candidates[0].Line)
		assert.Equal(t, 2, structural.Candidates[0].Column)
		assert.Equal(t, structural.Candidates[0].Line, fallback.Candidates[0].Line)
		assert.Equal(t, structural.Candidates[0].Column, fallback.Candidates[0].Column)
		assert.Equal(t, syntax.None, fallback.Candidates[0].Node)
	})

	t.Run("wrapped receivers start at the parenthesis", func(t *testing.T) {
		valid := strings.Join([]string{
			"(navigator as any).share({});",
			"const ok = (URL as any).canParse(u);",
			"x = ( window.navigator ).clipboard.writeText('x');",
			"if (navigator.share({})) {}",
		}, "\n") + "\n"
		broken := valid + "{{"

		structural := d.Detect(valid, "a.ts")
		require.Equal(t, StrategyStructural, structural.Strategy)
		fallback := d.Detect(broken, "a.ts")
		require.Equal(t, StrategyRegex, fallback.Strategy)

		want := []string{"navigator-share 1:1", "url-canparse 2:12", "async-clipboard 3:5", "navigator-share 4:5"}
		assert.Equal(t, want, positions(structural.Candidates))
		assert.Equal(t, want, positions(fallback.Candidates))
	})
}

func positions(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, fmt.Sprintf("%s %d:%d", c.FeatureID, c.Line, c.Column))
	}
	return out
}

func TestDetect_RegexFallback(t *testing.T) {
	d := New(nil, nil, nil)

	t.Run("syntax error keeps detecting", func(t *testing.T) {
		src := "const a = ;\nnavigator.share({});\nstructuredClone(a"
		res := d.Detect(src, "broken.js")
		assert.Equal(t, StrategyRegex, res.Strategy)
		assert.Equal(t, []string{"navigator-share", "structured-clone"}, ids(res.Candidates))
		assert.Equal(t, 2, res.Candidates[0].Line)
		assert.Equal(t, 1, res.Candidates[0].Column)
	})

	t.Run("url pattern alias", func(t *testing.T) {
		src := "const P = URLPattern;\nconst p = new P('x');\nif ("
		res := d.Detect(src, "broken.js")
		require.Equal(t, StrategyRegex, res.Strategy)
		require.Len(t, res.Candidates, 1)
		c := res.Candidates[0]
		assert.Equal(t, "urlpattern", c.FeatureID)
		assert.Equal(t, 2, c.Line)
		assert.Equal(t, 11, c.Column)
	})

	t.Run("url pattern assigned alias", func(t *testing.T) {
		src := "let P;\nP = URLPattern;\nnew P('x');\n{{"
		res := d.Detect(src, "broken.js")
		require.Equal(t, StrategyRegex, res.Strategy)
		require.Len(t, res.Candidates, 1)
		assert.Equal(t, "urlpattern", res.Candidates[0].FeatureID)
		assert.Equal(t, 3, res.Candidates[0].Line)
		assert.Equal(t, 1, res.Candidates[0].Column)
	})

	t.Run("requires call parenthesis", func(t *testing.T) {
		res := d.Detect("const f = navigator.share;\nif (", "broken.js")
		assert.Empty(t, res.Candidates)
	})
}

func TestDetect_Style(t *testing.T) {
	d := New(nil, nil, nil)
	src := strings.Join([]string{
		".card:has(img) { color: red; }",
		"@container (min-width: 40em) {",
		"  .title { text-wrap: balance; }",
		"}",
		".btn {",
		"  & .icon { color: oklch(70% 0.1 200); }",
		"}",
	}, "\n")

	res := d.Detect(src, "styles/site.CSS")
	assert.Equal(t, model.KindStyle, res.Kind)
	assert.Equal(t, StrategyRegex, res.Strategy)
	assert.Nil(t, res.Tree)
	assert.Equal(t, []string{
		"css-has",
		"css-container-queries",
		"css-text-wrap-balance",
		"css-nesting",
		"css-color-oklch",
	}, ids(res.Candidates))

	has := res.Candidates[0]
	assert.Equal(t, 1, has.Line)
	assert.Equal(t, 6, has.Column)

	nesting := res.Candidates[3]
	assert.Equal(t, 6, nesting.Line)
	assert.Equal(t, 3, nesting.Column)
}

func TestDetect_Markup(t *testing.T) {
	d := New(nil, nil, nil)

	t.Run("dialog", func(t *testing.T) {
		res := d.Detect("<dialog open>Hi</dialog>", "index.html")
		assert.Equal(t, model.KindMarkup, res.Kind)
		require.Len(t, res.Candidates, 1)
		assert.Equal(t, "html-dialog", res.Candidates[0].FeatureID)
		assert.Equal(t, 1, res.Candidates[0].Column)
	})

	t.Run("popover attribute anchor", func(t *testing.T) {
		res := d.Detect(`<div popover id="tip">x</div><button popovertarget="tip">`, "page.htm")
		require.Len(t, res.Candidates, 1)
		assert.Equal(t, "html-popover", res.Candidates[0].FeatureID)
		assert.Equal(t, 6, res.Candidates[0].Column)
	})

	t.Run("import map and lazy images", func(t *testing.T) {
		src := "<script type=\"importmap\">{}</script>\n<img src=\"a.png\" loading=\"lazy\">"
		res := d.Detect(src, "index.html")
		assert.Equal(t, []string{"import-maps", "loading-lazy-attr"}, ids(res.Candidates))
	})
}

func TestDetect_UnknownKindAndDisabled(t *testing.T) {
	res := New(nil, nil, nil).Detect("navigator.share({})", "README.md")
	assert.Equal(t, model.KindUnknown, res.Kind)
	assert.Equal(t, StrategyNone, res.Strategy)
	assert.Empty(t, res.Candidates)

	d := New(nil, nil, []string{"navigator-share"})
	res = d.Detect("navigator.share({}); structuredClone(x);", "a.js")
	assert.Equal(t, []string{"structured-clone"}, ids(res.Candidates))

	res = d.Detect("navigator.share({}); if (", "a.js")
	assert.Empty(t, res.Candidates)
}

func TestNormalize(t *testing.T) {
	in := []Candidate{
		{FeatureID: "b", Offset: 10},
		{FeatureID: "a", Offset: 10},
		{FeatureID: "b", Offset: 10},
		{FeatureID: "c", Offset: 2},
	}
	out := normalize(in)
	assert.Equal(t, []string{"c", "a", "b"}, ids(out))
	assert.Nil(t, normalize(nil))
}
