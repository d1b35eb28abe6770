package features

import "baseliner/internal/model"

var (
	script = []model.FileKind{model.KindScript}
	style  = []model.FileKind{model.KindStyle}
	markup = []model.FileKind{model.KindMarkup}
)

const mdn = "https://developer.mozilla.org/docs/"

var catalog = []FeatureMeta{
	{
		ID:           "structured-clone",
		Title:        "structuredClone()",
		DocsURL:      mdn + "Web/API/structuredClone",
		Baseline:     model.BaselineYes,
		Suggestion:   "Prefer structuredClone over deep-clone utilities; guard if targeting older browsers.",
		WebFeatureID: "structured-clone",
		Kinds:        script,
	},
	{
		ID:           "array-prototype-at",
		Title:        "Array.prototype.at()",
		DocsURL:      mdn + "Web/JavaScript/Reference/Global_Objects/Array/at",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Fallback: use arr[index >= 0 ? index : arr.length + index] for negatives.",
		WebFeatureID: "array-at",
		Kinds:        script,
	},
	{
		ID:           "promise-any",
		Title:        "Promise.any()",
		DocsURL:      mdn + "Web/JavaScript/Reference/Global_Objects/Promise/any",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Fallback: emulate with Promise.race on wrapped promises or a small polyfill.",
		WebFeatureID: "promise-any",
		Kinds:        script,
	},
	{
		ID:           "urlpattern",
		Title:        "URLPattern",
		DocsURL:      mdn + "Web/API/URL_Pattern_API",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Fallback: use the urlpattern-polyfill or Regex-based matching.",
		CompatKey:    "urlpattern",
		WebFeatureID: "urlpattern",
		Kinds:        script,
	},
	{
		ID:           "view-transitions",
		Title:        "View Transitions API",
		DocsURL:      mdn + "Web/API/Document/startViewTransition",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Guard: if ('startViewTransition' in document) { ... } else { ... }",
		CompatKey:    "view-transitions",
		WebFeatureID: "view-transitions",
		Kinds:        script,
	},
	{
		ID:           "navigator-share",
		Title:        "Web Share API",
		DocsURL:      mdn + "Web/API/Navigator/share",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Guard: if (navigator.share) { await navigator.share(...) } else { fallback }",
		CompatKey:    "web-share",
		WebFeatureID: "web-share",
		Kinds:        script,
	},
	{
		ID:         "file-system-access-picker",
		Title:      "showOpenFilePicker()",
		DocsURL:    mdn + "Web/API/window/showOpenFilePicker",
		Baseline:   model.BaselinePartial,
		Suggestion: `Fallback: use <input type="file"> when picker is unavailable.`,
		CompatKey:  "native-filesystem-api",
		Kinds:      script,
	},
	{
		ID:           "url-canparse",
		Title:        "URL.canParse()",
		DocsURL:      mdn + "Web/API/URL/canParse_static",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Fallback: try/catch new URL(...) for validation.",
		CompatKey:    "url",
		WebFeatureID: "url-canparse",
		Kinds:        script,
	},
	{
		ID:           "async-clipboard",
		Title:        "Async Clipboard API",
		DocsURL:      mdn + "Web/API/Clipboard_API",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Guard: if (navigator.clipboard?.writeText) { await navigator.clipboard.writeText(...) } else { /* fallback */ }",
		CompatKey:    "async-clipboard",
		WebFeatureID: "async-clipboard",
		Kinds:        script,
	},
	{
		ID:           "css-has",
		Title:        "CSS :has()",
		DocsURL:      mdn + "Web/CSS/:has",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Use progressive enhancement: avoid relying on :has() for critical UI; restructure selectors.",
		CompatKey:    "css-has",
		WebFeatureID: "has",
		Kinds:        style,
	},
	{
		ID:           "css-text-wrap-balance",
		Title:        "CSS text-wrap: balance",
		DocsURL:      mdn + "Web/CSS/text-wrap",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Use progressive enhancement; avoid relying on balance for critical layout; provide reasonable default wrapping.",
		CompatKey:    "css-text-wrap-balance",
		WebFeatureID: "text-wrap-balance",
		Kinds:        style,
	},
	{
		ID:           "css-color-mix",
		Title:        "CSS color-mix()",
		DocsURL:      mdn + "Web/CSS/color_value/color-mix",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Provide fallback colors or precomputed values when color-mix() is unsupported.",
		CompatKey:    "css-color-function",
		WebFeatureID: "color-mix",
		Kinds:        style,
	},
	{
		ID:           "css-nesting",
		Title:        "CSS Nesting",
		DocsURL:      mdn + "Web/CSS/CSS_nesting",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Use PostCSS Nesting or target supported environments.",
		CompatKey:    "css-nesting",
		WebFeatureID: "nesting",
		Kinds:        style,
	},
	{
		ID:         "css-modal-pseudo",
		Title:      ":modal pseudo-class",
		DocsURL:    mdn + "Web/CSS/:modal",
		Baseline:   model.BaselinePartial,
		Suggestion: "Guard UI for browsers without <dialog> modal support; provide non-modal fallback.",
		CompatKey:  "dialog",
		Kinds:      style,
	},
	{
		ID:           "css-container-queries",
		Title:        "CSS Container Queries",
		DocsURL:      mdn + "Web/CSS/CSS_container_queries",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Provide responsive fallbacks using media queries when container queries are unsupported.",
		CompatKey:    "css-container-queries",
		WebFeatureID: "container-queries",
		Kinds:        style,
	},
	{
		ID:           "css-color-oklch",
		Title:        "CSS oklch()/oklab() colors",
		DocsURL:      mdn + "Web/CSS/color_value/oklch",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Provide fallback colors or color-mix() alternatives when unsupported.",
		CompatKey:    "css-oklab",
		WebFeatureID: "oklab",
		Kinds:        style,
	},
	{
		ID:           "html-popover",
		Title:        "Popover attribute",
		DocsURL:      mdn + "Web/API/Popover_API",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Fallback: use <dialog> or a custom popover component.",
		CompatKey:    "popover",
		WebFeatureID: "popover",
		Kinds:        markup,
	},
	{
		ID:           "html-dialog",
		Title:        "<dialog> element",
		DocsURL:      mdn + "Web/HTML/Element/dialog",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Provide a dialog polyfill or non-modal fallback when unsupported; ensure accessible focus management.",
		CompatKey:    "dialog",
		WebFeatureID: "dialog",
		Kinds:        []model.FileKind{model.KindMarkup, model.KindScript},
	},
	{
		ID:           "import-maps",
		Title:        "Import Maps",
		DocsURL:      mdn + "Web/HTML/Element/script/type/importmap",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Guard or provide bundler fallback for environments without native import maps.",
		CompatKey:    "import-maps",
		WebFeatureID: "import-maps",
		Kinds:        markup,
	},
	{
		ID:           "loading-lazy-attr",
		Title:        "Lazy loading attribute",
		DocsURL:      mdn + "Web/HTML/Element/img#attr-loading",
		Baseline:     model.BaselinePartial,
		Suggestion:   "Use for non-critical images/iframes; set hero media to eager to protect LCP.",
		CompatKey:    "loading-lazy-attr",
		WebFeatureID: "loading-lazy",
		Kinds:        markup,
	},
}
