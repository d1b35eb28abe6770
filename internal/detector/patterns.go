package detector

import (
	"regexp"

	"baseliner/internal/model"
)

// pattern is a textual detector for one feature. When anchor is non-zero the
// position of that capture group is reported instead of the whole match.
type pattern struct {
	feature string
	re      *regexp.Regexp
	anchor  int
}

// optional global object prefix, mirrors the structural path which strips them
const globalPrefix = `(?:(?:window|globalThis|self)\s*\.\s*)?`

// receiver matches a global either bare or wrapped in parentheses with an
// optional TypeScript `as` cast. The wrapped form starts the match at the
// opening parenthesis, where the call expression starts.
func receiver(name string) string {
	return `(?:\(\s*` + globalPrefix + name + `(?:\s+as\s+\w+)?\s*\)|\b` + globalPrefix + name + `\b)`
}

var scriptPatterns = []pattern{
	{feature: "structured-clone", re: regexp.MustCompile(`\b` + globalPrefix + `structuredClone\s*\(`)},
	{feature: "array-prototype-at", re: regexp.MustCompile(`\.\s*at\s*\(`)},
	{feature: "promise-any", re: regexp.MustCompile(`\bPromise\s*\.\s*any\s*\(`)},
	{feature: "urlpattern", re: regexp.MustCompile(`\bnew\s+` + globalPrefix + `URLPattern\s*\(`)},
	{feature: "view-transitions", re: regexp.MustCompile(receiver("document") + `\s*\.\s*startViewTransition\s*\(`)},
	{feature: "navigator-share", re: regexp.MustCompile(receiver("navigator") + `\s*\??\.\s*share\s*\(`)},
	{feature: "file-system-access-picker", re: regexp.MustCompile(`\b` + globalPrefix + `show(?:OpenFile|SaveFile|Directory)Picker\s*\(`)},
	{feature: "url-canparse", re: regexp.MustCompile(receiver("URL") + `\s*\.\s*canParse\s*\(`)},
	{feature: "async-clipboard", re: regexp.MustCompile(receiver("navigator") + `\s*\.\s*clipboard\s*\??\.\s*(?:readText|writeText|read|write)\s*\(`)},
	{feature: "html-dialog", re: regexp.MustCompile(`\.\s*showModal\s*\(`)},
}

var stylePatterns = []pattern{
	{feature: "css-has", re: regexp.MustCompile(`:has\s*\(`)},
	{feature: "css-text-wrap-balance", re: regexp.MustCompile(`(?i)\btext-wrap(?:-style)?\s*:\s*balance\b`)},
	{feature: "css-color-mix", re: regexp.MustCompile(`\bcolor-mix\s*\(`)},
	{feature: "css-nesting", re: regexp.MustCompile(`(?m)^[ \t]*(&)[\s.:#\[>~+]`), anchor: 1},
	{feature: "css-modal-pseudo", re: regexp.MustCompile(`:modal\b`)},
	{feature: "css-container-queries", re: regexp.MustCompile(`@container\b`)},
	{feature: "css-color-oklch", re: regexp.MustCompile(`\bokl(?:ch|ab)\s*\(`)},
}

var markupPatterns = []pattern{
	{feature: "html-popover", re: regexp.MustCompile(`(?i)<[a-z][a-z0-9-]*\b[^>]*?\s(popover)(?:\s*=|[\s/>])`), anchor: 1},
	{feature: "html-dialog", re: regexp.MustCompile(`(?i)<dialog\b`)},
	{feature: "import-maps", re: regexp.MustCompile(`(?i)<script\b[^>]*\btype\s*=\s*["']?importmap(?:-shim)?["']?[^>]*>`)},
	{feature: "loading-lazy-attr", re: regexp.MustCompile(`(?i)<(?:img|iframe)\b[^>]*\bloading\s*=\s*["']?lazy\b`)},
}

var patternsByKind = map[model.FileKind][]pattern{
	model.KindScript: scriptPatterns,
	model.KindStyle:  stylePatterns,
	model.KindMarkup: markupPatterns,
}

// supportsPrelude spans the condition of an `@supports` rule; feature tests
// written there are checks, not usages.
var supportsPrelude = regexp.MustCompile(`@supports\b[^{;]*`)

// urlPatternAlias finds `const P = URLPattern` and `P = URLPattern` bindings
// for the textual path.
var urlPatternAlias = regexp.MustCompile(`(?:\b(?:const|let|var)\s+|(?:^|[;{}(,]|\n)\s*)([A-Za-z_$][\w$]*)\s*=\s*` + globalPrefix + `URLPattern\b`)
