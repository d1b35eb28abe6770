package model

// BaselineStatus classifies how broadly a feature is interoperable.
type BaselineStatus string

const (
	BaselineYes     BaselineStatus = "yes"
	BaselineNo      BaselineStatus = "no"
	BaselinePartial BaselineStatus = "partial"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Advice is the actionable classification of a single usage site.
type Advice string

const (
	AdviceSafe       Advice = "safe"
	AdviceNeedsGuard Advice = "needs-guard"
	AdviceGuarded    Advice = "guarded"
)

// FileRef is one source file handed to the engine. Content is the full UTF-8 text.
type FileRef struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// AnalyzeOptions configures a single analyze call.
// Empty Targets disables compatibility enrichment.
type AnalyzeOptions struct {
	Targets []string `json:"targets,omitempty"`
}

// Finding is one reported usage of a detectable feature.
type Finding struct {
	File               string         `json:"file"`
	Line               int            `json:"line"`   // 1-based
	Column             int            `json:"column"` // 1-based, in code points
	FeatureID          string         `json:"featureId"`
	Title              string         `json:"title"`
	Baseline           BaselineStatus `json:"baselineStatus"`
	Severity           Severity       `json:"severity"`
	DocsURL            string         `json:"docsUrl"`
	Suggestion         string         `json:"suggestion,omitempty"`
	Guarded            bool           `json:"guarded"`
	Advice             Advice         `json:"advice"`
	UnsupportedPercent *float64       `json:"unsupportedPercent,omitempty"`
}

// DeriveAdvice computes the advice for a usage from its Baseline status and guard state.
func DeriveAdvice(status BaselineStatus, guarded bool) Advice {
	switch {
	case status == BaselineYes:
		return AdviceSafe
	case guarded:
		return AdviceGuarded
	default:
		return AdviceNeedsGuard
	}
}

// SeverityFor maps advice to the reported severity.
func SeverityFor(a Advice) Severity {
	if a == AdviceNeedsGuard {
		return SeverityWarn
	}
	return SeverityInfo
}
