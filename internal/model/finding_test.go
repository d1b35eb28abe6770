package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAdvice(t *testing.T) {
	tests := []struct {
		name    string
		status  BaselineStatus
		guarded bool
		want    Advice
	}{
		{"baseline ignores guard", BaselineYes, false, AdviceSafe},
		{"baseline guarded still safe", BaselineYes, true, AdviceSafe},
		{"partial unguarded", BaselinePartial, false, AdviceNeedsGuard},
		{"partial guarded", BaselinePartial, true, AdviceGuarded},
		{"no guarded", BaselineNo, true, AdviceGuarded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveAdvice(tt.status, tt.guarded))
		})
	}

	assert.Equal(t, SeverityWarn, SeverityFor(AdviceNeedsGuard))
	assert.Equal(t, SeverityInfo, SeverityFor(AdviceGuarded))
	assert.Equal(t, SeverityInfo, SeverityFor(AdviceSafe))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindScript, KindOf("src/App.TSX"))
	assert.Equal(t, KindScript, KindOf("a.mjs"))
	assert.Equal(t, KindStyle, KindOf("theme.scss"))
	assert.Equal(t, KindMarkup, KindOf("index.htm"))
	assert.Equal(t, KindUnknown, KindOf("README.md"))
	assert.Equal(t, KindUnknown, KindOf("Makefile"))
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".css", ".sass", ".scss"}, SupportedExtensions(KindStyle))
	assert.Equal(t, []string{".htm", ".html"}, SupportedExtensions(KindMarkup))
	all := SupportedExtensions(KindUnknown)
	assert.Len(t, all, 13)
	assert.IsIncreasing(t, all)
	for _, ext := range all {
		assert.NotEqual(t, KindUnknown, KindOf("f"+ext), ext)
	}
}
