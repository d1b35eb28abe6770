package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	cause := errors.New("bad flag")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", cause, CodeRuntime},
		{"explicit", New(4, "x"), 4},
		{"zero is normalized", New(0, "x"), CodeRuntime},
		{"runtime wrap", Wrap(CodeRuntime, "scan failed", cause), CodeRuntime},
		{"usage", Usage(cause), CodeUsage},
		{"wrapped by fmt", fmt.Errorf("scan: %w", Newf(CodeFindings, "%d findings", 2)), CodeFindings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeOf(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(CodeUsage, "load config", cause)
	assert.Equal(t, "load config: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "only", Wrap(2, "only", nil).Error())
	assert.Nil(t, Usage(nil))
}
