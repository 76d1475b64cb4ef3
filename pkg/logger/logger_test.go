package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetLevel(t *testing.T) {
	SetLevel("debug")
	assert.Equal(t, zap.DebugLevel, Level())

	SetLevel("release")
	assert.Equal(t, zap.InfoLevel, Level())
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	assert.NotPanics(t, func() {
		Log.Info("noop logger accepts writes", zap.String("k", "v"))
	})
}
