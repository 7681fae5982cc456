package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Level("debug"))
	assert.Equal(t, zapcore.WarnLevel, Level("warn"))
	assert.Equal(t, zapcore.ErrorLevel, Level("error"))
	assert.Equal(t, zapcore.InfoLevel, Level("verbose"))
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		logger, err := New("warn", dev)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	}
}
