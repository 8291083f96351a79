package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/config"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(&config.Config{Env: config.EnvProduction, LogLevel: "warn"})
	require.NoError(t, err)

	assert.False(t, l.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.WarnLevel))

	l, err = NewLogger(&config.Config{Env: config.EnvDevelopment, LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, Desugar(l).Core().Enabled(zap.DebugLevel))
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger(&config.Config{Env: config.EnvDevelopment, LogLevel: "chatty"})
	assert.Error(t, err)
}
