package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "rank-technicians"})

	log.Debug("dropped", nil)
	log.Info("ranked", map[string]interface{}{"candidates": 3})
	log.WithError(errors.New("boom")).Error("failed", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "ranked", entries[0].Message)
	assert.Equal(t, "rank-technicians", entries[0].ContextMap()["taskType"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["candidates"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNew_Levels(t *testing.T) {
	l := New("warn", "json")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNoOpLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNoOpLogger().With(map[string]interface{}{"a": 1}).Info("x", nil)
	})
}
