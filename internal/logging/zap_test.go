package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))
	ctx := context.Background()

	log.With("module", "http").Warn(ctx, "http_request", "status", 401)
	log.Error(ctx, "boom")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "http_request", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "http", fields["module"])
	assert.EqualValues(t, 401, fields["status"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestZapLogger_DebugFilteredByCore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLogger(zap.New(core))

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}
