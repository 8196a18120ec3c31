package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		toolID   string
		local    string
		want     Outcome
		producer string
	}{
		{"match", "matecat-converter 1.9", "1.9", Match, "1.9"},
		{"mismatch", "matecat-converter 2.0", "1.9", Mismatch, "2.0"},
		{"missing producer version", "matecat-converter", "1.9", MissingProducerVersion, ""},
		{"local unknown", "matecat-converter 2.0", "", LocalVersionUnknown, "2.0"},
		{"bad tool id", "okapi", "1.9", BadToolID, ""},
		{"empty tool id", "", "1.9", BadToolID, ""},
		{"prefixed tool id", "fork of matecat-converter 1.9", "1.9", Match, "1.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, producer := Compare(tt.toolID, tt.local)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.producer, producer)
		})
	}
}

func TestCheckerLogsOneWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewChecker("1.9", zap.New(core))

	assert.Equal(t, Mismatch, c.Check(ToolID("2.0")))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, "converters versions mismatch", logs.All()[0].Message)

	assert.Equal(t, Match, c.Check(ToolID("1.9")))
	assert.Equal(t, 1, logs.Len(), "a match must not log")
}

func TestToolID(t *testing.T) {
	assert.Equal(t, "matecat-converter 1.2.3", ToolID("1.2.3"))
	assert.Equal(t, "matecat-converter", ToolID(""))
}
