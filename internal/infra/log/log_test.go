package log

import (
	"bytes"
	"testing"

	"limitbook/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevelAndFields(t *testing.T) {
	var cfg config.Config
	cfg.Logging.Level = "warn"
	var buf bytes.Buffer
	l := Component(newLogger(cfg, &buf), "ingest")

	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Str("product", "ETH-GBP").Msg("kept")
	out := buf.String()
	assert.Contains(t, out, `"service":"limitbook"`)
	assert.Contains(t, out, `"component":"ingest"`)
	assert.Contains(t, out, `"product":"ETH-GBP"`)
}

func TestNewLoggerBadLevelFallsBackToInfo(t *testing.T) {
	var cfg config.Config
	cfg.Logging.Level = "loud"
	var buf bytes.Buffer
	l := newLogger(cfg, &buf)

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	l.Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}
