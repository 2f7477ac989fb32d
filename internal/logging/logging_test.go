package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ECS(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "api-server", FormatECS)
	require.NoError(t, err)

	logger.Info().Int("doctor_id", 3).Msg("booking attempt")

	out := buf.String()
	assert.Contains(t, out, `"ecs.version"`)
	assert.Contains(t, out, `"app":"api-server"`)
	assert.Contains(t, out, `"doctor_id":3`)
	assert.Contains(t, out, "booking attempt")
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "seed", FormatConsole)
	require.NoError(t, err)

	logger.Warn().Msg("no departments")
	assert.Contains(t, buf.String(), "no departments")
}

func TestSetup_Rejects(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	assert.Error(t, Setup("x", "loud", FormatConsole))
	assert.Error(t, Setup("x", "info", "xml"))
	assert.NoError(t, Setup("x", "debug", FormatConsole))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
