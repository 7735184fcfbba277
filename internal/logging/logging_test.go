package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	l := With("ranker")
	l.Info().Str("user", "u1").Msg("ranked")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"component":"ranker"`)
	assert.Contains(t, out, `"user":"u1"`)
	assert.Contains(t, out, `"message":"ranked"`)
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Msg("hidden")
	Warn().Msg("shown")

	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}
