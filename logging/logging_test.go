package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledWithoutDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fw.log")
	l, c := New(Options{File: path, Level: zerolog.DebugLevel})
	l.Info().Msg("dropped")
	require.NoError(t, c.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fw.log")
	l, c := New(Options{Debug: true, File: path, Level: zerolog.InfoLevel, MaxBackups: 1})

	cl := Component(l, "engine")
	cl.Info().Int("id", 3).Msg("firework recorded")
	l.Debug().Msg("filtered")
	require.NoError(t, c.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 1)
	assert.Equal(t, "engine", lines[0]["component"])
	assert.Equal(t, "fireworks", lines[0]["app"])
	assert.Equal(t, "firework recorded", lines[0]["message"])
	assert.Equal(t, float64(3), lines[0]["id"])
	assert.Contains(t, lines[0], "time")
}
