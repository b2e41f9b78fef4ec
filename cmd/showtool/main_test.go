package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fireworks/codec"
	"github.com/lixenwraith/fireworks/trajectory"
)

const burstToken = "0kkkk0000k10350a0160500"

func runTool(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestDecode_JSON(t *testing.T) {
	code, out, _ := runTool(t, "", "decode", "--format", "json", "https://example.test/?f="+burstToken+"&l=10&r=1")
	require.Equal(t, exitOK, code)

	var s codec.Show
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 10, s.LengthSeconds)
	assert.True(t, s.Loop)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, trajectory.Burst, s.Entries[0].Params.Shape)
	assert.Equal(t, 5000.0, s.Entries[0].ExplosionTime)
	assert.Contains(t, out, `"shape": "burst"`)
}

func TestDecode_YAMLRoundTripsThroughEncode(t *testing.T) {
	code, doc, _ := runTool(t, "", "decode", "f="+burstToken+"&l=10")
	require.Equal(t, exitOK, code)
	assert.Contains(t, doc, "shape: burst")
	assert.Contains(t, doc, "length_s: 10")

	code, out, _ := runTool(t, doc, "encode")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "f="+burstToken+"&l=10&n=0&r=0\n", out)
}

func TestDecode_PartialWarns(t *testing.T) {
	code, out, errOut := runTool(t, "", "decode", "f="+burstToken+"9zzz")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "shape: burst")
	assert.Contains(t, errOut, "skipped token")
}

func TestDecode_Usage(t *testing.T) {
	code, _, _ := runTool(t, "", "decode")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runTool(t, "", "decode", "--format", "toml", "f=")
	assert.Equal(t, exitUsage, code)
}

func TestEncode_FileAndBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.yaml")
	doc := `length_s: 20
night_sky: true
fireworks:
  - params:
      shape: flower
      launch_color: {r: 1, g: 1, b: 1}
      near_color: {r: 1, g: 0, b: 0}
      far_color: {r: 0, g: 0, b: 1}
      scale: 1
      position: {x: 25, y: 75}
      aspect: 1.5
    explosion_ms: 10000
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	code, out, _ := runTool(t, "", "encode", "--base", "https://example.test/show?utm=x", path)
	require.Equal(t, exitOK, code)

	show, present, err := codec.ParseURL(strings.TrimSpace(out))
	require.NoError(t, err)
	require.True(t, present)
	assert.Contains(t, out, "utm=x")
	assert.Equal(t, 20, show.LengthSeconds)
	assert.True(t, show.NightSky)
	require.Len(t, show.Entries, 1)
	assert.Equal(t, trajectory.Flower, show.Entries[0].Params.Shape)
	assert.Equal(t, 10000.0, show.Entries[0].ExplosionTime)
}

func TestEncode_BadDocument(t *testing.T) {
	code, _, _ := runTool(t, "fireworks:\n  - params:\n      shape: teapot\n", "encode")
	assert.Equal(t, exitInvalid, code)
}

func TestCheck(t *testing.T) {
	code, out, _ := runTool(t, "", "check", "f="+burstToken+"&l=10")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "OK 1 fireworks, 10s")

	code, out, errOut := runTool(t, "", "check", "f="+burstToken, "f="+burstToken+strings.Repeat("z", 23))
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, out, "INVALID 1/2 tokens rejected, 1 kept")
	assert.Contains(t, errOut, "1 of 2 urls invalid")
}

func TestRun_Commands(t *testing.T) {
	code, _, errOut := runTool(t, "")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "usage: showtool")

	code, _, _ = runTool(t, "", "explode")
	assert.Equal(t, exitUsage, code)

	code, out, _ := runTool(t, "", "help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "decode")
}
